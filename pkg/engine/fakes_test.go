package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// listCall records one ListResources invocation.
type listCall struct {
	Type      ResourceType
	Model     Model
	NextToken string
}

// fakeService is a scriptable ResourceService.
type fakeService struct {
	mu sync.Mutex

	// listFn answers ListResources. Defaults to listing by type from resources.
	listFn func(req ListRequest) (*ListPage, error)

	// getFn answers GetResource. Defaults to echoing the listed description.
	getFn func(t ResourceType, id string) (*ResourceDescription, error)

	// resources are the per-type instances served by the default listFn.
	// A function value lets the listing depend on the model.
	resources map[ResourceType]func(model Model) []ResourceDescription

	listed map[string]ResourceDescription
	lists  []listCall
	gets   []string
}

func newFakeService() *fakeService {
	return &fakeService{
		resources: make(map[ResourceType]func(Model) []ResourceDescription),
		listed:    make(map[string]ResourceDescription),
	}
}

// serve registers fixed descriptions for t.
func (f *fakeService) serve(t ResourceType, descs ...ResourceDescription) *fakeService {
	f.resources[t] = func(Model) []ResourceDescription { return descs }
	return f
}

// serveFn registers model dependent descriptions for t.
func (f *fakeService) serveFn(t ResourceType, fn func(Model) []ResourceDescription) *fakeService {
	f.resources[t] = fn
	return f
}

func (f *fakeService) ListResources(_ context.Context, req ListRequest) (*ListPage, error) {
	f.mu.Lock()
	f.lists = append(f.lists, listCall{Type: req.Type, Model: req.Model, NextToken: req.NextToken})
	listFn := f.listFn
	f.mu.Unlock()

	if listFn != nil {
		return listFn(req)
	}

	fn, ok := f.resources[req.Type]
	if !ok {
		return &ListPage{}, nil
	}
	descs := fn(req.Model)

	f.mu.Lock()
	for _, d := range descs {
		f.listed[string(req.Type)+"/"+d.Identifier] = d
	}
	f.mu.Unlock()

	return &ListPage{Descriptions: descs}, nil
}

func (f *fakeService) GetResource(_ context.Context, t ResourceType, id string) (*ResourceDescription, error) {
	f.mu.Lock()
	f.gets = append(f.gets, id)
	getFn := f.getFn
	d, ok := f.listed[string(t)+"/"+id]
	f.mu.Unlock()

	if getFn != nil {
		return getFn(t, id)
	}
	if !ok {
		return nil, fmt.Errorf("resource %s not found", id)
	}
	return &d, nil
}

// listsFor returns the list calls made for t.
func (f *fakeService) listsFor(t ResourceType) []listCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []listCall
	for _, c := range f.lists {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeService) getCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.gets)
}

// pagedList serves pages in order, using the page index as continuation token.
func pagedList(pages ...[]ResourceDescription) func(req ListRequest) (*ListPage, error) {
	return func(req ListRequest) (*ListPage, error) {
		idx := 0
		if req.NextToken != "" {
			if _, err := fmt.Sscanf(req.NextToken, "%d", &idx); err != nil {
				return nil, err
			}
		}
		if idx >= len(pages) {
			return &ListPage{}, nil
		}
		page := &ListPage{Descriptions: pages[idx]}
		if idx+1 < len(pages) {
			page.NextToken = fmt.Sprintf("%d", idx+1)
		}
		return page, nil
	}
}

// desc builds a description from a properties value.
func desc(id string, props map[string]any) ResourceDescription {
	raw, err := json.Marshal(props)
	if err != nil {
		panic(err)
	}
	return ResourceDescription{Identifier: id, Properties: string(raw)}
}

// recordingSink collects every reported result.
type recordingSink struct {
	mu      sync.Mutex
	results []*TypeResult
	failFor map[ResourceType]error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{failFor: make(map[ResourceType]error)}
}

func (s *recordingSink) Report(_ context.Context, result *TypeResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[result.Type]; ok {
		return err
	}
	s.results = append(s.results, result)
	return nil
}

// byType indexes the reported results.
func (s *recordingSink) byType() map[ResourceType]*TypeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[ResourceType]*TypeResult, len(s.results))
	for _, r := range s.results {
		out[r.Type] = r
	}
	return out
}

// order returns the reported types in report order.
func (s *recordingSink) order() []ResourceType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ResourceType, len(s.results))
	for i, r := range s.results {
		out[i] = r.Type
	}
	return out
}

// countingRecorder counts Recorder callbacks.
type countingRecorder struct {
	mu          sync.Mutex
	calls       map[string]int
	getDisabled int
	results     int
	runs        int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{calls: make(map[string]int)}
}

func (r *countingRecorder) RecordRemoteCall(_ ResourceType, op string, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[op]++
}

func (r *countingRecorder) RecordGetDisabled(ResourceType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getDisabled++
}

func (r *countingRecorder) RecordTypeResult(*TypeResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results++
}

func (r *countingRecorder) RecordRun(*Run) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
}
