package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"reflect"
	"time"
)

// Remote operation names passed to the Recorder.
const (
	OperationList = "list"
	OperationGet  = "get"
)

// Enumerator drives the listing and detail protocol for a single resource type.
type Enumerator struct {
	// service is the remote listing and detail capability
	service ResourceService

	// exclusions decides which types never get a detail fetch
	exclusions ExclusionSets

	// recorder receives per-call metrics
	recorder Recorder
}

// NewEnumerator creates a new enumerator.
func NewEnumerator(service ResourceService, exclusions ExclusionSets, recorder Recorder) *Enumerator {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Enumerator{
		service:    service,
		exclusions: exclusions,
		recorder:   recorder,
	}
}

// Enumerate lists every instance of t, optionally scoped by model.
//
// The listing is paged until the remote stops returning a continuation token.
// Each description is followed by a detail fetch until one fetch returns the same
// properties as the listing; from then on the listing properties are used for the
// rest of this call. Every call starts with detail fetches enabled again unless t
// is in the get-exclusion set.
//
// An unsupported action ends the sequence without an error. Any other failure is
// yielded once and ends the sequence.
func (e *Enumerator) Enumerate(ctx context.Context, t ResourceType, model Model) iter.Seq2[ResourceInstance, error] {
	return func(yield func(ResourceInstance, error) bool) {
		performGet := !e.exclusions.IsGetExcluded(t)
		token := ""

		for {
			page, err := e.list(ctx, ListRequest{Type: t, Model: model, NextToken: token})
			if err != nil {
				if !IsUnsupported(err) {
					yield(ResourceInstance{}, err)
				}
				return
			}

			for _, desc := range page.Descriptions {
				raw := desc.Properties

				if performGet {
					detail, err := e.get(ctx, t, desc.Identifier)
					if err != nil {
						if !IsUnsupported(err) {
							yield(ResourceInstance{}, err)
						}
						return
					}
					if sameDocument(detail.Properties, desc.Properties) {
						performGet = false
						e.recorder.RecordGetDisabled(t)
					}
					raw = detail.Properties
				}

				props, err := parseProperties(raw)
				if err != nil {
					yield(ResourceInstance{}, NewRemoteError("malformed properties document", err).
						WithCode(ErrCodeInvalidProperties).
						WithResource(string(t)).
						WithDetail("identifier", desc.Identifier))
					return
				}

				if !yield(ResourceInstance{Identifier: desc.Identifier, Properties: props}, nil) {
					return
				}
			}

			if page.NextToken == "" {
				return
			}
			token = page.NextToken
		}
	}
}

// list fetches one page and normalizes the error.
func (e *Enumerator) list(ctx context.Context, req ListRequest) (*ListPage, error) {
	start := time.Now()
	page, err := e.service.ListResources(ctx, req)
	e.recorder.RecordRemoteCall(req.Type, OperationList, time.Since(start), err)

	if err != nil {
		return nil, classifyRemote(err, req.Type, OperationList, ErrCodeListFailed)
	}
	if page == nil {
		return &ListPage{}, nil
	}
	return page, nil
}

// get fetches one description and normalizes the error.
func (e *Enumerator) get(ctx context.Context, t ResourceType, identifier string) (*ResourceDescription, error) {
	start := time.Now()
	detail, err := e.service.GetResource(ctx, t, identifier)
	e.recorder.RecordRemoteCall(t, OperationGet, time.Since(start), err)

	if err != nil {
		return nil, classifyRemote(err, t, OperationGet, ErrCodeGetFailed).
			WithDetail("identifier", identifier)
	}
	if detail == nil {
		return nil, NewRemoteError("empty resource description", nil).
			WithCode(ErrCodeGetFailed).
			WithResource(string(t)).
			WithOperation(OperationGet).
			WithDetail("identifier", identifier)
	}
	return detail, nil
}

// classifyRemote wraps err as a remote error unless it already carries a class.
func classifyRemote(err error, t ResourceType, operation, code string) *EngineError {
	if IsUnsupported(err) {
		return NewUnsupportedError(fmt.Sprintf("%s not supported", operation), err).
			WithResource(string(t)).
			WithOperation(operation)
	}
	if ClassOf(err) != "" {
		return NewRemoteError(fmt.Sprintf("%s failed", operation), err).
			WithCode(CodeOf(err)).
			WithResource(string(t)).
			WithOperation(operation)
	}
	return NewRemoteError(fmt.Sprintf("%s failed", operation), err).
		WithCode(code).
		WithResource(string(t)).
		WithOperation(operation)
}

// parseProperties decodes the embedded properties document.
// An empty document yields empty properties.
func parseProperties(raw string) (Properties, error) {
	if raw == "" {
		return Properties{}, nil
	}
	var props Properties
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return nil, err
	}
	if props == nil {
		props = Properties{}
	}
	return props, nil
}

// sameDocument reports whether two serialized documents carry the same content.
// Key order and whitespace are ignored; unparsable documents fall back to byte equality.
func sameDocument(a, b string) bool {
	if a == b {
		return true
	}
	var va, vb any
	if json.Unmarshal([]byte(a), &va) != nil || json.Unmarshal([]byte(b), &vb) != nil {
		return false
	}
	return reflect.DeepEqual(va, vb)
}

// Collect materializes a sequence, stopping at the first error.
func Collect(seq iter.Seq2[ResourceInstance, error]) ([]ResourceInstance, error) {
	out := make([]ResourceInstance, 0)
	for inst, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, inst)
	}
	return out, nil
}
