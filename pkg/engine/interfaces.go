package engine

import (
	"context"
	"iter"
	"time"
)

// TypeCatalog enumerates which resource types exist.
type TypeCatalog interface {
	// ListResourceTypes yields the universe of enumerable types.
	// Callers may filter the sequence before handing it to the engine.
	ListResourceTypes(ctx context.Context) iter.Seq2[ResourceType, error]
}

// ListRequest is a single page request against the listing capability.
type ListRequest struct {
	// Type is the resource type to list.
	Type ResourceType

	// Model optionally scopes the listing, e.g. to one parent.
	Model Model

	// NextToken continues a previous page; empty for the first page.
	NextToken string
}

// ResourceDescription is a raw record returned by the remote service.
type ResourceDescription struct {
	// Identifier is the primary identifier of the resource.
	Identifier string

	// Properties is the embedded serialized (JSON) property document.
	Properties string
}

// ListPage is one page of listing results.
type ListPage struct {
	// Descriptions may be empty when the remote omits the collection entirely.
	Descriptions []ResourceDescription

	// NextToken is empty on the last page.
	NextToken string
}

// ResourceService is the per-type remote listing and detail capability.
// Implementations return an error matching ErrUnsupportedAction for unsupported actions
// and own their transport retry policy.
type ResourceService interface {
	// ListResources returns one page of resource descriptions.
	ListResources(ctx context.Context, req ListRequest) (*ListPage, error)

	// GetResource returns the full description of a single resource.
	GetResource(ctx context.Context, t ResourceType, identifier string) (*ResourceDescription, error)
}

// Capabilities resolves the named runtime capabilities referenced by
// DynamicDependency and FeatureGate declarations.
type Capabilities interface {
	// ListSource returns synthetic parent-like property bags.
	ListSource(ctx context.Context, name string) ([]Properties, error)

	// CheckGate reports whether a feature is enabled for the current account and region.
	CheckGate(ctx context.Context, name string) (bool, error)
}

// Sink receives type outcomes. It is the only data egress of the engine.
// When the orchestrator runs with Parallelism > 1, Report is called concurrently.
type Sink interface {
	Report(ctx context.Context, result *TypeResult) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, result *TypeResult) error

// Report implements Sink.
func (f SinkFunc) Report(ctx context.Context, result *TypeResult) error {
	return f(ctx, result)
}

// Recorder receives engine metrics. Implementations must be safe for concurrent use.
type Recorder interface {
	// RecordRemoteCall records one remote call (operation is "list" or "get").
	RecordRemoteCall(t ResourceType, operation string, duration time.Duration, err error)

	// RecordGetDisabled records that detail fetches were found redundant for a type.
	RecordGetDisabled(t ResourceType)

	// RecordTypeResult records the outcome of a type.
	RecordTypeResult(result *TypeResult)

	// RecordRun records a finished run.
	RecordRun(run *Run)
}

// NopRecorder discards all metrics.
type NopRecorder struct{}

// RecordRemoteCall implements Recorder.
func (NopRecorder) RecordRemoteCall(ResourceType, string, time.Duration, error) {}

// RecordGetDisabled implements Recorder.
func (NopRecorder) RecordGetDisabled(ResourceType) {}

// RecordTypeResult implements Recorder.
func (NopRecorder) RecordTypeResult(*TypeResult) {}

// RecordRun implements Recorder.
func (NopRecorder) RecordRun(*Run) {}
