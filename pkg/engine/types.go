package engine

import (
	"sort"
	"strings"
	"time"
)

// ResourceType is a namespaced resource type name such as "AWS::Amplify::App".
type ResourceType string

// String returns the type name.
func (t ResourceType) String() string {
	return string(t)
}

// FileName returns a filesystem friendly form of the type name,
// e.g. "AWS::Amplify::App" -> "aws-amplify-app".
func (t ResourceType) FileName() string {
	return strings.ToLower(strings.ReplaceAll(string(t), "::", "-"))
}

// Properties is a parsed property document of a resource instance.
type Properties map[string]any

// Model is a (possibly nested) partial input model used to scope a listing call.
type Model map[string]any

// ResourceInstance is one discovered resource.
// Instances are never mutated after the enumerator yields them.
type ResourceInstance struct {
	// Identifier is the primary identifier returned by the remote service.
	Identifier string `json:"identifier"`

	// Properties is the parsed property document.
	Properties Properties `json:"properties"`
}

// KnownResources holds the accumulated instances per type for one walk.
// Each key is written once, after the type finished enumeration.
type KnownResources map[ResourceType][]ResourceInstance

// ExclusionSets are policy-level exclusions consulted by the engine.
type ExclusionSets struct {
	// Exclude lists types that must never be enumerated.
	Exclude map[ResourceType]struct{}

	// ExcludeGet lists types for which the per-instance detail fetch is never attempted.
	ExcludeGet map[ResourceType]struct{}
}

// NewExclusionSets builds exclusion sets from plain slices.
func NewExclusionSets(exclude, excludeGet []ResourceType) ExclusionSets {
	sets := ExclusionSets{
		Exclude:    make(map[ResourceType]struct{}, len(exclude)),
		ExcludeGet: make(map[ResourceType]struct{}, len(excludeGet)),
	}
	for _, t := range exclude {
		sets.Exclude[t] = struct{}{}
	}
	for _, t := range excludeGet {
		sets.ExcludeGet[t] = struct{}{}
	}
	return sets
}

// IsExcluded reports whether t is excluded from enumeration.
func (e ExclusionSets) IsExcluded(t ResourceType) bool {
	_, ok := e.Exclude[t]
	return ok
}

// IsGetExcluded reports whether detail fetches are disabled for t.
func (e ExclusionSets) IsGetExcluded(t ResourceType) bool {
	_, ok := e.ExcludeGet[t]
	return ok
}

// Catalog is the static configuration consumed by the engine as lookup tables.
type Catalog struct {
	// Dependencies maps a resource type to how its inputs are obtained.
	// Types without an entry have no dependency.
	Dependencies map[ResourceType]Dependency

	// Exclusions holds the exclusion sets.
	Exclusions ExclusionSets
}

// DependencyOf returns the declared dependency of t, or NoDependency.
func (c Catalog) DependencyOf(t ResourceType) Dependency {
	if dep, ok := c.Dependencies[t]; ok && dep != nil {
		return dep
	}
	return NoDependency{}
}

// TypeResult is the outcome of one resource type within a run.
type TypeResult struct {
	// RunID is the run that produced the result.
	RunID string `json:"run_id"`

	// Type is the resource type.
	Type ResourceType `json:"type"`

	// Status is the terminal status of the type.
	Status TypeStatus `json:"status"`

	// Instances holds the enumerated instances (empty unless Status is enumerated).
	Instances []ResourceInstance `json:"instances,omitempty"`

	// Reason explains skipped, disabled and failed outcomes.
	Reason string `json:"reason,omitempty"`

	// Err is the failure, if any.
	Err error `json:"-"`

	// StartedAt is when processing of the type started.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the type took.
	Duration time.Duration `json:"duration"`
}

// Count returns the number of instances in the result.
func (r *TypeResult) Count() int {
	return len(r.Instances)
}

// RunSummary provides statistics about a run.
type RunSummary struct {
	Total       int            `json:"total"`
	Enumerated  int            `json:"enumerated"`
	Disabled    int            `json:"disabled"`
	Skipped     int            `json:"skipped"`
	Failed      int            `json:"failed"`
	Instances   int            `json:"instances"`
	Unreachable []ResourceType `json:"unreachable,omitempty"`
}

// add accounts a single type result.
func (s *RunSummary) add(r *TypeResult) {
	s.Total++
	switch r.Status {
	case TypeStatusEnumerated:
		s.Enumerated++
		s.Instances += r.Count()
	case TypeStatusDisabled:
		s.Disabled++
	case TypeStatusSkipped:
		s.Skipped++
	case TypeStatusFailed:
		s.Failed++
	}
}

// Run is one complete inventory run.
type Run struct {
	ID          string        `json:"id"`
	Status      RunStatus     `json:"status"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Duration    time.Duration `json:"duration"`
	Summary     RunSummary    `json:"summary"`
}

// SortTypes sorts a slice of resource types in place and returns it.
func SortTypes(types []ResourceType) []ResourceType {
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
