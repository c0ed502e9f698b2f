// Package catalog holds the static AWS configuration tables consumed by the engine:
// the types never enumerated, the types never detail-fetched, and how the inputs of
// each dependent type are obtained.
package catalog

import (
	"maps"

	"github.com/openfroyo/inventory/pkg/engine"
)

// Capability names referenced by the dependency table.
// The AWS provider registers an implementation for each of them.
const (
	// SourceWAFv2Scopes yields {"Scope": "REGIONAL"}, plus CLOUDFRONT in us-east-1.
	SourceWAFv2Scopes = "wafv2-scopes"

	// SourceQuickSightAccounts yields {"Account": id} when QuickSight is subscribed.
	SourceQuickSightAccounts = "quicksight-accounts"

	// SourceCallerIdentities yields the STS caller identity.
	SourceCallerIdentities = "caller-identities"

	// GateAuditManagerEnabled reports whether Audit Manager is ACTIVE.
	GateAuditManagerEnabled = "auditmanager-enabled"

	// GateCloudFormationPublisher reports whether the account is a registered publisher.
	GateCloudFormationPublisher = "cloudformation-publisher"
)

// Default returns the built-in catalog. Each call returns independent maps.
func Default() engine.Catalog {
	return engine.Catalog{
		Dependencies: maps.Clone(dependencies),
		Exclusions:   engine.NewExclusionSets(excludes, excludesGet),
	}
}

// Overrides adjusts a catalog from user configuration.
type Overrides struct {
	// Exclude adds types that are never enumerated.
	Exclude []engine.ResourceType

	// ExcludeGet adds types that are never detail-fetched.
	ExcludeGet []engine.ResourceType

	// Include removes types from the built-in exclusion list.
	Include []engine.ResourceType
}

// Merge applies overrides to c and returns the result. c is not modified.
func Merge(c engine.Catalog, o Overrides) engine.Catalog {
	out := engine.Catalog{
		Dependencies: maps.Clone(c.Dependencies),
		Exclusions: engine.ExclusionSets{
			Exclude:    maps.Clone(c.Exclusions.Exclude),
			ExcludeGet: maps.Clone(c.Exclusions.ExcludeGet),
		},
	}
	if out.Dependencies == nil {
		out.Dependencies = make(map[engine.ResourceType]engine.Dependency)
	}
	if out.Exclusions.Exclude == nil {
		out.Exclusions.Exclude = make(map[engine.ResourceType]struct{})
	}
	if out.Exclusions.ExcludeGet == nil {
		out.Exclusions.ExcludeGet = make(map[engine.ResourceType]struct{})
	}

	for _, t := range o.Include {
		delete(out.Exclusions.Exclude, t)
	}
	for _, t := range o.Exclude {
		out.Exclusions.Exclude[t] = struct{}{}
	}
	for _, t := range o.ExcludeGet {
		out.Exclusions.ExcludeGet[t] = struct{}{}
	}
	return out
}

// Excludes returns the built-in excluded types, sorted.
func Excludes() []engine.ResourceType {
	return engine.SortTypes(append([]engine.ResourceType(nil), excludes...))
}

// ExcludesGet returns the built-in get-excluded types, sorted.
func ExcludesGet() []engine.ResourceType {
	return engine.SortTypes(append([]engine.ResourceType(nil), excludesGet...))
}
