// Package engine provides the dependency-aware enumeration engine of the inventory.
//
// # Overview
//
// Many cloud resource types cannot be listed on their own. Listing the routes of
// an API needs the API identifier, listing WAF rules needs a scope, and some types
// only exist when an account-level feature is enabled. The engine declares per
// type how its inputs are obtained and walks the types so that parents are always
// enumerated before the children that depend on them:
//
//  1. Dependency - how a type's inputs are obtained (NoDependency, ParentDependency,
//     DynamicDependency, StaticDependency, FeatureGate)
//  2. DependencyGraph - parent to child edges, roots and a pre-order walk
//  3. BuildModel - the partial input model of a child built from one parent instance
//  4. Enumerator - pagination and adaptive detail fetches for one type and model
//  5. Orchestrator - walks the graph from every root and reports per-type outcomes
//
// # Collaborators
//
// The engine makes no remote calls itself. It consumes injected interfaces:
//
//   - ResourceService: list one page of a type, get one resource
//   - Capabilities: named sources of synthetic parent bags and named feature gates
//   - Sink: receives one TypeResult per type
//   - Recorder: receives metrics
//
// # Outcomes
//
// Every type ends in exactly one terminal TypeStatus:
//
//   - skipped: excluded by policy, or an ancestor was excluded, skipped or failed
//   - disabled: the feature gate returned false (an empty, valid inventory)
//   - enumerated: listed, possibly with zero instances
//   - failed: a configuration, remote, capability or sink error
//
// # Errors
//
// Errors are classified EngineError values:
//
//	if engine.IsUnsupported(err) {
//	    // the remote does not implement the action for this type
//	}
//
// A property mapping that resolves to nothing is a configuration error and fails
// the type. Transport errors are never retried by the engine; retry policy belongs
// to the ResourceService implementation.
//
// # Example Usage
//
//	orch := engine.NewOrchestrator(catalog, service, registry, sink, engine.Options{
//	    Logger:      logger,
//	    Parallelism: 4,
//	})
//	run, err := orch.Run(ctx, universe)
package engine
