package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Reasons attached to skipped, disabled and failed results.
const (
	ReasonExcluded         = "excluded"
	ReasonAncestorExcluded = "ancestor excluded"
	ReasonAncestorFailed   = "ancestor failed"
	ReasonAncestorSkipped  = "ancestor skipped"
	ReasonParentUnknown    = "parent not in universe"
	ReasonCycle            = "dependency cycle"
	ReasonGateDisabled     = "feature disabled"
)

const tracerName = "github.com/openfroyo/inventory/pkg/engine"

// Options configures an Orchestrator.
type Options struct {
	// Logger receives structured progress logs. The zero value discards.
	Logger zerolog.Logger

	// Recorder receives metrics. Defaults to NopRecorder.
	Recorder Recorder

	// Tracer creates spans. Defaults to the global otel tracer.
	Tracer trace.Tracer

	// Parallelism is the number of roots walked concurrently. Defaults to 1.
	Parallelism int

	// FanOut bounds concurrent enumerations for the instances of one parent. Defaults to 1.
	FanOut int

	// FailFast aborts the run at the first failed type.
	FailFast bool
}

// Orchestrator walks the dependency graph and enumerates every reachable type.
type Orchestrator struct {
	catalog      Catalog
	enumerator   *Enumerator
	capabilities Capabilities
	sink         Sink

	logger      zerolog.Logger
	recorder    Recorder
	tracer      trace.Tracer
	parallelism int
	fanOut      int
	failFast    bool
}

// NewOrchestrator creates a new orchestrator.
func NewOrchestrator(
	catalog Catalog,
	service ResourceService,
	capabilities Capabilities,
	sink Sink,
	opts Options,
) *Orchestrator {
	if opts.Recorder == nil {
		opts.Recorder = NopRecorder{}
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	if opts.FanOut <= 0 {
		opts.FanOut = 1
	}
	if capabilities == nil {
		capabilities = NewCapabilityRegistry()
	}
	if sink == nil {
		sink = SinkFunc(func(context.Context, *TypeResult) error { return nil })
	}

	return &Orchestrator{
		catalog:      catalog,
		enumerator:   NewEnumerator(service, catalog.Exclusions, opts.Recorder),
		capabilities: capabilities,
		sink:         sink,
		logger:       opts.Logger.With().Str("component", "orchestrator").Logger(),
		recorder:     opts.Recorder,
		tracer:       opts.Tracer,
		parallelism:  opts.Parallelism,
		fanOut:       opts.FanOut,
		failFast:     opts.FailFast,
	}
}

// Graph builds the dependency graph the orchestrator would walk for universe.
func (o *Orchestrator) Graph(universe []ResourceType) *DependencyGraph {
	return BuildGraph(universe, o.catalog.Dependencies)
}

// Run enumerates universe. Unless the run is aborted, every type of the universe
// is reported to the sink exactly once. The returned error joins every type
// failure; the run itself is returned even when err is non-nil.
func (o *Orchestrator) Run(ctx context.Context, universe []ResourceType) (*Run, error) {
	graph := o.Graph(universe)

	run := &Run{
		ID:        uuid.New().String(),
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}
	logger := o.logger.With().Str("run_id", run.ID).Logger()

	ctx, span := o.tracer.Start(ctx, "inventory.run", trace.WithAttributes(
		attribute.String("run.id", run.ID),
		attribute.Int("run.types", graph.Len()),
	))
	defer span.End()

	for _, cycle := range graph.Cycles() {
		logger.Warn().Str("cycle", formatCycle(cycle)).Msg("Dependency cycle declared")
	}

	roots := graph.Roots()
	logger.Info().
		Int("types", graph.Len()).
		Int("roots", len(roots)).
		Int("parallelism", o.parallelism).
		Msg("Run started")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		errs    []error
		aborted bool
	)
	collect := func(r *TypeResult) {
		mu.Lock()
		defer mu.Unlock()
		run.Summary.add(r)
		if r.Status == TypeStatusFailed && r.Err != nil {
			errs = append(errs, r.Err)
			if o.failFast {
				aborted = true
				cancel()
			}
		}
	}

	// Determine worker count (min of parallelism and number of roots)
	workerCount := o.parallelism
	if len(roots) < workerCount {
		workerCount = len(roots)
	}

	workQueue := make(chan ResourceType, len(roots))
	for _, root := range roots {
		workQueue <- root
	}
	close(workQueue)

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for root := range workQueue {
				if runCtx.Err() != nil {
					continue
				}
				o.walk(runCtx, run.ID, graph, root, collect)
			}
		}()
	}
	wg.Wait()

	// Cycle members are never visited by a walk. They are flagged, not enumerated.
	unreachable := graph.Unreachable()
	if !aborted && ctx.Err() == nil {
		for _, t := range unreachable {
			result := o.newResult(run.ID, t)
			result.Status = TypeStatusSkipped
			result.Reason = ReasonCycle
			logger.Warn().Str("type", t.String()).Msg("Type unreachable from any root")
			o.finish(ctx, result, collect)
		}
	}

	completedAt := time.Now()
	run.CompletedAt = &completedAt
	run.Duration = completedAt.Sub(run.StartedAt)
	run.Summary.Unreachable = unreachable
	if ctx.Err() != nil {
		aborted = true
		errs = append(errs, ctx.Err())
	}
	run.Status = finalStatus(run.Summary, aborted)
	o.recorder.RecordRun(run)

	err := errors.Join(errs...)
	span.SetAttributes(attribute.String("run.status", string(run.Status)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(run.Status))
	}

	logger.Info().
		Str("status", string(run.Status)).
		Int("enumerated", run.Summary.Enumerated).
		Int("disabled", run.Summary.Disabled).
		Int("skipped", run.Summary.Skipped).
		Int("failed", run.Summary.Failed).
		Int("instances", run.Summary.Instances).
		Dur("duration", run.Duration).
		Msg("Run completed")

	return run, err
}

// walk processes every type reachable from root in pre-order with a fresh KnownResources.
// Only this goroutine touches known, and a type is published only after it finished.
func (o *Orchestrator) walk(
	ctx context.Context,
	runID string,
	graph *DependencyGraph,
	root ResourceType,
	collect func(*TypeResult),
) {
	ctx, span := o.tracer.Start(ctx, "inventory.walk", trace.WithAttributes(
		attribute.String("walk.root", string(root)),
	))
	defer span.End()

	known := make(KnownResources)
	pruned := make(map[ResourceType]string)

	for t := range graph.Walk(root) {
		if ctx.Err() != nil {
			return
		}

		if parent, ok := graph.Parent(t); ok {
			if reason, isPruned := pruned[parent]; isPruned {
				pruned[t] = reason
				result := o.newResult(runID, t)
				result.Status = TypeStatusSkipped
				result.Reason = reason
				o.finish(ctx, result, collect)
				continue
			}
		}

		if o.catalog.Exclusions.IsExcluded(t) {
			pruned[t] = ReasonAncestorExcluded
			result := o.newResult(runID, t)
			result.Status = TypeStatusSkipped
			result.Reason = ReasonExcluded
			o.finish(ctx, result, collect)
			continue
		}

		result := o.process(ctx, runID, graph, t, known)
		switch result.Status {
		case TypeStatusFailed:
			pruned[t] = ReasonAncestorFailed
		case TypeStatusSkipped:
			pruned[t] = ReasonAncestorSkipped
		default:
			known[t] = result.Instances
		}

		if !o.finish(ctx, result, collect) {
			pruned[t] = ReasonAncestorFailed
		}
	}
}

// process resolves the dependency of t and enumerates it.
func (o *Orchestrator) process(
	ctx context.Context,
	runID string,
	graph *DependencyGraph,
	t ResourceType,
	known KnownResources,
) *TypeResult {
	result := o.newResult(runID, t)
	dep := o.catalog.DependencyOf(t)

	ctx, span := o.tracer.Start(ctx, "inventory.type", trace.WithAttributes(
		attribute.String("type", string(t)),
		attribute.String("dependency", string(dep.Kind())),
	))
	defer span.End()

	var (
		instances []ResourceInstance
		err       error
	)

	switch d := dep.(type) {
	case NoDependency:
		instances, err = Collect(o.enumerator.Enumerate(ctx, t, nil))

	case FeatureGate:
		var enabled bool
		enabled, err = o.capabilities.CheckGate(ctx, d.Check)
		if err != nil {
			err = wrapCapability(err, t, d.Check)
			break
		}
		if !enabled {
			result.Status = TypeStatusDisabled
			result.Reason = ReasonGateDisabled
			result.Instances = []ResourceInstance{}
			result.Duration = time.Since(result.StartedAt)
			return result
		}
		instances, err = Collect(o.enumerator.Enumerate(ctx, t, nil))

	case ParentDependency:
		parents, ok := known[d.Parent]
		if !ok {
			if !graph.HasDependencies(t) {
				result.Status = TypeStatusSkipped
				result.Reason = ReasonParentUnknown
				result.Duration = time.Since(result.StartedAt)
				return result
			}
			err = NewConfigurationError(fmt.Sprintf("no results published for parent %s", d.Parent), nil).
				WithCode(ErrCodeParentMissing).
				WithResource(string(t))
			break
		}
		bags := make([]Properties, len(parents))
		for i, p := range parents {
			bags[i] = p.Properties
		}
		instances, err = o.enumerateFrom(ctx, t, bags, d.Mapping)

	case DynamicDependency:
		var bags []Properties
		bags, err = o.capabilities.ListSource(ctx, d.Source)
		if err != nil {
			err = wrapCapability(err, t, d.Source)
			break
		}
		instances, err = o.enumerateFrom(ctx, t, bags, d.Mapping)

	case StaticDependency:
		instances, err = o.enumerateFrom(ctx, t, d.bags(), Map(d.Key))

	default:
		err = NewConfigurationError(fmt.Sprintf("unknown dependency kind %q", dep.Kind()), nil).
			WithCode(ErrCodeUnknownDependency).
			WithResource(string(t))
	}

	result.Duration = time.Since(result.StartedAt)
	if err != nil {
		result.Status = TypeStatusFailed
		result.Reason = string(ClassOf(err))
		result.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result
	}

	result.Status = TypeStatusEnumerated
	result.Instances = instances
	span.SetAttributes(attribute.Int("instances", len(instances)))
	return result
}

// enumerateFrom builds one model per bag and enumerates t once per model.
// Results keep the order of bags regardless of FanOut.
func (o *Orchestrator) enumerateFrom(
	ctx context.Context,
	t ResourceType,
	bags []Properties,
	mapping []PropertyMapping,
) ([]ResourceInstance, error) {
	models := make([]Model, len(bags))
	for i, bag := range bags {
		model, err := BuildModel(bag, mapping)
		if err != nil {
			var ee *EngineError
			if errors.As(err, &ee) {
				ee.WithResource(string(t))
			}
			return nil, err
		}
		models[i] = model
	}

	out := make([]ResourceInstance, 0)

	if o.fanOut <= 1 || len(models) <= 1 {
		for _, model := range models {
			instances, err := Collect(o.enumerator.Enumerate(ctx, t, model))
			if err != nil {
				return nil, err
			}
			out = append(out, instances...)
		}
		return out, nil
	}

	workerCount := o.fanOut
	if len(models) < workerCount {
		workerCount = len(models)
	}

	results := make([][]ResourceInstance, len(models))
	errs := make([]error, len(models))

	workQueue := make(chan int, len(models))
	for i := range models {
		workQueue <- i
	}
	close(workQueue)

	fanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workQueue {
				if err := fanCtx.Err(); err != nil {
					errs[i] = err
					continue
				}
				results[i], errs[i] = Collect(o.enumerator.Enumerate(fanCtx, t, models[i]))
				if errs[i] != nil {
					cancel()
				}
			}
		}()
	}
	wg.Wait()

	// Report the first failure in parent order, ignoring cancellations it caused.
	var firstErr error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if firstErr == nil || errors.Is(firstErr, context.Canceled) {
			firstErr = err
		}
		if !errors.Is(err, context.Canceled) {
			break
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	for _, instances := range results {
		out = append(out, instances...)
	}
	return out, nil
}

// finish reports result to the sink, logs and accounts it.
// It returns false when the sink rejected the report.
func (o *Orchestrator) finish(ctx context.Context, result *TypeResult, collect func(*TypeResult)) bool {
	ok := true
	if err := o.sink.Report(ctx, result); err != nil {
		ok = false
		sinkErr := NewSinkError("failed to report result", err).
			WithCode(ErrCodeReportFailed).
			WithResource(string(result.Type))
		result.Status = TypeStatusFailed
		result.Reason = string(ErrorClassSink)
		result.Err = sinkErr
		result.Instances = nil
	}

	o.logResult(result)
	o.recorder.RecordTypeResult(result)
	collect(result)
	return ok
}

// logResult writes one line per type outcome.
func (o *Orchestrator) logResult(result *TypeResult) {
	var event *zerolog.Event
	switch result.Status {
	case TypeStatusFailed:
		event = o.logger.Error().Err(result.Err)
	case TypeStatusEnumerated:
		event = o.logger.Info().Int("instances", result.Count())
	default:
		event = o.logger.Debug()
	}

	event.
		Str("run_id", result.RunID).
		Str("type", result.Type.String()).
		Str("status", string(result.Status)).
		Str("reason", result.Reason).
		Dur("duration", result.Duration).
		Msg("Type processed")
}

// newResult creates a pending result for t.
func (o *Orchestrator) newResult(runID string, t ResourceType) *TypeResult {
	return &TypeResult{
		RunID:     runID,
		Type:      t,
		Status:    TypeStatusPending,
		StartedAt: time.Now(),
	}
}

// wrapCapability classifies a capability failure unless it already carries a class.
func wrapCapability(err error, t ResourceType, name string) error {
	if ClassOf(err) != "" {
		return err
	}
	return NewRemoteError(fmt.Sprintf("capability %s failed", name), err).
		WithCode(ErrCodeCapabilityFailed).
		WithResource(string(t))
}
