package policy

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/openfroyo/inventory/pkg/engine"
)

// Evaluator evaluates policies against the instances of one type.
type Evaluator interface {
	Evaluate(ctx context.Context, t engine.ResourceType, instances []engine.ResourceInstance) ([]Violation, error)
}

// Auditor is an engine.Sink that evaluates every enumerated type and collects
// the violations of a run. Evaluation failures are logged and counted but do
// not fail the reported type.
type Auditor struct {
	evaluator Evaluator
	logger    zerolog.Logger

	mu         sync.Mutex
	violations []Violation
	failures   int
}

// NewAuditor creates an auditor evaluating with e.
func NewAuditor(e Evaluator, logger zerolog.Logger) *Auditor {
	return &Auditor{
		evaluator: e,
		logger:    logger.With().Str("component", "auditor").Logger(),
	}
}

// Report implements engine.Sink.
func (a *Auditor) Report(ctx context.Context, result *engine.TypeResult) error {
	if result.Status != engine.TypeStatusEnumerated || len(result.Instances) == 0 {
		return nil
	}

	found, err := a.evaluator.Evaluate(ctx, result.Type, result.Instances)
	if err != nil {
		a.logger.Error().Err(err).Str("type", string(result.Type)).Msg("Policy evaluation failed")
	}

	for i := range found {
		a.logger.Warn().
			Str("policy", found[i].Policy).
			Str("type", string(found[i].Type)).
			Str("identifier", found[i].Identifier).
			Str("severity", string(found[i].Severity)).
			Msg(found[i].Message)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.violations = append(a.violations, found...)
	if err != nil {
		a.failures++
	}
	return nil
}

// Violations returns the collected violations ordered by type, identifier and policy.
func (a *Auditor) Violations() []Violation {
	a.mu.Lock()
	out := append([]Violation(nil), a.violations...)
	a.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		if out[i].Identifier != out[j].Identifier {
			return out[i].Identifier < out[j].Identifier
		}
		return out[i].Policy < out[j].Policy
	})
	return out
}

// Failures returns the number of types whose evaluation failed.
func (a *Auditor) Failures() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failures
}

// Summary summarizes the collected violations.
func (a *Auditor) Summary() Summary {
	return Summarize(a.Violations())
}
