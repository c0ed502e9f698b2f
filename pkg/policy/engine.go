package policy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
	"github.com/rs/zerolog"

	"github.com/openfroyo/inventory/pkg/engine"
)

// Engine compiles and evaluates Rego policies against resource instances.
type Engine struct {
	mu       sync.RWMutex
	policies map[string]*compiledPolicy
	logger   zerolog.Logger
}

// compiledPolicy represents a compiled Rego policy.
type compiledPolicy struct {
	policy   *Policy
	module   *ast.Module
	query    rego.PreparedEvalQuery
	compiled time.Time
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	builtins bool
}

// WithoutBuiltins creates the engine without the built-in policies.
func WithoutBuiltins() Option {
	return func(o *engineOptions) {
		o.builtins = false
	}
}

// NewEngine creates a new policy engine with the built-in policies loaded.
func NewEngine(logger zerolog.Logger, opts ...Option) (*Engine, error) {
	o := engineOptions{builtins: true}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		policies: make(map[string]*compiledPolicy),
		logger:   logger.With().Str("component", "policy-engine").Logger(),
	}

	if o.builtins {
		if err := e.loadBuiltinPolicies(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to load built-in policies: %w", err)
		}
	}

	return e, nil
}

// AddPolicy compiles a policy and adds it, replacing a policy of the same name.
func (e *Engine) AddPolicy(ctx context.Context, policy Policy) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.compileAndStorePolicy(ctx, &policy)
}

// LoadDir loads and compiles every .rego file below dir.
func (e *Engine) LoadDir(ctx context.Context, dir string) error {
	loader := NewLoader(e.logger)
	policies, err := loader.LoadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range policies {
		if err := e.compileAndStorePolicy(ctx, &policies[i]); err != nil {
			e.logger.Error().Err(err).
				Str("policy", policies[i].Name).
				Msg("Failed to compile policy")
			return fmt.Errorf("failed to compile policy %s: %w", policies[i].Name, err)
		}
	}

	e.logger.Info().
		Int("count", len(policies)).
		Str("dir", dir).
		Msg("Policies loaded successfully")

	return nil
}

// Evaluate evaluates the enabled policies applying to t against every instance.
// Violations are ordered by identifier, then policy. Evaluation failures of single
// policies are joined into the returned error; violations found by other policies
// are still returned.
func (e *Engine) Evaluate(ctx context.Context, t engine.ResourceType, instances []engine.ResourceInstance) ([]Violation, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var violations []Violation
	var errs []error

	for _, name := range e.sortedNames() {
		cp := e.policies[name]
		if !cp.policy.Enabled || !cp.policy.AppliesTo(t) {
			continue
		}

		for i := range instances {
			input := Input{
				Type:       t,
				Identifier: instances[i].Identifier,
				Properties: instances[i].Properties,
			}

			found, err := e.evaluatePolicy(ctx, cp, input)
			if err != nil {
				e.logger.Error().Err(err).
					Str("policy", cp.policy.Name).
					Str("type", string(t)).
					Str("identifier", input.Identifier).
					Msg("Policy evaluation failed")
				errs = append(errs, fmt.Errorf("policy %s on %s: %w", cp.policy.Name, input.Identifier, err))
				continue
			}
			violations = append(violations, found...)
		}
	}

	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].Identifier != violations[j].Identifier {
			return violations[i].Identifier < violations[j].Identifier
		}
		return violations[i].Policy < violations[j].Policy
	})

	return violations, errors.Join(errs...)
}

// evaluatePolicy evaluates a single compiled policy.
func (e *Engine) evaluatePolicy(ctx context.Context, cp *compiledPolicy, input Input) ([]Violation, error) {
	results, err := cp.query.Eval(ctx, rego.EvalInput(input.value()))
	if err != nil {
		return nil, fmt.Errorf("policy evaluation error: %w", err)
	}

	var messages []interface{}
	for _, result := range results {
		if len(result.Expressions) == 0 {
			continue
		}
		// Sets are returned as arrays.
		if denySet, ok := result.Expressions[0].Value.([]interface{}); ok {
			messages = append(messages, denySet...)
		}
	}

	violations := make([]Violation, 0, len(messages))
	for _, m := range messages {
		violations = append(violations, createViolation(cp.policy, m, input))
	}

	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Message < violations[j].Message
	})
	return violations, nil
}

// createViolation creates a Violation from a deny entry.
func createViolation(policy *Policy, result interface{}, input Input) Violation {
	violation := Violation{
		Policy:     policy.Name,
		Type:       input.Type,
		Identifier: input.Identifier,
		Severity:   policy.Severity,
		DetectedAt: time.Now(),
	}

	switch v := result.(type) {
	case string:
		violation.Message = v
	case map[string]interface{}:
		if msg, ok := v["message"].(string); ok {
			violation.Message = msg
		}
		if sev, ok := v["severity"].(string); ok {
			violation.Severity = Severity(sev)
		}
	default:
		violation.Message = fmt.Sprintf("%v", result)
	}

	return violation
}

// compileAndStorePolicy compiles a policy and stores it. Callers hold the lock.
func (e *Engine) compileAndStorePolicy(ctx context.Context, policy *Policy) error {
	module, err := ast.ParseModule(policy.Name+".rego", policy.Rego)
	if err != nil {
		return fmt.Errorf("failed to parse policy: %w", err)
	}
	if policy.Severity == "" {
		policy.Severity = SeverityWarning
	}

	r := rego.New(
		rego.ParsedModule(module),
		rego.Query(module.Package.Path.String()+".deny"),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return fmt.Errorf("failed to prepare query: %w", err)
	}

	e.policies[policy.Name] = &compiledPolicy{
		policy:   policy,
		module:   module,
		query:    query,
		compiled: time.Now(),
	}

	e.logger.Debug().
		Str("policy", policy.Name).
		Str("package", module.Package.Path.String()).
		Msg("Policy compiled successfully")

	return nil
}

// loadBuiltinPolicies loads the built-in policies.
func (e *Engine) loadBuiltinPolicies(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	builtins := GetBuiltinPolicies()
	for i := range builtins {
		if err := e.compileAndStorePolicy(ctx, &builtins[i]); err != nil {
			return fmt.Errorf("failed to compile built-in policy %s: %w", builtins[i].Name, err)
		}
	}

	e.logger.Debug().
		Int("count", len(builtins)).
		Msg("Built-in policies loaded")

	return nil
}

func (e *Engine) sortedNames() []string {
	names := make([]string, 0, len(e.policies))
	for name := range e.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPolicy returns a policy by name.
func (e *Engine) GetPolicy(name string) (*Policy, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cp, exists := e.policies[name]
	if !exists {
		return nil, fmt.Errorf("policy not found: %s", name)
	}

	p := *cp.policy
	return &p, nil
}

// ListPolicies returns all loaded policies sorted by name.
func (e *Engine) ListPolicies() []Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()

	policies := make([]Policy, 0, len(e.policies))
	for _, name := range e.sortedNames() {
		policies = append(policies, *e.policies[name].policy)
	}

	return policies
}

// EnablePolicy enables a policy by name.
func (e *Engine) EnablePolicy(name string) error {
	return e.setEnabled(name, true)
}

// DisablePolicy disables a policy by name.
func (e *Engine) DisablePolicy(name string) error {
	return e.setEnabled(name, false)
}

func (e *Engine) setEnabled(name string, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp, exists := e.policies[name]
	if !exists {
		return fmt.Errorf("policy not found: %s", name)
	}

	cp.policy.Enabled = enabled
	e.logger.Info().Str("policy", name).Bool("enabled", enabled).Msg("Policy state changed")

	return nil
}
