package policy

import (
	"time"

	"github.com/openfroyo/inventory/pkg/engine"
)

// Severity represents the severity level of a policy violation.
type Severity string

const (
	// SeverityInfo is for informational messages.
	SeverityInfo Severity = "info"

	// SeverityWarning is for findings that should be reviewed.
	SeverityWarning Severity = "warning"

	// SeverityError is for findings that fail a check.
	SeverityError Severity = "error"

	// SeverityCritical is for findings that must be addressed immediately.
	SeverityCritical Severity = "critical"
)

// Blocking reports whether the severity fails a check.
func (s Severity) Blocking() bool {
	return s == SeverityError || s == SeverityCritical
}

var severityRank = map[Severity]int{
	SeverityInfo:     1,
	SeverityWarning:  2,
	SeverityError:    3,
	SeverityCritical: 4,
}

// AtLeast reports whether s is as severe as min or more. Unknown severities
// are never at least a known one.
func (s Severity) AtLeast(min Severity) bool {
	return severityRank[s] >= severityRank[min] && severityRank[s] > 0
}

// Policy represents a rule with its Rego code.
// The module must define a "deny" set of strings or objects.
type Policy struct {
	// Name is the unique name of the policy.
	Name string `json:"name"`

	// Description provides a human-readable description.
	Description string `json:"description"`

	// Rego contains the Rego policy code.
	Rego string `json:"rego"`

	// Severity is the default severity for violations.
	Severity Severity `json:"severity"`

	// Enabled indicates if the policy is active.
	Enabled bool `json:"enabled"`

	// Types restricts the policy to the listed resource types. Empty means all types.
	Types []engine.ResourceType `json:"types,omitempty"`

	// Source is the file the policy was loaded from, empty for built-in policies.
	Source string `json:"source,omitempty"`
}

// AppliesTo reports whether the policy is evaluated for t.
func (p *Policy) AppliesTo(t engine.ResourceType) bool {
	if len(p.Types) == 0 {
		return true
	}
	for _, pt := range p.Types {
		if pt == t {
			return true
		}
	}
	return false
}

// Violation represents a single policy violation of one resource instance.
type Violation struct {
	// Policy is the name of the policy that was violated.
	Policy string `json:"policy"`

	// Type is the resource type of the instance.
	Type engine.ResourceType `json:"type"`

	// Identifier is the primary identifier of the instance.
	Identifier string `json:"identifier"`

	// Message is a human-readable violation message.
	Message string `json:"message"`

	// Severity is the violation severity level.
	Severity Severity `json:"severity"`

	// DetectedAt is when the violation was detected.
	DetectedAt time.Time `json:"detected_at"`
}

// Input is the document a policy is evaluated against, available as `input`.
type Input struct {
	Type       engine.ResourceType `json:"type"`
	Identifier string              `json:"identifier"`
	Properties engine.Properties   `json:"properties"`
}

// value converts the input to the generic form consumed by the evaluator.
func (in Input) value() map[string]interface{} {
	props := map[string]interface{}(in.Properties)
	if props == nil {
		props = map[string]interface{}{}
	}
	return map[string]interface{}{
		"type":       string(in.Type),
		"identifier": in.Identifier,
		"properties": props,
	}
}

// Summary provides aggregate statistics of violations.
type Summary struct {
	// Total is the total number of violations.
	Total int `json:"total"`

	// BySeverity breaks down violations by severity.
	BySeverity map[Severity]int `json:"by_severity"`

	// Blocking is the number of error and critical violations.
	Blocking int `json:"blocking"`
}

// Summarize computes the summary of violations.
func Summarize(violations []Violation) Summary {
	s := Summary{BySeverity: make(map[Severity]int)}
	for i := range violations {
		s.Total++
		s.BySeverity[violations[i].Severity]++
		if violations[i].Severity.Blocking() {
			s.Blocking++
		}
	}
	return s
}
