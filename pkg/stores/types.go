package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openfroyo/inventory/pkg/engine"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Run represents a persisted inventory run
type Run struct {
	ID          string           `json:"id"`
	Status      engine.RunStatus `json:"status"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	DurationMS  int64            `json:"duration_ms"`
	Summary     string           `json:"summary"`  // JSON blob of engine.RunSummary
	Metadata    string           `json:"metadata"` // JSON blob
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// DecodeSummary parses the stored run summary.
func (r *Run) DecodeSummary() (engine.RunSummary, error) {
	var summary engine.RunSummary
	if r.Summary == "" {
		return summary, nil
	}
	if err := json.Unmarshal([]byte(r.Summary), &summary); err != nil {
		return summary, fmt.Errorf("failed to decode summary of run %s: %w", r.ID, err)
	}
	return summary, nil
}

// TypeResult represents the persisted outcome of one resource type within a run
type TypeResult struct {
	ID           int64             `json:"id"`
	RunID        string            `json:"run_id"`
	ResourceType string            `json:"resource_type"`
	Status       engine.TypeStatus `json:"status"`
	Reason       string            `json:"reason"`
	Error        *string           `json:"error,omitempty"`
	Instances    int               `json:"instances"`
	StartedAt    time.Time         `json:"started_at"`
	DurationMS   int64             `json:"duration_ms"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Resource represents one discovered resource instance of a run
type Resource struct {
	RunID        string    `json:"run_id"`
	ResourceType string    `json:"resource_type"`
	Identifier   string    `json:"identifier"`
	Properties   string    `json:"properties"` // JSON blob
	CreatedAt    time.Time `json:"created_at"`
}

// Store defines the interface for the run history persistence layer.
// Every Store is also an engine.Sink.
type Store interface {
	engine.Sink

	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// Transaction support
	BeginTx(ctx context.Context) (*sql.Tx, error)

	// Run operations
	CreateRun(ctx context.Context, run *engine.Run) error
	CompleteRun(ctx context.Context, run *engine.Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*Run, error)
	DeleteRun(ctx context.Context, id string) error

	// Result operations
	ListTypeResults(ctx context.Context, runID string) ([]*TypeResult, error)
	ListResources(ctx context.Context, runID string, resourceType string, limit, offset int) ([]*Resource, error)

	// Utility
	HealthCheck(ctx context.Context) error
}
