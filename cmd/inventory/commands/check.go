package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfroyo/inventory/pkg/engine"
	"github.com/openfroyo/inventory/pkg/policy"
	"github.com/openfroyo/inventory/pkg/stores"
	"github.com/openfroyo/inventory/pkg/telemetry"
)

// checkReport is the JSON output of the check command.
type checkReport struct {
	RunID      string             `json:"run_id"`
	Violations []policy.Violation `json:"violations"`
	Summary    policy.Summary     `json:"summary"`
}

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [RUN_ID]",
		Short: "Evaluate policies against a recorded run",
		Long: `Evaluate the built-in and configured policies against the resources of a
recorded run. Without an argument the most recent run is checked.

The command fails when a violation reaches policies.fail_on.`,
		Example: `  inventory check
  inventory check 7f9c2a4e-4b1d-4d8e-9d55-0c3b1f2e6a10 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			env, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			db, err := requireSQLite(ctx, env)
			if err != nil {
				return err
			}
			defer db.Close()

			runID, err := selectRun(ctx, db, args)
			if err != nil {
				return err
			}

			eng, err := newPolicyEngine(ctx, env)
			if err != nil {
				return err
			}

			log := env.log.NewComponentLogger("check").WithRunID(runID)
			violations, err := checkRun(ctx, db, eng, runID, log)
			if err != nil {
				return err
			}

			out := newPrinter(cmd.OutOrStdout(), jsonOutput)
			printViolations(out, violations)
			if len(violations) == 0 {
				out.line("// run %s: no policy violations", runID)
			}
			if err := out.document(checkReport{
				RunID:      runID,
				Violations: violations,
				Summary:    policy.Summarize(violations),
			}); err != nil {
				return err
			}

			if min := policy.Severity(env.cfg.Policies.FailOn); min != "" {
				if n := violationsAtLeast(violations, min); n > 0 {
					return fmt.Errorf("%d policy violations of severity %s or higher", n, min)
				}
			}
			return nil
		},
	}

	return cmd
}

// selectRun returns the requested run, or the most recent one.
func selectRun(ctx context.Context, db *stores.SQLiteStore, args []string) (string, error) {
	if len(args) == 1 {
		run, err := db.GetRun(ctx, args[0])
		if err != nil {
			return "", err
		}
		return run.ID, nil
	}

	runs, err := db.ListRuns(ctx, 1, 0)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs recorded: %w", stores.ErrNotFound)
	}
	return runs[0].ID, nil
}

// checkRun evaluates every enumerated type of a run.
func checkRun(ctx context.Context, db *stores.SQLiteStore, eng *policy.Engine, runID string, log *telemetry.Logger) ([]policy.Violation, error) {
	results, err := db.ListTypeResults(ctx, runID)
	if err != nil {
		return nil, err
	}

	var violations []policy.Violation
	for _, result := range results {
		if result.Status != engine.TypeStatusEnumerated || result.Instances == 0 {
			continue
		}

		instances, err := loadInstances(ctx, db, runID, result.ResourceType)
		if err != nil {
			return nil, err
		}

		found, err := eng.Evaluate(ctx, engine.ResourceType(result.ResourceType), instances)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %s: %w", result.ResourceType, err)
		}
		typeLog := log.WithResourceType(result.ResourceType).Zerolog()
		typeLog.Debug().Int("instances", len(instances)).Int("violations", len(found)).Msg("Policies evaluated")
		violations = append(violations, found...)
	}
	return violations, nil
}

// loadInstances reads back the stored instances of one type.
func loadInstances(ctx context.Context, db *stores.SQLiteStore, runID, resourceType string) ([]engine.ResourceInstance, error) {
	// A negative limit means no limit in SQLite.
	rows, err := db.ListResources(ctx, runID, resourceType, -1, 0)
	if err != nil {
		return nil, err
	}

	instances := make([]engine.ResourceInstance, 0, len(rows))
	var errs []error
	for _, r := range rows {
		var props engine.Properties
		if err := json.Unmarshal([]byte(r.Properties), &props); err != nil {
			errs = append(errs, fmt.Errorf("resource %s of %s: %w", r.Identifier, resourceType, err))
			continue
		}
		instances = append(instances, engine.ResourceInstance{Identifier: r.Identifier, Properties: props})
	}
	return instances, errors.Join(errs...)
}
