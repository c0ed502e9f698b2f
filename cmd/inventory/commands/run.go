package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openfroyo/inventory/pkg/catalog"
	"github.com/openfroyo/inventory/pkg/engine"
	"github.com/openfroyo/inventory/pkg/policy"
	"github.com/openfroyo/inventory/pkg/stores"
	"github.com/openfroyo/inventory/pkg/telemetry"
)

// runReport is the JSON output of the run command.
type runReport struct {
	Run        *engine.Run        `json:"run"`
	Violations []policy.Violation `json:"violations,omitempty"`
}

func newRunCommand() *cobra.Command {
	var (
		parallelism int
		fanOut      int
		failFast    bool
		audit       bool
	)

	cmd := &cobra.Command{
		Use:   "run [TYPE...]",
		Short: "Enumerate the resources of the account",
		Long: `Enumerate every resource type of the universe and write the results to the
configured stores.

The universe is the list of types given as arguments, else the configured
types, else every type of the CloudFormation registry (filtered by the
configured prefixes). Types depending on a parent type are enumerated once per
parent instance after the parent has finished.

One line is printed per type:

  AWS::S3::Bucket: 12
  // AWS::AuditManager::Assessment: disabled
  // AWS::EC2::LaunchTemplate: skipped`,
		Example: `  # Inventory the whole account
  inventory run

  # Inventory a few types (children need their parents in the list)
  inventory run AWS::S3::Bucket AWS::EC2::VPC AWS::EC2::Subnet

  # Walk four dependency chains concurrently and audit the results
  inventory run --parallelism 4 --audit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			env, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			cfg := env.cfg
			if cmd.Flags().Changed("parallelism") {
				cfg.Parallelism = parallelism
			}
			if cmd.Flags().Changed("fan-out") {
				cfg.FanOut = fanOut
			}
			if cmd.Flags().Changed("fail-fast") {
				cfg.FailFast = failFast
			}
			if cmd.Flags().Changed("audit") {
				cfg.Policies.Enabled = audit
			}

			ctx, span := env.tel.Tracer.StartCommandSpan(ctx, "run")
			defer span.End()

			src, err := openSource(ctx, env)
			if err != nil {
				telemetry.RecordError(span, err)
				return err
			}

			universe, err := resolveUniverse(ctx, cfg, src.Types, args)
			if err != nil {
				telemetry.RecordError(span, err)
				return fmt.Errorf("failed to list resource types: %w", err)
			}

			cat := catalog.Merge(catalog.Default(), cfg.Overrides())
			if reg, ok := src.Capabilities.(*engine.CapabilityRegistry); ok {
				for _, name := range cat.MissingCapabilities(reg) {
					env.logger.Warn().Str("capability", name).Msg("Capability referenced by the catalog is not registered")
				}
			}

			out := newPrinter(cmd.OutOrStdout(), jsonOutput)
			sinks := stores.MultiSink{out}

			if cfg.Output.Dir != "" {
				fs, err := stores.NewFileStore(cfg.Output.Dir, cfg.Output.Metadata, env.logger)
				if err != nil {
					return err
				}
				sinks = append(sinks, fs)
			}

			var db *stores.SQLiteStore
			if cfg.Output.SQLitePath != "" {
				db, err = openSQLite(ctx, cfg.Output.SQLitePath)
				if err != nil {
					return err
				}
				defer db.Close()
				sinks = append(sinks, db)
			}

			if b := cfg.Output.Bucket; b != nil {
				objects, err := stores.NewObjectStore(stores.ObjectStoreConfig{
					Endpoint:  b.Endpoint,
					Bucket:    b.Name,
					Prefix:    b.Prefix,
					Region:    b.Region,
					AccessKey: b.AccessKey,
					SecretKey: b.SecretKey,
				}, cfg.Output.Metadata, env.logger)
				if err != nil {
					return err
				}
				if err := objects.EnsureBucket(ctx); err != nil {
					return err
				}
				sinks = append(sinks, objects)
			}

			if r := cfg.Output.Remote; r != nil {
				remote, err := stores.DialRemoteStore(ctx, r.SSHConfig(), r.Dir, cfg.Output.Metadata, env.logger)
				if err != nil {
					return err
				}
				defer remote.Close()
				sinks = append(sinks, remote)
			}

			var auditor *policy.Auditor
			if cfg.Policies.Enabled {
				eng, err := newPolicyEngine(ctx, env)
				if err != nil {
					return err
				}
				auditor = policy.NewAuditor(eng, env.logger)
				sinks = append(sinks, auditor)
			}

			opts := cfg.Options()
			opts.Logger = env.logger
			opts.Recorder = env.tel.Metrics
			opts.Tracer = env.tel.Tracer.Tracer()

			orch := engine.NewOrchestrator(cat, src.Service, src.Capabilities, sinks, opts)

			out.line("%s", time.Now().UTC().Format(timestampLayout))
			run, runErr := orch.Run(ctx, universe)
			if run.CompletedAt != nil {
				out.line("%s", run.CompletedAt.UTC().Format(timestampLayout))
			}
			out.line("%s", run.Duration.Round(time.Millisecond))

			span.SetAttributes(
				telemetry.AttrRunID.String(run.ID),
				telemetry.AttrRunStatus.String(string(run.Status)),
			)

			if db != nil {
				if err := db.CompleteRun(ctx, run); err != nil {
					runLog := env.log.WithRunID(run.ID).Zerolog()
					runLog.Error().Err(err).Msg("Failed to record run")
				}
			}

			report := runReport{Run: run}
			if auditor != nil {
				report.Violations = auditor.Violations()
				printViolations(out, report.Violations)
			}
			if err := out.document(report); err != nil {
				return err
			}

			return runOutcome(env, run, runErr, report.Violations)
		},
	}

	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "dependency chains walked concurrently")
	cmd.Flags().IntVar(&fanOut, "fan-out", 0, "concurrent enumerations per parent type")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "abort at the first failed type")
	cmd.Flags().BoolVar(&audit, "audit", false, "evaluate policies against the results")

	return cmd
}

// runOutcome decides the command error. A partial run logs its failures but
// succeeds; a failed run or a violation at or above policies.fail_on fails.
func runOutcome(env *environment, run *engine.Run, runErr error, violations []policy.Violation) error {
	logger := env.log.WithRunID(run.ID).Zerolog()

	if run.Status == engine.RunStatusFailed {
		if runErr == nil {
			runErr = errors.New("run failed")
		}
		return fmt.Errorf("run %s failed: %w", run.ID, runErr)
	}
	if runErr != nil {
		logger.Warn().Err(runErr).Int("failed", run.Summary.Failed).Msg("Some types failed")
	}

	if min := policy.Severity(env.cfg.Policies.FailOn); min != "" {
		if n := violationsAtLeast(violations, min); n > 0 {
			return fmt.Errorf("%d policy violations of severity %s or higher", n, min)
		}
	}
	return nil
}

// printViolations writes one comment line per violation in text mode.
func printViolations(out *printer, violations []policy.Violation) {
	for _, v := range violations {
		out.line("// %s [%s] %s: %s", v.Policy, v.Severity, v.Identifier, v.Message)
	}
	if len(violations) > 0 {
		out.line("// %d policy violations", len(violations))
	}
}
