package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/openfroyo/inventory/pkg/config"
	"github.com/openfroyo/inventory/pkg/engine"
	"github.com/openfroyo/inventory/pkg/policy"
	awsprovider "github.com/openfroyo/inventory/pkg/providers/aws"
	"github.com/openfroyo/inventory/pkg/stores"
	"github.com/openfroyo/inventory/pkg/telemetry"
)

// environment is what every command needs: the configuration and the
// telemetry built from it.
type environment struct {
	cfg    *config.Config
	tel    *telemetry.Telemetry
	log    *telemetry.Logger
	logger zerolog.Logger
}

// source bundles the remote collaborators of a run.
type source struct {
	Service      engine.ResourceService
	Capabilities engine.Capabilities
	Types        engine.TypeCatalog
}

// openSource connects to AWS. Tests replace it.
var openSource = func(ctx context.Context, env *environment) (*source, error) {
	provider, err := awsprovider.Connect(ctx, awsprovider.SessionOptions{
		Region:      env.cfg.AWS.Region,
		Profile:     env.cfg.AWS.Profile,
		MaxAttempts: env.cfg.AWS.MaxAttempts,
	}, env.logger)
	if err != nil {
		return nil, err
	}
	provider.Types.Prefixes = env.cfg.Prefixes

	return &source{
		Service:      provider.Service,
		Capabilities: provider.Capabilities(),
		Types:        provider.Types,
	}, nil
}

// loadConfig loads --config, or the defaults when no file is given.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		cfg := config.Default()
		if errs := config.Validate(cfg); len(errs) > 0 {
			return nil, &config.LoadError{Path: "<defaults>", Errors: errs}
		}
		return cfg, nil
	}
	return config.Load(configPath)
}

// telemetryConfig maps the tool configuration onto the telemetry package.
func telemetryConfig(cfg *config.Config, version string) *telemetry.Config {
	tc := telemetry.DefaultConfig()
	if version != "" {
		tc.ServiceVersion = version
	}

	tc.Logging.Level = cfg.Telemetry.LogLevel
	tc.Logging.Format = cfg.Telemetry.LogFormat
	if verbose {
		tc.Logging.Level = "debug"
		tc.Logging.EnableCaller = true
	}

	tc.Metrics.ListenAddress = cfg.Telemetry.MetricsAddress

	tc.Tracing.Enabled = cfg.Telemetry.TraceExporter != "none"
	tc.Tracing.Exporter = cfg.Telemetry.TraceExporter
	tc.Tracing.Endpoint = cfg.Telemetry.TraceEndpoint
	tc.Tracing.Insecure = cfg.Telemetry.TraceInsecure

	tc.ResourceAttributes["cloud.region"] = cfg.AWS.Region
	return tc
}

// setup loads the configuration and starts telemetry. The returned cleanup
// flushes telemetry and must always be called.
func setup(cmd *cobra.Command) (*environment, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	version := strings.SplitN(cmd.Root().Version, " ", 2)[0]
	tel, err := telemetry.NewTelemetry(telemetryConfig(cfg, version))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	if err := tel.StartMetricsServer(); err != nil {
		_ = tel.Shutdown(context.Background())
		return nil, nil, err
	}

	env := &environment{
		cfg:    cfg,
		tel:    tel,
		log:    tel.Logger,
		logger: tel.Logger.Zerolog(),
	}
	cleanup := func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			env.logger.Warn().Err(err).Msg("Telemetry shutdown failed")
		}
	}
	return env, cleanup, nil
}

// openSQLite opens and migrates the configured run database.
func openSQLite(ctx context.Context, path string) (*stores.SQLiteStore, error) {
	store, err := stores.NewSQLiteStore(stores.Config{Path: path})
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := store.HealthCheck(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("run database %s is not accessible: %w", path, err)
	}
	return store, nil
}

// requireSQLite opens the run database for the commands that read it.
func requireSQLite(ctx context.Context, env *environment) (*stores.SQLiteStore, error) {
	if env.cfg.Output.SQLitePath == "" {
		return nil, fmt.Errorf("no run database configured (output.sqlite_path)")
	}
	return openSQLite(ctx, env.cfg.Output.SQLitePath)
}

// newPolicyEngine loads the built-in and configured policies.
func newPolicyEngine(ctx context.Context, env *environment) (*policy.Engine, error) {
	var opts []policy.Option
	if env.cfg.Policies.DisableBuiltins {
		opts = append(opts, policy.WithoutBuiltins())
	}

	eng, err := policy.NewEngine(env.logger, opts...)
	if err != nil {
		return nil, err
	}
	if env.cfg.Policies.Dir != "" {
		if err := eng.LoadDir(ctx, env.cfg.Policies.Dir); err != nil {
			return nil, err
		}
	}
	return eng, nil
}

// resolveUniverse picks the types to enumerate: command arguments first, then
// the configured types, then the remote registry.
func resolveUniverse(ctx context.Context, cfg *config.Config, types engine.TypeCatalog, args []string) ([]engine.ResourceType, error) {
	if len(args) > 0 {
		universe := make([]engine.ResourceType, len(args))
		for i, a := range args {
			universe[i] = engine.ResourceType(a)
		}
		return universe, nil
	}
	if explicit := cfg.ExplicitTypes(); len(explicit) > 0 {
		return explicit, nil
	}
	return awsprovider.Universe(ctx, types)
}

// universeFor resolves the universe, connecting to AWS only when the
// registry has to be queried.
func universeFor(ctx context.Context, env *environment, args []string) ([]engine.ResourceType, error) {
	if len(args) > 0 || len(env.cfg.Types) > 0 {
		return resolveUniverse(ctx, env.cfg, nil, args)
	}
	src, err := openSource(ctx, env)
	if err != nil {
		return nil, err
	}
	return resolveUniverse(ctx, env.cfg, src.Types, args)
}

// violationsAtLeast counts the violations of severity min or worse.
func violationsAtLeast(violations []policy.Violation, min policy.Severity) int {
	n := 0
	for _, v := range violations {
		if v.Severity.AtLeast(min) {
			n++
		}
	}
	return n
}
