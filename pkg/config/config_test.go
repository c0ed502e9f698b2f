package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/openfroyo/inventory/pkg/catalog"
	"github.com/openfroyo/inventory/pkg/engine"
	"github.com/openfroyo/inventory/pkg/transports/ssh"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func loadErrors(t *testing.T, err error) []ValidationError {
	t.Helper()
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *LoadError, got %T: %v", err, err)
	}
	return loadErr.Errors
}

func TestDefault(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg := Default()
	if cfg.AWS.Region != "eu-west-1" {
		t.Errorf("expected region from AWS_REGION, got %q", cfg.AWS.Region)
	}
	if errs := Validate(cfg); len(errs) != 0 {
		t.Errorf("default configuration should be valid, got %v", errs)
	}
}

func TestDefault_FallbackRegion(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "ap-southeast-2")

	if got := Default().AWS.Region; got != "ap-southeast-2" {
		t.Errorf("expected region from AWS_DEFAULT_REGION, got %q", got)
	}
}

func TestLoad_CUE(t *testing.T) {
	path := writeConfig(t, "inventory.cue", `
aws: {
	region:  "us-east-1"
	profile: "audit"
}

types: ["AWS::S3::Bucket", "AWS::EC2::VPC"]
exclude: ["AWS::EC2::LaunchTemplate"]
exclude_get: ["AWS::S3::Bucket"]

parallelism: 2 * 4
fail_fast:   true

output: {
	dir:         "out"
	sqlite_path: "inventory.db"
	bucket: {
		name:   "audit-bucket"
		prefix: "inventory/"
	}
	metadata: Comment: "Imported"
}

policies: {
	enabled: true
	fail_on: "error"
}

telemetry: log_format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := &Config{
		AWS:         AWSConfig{Region: "us-east-1", Profile: "audit"},
		Types:       []string{"AWS::S3::Bucket", "AWS::EC2::VPC"},
		Exclude:     []string{"AWS::EC2::LaunchTemplate"},
		ExcludeGet:  []string{"AWS::S3::Bucket"},
		Parallelism: 8,
		FanOut:      4,
		FailFast:    true,
		Output: OutputConfig{
			Dir:        "out",
			SQLitePath: "inventory.db",
			Bucket:     &BucketConfig{Name: "audit-bucket", Prefix: "inventory/"},
			Metadata:   map[string]any{"Comment": "Imported"},
		},
		Policies: PolicyConfig{Enabled: true, FailOn: "error"},
		Telemetry: TelemetryConfig{
			LogLevel:      "info",
			LogFormat:     "json",
			TraceExporter: "none",
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-central-1")

	path := writeConfig(t, "inventory.yaml", `
prefixes:
  - "AWS::S3::"
fan_out: 2
output:
  sqlite_path: runs.db
  remote:
    host: backup.internal
    user: inventory
    dir: /srv/inventory
    private_key: /keys/id_ed25519
telemetry:
  log_level: debug
  trace_exporter: otlp
  trace_endpoint: localhost:4317
  trace_insecure: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := &Config{
		AWS:         AWSConfig{Region: "eu-central-1"},
		Prefixes:    []string{"AWS::S3::"},
		Parallelism: 4,
		FanOut:      2,
		Output: OutputConfig{
			SQLitePath: "runs.db",
			Remote: &RemoteConfig{
				Host:       "backup.internal",
				User:       "inventory",
				Dir:        "/srv/inventory",
				PrivateKey: "/keys/id_ed25519",
			},
		},
		Telemetry: TelemetryConfig{
			LogLevel:      "debug",
			LogFormat:     "console",
			TraceExporter: "otlp",
			TraceEndpoint: "localhost:4317",
			TraceInsecure: true,
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EmptyYAML(t *testing.T) {
	t.Setenv("AWS_REGION", "us-west-2")

	cfg, err := Load(writeConfig(t, "empty.yml", ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("empty file should load defaults (-want +got):\n%s", diff)
	}
}

func TestLoad_CUEUnknownField(t *testing.T) {
	path := writeConfig(t, "bad.cue", `
aws: region: "us-east-1"
paralelism: 4
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}

	errs := loadErrors(t, err)
	found := false
	for _, e := range errs {
		if strings.Contains(e.String(), "paralelism") {
			found = true
			if e.Line == 0 {
				t.Error("expected a line number")
			}
		}
	}
	if !found {
		t.Errorf("expected an error for paralelism, got %v", errs)
	}
}

func TestLoad_CUEConstraint(t *testing.T) {
	path := writeConfig(t, "bad.cue", `
aws: region: "us-east-1"
types: ["s3 bucket"]
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed resource type")
	} else {
		loadErrors(t, err)
	}
}

func TestLoad_CUESyntaxError(t *testing.T) {
	path := writeConfig(t, "broken.cue", `aws: {region: "us-east-1"`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if errs := loadErrors(t, err); len(errs) == 0 {
		t.Error("expected at least one validation error")
	}
}

func TestLoad_YAMLUnknownField(t *testing.T) {
	path := writeConfig(t, "bad.yaml", "aws:\n  region: us-east-1\nparalelism: 4\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	errs := loadErrors(t, err)
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "paralelism") {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "inventory.toml", "region = 'us-east-1'"))
	if err == nil || !strings.Contains(err.Error(), "unsupported configuration format") {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.cue")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantPath string
	}{
		{
			name:     "missing region",
			mutate:   func(c *Config) { c.AWS.Region = "" },
			wantPath: "aws.region",
		},
		{
			name:     "parallelism too high",
			mutate:   func(c *Config) { c.Parallelism = 100 },
			wantPath: "parallelism",
		},
		{
			name:     "fan out zero",
			mutate:   func(c *Config) { c.FanOut = 0 },
			wantPath: "fan_out",
		},
		{
			name:     "malformed exclude",
			mutate:   func(c *Config) { c.Exclude = []string{"AWS::S3"} },
			wantPath: "exclude[0]",
		},
		{
			name:     "bucket without name",
			mutate:   func(c *Config) { c.Output.Bucket = &BucketConfig{Prefix: "x"} },
			wantPath: "output.bucket.name",
		},
		{
			name: "access key without secret",
			mutate: func(c *Config) {
				c.Output.Bucket = &BucketConfig{Name: "b", AccessKey: "AKIA"}
			},
			wantPath: "output.bucket.secret_key",
		},
		{
			name:     "remote without dir",
			mutate:   func(c *Config) { c.Output.Remote = &RemoteConfig{Host: "backup", User: "inv"} },
			wantPath: "output.remote.dir",
		},
		{
			name: "remote with password and key",
			mutate: func(c *Config) {
				c.Output.Remote = &RemoteConfig{Host: "backup", User: "inv", Dir: "/srv", Password: "p", PrivateKey: "/k"}
			},
			wantPath: "output.remote.password",
		},
		{
			name:     "unknown severity",
			mutate:   func(c *Config) { c.Policies.FailOn = "fatal" },
			wantPath: "policies.fail_on",
		},
		{
			name:     "unknown log format",
			mutate:   func(c *Config) { c.Telemetry.LogFormat = "xml" },
			wantPath: "telemetry.log_format",
		},
		{
			name:     "otlp without endpoint",
			mutate:   func(c *Config) { c.Telemetry.TraceExporter = "otlp" },
			wantPath: "telemetry.trace_endpoint",
		},
		{
			name:     "bad metrics address",
			mutate:   func(c *Config) { c.Telemetry.MetricsAddress = "metrics" },
			wantPath: "telemetry.metrics_address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.AWS.Region = "us-east-1"
			tt.mutate(cfg)

			errs := Validate(cfg)
			if len(errs) != 1 {
				t.Fatalf("expected one error, got %v", errs)
			}
			if errs[0].Path != tt.wantPath {
				t.Errorf("expected path %q, got %q (%s)", tt.wantPath, errs[0].Path, errs[0].Message)
			}
		})
	}
}

func TestApplyDefaults_KeepsConfiguredOutput(t *testing.T) {
	cfg := &Config{Output: OutputConfig{SQLitePath: "runs.db"}}
	ApplyDefaults(cfg)

	if cfg.Output.Dir != "" {
		t.Errorf("document directory should stay disabled, got %q", cfg.Output.Dir)
	}
}

func TestConfig_Conversions(t *testing.T) {
	cfg := &Config{
		Types:       []string{"AWS::S3::Bucket"},
		Exclude:     []string{"AWS::EC2::VPC"},
		ExcludeGet:  []string{"AWS::IAM::Role"},
		Include:     []string{"AWS::Lambda::Function"},
		Parallelism: 3,
		FanOut:      2,
		FailFast:    true,
	}

	if diff := cmp.Diff([]engine.ResourceType{"AWS::S3::Bucket"}, cfg.ExplicitTypes()); diff != "" {
		t.Errorf("ExplicitTypes() mismatch (-want +got):\n%s", diff)
	}

	wantOverrides := catalog.Overrides{
		Exclude:    []engine.ResourceType{"AWS::EC2::VPC"},
		ExcludeGet: []engine.ResourceType{"AWS::IAM::Role"},
		Include:    []engine.ResourceType{"AWS::Lambda::Function"},
	}
	if diff := cmp.Diff(wantOverrides, cfg.Overrides()); diff != "" {
		t.Errorf("Overrides() mismatch (-want +got):\n%s", diff)
	}

	opts := cfg.Options()
	if opts.Parallelism != 3 || opts.FanOut != 2 || !opts.FailFast {
		t.Errorf("unexpected options: %+v", opts)
	}

	if (&Config{}).ExplicitTypes() != nil {
		t.Error("expected nil universe without explicit types")
	}
}

func TestRemoteConfig_SSHConfig(t *testing.T) {
	r := &RemoteConfig{Host: "backup.internal", Port: 2222, User: "inventory", Dir: "/srv", Password: "secret", InsecureIgnoreHostKey: true}
	cfg := r.SSHConfig()

	if cfg.Address() != "backup.internal:2222" || cfg.User != "inventory" {
		t.Errorf("unexpected address/user: %s %s", cfg.Address(), cfg.User)
	}
	if cfg.AuthMethod != ssh.AuthMethodPassword || cfg.Password != "secret" {
		t.Errorf("expected password auth, got %s", cfg.AuthMethod)
	}
	if cfg.StrictHostKeyChecking {
		t.Error("expected host key checking to be disabled")
	}

	keyed := (&RemoteConfig{Host: "h", User: "u", Dir: "/d", PrivateKey: "/keys/id", KnownHosts: "/keys/known"}).SSHConfig()
	if keyed.Port != 22 || keyed.AuthMethod != ssh.AuthMethodKey || keyed.PrivateKeyPath != "/keys/id" {
		t.Errorf("unexpected key config: %+v", keyed)
	}
	if !keyed.StrictHostKeyChecking || keyed.KnownHostsPath != "/keys/known" {
		t.Errorf("unexpected host key config: %+v", keyed)
	}
}

func TestValidationError_String(t *testing.T) {
	e := ValidationError{File: "a.cue", Line: 3, Column: 1, Path: "aws.region", Message: "is required"}
	if got, want := e.String(), "a.cue:3:1: aws.region: is required"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
