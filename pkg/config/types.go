package config

import (
	"fmt"
	"strings"

	"github.com/openfroyo/inventory/pkg/catalog"
	"github.com/openfroyo/inventory/pkg/engine"
	"github.com/openfroyo/inventory/pkg/transports/ssh"
)

// Config is the inventory tool configuration.
type Config struct {
	// AWS selects the account and region to inventory.
	AWS AWSConfig `json:"aws" yaml:"aws"`

	// Types is an explicit universe. When empty the registry is queried.
	Types []string `json:"types,omitempty" yaml:"types,omitempty" validate:"omitempty,dive,resource_type"`

	// Prefixes restricts a registry universe to types with one of these prefixes,
	// e.g. "AWS::S3::".
	Prefixes []string `json:"prefixes,omitempty" yaml:"prefixes,omitempty" validate:"omitempty,dive,required"`

	// Exclude adds types that are never enumerated.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" validate:"omitempty,dive,resource_type"`

	// ExcludeGet adds types whose instances are never detail-fetched.
	ExcludeGet []string `json:"exclude_get,omitempty" yaml:"exclude_get,omitempty" validate:"omitempty,dive,resource_type"`

	// Include removes types from the built-in exclusion list.
	Include []string `json:"include,omitempty" yaml:"include,omitempty" validate:"omitempty,dive,resource_type"`

	// Parallelism is the number of dependency roots walked concurrently.
	Parallelism int `json:"parallelism" yaml:"parallelism" validate:"min=1,max=64"`

	// FanOut bounds concurrent child enumerations per parent type.
	FanOut int `json:"fan_out" yaml:"fan_out" validate:"min=1,max=64"`

	// FailFast aborts the run at the first failed type.
	FailFast bool `json:"fail_fast" yaml:"fail_fast"`

	// Output configures where results are written.
	Output OutputConfig `json:"output" yaml:"output"`

	// Policies configures the optional policy audit.
	Policies PolicyConfig `json:"policies" yaml:"policies"`

	// Telemetry configures logging, metrics and tracing.
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
}

// AWSConfig selects credentials and region.
type AWSConfig struct {
	// Region is required; it may also come from AWS_REGION.
	Region string `json:"region" yaml:"region" validate:"required"`

	// Profile is an optional shared-config profile.
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`

	// MaxAttempts overrides the adaptive retry attempt count.
	MaxAttempts int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty" validate:"min=0,max=20"`
}

// OutputConfig configures the result stores.
type OutputConfig struct {
	// Dir receives one template document per resource type. Empty disables it.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// SQLitePath records runs in a SQLite database. Empty disables it.
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`

	// Bucket uploads the template documents to an S3-compatible bucket.
	Bucket *BucketConfig `json:"bucket,omitempty" yaml:"bucket,omitempty" validate:"omitempty"`

	// Remote uploads the template documents to a directory of a host over SFTP.
	Remote *RemoteConfig `json:"remote,omitempty" yaml:"remote,omitempty" validate:"omitempty"`

	// Metadata is attached to every resource of the template documents.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// BucketConfig configures an S3-compatible bucket.
type BucketConfig struct {
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Name      string `json:"name" yaml:"name" validate:"required"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty" validate:"required_with=SecretKey"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty" validate:"required_with=AccessKey"`
}

// RemoteConfig configures an SFTP upload target. A password selects password
// authentication, otherwise the private key (or a default key of ~/.ssh) is used.
type RemoteConfig struct {
	Host       string `json:"host" yaml:"host" validate:"required"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty" validate:"min=0,max=65535"`
	User       string `json:"user" yaml:"user" validate:"required"`
	Dir        string `json:"dir" yaml:"dir" validate:"required"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty" validate:"excluded_with=PrivateKey"`
	PrivateKey string `json:"private_key,omitempty" yaml:"private_key,omitempty"`
	Passphrase string `json:"passphrase,omitempty" yaml:"passphrase,omitempty"`
	KnownHosts string `json:"known_hosts,omitempty" yaml:"known_hosts,omitempty"`

	// InsecureIgnoreHostKey accepts any host key.
	InsecureIgnoreHostKey bool `json:"insecure_ignore_host_key,omitempty" yaml:"insecure_ignore_host_key,omitempty"`
}

// SSHConfig converts the target into transport settings.
func (r *RemoteConfig) SSHConfig() *ssh.Config {
	cfg := ssh.DefaultConfig(r.Host, r.User)
	if r.Port != 0 {
		cfg.Port = r.Port
	}
	if r.Password != "" {
		cfg.AuthMethod = ssh.AuthMethodPassword
		cfg.Password = r.Password
	}
	cfg.PrivateKeyPath = r.PrivateKey
	cfg.PrivateKeyPassphrase = r.Passphrase
	if r.KnownHosts != "" {
		cfg.KnownHostsPath = r.KnownHosts
	}
	cfg.StrictHostKeyChecking = !r.InsecureIgnoreHostKey
	return cfg
}

// PolicyConfig configures the policy audit.
type PolicyConfig struct {
	// Enabled evaluates policies against every enumerated type of a run.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir holds additional .rego policies.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// DisableBuiltins skips the built-in policies.
	DisableBuiltins bool `json:"disable_builtins,omitempty" yaml:"disable_builtins,omitempty"`

	// FailOn makes the run exit non-zero when a violation of at least this
	// severity is found. Empty never fails.
	FailOn string `json:"fail_on,omitempty" yaml:"fail_on,omitempty" validate:"omitempty,oneof=info warning error critical"`
}

// TelemetryConfig configures the ambient telemetry.
type TelemetryConfig struct {
	LogLevel  string `json:"log_level" yaml:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat string `json:"log_format" yaml:"log_format" validate:"oneof=console json"`

	// MetricsAddress serves Prometheus metrics while a run is in progress. Empty disables it.
	MetricsAddress string `json:"metrics_address,omitempty" yaml:"metrics_address,omitempty" validate:"omitempty,hostname_port"`

	// TraceExporter is one of none, stdout or otlp.
	TraceExporter string `json:"trace_exporter" yaml:"trace_exporter" validate:"oneof=none stdout otlp"`

	// TraceEndpoint is the OTLP gRPC endpoint.
	TraceEndpoint string `json:"trace_endpoint,omitempty" yaml:"trace_endpoint,omitempty" validate:"required_if=TraceExporter otlp"`

	// TraceInsecure disables TLS towards the OTLP endpoint.
	TraceInsecure bool `json:"trace_insecure,omitempty" yaml:"trace_insecure,omitempty"`
}

// ValidationError describes one configuration problem with its location.
type ValidationError struct {
	// File is the source file path.
	File string `json:"file,omitempty"`

	// Line is the line number (1-indexed).
	Line int `json:"line,omitempty"`

	// Column is the column number (1-indexed).
	Column int `json:"column,omitempty"`

	// Path is the field path, e.g. "output.bucket.name".
	Path string `json:"path,omitempty"`

	// Message is the error message.
	Message string `json:"message"`
}

func (e ValidationError) String() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d:%d", e.Line, e.Column)
		}
		b.WriteString(": ")
	}
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// LoadError is returned when a configuration file cannot be used.
type LoadError struct {
	Path   string
	Errors []ValidationError
}

func (e *LoadError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.String()
	}
	return fmt.Sprintf("invalid configuration %s: %s", e.Path, strings.Join(msgs, "; "))
}

// ExplicitTypes returns the configured universe, or nil when the registry
// should be queried.
func (c *Config) ExplicitTypes() []engine.ResourceType {
	return toTypes(c.Types)
}

// Overrides returns the catalog adjustments of the configuration.
func (c *Config) Overrides() catalog.Overrides {
	return catalog.Overrides{
		Exclude:    toTypes(c.Exclude),
		ExcludeGet: toTypes(c.ExcludeGet),
		Include:    toTypes(c.Include),
	}
}

// Options returns the orchestrator tuning of the configuration.
func (c *Config) Options() engine.Options {
	return engine.Options{
		Parallelism: c.Parallelism,
		FanOut:      c.FanOut,
		FailFast:    c.FailFast,
	}
}

func toTypes(names []string) []engine.ResourceType {
	if len(names) == 0 {
		return nil
	}
	out := make([]engine.ResourceType, len(names))
	for i, n := range names {
		out[i] = engine.ResourceType(n)
	}
	return out
}
