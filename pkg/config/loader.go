package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var resourceTypePattern = regexp.MustCompile(`^[A-Za-z0-9]+::[A-Za-z0-9]+::[A-Za-z0-9]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("resource_type", func(fl validator.FieldLevel) bool {
		return resourceTypePattern.MatchString(fl.Field().String())
	})
	return v
}

// Default returns a working configuration: the region comes from the
// environment, documents are written to ./inventory and logs go to the console.
func Default() *Config {
	return &Config{
		AWS:         AWSConfig{Region: regionFromEnv()},
		Parallelism: 4,
		FanOut:      4,
		Output:      OutputConfig{Dir: "inventory"},
		Telemetry: TelemetryConfig{
			LogLevel:      "info",
			LogFormat:     "console",
			TraceExporter: "none",
		},
	}
}

// Load reads a configuration file. CUE (.cue) and YAML (.yaml, .yml) files
// are supported. Unset fields take their Default value and the result is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	var cfg Config
	var errs []ValidationError
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		errs = decodeCUE(path, data, &cfg)
	case ".yaml", ".yml":
		errs = decodeYAML(path, data, &cfg)
	default:
		return nil, fmt.Errorf("unsupported configuration format %q", ext)
	}
	if len(errs) > 0 {
		return nil, &LoadError{Path: path, Errors: errs}
	}

	ApplyDefaults(&cfg)
	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, &LoadError{Path: path, Errors: errs}
	}
	return &cfg, nil
}

// ApplyDefaults fills the unset fields of cfg from Default.
func ApplyDefaults(cfg *Config) {
	def := Default()
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = def.AWS.Region
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = def.Parallelism
	}
	if cfg.FanOut == 0 {
		cfg.FanOut = def.FanOut
	}
	if cfg.Output.Dir == "" && cfg.Output.SQLitePath == "" && cfg.Output.Bucket == nil && cfg.Output.Remote == nil {
		cfg.Output.Dir = def.Output.Dir
	}
	if cfg.Telemetry.LogLevel == "" {
		cfg.Telemetry.LogLevel = def.Telemetry.LogLevel
	}
	if cfg.Telemetry.LogFormat == "" {
		cfg.Telemetry.LogFormat = def.Telemetry.LogFormat
	}
	if cfg.Telemetry.TraceExporter == "" {
		cfg.Telemetry.TraceExporter = def.Telemetry.TraceExporter
	}
}

// Validate checks cfg and returns every problem found.
func Validate(cfg *Config) []ValidationError {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		out = append(out, ValidationError{
			Path:    path,
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_with":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "resource_type":
		return fmt.Sprintf("%q is not a resource type name like AWS::S3::Bucket", fe.Value())
	case "excluded_with":
		return fmt.Sprintf("cannot be combined with %s", fe.Param())
	case "hostname_port":
		return fmt.Sprintf("%q is not a host:port address", fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// decodeCUE evaluates a CUE file against the configuration schema.
func decodeCUE(path string, data []byte, cfg *Config) []ValidationError {
	ctx := cuecontext.New()

	def, err := schema(ctx)
	if err != nil {
		return []ValidationError{{File: path, Message: err.Error()}}
	}

	val := ctx.CompileBytes(data, cue.Filename(path))
	if err := val.Err(); err != nil {
		return convertCUEErrors(err)
	}

	val = def.Unify(val)
	if err := val.Validate(cue.Concrete(true)); err != nil {
		return convertCUEErrors(err)
	}

	if err := val.Decode(cfg); err != nil {
		return convertCUEErrors(err)
	}
	return nil
}

// convertCUEErrors converts CUE errors to ValidationError slice.
func convertCUEErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	for _, e := range cueerrors.Errors(err) {
		var file string
		var line, column int

		pos := e.Position()
		if !pos.IsValid() {
			if positions := cueerrors.Positions(e); len(positions) > 0 {
				pos = positions[0]
			}
		}
		if pos.IsValid() {
			file = pos.Filename()
			line = pos.Line()
			column = pos.Column()
		}

		validationErrors = append(validationErrors, ValidationError{
			File:    file,
			Line:    line,
			Column:  column,
			Path:    strings.Join(e.Path(), "."),
			Message: message(e),
		})
	}

	if len(validationErrors) == 0 {
		validationErrors = append(validationErrors, ValidationError{Message: err.Error()})
	}
	return validationErrors
}

func message(e cueerrors.Error) string {
	format, args := e.Msg()
	return fmt.Sprintf(format, args...)
}

// decodeYAML decodes a YAML file, rejecting unknown fields.
func decodeYAML(path string, data []byte, cfg *Config) []ValidationError {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(cfg)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		out := make([]ValidationError, len(typeErr.Errors))
		for i, msg := range typeErr.Errors {
			out[i] = ValidationError{File: path, Message: msg}
		}
		return out
	}
	return []ValidationError{{File: path, Message: err.Error()}}
}

func regionFromEnv() string {
	if r := os.Getenv("AWS_REGION"); r != "" {
		return r
	}
	return os.Getenv("AWS_DEFAULT_REGION")
}
