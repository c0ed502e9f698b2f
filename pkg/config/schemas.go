package config

import (
	"fmt"

	"cuelang.org/go/cue"
)

// configSchema closes the top level of a CUE configuration file so that
// misspelled fields are reported with their position. Value constraints are
// repeated by the struct validation, which also covers YAML files.
const configSchema = `
#ResourceType: string & =~"^[A-Za-z0-9]+::[A-Za-z0-9]+::[A-Za-z0-9]+$"

#Config: {
	aws?: {
		region?:       string
		profile?:      string
		max_attempts?: int & >=0 & <=20
	}

	types?: [...#ResourceType]
	prefixes?: [...string]
	exclude?: [...#ResourceType]
	exclude_get?: [...#ResourceType]
	include?: [...#ResourceType]

	parallelism?: int & >=1 & <=64
	fan_out?:     int & >=1 & <=64
	fail_fast?:   bool

	output?: {
		dir?:         string
		sqlite_path?: string
		bucket?: {
			name:        string
			endpoint?:   string
			prefix?:     string
			region?:     string
			access_key?: string
			secret_key?: string
		}
		remote?: {
			host:                      string
			port?:                     int & >=0 & <=65535
			user:                      string
			dir:                       string
			password?:                 string
			private_key?:              string
			passphrase?:               string
			known_hosts?:              string
			insecure_ignore_host_key?: bool
		}
		metadata?: {...}
	}

	policies?: {
		enabled?:          bool
		dir?:              string
		disable_builtins?: bool
		fail_on?:          "info" | "warning" | "error" | "critical"
	}

	telemetry?: {
		log_level?:       "trace" | "debug" | "info" | "warn" | "error"
		log_format?:      "console" | "json"
		metrics_address?: string
		trace_exporter?:  "none" | "stdout" | "otlp"
		trace_endpoint?:  string
		trace_insecure?:  bool
	}
}
`

// schema compiles the #Config definition into ctx. CUE values can only be
// unified within one context.
func schema(ctx *cue.Context) (cue.Value, error) {
	val := ctx.CompileString(configSchema, cue.Filename("schema.cue"))
	if err := val.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("failed to compile configuration schema: %w", err)
	}
	def := val.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("failed to compile configuration schema: %w", err)
	}
	return def, nil
}
