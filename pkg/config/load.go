package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variables.
const EnvPrefix = "PLAIN_ERRORS_"

// envKeys maps environment variable suffixes to config keys.
// PLAIN_ERRORS_SHOW_CODE_SNIPPETS -> plain_errors.show_code_snippets
var envKeys = map[string]string{
	"ENABLED":                         "plain_errors.enabled",
	"SHOW_CODE_SNIPPETS":              "plain_errors.show_code_snippets",
	"CODE_LINES_CONTEXT":              "plain_errors.code_lines_context",
	"SHOW_REQUEST_INFO":               "plain_errors.show_request_info",
	"SHOW_VARIABLES":                  "plain_errors.show_variables",
	"APPLICATION_ROOT":                "plain_errors.application_root",
	"TRIGGER_HEADERS":                 "plain_errors.trigger_headers",
	"MAX_STACK_TRACE_LINES":           "plain_errors.max_stack_trace_lines",
	"INTERCEPT_WITHOUT_ACCEPT":        "plain_errors.intercept_without_accept",
	"CLIENT_ERRORS":                   "plain_errors.client_errors",
	"VERBOSE":                         "plain_errors.verbose",
	"BACKTRACE_COLLAPSE_MODULE_PATHS": "plain_errors.backtrace.collapse_module_paths",
	"BACKTRACE_SILENCE":               "plain_errors.backtrace.silence",
	"SERVER_HOST":                     "server.host",
	"SERVER_PORT":                     "server.port",
	"LOG_LEVEL":                       "logging.level",
	"LOG_FORMAT":                      "logging.format",
}

// listKeys hold comma-separated values in the environment.
var listKeys = map[string]bool{
	"plain_errors.trigger_headers":   true,
	"plain_errors.backtrace.silence": true,
}

// Load builds a BackendConfig from, lowest priority first: built-in defaults,
// the config file at path (skipped when empty), PLAIN_ERRORS_* environment
// variables and overrides (dot-separated keys, typically CLI flags).
func Load(path string, overrides map[string]any) (*BackendConfig, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := DefaultBackend()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 3. Environment
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// 4. Overrides
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load overrides: %w", err)
		}
	}

	var cfg BackendConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.ConfigFile = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKeyTransform converts environment variable names to config keys.
// Unknown variables are dropped.
func envKeyTransform(k, v string) (string, any) {
	key, ok := envKeys[strings.TrimPrefix(k, EnvPrefix)]
	if !ok {
		return "", nil
	}
	if listKeys[key] {
		return key, splitList(v)
	}
	return key, v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yamlParser{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported config file type %q", ErrInvalidConfig, path)
	}
}

// yamlParser adapts gopkg.in/yaml.v3 to koanf.Parser.
type yamlParser struct{}

func (yamlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]interface{}{}
	}
	return out, nil
}

func (yamlParser) Marshal(o map[string]interface{}) ([]byte, error) {
	return yaml.Marshal(o)
}
