// Package config defines the interception settings used by the plain-text
// error middleware and the configuration of the backend server that hosts it.
//
// A Config value is built once (usually by Load) and handed to the
// constructors that need it. Constructors keep their own copy, so changing a
// Config after it has been installed has no effect on running handlers.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ClientErrorPolicy selects which 4xx responses without a captured error are
// eligible for a minimal plain-text report.
type ClientErrorPolicy string

const (
	// ClientErrorsNotFound only considers 404 responses.
	ClientErrorsNotFound ClientErrorPolicy = "not-found"
	// ClientErrorsAll considers every 4xx response.
	ClientErrorsAll ClientErrorPolicy = "all"
	// ClientErrorsNone never reports 4xx responses without a captured error.
	ClientErrorsNone ClientErrorPolicy = "none"
)

// DefaultTriggerHeaders are the headers that force a plain-text report when
// sent with a truthy value.
var DefaultTriggerHeaders = []string{"X-Plain-Errors", "X-LLM-Request"}

// Config controls when requests are intercepted and what the report contains.
type Config struct {
	// Enabled turns interception on. When false every response and panic
	// passes through untouched.
	Enabled bool `yaml:"enabled" koanf:"enabled"`

	// ShowCodeSnippets adds the source lines around the failing frame.
	ShowCodeSnippets bool `yaml:"show_code_snippets" koanf:"show_code_snippets"`

	// CodeLinesContext is the number of lines shown on each side of the
	// failing line.
	CodeLinesContext int `yaml:"code_lines_context" koanf:"code_lines_context"`

	// ShowRequestInfo adds method, URL and parameters to the report.
	ShowRequestInfo bool `yaml:"show_request_info" koanf:"show_request_info"`

	// ShowVariables adds the variables section. Variable inspection is not
	// implemented; the section only carries a placeholder.
	ShowVariables bool `yaml:"show_variables" koanf:"show_variables"`

	// ApplicationRoot is stripped from file paths in the report. Empty means unset.
	ApplicationRoot string `yaml:"application_root" koanf:"application_root"`

	// TriggerHeaders are matched case-insensitively.
	TriggerHeaders []string `yaml:"trigger_headers" koanf:"trigger_headers"`

	// MaxStackTraceLines limits the rendered frames. 0 means unlimited.
	MaxStackTraceLines int `yaml:"max_stack_trace_lines" koanf:"max_stack_trace_lines"`

	// InterceptWithoutAccept is the classification result for requests that
	// carry no Accept header at all.
	InterceptWithoutAccept bool `yaml:"intercept_without_accept" koanf:"intercept_without_accept"`

	// ClientErrors decides which 4xx responses without a captured error get
	// the minimal report.
	ClientErrors ClientErrorPolicy `yaml:"client_errors" koanf:"client_errors"`

	// Verbose logs every interception decision.
	Verbose bool `yaml:"verbose" koanf:"verbose"`

	// Backtrace configures the frame cleaner.
	Backtrace BacktraceConfig `yaml:"backtrace" koanf:"backtrace"`
}

// BacktraceConfig configures the optional backtrace cleaner. When neither
// option is set no cleaner is installed and only the application root is
// abbreviated.
type BacktraceConfig struct {
	// CollapseModulePaths shortens Go module cache paths to "mod/<module>@<version>/...".
	CollapseModulePaths bool `yaml:"collapse_module_paths" koanf:"collapse_module_paths"`

	// Silence drops frames whose file matches any of these doublestar patterns.
	Silence []string `yaml:"silence" koanf:"silence"`
}

// Enabled reports whether a cleaner should be built for this configuration.
func (b BacktraceConfig) Enabled() bool {
	return b.CollapseModulePaths || len(b.Silence) > 0
}

// Default returns the default interception settings.
func Default() Config {
	return Config{
		Enabled:                true,
		ShowCodeSnippets:       true,
		CodeLinesContext:       2,
		ShowRequestInfo:        false,
		ShowVariables:          false,
		TriggerHeaders:         slices.Clone(DefaultTriggerHeaders),
		MaxStackTraceLines:     5,
		InterceptWithoutAccept: true,
		ClientErrors:           ClientErrorsNotFound,
	}
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	c.TriggerHeaders = slices.Clone(c.TriggerHeaders)
	c.Backtrace.Silence = slices.Clone(c.Backtrace.Silence)
	return c
}

// Validate checks the invariants of c.
func (c Config) Validate() error {
	if c.CodeLinesContext < 0 {
		return fmt.Errorf("%w: code_lines_context must be >= 0, got %d", ErrInvalidConfig, c.CodeLinesContext)
	}
	if c.MaxStackTraceLines < 0 {
		return fmt.Errorf("%w: max_stack_trace_lines must be >= 0, got %d", ErrInvalidConfig, c.MaxStackTraceLines)
	}
	switch c.ClientErrors {
	case ClientErrorsNotFound, ClientErrorsAll, ClientErrorsNone:
	default:
		return fmt.Errorf("%w: unknown client_errors policy %q", ErrInvalidConfig, c.ClientErrors)
	}
	for _, p := range c.Backtrace.Silence {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: bad backtrace silence pattern %q", ErrInvalidConfig, p)
		}
	}
	return nil
}

// InterceptsClientError reports whether a response with the given status and
// no captured error is eligible for the minimal report.
func (c Config) InterceptsClientError(status int) bool {
	switch c.ClientErrors {
	case ClientErrorsAll:
		return status >= 400 && status < 500
	case ClientErrorsNone:
		return false
	default:
		return status == http.StatusNotFound
	}
}

// BackendConfig is the configuration of the debug server.
type BackendConfig struct {
	Server      ServerConfig  `yaml:"server" koanf:"server"`
	Logging     LoggingConfig `yaml:"logging" koanf:"logging"`
	PlainErrors Config        `yaml:"plain_errors" koanf:"plain_errors"`

	// ConfigFile is the file the configuration was loaded from, if any.
	ConfigFile string `yaml:"-" koanf:"-"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" koanf:"host"`
	Port            int           `yaml:"port" koanf:"port"`
	Version         string        `yaml:"version" koanf:"version"`
	ReadTimeout     time.Duration `yaml:"read_timeout" koanf:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" koanf:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" koanf:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"` // "json" or "text"
}

// DefaultBackend returns the default server configuration.
func DefaultBackend() BackendConfig {
	return BackendConfig{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			Version:         "dev",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		PlainErrors: Default(),
	}
}

// Validate checks the server settings and the interception settings.
func (b BackendConfig) Validate() error {
	if b.Server.Port < 0 || b.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, b.Server.Port)
	}
	switch b.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown logging format %q", ErrInvalidConfig, b.Logging.Format)
	}
	return b.PlainErrors.Validate()
}
