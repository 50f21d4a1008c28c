package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config groups the settings required to build and serve a route table. Each
// declaration source only uses the keys that are relevant to it.
type Config struct {
	// Source selects where processor declarations come from. Supported values:
	// "static" (processors registered on the Service) or "manifest".
	Source string

	// ManifestFile is the path of a YAML or JSON processor manifest.
	ManifestFile string

	// RequireRoutes fails the build when a processor resolves to zero routes.
	RequireRoutes bool

	// ExtractionWorkers extracts declarations concurrently when greater than 1.
	// Results are always folded back in registration order.
	ExtractionWorkers int

	// OutputFile receives the rendered route table. Empty means stdout.
	OutputFile string
	// OutputFormat is "json" (default) or "yaml".
	OutputFormat string

	// Metrics configuration.
	MetricsEnabled bool
	// MetricsPort is the port where Prometheus metrics will be exposed.
	MetricsPort int

	// TracingEnabled wraps every build in an OpenTelemetry span.
	TracingEnabled bool

	// WebUI configuration.
	WebUIEnabled bool
	// WebUIPort is the port where the route inspector API will be exposed. Defaults to 8081.
	WebUIPort int
	// WebUICORSAllowedOrigins specifies allowed origins for CORS. Use "*" for development
	// or specific origins like "https://example.com" for production. Empty disables CORS headers.
	WebUICORSAllowedOrigins []string
}

// Getter methods to implement the source.Config interface.
func (c *Config) GetSource() string       { return c.Source }
func (c *Config) GetManifestFile() string { return c.ManifestFile }

func (c Config) String() string {
	// Use a type alias to avoid infinite recursion when printing
	type configAlias Config
	return fmt.Sprintf("%+v", configAlias(c))
}

// Validate checks that the configuration has all required fields for the selected source.
// Validation of source names is lenient to allow custom source builders.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, c.validateSource()...)
	errs = append(errs, c.validateBuild()...)
	errs = append(errs, c.validateOutput()...)
	errs = append(errs, c.validatePorts()...)

	return errors.Join(errs...)
}

func (c *Config) validateSource() []error {
	switch strings.ToLower(strings.TrimSpace(c.Source)) {
	case "manifest":
		if c.ManifestFile == "" {
			return []error{errors.New("manifest: file is required")}
		}
	}
	// static, "" and custom sources have no required config
	return nil
}

func (c *Config) validateBuild() []error {
	if c.ExtractionWorkers < 0 {
		return []error{errors.New("build: extraction workers cannot be negative")}
	}
	return nil
}

func (c *Config) validateOutput() []error {
	switch strings.ToLower(c.OutputFormat) {
	case "", "json", "yaml":
		return nil
	default:
		return []error{fmt.Errorf("output: unsupported format %q", c.OutputFormat)}
	}
}

func (c *Config) validatePorts() []error {
	var errs []error
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("metrics: invalid port %d", c.MetricsPort))
	}
	if c.WebUIPort < 0 || c.WebUIPort > 65535 {
		errs = append(errs, fmt.Errorf("webui: invalid port %d", c.WebUIPort))
	}
	return errs
}

// ValidateConfig is a convenience function to validate a config pointer.
func ValidateConfig(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}
