package telemetry

import (
	"os"
	"strconv"
)

// Environment variables read by FromEnv.
const (
	EnvEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvSampleRate = "OTEL_TRACES_SAMPLER_ARG"
	EnvDeployment = "SECGATE_ENVIRONMENT"
)

// Config holds configuration for the tracer
type Config struct {
	// ServiceName is the name of the service
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Environment is the deployment environment (ci, local)
	Environment string

	// Enabled determines whether tracing is enabled
	// When false, a noop tracer is used
	Enabled bool

	// Endpoint is the OTLP/HTTP collector URL, e.g. http://localhost:4318
	Endpoint string

	// SampleRate is the fraction of traces to sample (0.0 to 1.0)
	SampleRate float64
}

// DefaultConfig returns a sensible default configuration
// Tracing disabled by default for CLI tool
func DefaultConfig() Config {
	return Config{
		ServiceName:    "secgate",
		ServiceVersion: "dev",
		Environment:    "local",
		Enabled:        false,
		Endpoint:       "",
		SampleRate:     1.0,
	}
}

// FromEnv builds a Config from the standard OpenTelemetry environment.
// Tracing is enabled only when an OTLP endpoint is configured.
func FromEnv(version string) Config {
	cfg := DefaultConfig()
	if version != "" {
		cfg.ServiceVersion = version
	}
	if env := os.Getenv(EnvDeployment); env != "" {
		cfg.Environment = env
	} else if os.Getenv("CI") != "" {
		cfg.Environment = "ci"
	}
	if endpoint := os.Getenv(EnvEndpoint); endpoint != "" {
		cfg.Enabled = true
		cfg.Endpoint = endpoint
	}
	if rate, err := strconv.ParseFloat(os.Getenv(EnvSampleRate), 64); err == nil && rate >= 0 && rate <= 1 {
		cfg.SampleRate = rate
	}
	return cfg
}
