package instrumentation

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: workspace-mcp)
	ServiceName string `env:"OTEL_SERVICE_NAME,default=workspace-mcp"`

	// ServiceVersion is set by the caller from the build version.
	ServiceVersion string

	// ServiceInstanceID is the unique instance identifier (default: hostname)
	ServiceInstanceID string `env:"OTEL_SERVICE_INSTANCE_ID"`

	// K8sNamespace and K8sPodName are attached as resource attributes when set.
	K8sNamespace string `env:"K8S_NAMESPACE"`
	K8sPodName   string `env:"K8S_POD_NAME"`

	// Enabled determines if instrumentation is active (default: true)
	Enabled bool `env:"INSTRUMENTATION_ENABLED,default=true"`

	// MetricsExporter is one of prometheus, otlp, stdout.
	MetricsExporter string `env:"METRICS_EXPORTER,default=prometheus"`

	// TracingExporter is one of otlp, stdout, none.
	TracingExporter string `env:"TRACING_EXPORTER,default=none"`

	// OTLPEndpoint is the collector endpoint without scheme, e.g. "localhost:4318".
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// OTLPInsecure disables TLS for OTLP export. Development only.
	OTLPInsecure bool `env:"OTEL_EXPORTER_OTLP_INSECURE,default=false"`

	// TraceSamplingRate is the parent-based ratio sampler argument (0.0 to 1.0).
	TraceSamplingRate float64 `env:"OTEL_TRACES_SAMPLER_ARG,default=0.1"`

	// DetailedLabels adds high-cardinality labels (user domain) to tool metrics.
	DetailedLabels bool `env:"METRICS_DETAILED_LABELS,default=false"`

	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig holds configuration for audit logging.
type AuditLoggingConfig struct {
	// Enabled determines if audit logging is active (default: true)
	Enabled bool `env:"AUDIT_LOGGING_ENABLED,default=true"`

	// IncludePII logs full email addresses instead of anonymized identifiers.
	// Audit logs with PII must be routed to storage with access controls.
	IncludePII bool `env:"AUDIT_LOGGING_INCLUDE_PII,default=false"`
}

// ConfigFromEnv decodes the instrumentation configuration from the environment.
func ConfigFromEnv() (Config, error) {
	var config Config
	if err := envdecode.Decode(&config); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("failed to decode instrumentation config: %w", err)
	}

	// Kubernetes downward API fallbacks
	if config.K8sNamespace == "" {
		config.K8sNamespace = os.Getenv("POD_NAMESPACE")
	}
	if config.K8sPodName == "" {
		config.K8sPodName = os.Getenv("HOSTNAME")
	}
	if config.ServiceVersion == "" {
		config.ServiceVersion = "unknown"
	}

	return config, nil
}

var (
	metricsExporters = []string{ExporterPrometheus, ExporterOTLP, ExporterStdout}
	tracingExporters = []string{ExporterOTLP, ExporterStdout, ExporterNone}
)

// Validate rejects unknown exporters, an out-of-range sampling rate and OTLP
// export without an endpoint. Empty exporter names select the defaults.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}
	if c.MetricsExporter != "" && !slices.Contains(metricsExporters, c.MetricsExporter) {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: %s", c.MetricsExporter, strings.Join(metricsExporters, ", "))
	}
	if c.TracingExporter != "" && !slices.Contains(tracingExporters, c.TracingExporter) {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: %s", c.TracingExporter, strings.Join(tracingExporters, ", "))
	}
	usesOTLP := c.TracingExporter == ExporterOTLP || c.MetricsExporter == ExporterOTLP
	if usesOTLP && c.OTLPEndpoint == "" {
		return errors.New("OTLP endpoint is required when using an OTLP exporter")
	}
	return nil
}

const (
	StatusSuccess = "success"
	StatusError   = "error"

	OAuthResultSuccess = "success"
	OAuthResultFailure = "failure"
	OAuthResultExpired = "expired"

	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"

	DefaultMetricInterval = 10 * time.Second
)
