package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/iconoclast/childprocess/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) *MeterConfig {
	return &MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// ProcessMetrics holds the instruments recorded over a child's lifecycle.
type ProcessMetrics struct {
	launchTotal     metric.Int64Counter
	launchFailures  metric.Int64Counter
	active          metric.Int64UpDownCounter
	exitTotal       metric.Int64Counter
	stopDuration    metric.Float64Histogram
	escalationTotal metric.Int64Counter
}

// NewProcessMetrics creates the process instruments on the given meter.
func NewProcessMetrics(meter metric.Meter) (*ProcessMetrics, error) {
	launchTotal, err := meter.Int64Counter("process.launch.total",
		metric.WithDescription("Child processes created"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.launch.total counter: %w", err)
	}

	launchFailures, err := meter.Int64Counter("process.launch.failures",
		metric.WithDescription("Launch attempts that did not create a process, by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.launch.failures counter: %w", err)
	}

	active, err := meter.Int64UpDownCounter("process.active",
		metric.WithDescription("Children started and not yet observed to exit"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.active gauge: %w", err)
	}

	exitTotal, err := meter.Int64Counter("process.exit.total",
		metric.WithDescription("Observed child exits, by crashed status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.exit.total counter: %w", err)
	}

	stopDuration, err := meter.Float64Histogram("process.stop.duration",
		metric.WithDescription("Time from stop request to observed exit in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.stop.duration histogram: %w", err)
	}

	escalationTotal, err := meter.Int64Counter("process.escalation.total",
		metric.WithDescription("Stops that needed forceful termination"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.escalation.total counter: %w", err)
	}

	return &ProcessMetrics{
		launchTotal:     launchTotal,
		launchFailures:  launchFailures,
		active:          active,
		exitTotal:       exitTotal,
		stopDuration:    stopDuration,
		escalationTotal: escalationTotal,
	}, nil
}

// RecordLaunch counts a successful launch and marks the child active.
func (m *ProcessMetrics) RecordLaunch(ctx context.Context, executable string) {
	m.launchTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("executable", executable)))
	m.active.Add(ctx, 1)
}

// RecordLaunchFailure counts a launch that produced no process.
func (m *ProcessMetrics) RecordLaunchFailure(ctx context.Context, executable, code string) {
	m.launchFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("executable", executable),
		attribute.String("code", code),
	))
}

// RecordExit marks a child as no longer active.
func (m *ProcessMetrics) RecordExit(ctx context.Context, crashed bool) {
	m.active.Add(ctx, -1)
	m.exitTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("crashed", crashed)))
}

// RecordStop records how long a stop took and whether it escalated.
func (m *ProcessMetrics) RecordStop(ctx context.Context, scope string, duration time.Duration, escalated bool) {
	attrs := metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.Bool("escalated", escalated),
	)
	m.stopDuration.Record(ctx, duration.Seconds(), attrs)
	if escalated {
		m.escalationTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("scope", scope)))
	}
}
