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

	"github.com/skillsenselab/audtext/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
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

// Metrics holds the metric instruments for transcription task observability.
type Metrics struct {
	taskStarted           metric.Int64Counter
	taskCompleted         metric.Int64Counter
	taskFailed            metric.Int64Counter
	taskActive            metric.Int64UpDownCounter
	transcriptionDuration metric.Float64Histogram
	summaryTotal          metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	taskStarted, err := meter.Int64Counter("task.started",
		metric.WithDescription("Total transcription tasks started"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task.started counter: %w", err)
	}

	taskCompleted, err := meter.Int64Counter("task.completed",
		metric.WithDescription("Total transcription tasks completed successfully"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task.completed counter: %w", err)
	}

	taskFailed, err := meter.Int64Counter("task.failed",
		metric.WithDescription("Total transcription tasks that ended in failure"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task.failed counter: %w", err)
	}

	taskActive, err := meter.Int64UpDownCounter("task.active",
		metric.WithDescription("Number of transcription tasks currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task.active gauge: %w", err)
	}

	transcriptionDuration, err := meter.Float64Histogram("transcription.duration",
		metric.WithDescription("Wall-clock duration of transcription runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.duration histogram: %w", err)
	}

	summaryTotal, err := meter.Int64Counter("summary.total",
		metric.WithDescription("Total summaries generated by style"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating summary.total counter: %w", err)
	}

	return &Metrics{
		taskStarted:           taskStarted,
		taskCompleted:         taskCompleted,
		taskFailed:            taskFailed,
		taskActive:            taskActive,
		transcriptionDuration: transcriptionDuration,
		summaryTotal:          summaryTotal,
	}, nil
}

// RecordTaskStart records a task entering the processing state.
func (m *Metrics) RecordTaskStart(ctx context.Context) {
	m.taskStarted.Add(ctx, 1)
	m.taskActive.Add(ctx, 1)
}

// RecordTaskComplete records a successful task with its run duration and
// detected language.
func (m *Metrics) RecordTaskComplete(ctx context.Context, language string, duration time.Duration) {
	m.taskActive.Add(ctx, -1)
	m.taskCompleted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("language", language),
	))
	m.transcriptionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("language", language),
	))
}

// RecordTaskFailure records a task that ended in failure.
func (m *Metrics) RecordTaskFailure(ctx context.Context, reason string) {
	m.taskActive.Add(ctx, -1)
	m.taskFailed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordSummary records a generated summary by style.
func (m *Metrics) RecordSummary(ctx context.Context, style string) {
	m.summaryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("style", style),
	))
}
