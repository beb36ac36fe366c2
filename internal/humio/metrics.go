package humio

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics collects Prometheus-compatible metrics for command execution.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	commandsTotal  metric.Int64Counter
	commandLatency metric.Float64Histogram
	requestsTotal  metric.Int64Counter
	requestLatency metric.Float64Histogram
	incidentsTotal metric.Int64Counter
	lastRun        metric.Int64Gauge
}

// NewMetrics creates the connector instruments on meterProvider.
func NewMetrics(meterProvider metric.MeterProvider) (*Metrics, error) {
	meter := meterProvider.Meter("humio-connector")
	m := &Metrics{}

	var err error

	m.commandsTotal, err = meter.Int64Counter(
		"humio_connector_commands_total",
		metric.WithDescription("Total number of commands executed"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, err
	}

	m.commandLatency, err = meter.Float64Histogram(
		"humio_connector_command_duration_seconds",
		metric.WithDescription("Command execution latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.requestsTotal, err = meter.Int64Counter(
		"humio_connector_http_requests_total",
		metric.WithDescription("Total number of requests sent to Humio"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.requestLatency, err = meter.Float64Histogram(
		"humio_connector_http_request_duration_seconds",
		metric.WithDescription("Humio request latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.incidentsTotal, err = meter.Int64Counter(
		"humio_connector_incidents_total",
		metric.WithDescription("Total number of incidents fetched"),
		metric.WithUnit("{incident}"),
	)
	if err != nil {
		return nil, err
	}

	m.lastRun, err = meter.Int64Gauge(
		"humio_connector_last_run_timestamp_seconds",
		metric.WithDescription("Unix time of the last successful incident fetch"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordCommand records one command invocation.
func (m *Metrics) RecordCommand(ctx context.Context, command string, success bool, duration time.Duration) {
	if m == nil {
		return
	}

	status := "success"
	if !success {
		status = "error"
	}

	attrs := metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("status", status),
	)
	m.commandsTotal.Add(ctx, 1, attrs)
	m.commandLatency.Record(ctx, duration.Seconds(), attrs)
}

// RecordRequest records one HTTP exchange. statusCode 0 means a transport failure.
func (m *Metrics) RecordRequest(ctx context.Context, method string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}

	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}

	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("code", code),
	)
	m.requestsTotal.Add(ctx, 1, attrs)
	m.requestLatency.Record(ctx, duration.Seconds(), attrs)
}

// RecordIncidents records a successful fetch and the number of incidents it produced.
func (m *Metrics) RecordIncidents(ctx context.Context, repository string, count int, at time.Time) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("repository", repository))
	m.incidentsTotal.Add(ctx, int64(count), attrs)
	m.lastRun.Record(ctx, at.Unix(), attrs)
}
