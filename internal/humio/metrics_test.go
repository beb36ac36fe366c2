package humio

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/tombee/humio-connector/internal/state"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordsCommandsAndRequests(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(provider)
	require.NoError(t, err)

	f := newFakeHumio(t, http.StatusOK, `[{"@id":"e1","@timestamp":1700000000000}]`)
	client, err := NewClient(ClientConfig{BaseURL: f.URL, APIKey: "k"}, WithClientMetrics(m))
	require.NoError(t, err)
	integ := NewIntegration(client, WithMetrics(m), WithIncidents(incidentConfig(), state.NewMemoryStore()))

	_, err = integ.Execute(context.Background(), CmdFetchIncidents, nil)
	require.NoError(t, err)
	_, err = integ.Execute(context.Background(), CmdTestModule, nil)
	require.NoError(t, err)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, metrics["humio_connector_commands_total"]))
	assert.Equal(t, int64(2), sumOf(t, metrics["humio_connector_http_requests_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["humio_connector_incidents_total"]))
	assert.Contains(t, metrics, "humio_connector_command_duration_seconds")
	assert.Contains(t, metrics, "humio_connector_last_run_timestamp_seconds")
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordCommand(context.Background(), CmdQuery, true, 0)
	m.RecordRequest(context.Background(), http.MethodGet, 200, 0)
	m.RecordIncidents(context.Background(), "repo", 1, fixedNow)
}
