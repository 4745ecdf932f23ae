package authcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricAccessIssued)
	m.Add(MetricCleanupDeleted, 5)

	require.Equal(t, uint64(1), m.Value(MetricAccessIssued))
	require.Equal(t, uint64(5), m.Value(MetricCleanupDeleted))

	snap := m.Snapshot()
	require.Equal(t, uint64(1), snap.Counters[MetricAccessIssued])
	require.Equal(t, uint64(0), snap.Counters[MetricLogout])
}

func TestMetricsDisabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricAccessIssued)
	require.Zero(t, m.Value(MetricAccessIssued))
	require.Empty(t, m.Snapshot().Counters)
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.Inc(MetricAccessIssued)
		m.Snapshot()
	})
	require.Zero(t, m.Value(MetricAccessIssued))
}
