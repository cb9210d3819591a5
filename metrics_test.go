package ftp

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestMetrics_ObserveCommand(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.observeCommand()
	m.observeCommand()

	assert.Equal(t, float64(2), counterValue(t, m.CommandsSent))
}

func TestMetrics_ObserveReply_ClassesByCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.observeReply(230)
	m.observeReply(550)
	m.observeReply(150)

	assert.Equal(t, float64(1), counterValue(t, m.RepliesReceived.WithLabelValues("2xx")))
	assert.Equal(t, float64(1), counterValue(t, m.RepliesReceived.WithLabelValues("5xx")))
	assert.Equal(t, float64(1), counterValue(t, m.RepliesReceived.WithLabelValues("1xx")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observeCommand()
		m.observeReply(200)
		m.observeBytes("upload", 10)
		m.observeDataChannelOpen()
	})
}
