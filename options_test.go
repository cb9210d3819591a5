package ftp

import (
	"log/slog"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLogger(t *testing.T) {
	c := &Client{}
	logger := slog.Default()
	require.NoError(t, WithLogger(logger)(c))
	assert.Equal(t, logger, c.logger)
}

func TestWithDialer(t *testing.T) {
	c := &Client{}
	dialer := &net.Dialer{}
	require.NoError(t, WithDialer(dialer)(c))
	assert.Equal(t, dialer, c.dialer)
}

func TestWithBandwidthLimit(t *testing.T) {
	c := &Client{}
	require.NoError(t, WithBandwidthLimit(1024)(c))
	assert.NotNil(t, c.limiter)
}

func TestWithBandwidthLimit_NonPositiveDisables(t *testing.T) {
	c := &Client{}
	require.NoError(t, WithBandwidthLimit(0)(c))
	assert.Nil(t, c.limiter)
}

func TestWithMetrics(t *testing.T) {
	c := &Client{}
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NoError(t, WithMetrics(m)(c))
	assert.Same(t, m, c.metrics)
}
