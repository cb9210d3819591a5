package ftp

import (
	"log/slog"
	"net"

	"github.com/wrenfield/ftpclient/internal/ratelimit"
)

// Option is a functional option applied to a Client during Connect, in the
// teacher's own style.
type Option func(*Client) error

// WithLogger enables structured debug logging of every command and reply.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithDialer sets a custom net.Dialer, e.g. to bind a source address.
func WithDialer(dialer *net.Dialer) Option {
	return func(c *Client) error {
		c.dialer = dialer
		return nil
	}
}

// WithBandwidthLimit caps data-channel throughput to bytesPerSecond. Zero or
// negative disables the limit (the default).
func WithBandwidthLimit(bytesPerSecond int64) Option {
	return func(c *Client) error {
		c.limiter = ratelimit.New(bytesPerSecond)
		return nil
	}
}

// WithMetrics installs reg (built and registered by NewMetrics) and enables
// collection of its counters. Entirely optional; a Client with no metrics
// option installed pays no Prometheus cost at all.
func WithMetrics(reg *Metrics) Option {
	return func(c *Client) error {
		c.metrics = reg
		return nil
	}
}
