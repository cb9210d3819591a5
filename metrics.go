package ftp

import "github.com/prometheus/client_golang/prometheus"

// Metrics is an optional set of Prometheus counters tracking
// Command Catalog activity. Nil-safe: every method is a no-op on a nil
// *Metrics, so WithMetrics is the only place callers need to opt in.
type Metrics struct {
	CommandsSent      prometheus.Counter
	RepliesReceived   *prometheus.CounterVec
	BytesTransferred  *prometheus.CounterVec
	DataChannelsOpened prometheus.Counter
}

// NewMetrics builds and registers a Metrics set on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CommandsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ftpclient",
			Name:      "commands_sent_total",
			Help:      "Number of FTP commands sent on the control channel.",
		}),
		RepliesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftpclient",
			Name:      "replies_received_total",
			Help:      "Number of FTP replies received, labeled by reply class.",
		}, []string{"class"}),
		BytesTransferred: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftpclient",
			Name:      "bytes_transferred_total",
			Help:      "Bytes moved over data channels, labeled by direction.",
		}, []string{"direction"}),
		DataChannelsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ftpclient",
			Name:      "data_channels_opened_total",
			Help:      "Number of passive data channels opened.",
		}),
	}

	reg.MustRegister(m.CommandsSent, m.RepliesReceived, m.BytesTransferred, m.DataChannelsOpened)
	return m
}

func (m *Metrics) observeCommand() {
	if m == nil {
		return
	}
	m.CommandsSent.Inc()
}

func (m *Metrics) observeReply(code int) {
	if m == nil {
		return
	}
	class := "unknown"
	switch {
	case code >= 100 && code < 200:
		class = "1xx"
	case code >= 200 && code < 300:
		class = "2xx"
	case code >= 300 && code < 400:
		class = "3xx"
	case code >= 400 && code < 500:
		class = "4xx"
	case code >= 500 && code < 600:
		class = "5xx"
	}
	m.RepliesReceived.WithLabelValues(class).Inc()
}

func (m *Metrics) observeBytes(direction string, n int64) {
	if m == nil {
		return
	}
	m.BytesTransferred.WithLabelValues(direction).Add(float64(n))
}

func (m *Metrics) observeDataChannelOpen() {
	if m == nil {
		return
	}
	m.DataChannelsOpened.Inc()
}
