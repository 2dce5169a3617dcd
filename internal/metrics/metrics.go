// Package metrics collects gateway counters. The registry always
// collects; exposing it over HTTP is optional and off by default.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all gateway metrics.
type Registry struct {
	reg *prometheus.Registry

	// DatagramsReceived counts datagrams read from the UDP socket.
	DatagramsReceived prometheus.Counter

	// FramesForwarded counts frames written to the TCP sink.
	FramesForwarded prometheus.Counter

	// BytesForwarded counts payload bytes written to the TCP sink,
	// excluding the 4-byte frame headers.
	BytesForwarded prometheus.Counter

	// DatagramsDropped counts datagrams discarded because no live
	// connection existed at forwarding time.
	DatagramsDropped prometheus.Counter

	// Connects counts successful sink connections, including the
	// first one.
	Connects prometheus.Counter

	// ConnectionState is 1 while connected to the sink, 0 otherwise.
	ConnectionState prometheus.Gauge
}

// NewRegistry creates a registry with all gateway metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		DatagramsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "bcastgw_datagrams_received_total",
			Help: "UDP datagrams received.",
		}),
		FramesForwarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "bcastgw_frames_forwarded_total",
			Help: "Frames written to the TCP sink.",
		}),
		BytesForwarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "bcastgw_bytes_forwarded_total",
			Help: "Payload bytes written to the TCP sink.",
		}),
		DatagramsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "bcastgw_datagrams_dropped_total",
			Help: "Datagrams dropped while no sink connection existed.",
		}),
		Connects: factory.NewCounter(prometheus.CounterOpts{
			Name: "bcastgw_sink_connects_total",
			Help: "Successful connections to the TCP sink.",
		}),
		ConnectionState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bcastgw_sink_connected",
			Help: "1 while connected to the TCP sink, 0 otherwise.",
		}),
	}
}

// Handler returns an HTTP handler serving the registry in Prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
