package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus collectors, each bound to its own
// registry. Unlike the teacher's hand-rolled map-of-counters, collection
// and exposition are handled by the prometheus client library; New() takes
// its own registry (rather than reaching for the global one via promauto)
// so a test process can build as many independent Metrics as it needs.
type Metrics struct {
	registry *prometheus.Registry

	FramesForwarded *prometheus.CounterVec
	FramesRewritten *prometheus.CounterVec
	FramesDropped   *prometheus.CounterVec
	FramingErrors   prometheus.Counter
	VMConnected     prometheus.Gauge
	PX4Connected    prometheus.Gauge
	SimcouplerBytes *prometheus.CounterVec
}

// Global is the process-wide metrics singleton, mirroring the teacher's
// package-level Global pointer pattern.
var Global = New()

// New builds a fresh, independently-registered set of collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		FramesForwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_frames_forwarded_total",
			Help: "MAVLink frames forwarded unchanged, by message id.",
		}, []string{"msgid"}),
		FramesRewritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_frames_rewritten_total",
			Help: "MAVLink frames forwarded after geofence rewrite, by message id.",
		}, []string{"msgid"}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_frames_dropped_total",
			Help: "MAVLink frames dropped by policy, by message id.",
		}, []string{"msgid"}),
		FramingErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_framing_errors_total",
			Help: "MAVLink framing errors: rejected frames and v2 start bytes.",
		}),
		VMConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gateway_vm_endpoint_connected",
			Help: "1 if the VM-side server endpoint has an accepted client, else 0.",
		}),
		PX4Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gateway_px4_endpoint_connected",
			Help: "1 if the PX4-side client endpoint is connected, else 0.",
		}),
		SimcouplerBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_simcoupler_bytes_total",
			Help: "MAVLink frames relayed by the unfiltered simulator coupler (one count per frame), by direction.",
		}, []string{"direction"}),
	}
	reg.MustRegister(
		m.FramesForwarded, m.FramesRewritten, m.FramesDropped,
		m.FramingErrors, m.VMConnected, m.PX4Connected, m.SimcouplerBytes,
	)
	return m
}

// Handler returns the HTTP handler for this Metrics' /metrics exposition
// endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
