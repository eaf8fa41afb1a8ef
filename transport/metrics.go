package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	proto "github.com/ystepanoff/pulserx/protocol"
)

// Metrics holds the decoder's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	pulses  *prometheus.CounterVec // 'state' label: decoded, discarded
	symbols *prometheus.CounterVec // 'symbol' label
	frames  *prometheus.CounterVec // 'reason' label
	dropped prometheus.Counter
	enabled prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		pulses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pulserx_pulses_total",
			Help: "Pulses taken from the capture queue",
		}, []string{"state"}),
		symbols: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pulserx_symbols_total",
			Help: "Classified symbols by kind",
		}, []string{"symbol"}),
		frames: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pulserx_frames_total",
			Help: "Frames published by end reason",
		}, []string{"reason"}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "pulserx_frames_dropped_total",
			Help: "Frames abandoned on malformed sync or excess noise",
		}),
		enabled: f.NewGauge(prometheus.GaugeOpts{
			Name: "pulserx_decoder_enabled",
			Help: "1 while the decoder feeds pulses to the classifier",
		}),
	}
}

func (m *Metrics) pulse(decoded bool) {
	if m == nil {
		return
	}
	if decoded {
		m.pulses.WithLabelValues("decoded").Inc()
	} else {
		m.pulses.WithLabelValues("discarded").Inc()
	}
}

func (m *Metrics) symbol(s proto.Symbol) {
	if m == nil {
		return
	}
	m.symbols.WithLabelValues(s.String()).Inc()
}

func (m *Metrics) frame(r proto.EndReason) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(r.String()).Inc()
}

func (m *Metrics) drop(n uint64) {
	if m == nil || n == 0 {
		return
	}
	m.dropped.Add(float64(n))
}

func (m *Metrics) setEnabled(on bool) {
	if m == nil {
		return
	}
	if on {
		m.enabled.Set(1)
	} else {
		m.enabled.Set(0)
	}
}
