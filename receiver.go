package pulserx

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ystepanoff/pulserx/transport"
)

// Receiver bundles the decoder task, its controller and the shared
// last-packet record.
type Receiver struct {
	*transport.Controller

	// Packets is the record the UI polls with TryReadLatest.
	Packets *transport.LastPacket
	Metrics *transport.Metrics
}

// NewReceiver wires a decoder to d. Metrics are registered with reg when it
// is non-nil. Nothing runs until SetEnabled(true).
func NewReceiver(d transport.CaptureDriver, cfg transport.DecoderConfig, reg prometheus.Registerer) *Receiver {
	packets := transport.NewLastPacket()
	metrics := transport.NewMetrics(reg)
	dec := transport.NewDecoderWithDriver(d, cfg, packets, metrics)
	return &Receiver{
		Controller: transport.NewController(dec),
		Packets:    packets,
		Metrics:    metrics,
	}
}
