package stub

import (
	"sync"
	"time"

	proto "github.com/ystepanoff/pulserx/protocol"
	"github.com/ystepanoff/pulserx/transport"
)

// Driver implements a capture driver for host-side testing and replay.
// Injected pulses queue up until the decoder receives them; injection
// blocks while the queue is full, as a hardware queue would back-pressure.
type Driver struct {
	mu     sync.Mutex
	rx     chan proto.Pulse
	closed chan struct{}
	open   bool
}

func New(depth int) *Driver {
	if depth <= 0 {
		depth = proto.DefaultQueueDepth
	}
	return &Driver{
		rx:     make(chan proto.Pulse, depth),
		closed: make(chan struct{}),
	}
}

var (
	_ transport.CaptureDriver = (*Driver)(nil)
	_ transport.PulseSink     = (*Driver)(nil)
)

func (d *Driver) Open(cfg transport.CaptureConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	select {
	case <-d.closed:
		return proto.ErrClosed
	default:
	}
	d.open = true
	return nil
}

func (d *Driver) Receive(timeout time.Duration) (proto.Pulse, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case p := <-d.rx:
		return p, nil
	case <-d.closed:
		return proto.Pulse{}, proto.ErrClosed
	case <-timer.C:
		return proto.Pulse{}, proto.ErrTimeout
	}
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return nil
	}
	d.open = false
	close(d.closed)
	return nil
}

// InjectPulses queues pulses as if they had been captured. It returns early
// if the driver is closed.
func (d *Driver) InjectPulses(pulses []proto.Pulse) {
	for _, p := range pulses {
		select {
		case d.rx <- p:
		case <-d.closed:
			return
		}
	}
}

// Pending returns the number of queued pulses not yet received.
func (d *Driver) Pending() int { return len(d.rx) }
