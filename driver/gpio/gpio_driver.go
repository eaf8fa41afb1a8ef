// Package gpio captures pulses by timestamping edges on a GPIO pin wired to
// the radio's demodulated data output (GDO0 on a CC1101 in asynchronous
// serial mode).
package gpio

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"

	proto "github.com/ystepanoff/pulserx/protocol"
	"github.com/ystepanoff/pulserx/transport"
)

// edgePoll bounds each edge wait so Close is noticed.
const edgePoll = 50 * time.Millisecond

// Driver provides a CaptureDriver backed by periph.io edge detection.
// A high level is reported as a mark. Edges are stamped with the host clock
// when WaitForEdge returns; CaptureConfig.Resolution only applies when the
// decoder rounds the durations.
type Driver struct {
	pin gpio.PinIn

	mu     sync.Mutex
	pulses chan proto.Pulse
	stop   chan struct{}
	done   chan struct{}

	overruns atomic.Uint64
}

// New initialises the host drivers and looks the pin up by name.
func New(name string) (*Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio: host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio: pin %q not found", name)
	}
	return NewWithPin(p), nil
}

func NewWithPin(p gpio.PinIn) *Driver {
	return &Driver{pin: p}
}

var _ transport.CaptureDriver = (*Driver)(nil)

func (d *Driver) Open(cfg transport.CaptureConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stop != nil {
		return nil
	}
	if err := d.pin.In(gpio.PullNoChange, gpio.BothEdges); err != nil {
		return fmt.Errorf("gpio: configure %s: %w", d.pin, err)
	}

	depth := cfg.Depth
	if depth <= 0 {
		depth = proto.DefaultQueueDepth
	}
	d.pulses = make(chan proto.Pulse, depth)
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	go d.capture(d.pulses, d.stop, d.done)
	return nil
}

func (d *Driver) capture(out chan<- proto.Pulse, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	level := d.pin.Read()
	last := time.Now()
	for {
		select {
		case <-stop:
			return
		default:
		}
		if !d.pin.WaitForEdge(edgePoll) {
			continue
		}

		now := time.Now()
		p := proto.Pulse{Duration: now.Sub(last), Level: levelOf(level)}
		last = now
		level = d.pin.Read()

		select {
		case out <- p:
		default:
			d.overruns.Add(1)
		}
	}
}

func levelOf(l gpio.Level) proto.Level {
	if l == gpio.High {
		return proto.Mark
	}
	return proto.Space
}

func (d *Driver) Receive(timeout time.Duration) (proto.Pulse, error) {
	d.mu.Lock()
	pulses, stop := d.pulses, d.stop
	d.mu.Unlock()
	if stop == nil {
		return proto.Pulse{}, proto.ErrClosed
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case p := <-pulses:
		return p, nil
	case <-stop:
		return proto.Pulse{}, proto.ErrClosed
	case <-timer.C:
		return proto.Pulse{}, proto.ErrTimeout
	}
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stop == nil {
		return nil
	}
	close(d.stop)
	<-d.done
	d.stop = nil
	d.pulses = nil

	if n := d.overruns.Load(); n > 0 {
		log.Printf("[GPIO] %s dropped %d pulses on a full queue\r\n", d.pin, n)
	}
	return d.pin.Halt()
}

// Overruns returns the number of pulses dropped because the queue was full.
func (d *Driver) Overruns() uint64 { return d.overruns.Load() }
