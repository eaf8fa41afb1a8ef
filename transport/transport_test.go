package transport

import (
	"sync"
	"testing"
	"time"

	proto "github.com/ystepanoff/pulserx/protocol"
)

// MockDriver implements the CaptureDriver interface for testing.
// Its queue is unbuffered, so InjectPulses returns only once the decoder
// has taken every pulse.
type MockDriver struct {
	mutex   sync.Mutex
	rx      chan proto.Pulse
	opened  int
	closed  int
	openErr error
	cfg     CaptureConfig
	lost    int
}

func NewMockDriver() *MockDriver {
	return &MockDriver{rx: make(chan proto.Pulse)}
}

func (d *MockDriver) Open(cfg CaptureConfig) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.opened++
	d.cfg = cfg
	return d.openErr
}

func (d *MockDriver) Receive(timeout time.Duration) (proto.Pulse, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case p := <-d.rx:
		return p, nil
	case <-timer.C:
		return proto.Pulse{}, proto.ErrTimeout
	}
}

func (d *MockDriver) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.closed++
	return nil
}

func (d *MockDriver) InjectPulses(pulses []proto.Pulse) {
	for _, p := range pulses {
		select {
		case d.rx <- p:
		case <-time.After(2 * time.Second):
			d.mutex.Lock()
			d.lost++
			d.mutex.Unlock()
		}
	}
}

// Test helper methods
func (d *MockDriver) SetOpenError(err error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.openErr = err
}

func (d *MockDriver) Counts() (opened, closed, lost int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return d.opened, d.closed, d.lost
}

// train builds alternating mark/space pulses starting with a mark.
func train(ds ...time.Duration) []proto.Pulse {
	out := make([]proto.Pulse, len(ds))
	level := proto.Mark
	for i, d := range ds {
		out[i] = proto.Pulse{Duration: d, Level: level}
		level ^= 1
	}
	return out
}

func waitPacket(t *testing.T, lp *LastPacket) Packet {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p, ok := lp.TryReadLatest(10 * time.Millisecond); ok {
			return p
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no packet published")
	return Packet{}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
