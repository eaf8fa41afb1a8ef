package transport

import (
	"time"

	proto "github.com/ystepanoff/pulserx/protocol"
)

// CaptureConfig describes how the capture peripheral is opened.
type CaptureConfig struct {
	Resolution time.Duration // tick length of the edge timestamps
	Depth      int           // number of pulses the receive queue can hold
}

func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		Resolution: proto.DefaultResolution,
		Depth:      proto.DefaultQueueDepth,
	}
}

// CaptureDriver is the interface that wraps an edge-timestamping capture source.
//
// Receive blocks for at most timeout and returns proto.ErrTimeout when no
// pulse arrived, or proto.ErrClosed once the driver has been closed.
type CaptureDriver interface {
	Open(cfg CaptureConfig) error
	Receive(timeout time.Duration) (proto.Pulse, error)
	Close() error
}

// PulseSink accepts pulses for playback into a capture queue.
type PulseSink interface {
	InjectPulses(pulses []proto.Pulse)
}
