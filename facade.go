// Package pulserx decodes sub-GHz OOK/FSK pulse trains into packets and
// exposes the latest one to a polling UI.
package pulserx

import (
	"github.com/ystepanoff/pulserx/protocol"
	"github.com/ystepanoff/pulserx/transport"
)

// The capture driver is chosen by build tag:
// - constructors_gpio.go - for boards with the radio's data pin on a GPIO (//go:build gpio)
// - constructors_host.go - for development/testing (//go:build !gpio)

// Re-export types for convenience
type (
	Pulse         = protocol.Pulse
	Timing        = protocol.Timing
	Frame         = protocol.Frame
	Packet        = transport.Packet
	LastPacket    = transport.LastPacket
	Controller    = transport.Controller
	CaptureDriver = transport.CaptureDriver
	DecoderConfig = transport.DecoderConfig
)

// Error constants exposed in the public API
var (
	ErrInvalidPayload  = protocol.ErrInvalidPayload
	ErrInvalidTiming   = protocol.ErrInvalidTiming
	ErrUnknownPreset   = protocol.ErrUnknownPreset
	ErrNotEnoughPulses = protocol.ErrNotEnoughPulses
	ErrTimeout         = protocol.ErrTimeout
	ErrClosed          = protocol.ErrClosed
)

// Constants exposed in the public API
const (
	MaxFrameBytes = protocol.MaxFrameBytes

	Mark  = protocol.Mark
	Space = protocol.Space
)
