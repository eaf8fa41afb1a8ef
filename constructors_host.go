//go:build !gpio

// This file is built only for hosts without radio hardware (testing and replay).
package pulserx

import (
	"github.com/ystepanoff/pulserx/driver/stub"
	"github.com/ystepanoff/pulserx/transport"
)

// NewCaptureDriver returns an in-memory driver; pin is ignored. The driver
// also implements transport.PulseSink for replaying captures.
func NewCaptureDriver(pin string, depth int) (transport.CaptureDriver, error) {
	return stub.New(depth), nil
}
