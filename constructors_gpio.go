//go:build gpio

// This file is built only for boards with the radio data output on a GPIO.
package pulserx

import (
	"github.com/ystepanoff/pulserx/driver/gpio"
	"github.com/ystepanoff/pulserx/transport"
)

// NewCaptureDriver opens the named GPIO pin for edge capture. The queue
// depth is applied when the decoder opens the driver.
func NewCaptureDriver(pin string, _ int) (transport.CaptureDriver, error) {
	return gpio.New(pin)
}
