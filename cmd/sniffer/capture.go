package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ystepanoff/pulserx/config"
	"github.com/ystepanoff/pulserx/protocol"
	"github.com/ystepanoff/pulserx/transport"
)

// Capture is the on-disk format used by -replay and -calibrate.
//
//	interval: 100ms
//	frames: ["53", "DEADBEEF"]
//	widths: [400us, 800us, 1.6ms]
type Capture struct {
	Interval time.Duration   `yaml:"interval"` // pause between replayed frames
	Frames   []string        `yaml:"frames"`   // payloads as hex
	Widths   []time.Duration `yaml:"widths"`   // raw pulse widths for calibration
}

func loadCapture(filename string) (*Capture, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture file: %w", err)
	}
	return parseCapture(data)
}

func parseCapture(data []byte) (*Capture, error) {
	c := &Capture{Interval: 100 * time.Millisecond}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse capture file: %w", err)
	}
	return c, nil
}

// payloads decodes the hex frames.
func (c *Capture) payloads() ([][]byte, error) {
	out := make([][]byte, 0, len(c.Frames))
	for i, f := range c.Frames {
		b, err := hex.DecodeString(f)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// replay encodes every frame of c with timing and injects it into driver.
// Only drivers that accept injected pulses can replay.
func replay(ctx context.Context, driver transport.CaptureDriver, timing protocol.Timing, c *Capture) error {
	sink, ok := driver.(transport.PulseSink)
	if !ok {
		return fmt.Errorf("capture driver %T does not accept injected pulses", driver)
	}
	payloads, err := c.payloads()
	if err != nil {
		return err
	}

	tx := transport.NewTransmitterWithSink(timing, sink)
	for _, p := range payloads {
		if err := tx.SendFrame(p); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.Interval):
		}
	}
	return nil
}

// runCalibrate estimates a profile from the widths in filename, starting
// from the configured preset, and writes it as YAML ready to paste under
// decoder.presets.
func runCalibrate(filename string, cfg *config.Config, w io.Writer) error {
	c, err := loadCapture(filename)
	if err != nil {
		return err
	}
	base, err := cfg.Timing()
	if err != nil {
		return err
	}
	t, err := protocol.EstimateTiming(c.Widths, base)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(map[string]protocol.Timing{"calibrated": t})
}
