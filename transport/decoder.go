package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	proto "github.com/ystepanoff/pulserx/protocol"
)

// DecoderConfig is supplied at decoder start.
type DecoderConfig struct {
	Timing  proto.Timing
	Capture CaptureConfig
	// PollInterval bounds each wait on the capture queue so the enable flag
	// and the inactivity timeout are rechecked. Zero means half the
	// inactivity timeout.
	PollInterval time.Duration
}

func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		Timing:  proto.DefaultTiming(),
		Capture: DefaultCaptureConfig(),
	}
}

// Decoder owns the capture driver and the classify/assemble/publish pipeline.
type Decoder struct {
	driver  CaptureDriver
	cfg     DecoderConfig
	out     *LastPacket
	metrics *Metrics

	enabled atomic.Bool
	resumes atomic.Uint64 // bumped on every disabled -> enabled transition

	// owned by the Run goroutine
	asm       *proto.Assembler
	active    bool
	seen      uint64
	session   uuid.UUID
	lastPulse time.Time
	dropped   uint64
}

func NewDecoderWithDriver(d CaptureDriver, cfg DecoderConfig, out *LastPacket, m *Metrics) *Decoder {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = cfg.Timing.InactivityTimeout / 2
	}
	if cfg.PollInterval < time.Millisecond {
		cfg.PollInterval = time.Millisecond
	}
	return &Decoder{
		driver:  d,
		cfg:     cfg,
		out:     out,
		metrics: m,
		asm:     proto.NewAssembler(cfg.Timing),
	}
}

// SetEnabled toggles whether received pulses are decoded. It takes effect at
// the next pulse the task receives.
func (dec *Decoder) SetEnabled(on bool) {
	if on {
		if dec.enabled.CompareAndSwap(false, true) {
			dec.resumes.Add(1)
		}
		return
	}
	dec.enabled.Store(false)
}

func (dec *Decoder) Enabled() bool { return dec.enabled.Load() }

// Run is the decoder task loop. It opens the capture driver, then pulls
// pulses until ctx is cancelled. A driver setup failure is returned
// immediately; the driver is closed only when Run returns.
func (dec *Decoder) Run(ctx context.Context) error {
	if err := dec.cfg.Timing.Validate(); err != nil {
		return err
	}
	if err := dec.driver.Open(dec.cfg.Capture); err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	defer dec.driver.Close()

	dec.asm.Reset()
	dec.active = false
	dec.seen = dec.resumes.Load()
	dec.session = uuid.New()
	dec.lastPulse = time.Now()
	log.Printf("[Decoder] Capture open, session %s\r\n", dec.session)
	dec.syncEnabled()

	for {
		if ctx.Err() != nil {
			return nil
		}

		p, err := dec.driver.Receive(dec.cfg.PollInterval)
		dec.syncEnabled()

		switch {
		case err == nil:
		case errors.Is(err, proto.ErrTimeout):
			if dec.active {
				dec.checkInactivity(ctx)
			}
			continue
		case errors.Is(err, proto.ErrClosed):
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("capture: %w", err)
		default:
			log.Printf("[Decoder] Receive failed: %v\r\n", err)
			continue
		}

		if !dec.active {
			dec.metrics.pulse(false)
			continue
		}
		dec.metrics.pulse(true)
		dec.handle(ctx, p)
	}
}

// syncEnabled applies pause/resume requests made since the last iteration.
// Any resume starts a fresh capture session from StateIdle, even when the
// pause was too short for the loop to observe.
func (dec *Decoder) syncEnabled() {
	on := dec.enabled.Load()
	resumes := dec.resumes.Load()

	if resumes != dec.seen {
		dec.seen = resumes
		if on {
			dec.asm.Reset()
			dec.session = uuid.New()
			dec.lastPulse = time.Now()
			log.Printf("[Decoder] Resumed, session %s\r\n", dec.session)
		}
	}
	if on != dec.active {
		dec.active = on
		dec.metrics.setEnabled(on)
		if !on {
			log.Printf("[Decoder] Paused\r\n")
		}
	}
}

func (dec *Decoder) handle(ctx context.Context, p proto.Pulse) {
	if res := dec.cfg.Capture.Resolution; res > 0 {
		p.Duration = p.Duration.Round(res)
	}
	dec.lastPulse = time.Now()

	sym := dec.cfg.Timing.Classify(p)
	dec.metrics.symbol(sym)
	frame := dec.asm.Feed(sym)
	dec.syncDropped()
	if frame != nil {
		dec.publish(ctx, frame)
	}
}

func (dec *Decoder) checkInactivity(ctx context.Context) {
	if dec.asm.State() == proto.StateIdle {
		return
	}
	if time.Since(dec.lastPulse) < dec.cfg.Timing.InactivityTimeout {
		return
	}
	frame := dec.asm.Timeout()
	dec.syncDropped()
	if frame != nil {
		dec.publish(ctx, frame)
	}
}

func (dec *Decoder) syncDropped() {
	if d := dec.asm.Dropped(); d != dec.dropped {
		dec.metrics.drop(d - dec.dropped)
		dec.dropped = d
	}
}

func (dec *Decoder) publish(ctx context.Context, frame *proto.Frame) {
	if err := dec.out.Publish(ctx, frame, dec.session); err != nil {
		log.Printf("[Decoder] Publish of %d bytes abandoned: %v\r\n", len(frame.Data), err)
		return
	}
	dec.metrics.frame(frame.Reason)
	log.Printf("[Decoder] Frame %d bytes (%s, noise=%d)\r\n", len(frame.Data), frame.Reason, frame.Noise)
}
