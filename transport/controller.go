package transport

import (
	"context"
	"log"
	"runtime"
	"sync"
)

// Controller starts the decoder task lazily and gates it with the enable
// flag. The task persists once started; disabling only pauses it.
type Controller struct {
	decoder *Decoder

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	done    chan struct{}
	err     error
}

func NewController(dec *Decoder) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		decoder: dec,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetEnabled starts the decoder task on the first enable, otherwise it
// toggles the pause flag. Enabling after the task died on a setup error
// starts a new task. It is idempotent.
func (c *Controller) SetEnabled(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.decoder.SetEnabled(on)
	if !on || c.running || c.ctx.Err() != nil {
		return
	}

	c.running = true
	c.err = nil
	c.done = make(chan struct{})
	go c.run(c.done)
	log.Printf("[Controller] Decoder task started\r\n")
}

func (c *Controller) run(done chan struct{}) {
	// keep the decode loop on one OS thread for steady timing
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	err := c.decoder.Run(c.ctx)

	c.mu.Lock()
	c.running = false
	c.err = err
	c.mu.Unlock()
	if err != nil {
		log.Printf("[Controller] Decoder task exited: %v\r\n", err)
	}
	close(done)
}

// Running reports whether the decoder task is alive.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Enabled reports the current state of the enable flag.
func (c *Controller) Enabled() bool { return c.decoder.Enabled() }

// Err returns the error the last decoder task exited with.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close shuts the decoder task down for good and releases the capture driver.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.cancel()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
	return nil
}
