// Package monitor polls the last-packet record and renders it as text.
package monitor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ystepanoff/pulserx/transport"
)

// WaitingText is shown until the first packet arrives.
const WaitingText = "Waiting for packet..."

const DefaultInterval = 200 * time.Millisecond

// Source is the consumer side of the last-packet record.
type Source interface {
	TryReadLatest(timeout time.Duration) (transport.Packet, bool)
}

// Display shows one block of text, replacing whatever was there.
type Display interface {
	SetText(text string)
}

// DisplayFunc adapts a function to the Display interface.
type DisplayFunc func(text string)

func (f DisplayFunc) SetText(text string) { f(text) }

// Poller refreshes a Display from a Source at a fixed rate.
type Poller struct {
	src         Source
	disp        Display
	interval    time.Duration
	lockTimeout time.Duration

	shown uint32 // Seq of the packet on display
}

// NewPoller creates a poller. A non-positive interval means DefaultInterval.
func NewPoller(src Source, disp Display, interval, lockTimeout time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		src:         src,
		disp:        disp,
		interval:    interval,
		lockTimeout: lockTimeout,
	}
}

// Run shows WaitingText, then refreshes the display every interval until
// ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	p.disp.SetText(WaitingText)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Refresh()
		}
	}
}

// Refresh performs one poll. The display is only touched when a new packet
// was read; a busy record or no update leaves it as is.
func (p *Poller) Refresh() bool {
	pkt, ok := p.src.TryReadLatest(p.lockTimeout)
	if !ok {
		return false
	}
	if p.shown != 0 && pkt.Seq > p.shown+1 {
		log.Printf("[Monitor] Skipped %d packets\r\n", pkt.Seq-p.shown-1)
	}
	p.shown = pkt.Seq
	p.disp.SetText(FormatPacket(pkt.Data))
	return true
}

// FormatPacket renders data as "Last packet: N bytes" followed by a line of
// space separated hex bytes.
func FormatPacket(data []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Last packet: %d bytes\n", len(data))
	for _, v := range data {
		fmt.Fprintf(&b, "%02X ", v)
	}
	return b.String()
}
