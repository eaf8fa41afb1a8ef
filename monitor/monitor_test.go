package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ystepanoff/pulserx/protocol"
	"github.com/ystepanoff/pulserx/transport"
)

type fakeSource struct {
	mutex   sync.Mutex
	pending []transport.Packet
	reads   int
}

func (s *fakeSource) push(p transport.Packet) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.pending = append(s.pending, p)
}

func (s *fakeSource) TryReadLatest(time.Duration) (transport.Packet, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.reads++
	if len(s.pending) == 0 {
		return transport.Packet{}, false
	}
	p := s.pending[0]
	s.pending = s.pending[1:]
	return p, true
}

type recordingDisplay struct {
	mutex sync.Mutex
	texts []string
}

func (d *recordingDisplay) SetText(text string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.texts = append(d.texts, text)
}

func (d *recordingDisplay) snapshot() []string {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return append([]string(nil), d.texts...)
}

func TestFormatPacket(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "Single byte",
			data: []byte{0x53},
			want: "Last packet: 1 bytes\n53 ",
		},
		{
			name: "Several bytes",
			data: []byte{0x00, 0xAB, 0x0F},
			want: "Last packet: 3 bytes\n00 AB 0F ",
		},
		{
			name: "Empty",
			data: nil,
			want: "Last packet: 0 bytes\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPacket(tt.data); got != tt.want {
				t.Errorf("FormatPacket() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPoller_Refresh(t *testing.T) {
	src := &fakeSource{}
	disp := &recordingDisplay{}
	p := NewPoller(src, disp, time.Millisecond, 0)

	if p.Refresh() {
		t.Error("Refresh() = true with nothing published")
	}
	if got := disp.snapshot(); len(got) != 0 {
		t.Errorf("display touched without a packet: %q", got)
	}

	src.push(transport.Packet{Data: []byte{0xDE, 0xAD}, Seq: 1})
	if !p.Refresh() {
		t.Fatal("Refresh() = false with a packet pending")
	}
	got := disp.snapshot()
	if len(got) != 1 || got[0] != "Last packet: 2 bytes\nDE AD " {
		t.Errorf("display = %q", got)
	}
}

func TestPoller_Run(t *testing.T) {
	src := &fakeSource{}
	disp := &recordingDisplay{}
	p := NewPoller(src, disp, 2*time.Millisecond, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	src.push(transport.Packet{Data: []byte{0x01}, Seq: 1})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(disp.snapshot()) < 2 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}

	got := disp.snapshot()
	if len(got) < 2 {
		t.Fatalf("display = %q, want waiting text then packet", got)
	}
	if got[0] != WaitingText {
		t.Errorf("first text = %q, want %q", got[0], WaitingText)
	}
	if got[1] != "Last packet: 1 bytes\n01 " {
		t.Errorf("second text = %q", got[1])
	}
}

func TestPoller_WithLastPacket(t *testing.T) {
	lp := transport.NewLastPacket()
	disp := &recordingDisplay{}
	p := NewPoller(lp, disp, time.Millisecond, 5*time.Millisecond)

	if p.Refresh() {
		t.Error("Refresh() = true on an empty record")
	}

	var texts []string
	p.disp = DisplayFunc(func(s string) { texts = append(texts, s) })
	if err := lp.Publish(context.Background(), &protocol.Frame{Data: []byte{0x11, 0x22}}, uuid.Nil); err != nil {
		t.Fatal(err)
	}
	if !p.Refresh() {
		t.Fatal("Refresh() = false after Publish")
	}
	if p.Refresh() {
		t.Error("second Refresh() = true, updated flag not cleared")
	}
	if len(texts) != 1 || texts[0] != "Last packet: 2 bytes\n11 22 " {
		t.Errorf("texts = %q", texts)
	}
}
