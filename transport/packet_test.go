package transport

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	proto "github.com/ystepanoff/pulserx/protocol"
)

func TestLastPacket_PublishAndRead(t *testing.T) {
	lp := NewLastPacket()
	session := uuid.New()

	if _, ok := lp.TryReadLatest(0); ok {
		t.Fatal("empty record reported an update")
	}

	frame := &proto.Frame{Data: []byte{0xCA, 0xFE}, Reason: proto.EndGap}
	if err := lp.Publish(context.Background(), frame, session); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	// the record owns its copy
	frame.Data[0] = 0x00

	p, ok := lp.TryReadLatest(10 * time.Millisecond)
	if !ok {
		t.Fatal("TryReadLatest() reported no update")
	}
	if !bytes.Equal(p.Data, []byte{0xCA, 0xFE}) {
		t.Errorf("Data = % X, want CA FE", p.Data)
	}
	if p.Seq != 1 || p.Session != session || p.Reason != proto.EndGap {
		t.Errorf("metadata = seq %d session %s reason %v", p.Seq, p.Session, p.Reason)
	}
	if p.Received.IsZero() {
		t.Error("Received not stamped")
	}

	if _, ok := lp.TryReadLatest(10 * time.Millisecond); ok {
		t.Error("second read reported an update")
	}
}

func TestLastPacket_SkipsEmptyFrames(t *testing.T) {
	lp := NewLastPacket()

	for _, f := range []*proto.Frame{nil, {Data: nil}, {Data: []byte{}}} {
		if err := lp.Publish(context.Background(), f, uuid.Nil); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}
	if _, ok := lp.TryReadLatest(0); ok {
		t.Error("empty frame raised the updated flag")
	}
}

func TestLastPacket_LockTimeout(t *testing.T) {
	lp := NewLastPacket()
	if err := lp.Publish(context.Background(), &proto.Frame{Data: []byte{1}}, uuid.Nil); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	// hold the lock as a writer would
	if !lp.lock.TryAcquire(1) {
		t.Fatal("lock unexpectedly busy")
	}

	start := time.Now()
	if _, ok := lp.TryReadLatest(20 * time.Millisecond); ok {
		t.Fatal("read succeeded while the lock was held")
	}
	if waited := time.Since(start); waited > time.Second {
		t.Errorf("reader blocked for %v", waited)
	}
	if _, ok := lp.TryReadLatest(0); ok {
		t.Fatal("non-blocking read succeeded while the lock was held")
	}

	// the producer gives up when its context ends
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := lp.Publish(ctx, &proto.Frame{Data: []byte{2}}, uuid.Nil); err == nil {
		t.Error("Publish() succeeded while the lock was held")
	}

	lp.lock.Release(1)

	// the skipped cycle did not lose the update
	p, ok := lp.TryReadLatest(10 * time.Millisecond)
	if !ok || !bytes.Equal(p.Data, []byte{1}) {
		t.Errorf("after release got %v %v, want [1] true", p.Data, ok)
	}
}

func TestLastPacket_Truncates(t *testing.T) {
	lp := NewLastPacket()
	frame := &proto.Frame{Data: bytes.Repeat([]byte{7}, proto.MaxFrameBytes+10)}
	if err := lp.Publish(context.Background(), frame, uuid.Nil); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	p, _ := lp.TryReadLatest(0)
	if len(p.Data) != proto.MaxFrameBytes {
		t.Errorf("length = %d, want %d", len(p.Data), proto.MaxFrameBytes)
	}
}
