package transport

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	proto "github.com/ystepanoff/pulserx/protocol"
)

// Packet is a snapshot of the last received frame.
type Packet struct {
	Data     []byte
	Seq      uint32
	Session  uuid.UUID // capture session the frame was decoded in
	Reason   proto.EndReason
	Received time.Time
}

// LastPacket is the record shared between the decoder task (producer) and
// the UI poller (consumer). Access is serialised by a one-slot semaphore so
// the consumer can give up after a bounded wait. The consumer owns clearing
// the updated flag.
type LastPacket struct {
	lock *semaphore.Weighted

	data     [proto.MaxFrameBytes]byte
	length   int
	updated  bool
	seq      uint32
	session  uuid.UUID
	reason   proto.EndReason
	received time.Time
}

func NewLastPacket() *LastPacket {
	return &LastPacket{lock: semaphore.NewWeighted(1)}
}

// Publish replaces the record with frame and raises the updated flag.
// Empty frames are skipped. It returns ctx.Err() if the lock could not be
// taken before ctx was done.
func (lp *LastPacket) Publish(ctx context.Context, frame *proto.Frame, session uuid.UUID) error {
	if frame == nil || len(frame.Data) == 0 {
		return nil
	}
	if err := lp.lock.Acquire(ctx, 1); err != nil {
		return err
	}
	defer lp.lock.Release(1)

	lp.length = copy(lp.data[:], frame.Data)
	lp.seq++
	lp.session = session
	lp.reason = frame.Reason
	lp.received = time.Now()
	lp.updated = true
	return nil
}

// TryReadLatest returns a copy of the record if it changed since the last
// read, clearing the updated flag. It waits at most timeout for the lock and
// reports false if the lock was busy or nothing new was published.
func (lp *LastPacket) TryReadLatest(timeout time.Duration) (Packet, bool) {
	if timeout <= 0 {
		if !lp.lock.TryAcquire(1) {
			return Packet{}, false
		}
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		err := lp.lock.Acquire(ctx, 1)
		cancel()
		if err != nil {
			return Packet{}, false
		}
	}
	defer lp.lock.Release(1)

	if !lp.updated {
		return Packet{}, false
	}
	lp.updated = false

	p := Packet{
		Data:     make([]byte, lp.length),
		Seq:      lp.seq,
		Session:  lp.session,
		Reason:   lp.reason,
		Received: lp.received,
	}
	copy(p.Data, lp.data[:lp.length])
	return p, true
}
