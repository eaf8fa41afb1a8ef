package transport

import (
	"log"

	proto "github.com/ystepanoff/pulserx/protocol"
)

// Transmitter plays frames into a pulse sink the way a remote using the
// same timing profile would send them. It drives the stub driver for replay
// and tests.
type Transmitter struct {
	timing proto.Timing
	sink   PulseSink
	seq    uint32
}

func NewTransmitterWithSink(t proto.Timing, s PulseSink) *Transmitter {
	return &Transmitter{timing: t, sink: s}
}

// SendFrame encodes payload and hands the pulse train to the sink.
func (t *Transmitter) SendFrame(payload []byte) error {
	if len(payload) == 0 || len(payload) > proto.MaxFrameBytes {
		return proto.ErrInvalidPayload
	}
	t.sink.InjectPulses(t.timing.Encode(payload))
	t.seq++
	log.Printf("[Transmitter] Frame %d sent (%d bytes)\r\n", t.seq, len(payload))
	return nil
}

// Sent returns the number of frames sent so far.
func (t *Transmitter) Sent() uint32 { return t.seq }
