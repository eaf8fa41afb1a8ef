package protocol

// State is the bit assembler's framing state.
type State uint8

const (
	StateIdle      State = iota // waiting for a sync pulse
	StateSyncing                // counting preamble pulses
	StateReceiving              // accumulating data bits
	StateComplete               // frame closed, pending handoff
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSyncing:
		return "syncing"
	case StateReceiving:
		return "receiving"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// EndReason records how a frame was closed.
type EndReason uint8

const (
	EndGap      EndReason = iota + 1 // silence longer than the gap width
	EndOverflow                      // frame reached MaxFrameBytes
	EndTimeout                       // no pulse within the inactivity timeout
)

func (r EndReason) String() string {
	switch r {
	case EndGap:
		return "gap"
	case EndOverflow:
		return "overflow"
	case EndTimeout:
		return "timeout"
	default:
		return "none"
	}
}

// Frame is one completed packet handed off by the assembler.
type Frame struct {
	Data   []byte
	Reason EndReason
	Noise  int // invalid symbols tolerated inside the frame
}

// Assembler turns classified symbols into frames.
// It is not safe for concurrent use; the decoder task owns it.
type Assembler struct {
	timing Timing

	state    State
	preamble int
	cur      byte
	nbits    int
	buf      [MaxFrameBytes]byte
	n        int

	frameNoise int
	noise      uint64
	dropped    uint64
}

func NewAssembler(t Timing) *Assembler {
	return &Assembler{timing: t}
}

// State returns the current framing state.
func (a *Assembler) State() State { return a.state }

// Noise returns the number of invalid symbols seen since construction.
func (a *Assembler) Noise() uint64 { return a.noise }

// Dropped returns the number of frames abandoned because the sync was
// malformed or the noise budget ran out.
func (a *Assembler) Dropped() uint64 { return a.dropped }

// Reset discards any frame in progress and returns to StateIdle.
func (a *Assembler) Reset() {
	a.state = StateIdle
	a.preamble = 0
	a.cur = 0
	a.nbits = 0
	a.n = 0
	a.frameNoise = 0
}

func (a *Assembler) abort() {
	a.dropped++
	a.Reset()
}

// Feed advances the state machine by one symbol. It returns the completed
// frame when s closes one, nil otherwise.
func (a *Assembler) Feed(s Symbol) *Frame {
	switch s {
	case SymbolSkip:
		return nil
	case SymbolInvalid:
		a.noise++
	}

	switch a.state {
	case StateIdle:
		if s == SymbolSync {
			a.state = StateSyncing
			a.countPreamble()
		}
		return nil

	case StateSyncing:
		if s != SymbolSync {
			a.abort()
			return nil
		}
		a.countPreamble()
		return nil

	case StateReceiving:
		switch s {
		case SymbolZero, SymbolOne:
			return a.pushBit(s == SymbolOne)
		case SymbolGap:
			return a.complete(EndGap)
		case SymbolSync:
			if a.n == 0 && a.nbits == 0 {
				// preamble longer than the minimum
				a.preamble++
				return nil
			}
		}
		a.frameNoise++
		if a.frameNoise > a.timing.NoiseBudget {
			a.abort()
		}
		return nil
	}

	a.Reset()
	return nil
}

// Timeout closes the frame in progress after an inactivity timeout.
// A preamble that never completed is dropped.
func (a *Assembler) Timeout() *Frame {
	switch a.state {
	case StateReceiving:
		return a.complete(EndTimeout)
	case StateSyncing:
		a.abort()
	}
	return nil
}

func (a *Assembler) countPreamble() {
	a.preamble++
	if a.preamble >= a.timing.PreambleMin {
		a.state = StateReceiving
	}
}

func (a *Assembler) pushBit(one bool) *Frame {
	if a.timing.LSBFirst {
		if one {
			a.cur |= 1 << a.nbits
		}
	} else {
		a.cur <<= 1
		if one {
			a.cur |= 1
		}
	}
	a.nbits++
	if a.nbits < BitsPerByte {
		return nil
	}

	a.buf[a.n] = a.cur
	a.n++
	a.cur = 0
	a.nbits = 0
	if a.n >= a.maxBytes() {
		return a.complete(EndOverflow)
	}
	return nil
}

func (a *Assembler) maxBytes() int {
	if a.timing.MaxFrameBytes <= 0 || a.timing.MaxFrameBytes > MaxFrameBytes {
		return MaxFrameBytes
	}
	return a.timing.MaxFrameBytes
}

// complete hands off the gathered bytes; trailing partial bits are discarded.
func (a *Assembler) complete(reason EndReason) *Frame {
	a.state = StateComplete
	if a.n == 0 {
		a.Reset()
		return nil
	}

	f := &Frame{
		Data:   make([]byte, a.n),
		Reason: reason,
		Noise:  a.frameNoise,
	}
	copy(f.Data, a.buf[:a.n])
	a.Reset()
	return f
}
