package protocol

import "time"

// Level is the signal level a pulse was held at.
type Level uint8

const (
	Space Level = iota
	Mark
)

func (l Level) String() string {
	if l == Mark {
		return "mark"
	}
	return "space"
}

// Pulse is one timed capture item: the signal stayed at Level for Duration.
type Pulse struct {
	Duration time.Duration
	Level    Level
}

// Symbol is the classification of a single pulse.
type Symbol uint8

const (
	SymbolInvalid Symbol = iota
	SymbolZero
	SymbolOne
	SymbolSync
	SymbolGap  // end of frame
	SymbolSkip // pulse on a level the profile ignores
)

func (s Symbol) String() string {
	switch s {
	case SymbolZero:
		return "zero"
	case SymbolOne:
		return "one"
	case SymbolSync:
		return "sync"
	case SymbolGap:
		return "gap"
	case SymbolSkip:
		return "skip"
	default:
		return "invalid"
	}
}

// IsBit reports whether s carries a data bit.
func (s Symbol) IsBit() bool { return s == SymbolZero || s == SymbolOne }

// Classify maps one pulse to a symbol using the profile's tolerance windows.
// Silences longer than Gap end the frame whatever their level. When windows
// touch, the nearest nominal width wins.
func (t *Timing) Classify(p Pulse) Symbol {
	d := p.Duration
	if d > t.Gap {
		return SymbolGap
	}
	if !t.Polarity.accepts(p.Level) {
		return SymbolSkip
	}

	candidates := [...]struct {
		nominal time.Duration
		sym     Symbol
	}{
		{t.Short, SymbolZero},
		{t.Long, SymbolOne},
		{t.Sync, SymbolSync},
	}

	best := SymbolInvalid
	bestDist := time.Duration(-1)
	for _, c := range candidates {
		if c.nominal <= 0 {
			continue
		}
		lo, hi := t.window(c.nominal)
		if d < lo || d > hi {
			continue
		}
		dist := d - c.nominal
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = c.sym, dist
		}
	}
	return best
}
