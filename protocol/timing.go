package protocol

import (
	"fmt"
	"sort"
	"time"
)

// Polarity selects which signal levels carry symbols.
type Polarity uint8

const (
	PolarityBoth Polarity = iota
	PolarityMark
	PolaritySpace
)

func (p Polarity) String() string {
	switch p {
	case PolarityBoth:
		return "both"
	case PolarityMark:
		return "mark"
	case PolaritySpace:
		return "space"
	default:
		return "unknown"
	}
}

// MarshalYAML implements yaml.Marshaler for Polarity
func (p Polarity) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for Polarity
func (p *Polarity) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "", "both":
		*p = PolarityBoth
	case "mark", "marks":
		*p = PolarityMark
	case "space", "spaces":
		*p = PolaritySpace
	default:
		return fmt.Errorf("unknown polarity %q", s)
	}
	return nil
}

func (p Polarity) accepts(l Level) bool {
	switch p {
	case PolarityMark:
		return l == Mark
	case PolaritySpace:
		return l == Space
	default:
		return true
	}
}

// Timing is the pulse timing profile of one radio preset.
// Short pulses are zero bits, long pulses are one bits and sync pulses make up
// the preamble. Any pulse longer than Gap ends the frame.
type Timing struct {
	Short     time.Duration `yaml:"short"`
	Long      time.Duration `yaml:"long"`
	Sync      time.Duration `yaml:"sync"`
	Tolerance float64       `yaml:"tolerance"` // fraction of the nominal width, 0.25 = ±25%
	Gap       time.Duration `yaml:"gap"`

	PreambleMin       int           `yaml:"preamble_min"`
	NoiseBudget       int           `yaml:"noise_budget"` // invalid symbols tolerated per frame
	InactivityTimeout time.Duration `yaml:"inactivity_timeout"`
	MaxFrameBytes     int           `yaml:"max_frame_bytes"`

	Polarity Polarity `yaml:"polarity"`
	LSBFirst bool     `yaml:"lsb_first"`
}

// UnmarshalYAML implements yaml.Unmarshaler for Timing. Fields missing from
// the document keep their DefaultTiming values.
func (t *Timing) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain Timing
	p := plain(DefaultTiming())
	if err := unmarshal(&p); err != nil {
		return err
	}
	*t = Timing(p)
	return nil
}

// DefaultTiming returns the profile of the default preset.
func DefaultTiming() Timing {
	return Timing{
		Short:             DefaultShort,
		Long:              DefaultLong,
		Sync:              DefaultSync,
		Tolerance:         DefaultTolerance,
		Gap:               DefaultGap,
		PreambleMin:       DefaultPreambleMin,
		NoiseBudget:       DefaultNoiseBudget,
		InactivityTimeout: DefaultInactivityTimeout,
		MaxFrameBytes:     MaxFrameBytes,
	}
}

// FixedCodeTiming returns a profile for PT2262-style fixed code remotes
// (1:3 short/long ratio, symbols carried on the marks only).
func FixedCodeTiming() Timing {
	t := DefaultTiming()
	t.Short = 350 * time.Microsecond
	t.Long = 1050 * time.Microsecond
	t.Sync = 2800 * time.Microsecond
	t.Tolerance = 0.3
	t.Gap = 8 * time.Millisecond
	t.PreambleMin = 1
	t.InactivityTimeout = 40 * time.Millisecond
	t.Polarity = PolarityMark
	return t
}

// FSK4k8Timing returns a profile for 4.8 kbaud FSK bursts.
func FSK4k8Timing() Timing {
	t := DefaultTiming()
	t.Short = 208 * time.Microsecond
	t.Long = 416 * time.Microsecond
	t.Sync = 832 * time.Microsecond
	t.Gap = 2 * time.Millisecond
	t.PreambleMin = 8
	t.NoiseBudget = 4
	t.InactivityTimeout = 10 * time.Millisecond
	return t
}

// Presets holds the built-in timing profiles by name.
var Presets = map[string]func() Timing{
	"default":    DefaultTiming,
	"fixed-code": FixedCodeTiming,
	"fsk-4k8":    FSK4k8Timing,
}

// LookupPreset returns the built-in profile registered under name.
func LookupPreset(name string) (Timing, error) {
	fn, ok := Presets[name]
	if !ok {
		return Timing{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return fn(), nil
}

// PresetNames returns the built-in preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// window returns the acceptance range around a nominal width.
func (t *Timing) window(nominal time.Duration) (lo, hi time.Duration) {
	margin := time.Duration(float64(nominal) * t.Tolerance)
	return nominal - margin, nominal + margin
}

// Validate checks that the profile can be classified unambiguously.
func (t *Timing) Validate() error {
	switch {
	case t.Short <= 0:
		return fmt.Errorf("%w: short width must be positive", ErrInvalidTiming)
	case t.Long <= t.Short:
		return fmt.Errorf("%w: long width %v must exceed short width %v", ErrInvalidTiming, t.Long, t.Short)
	case t.Sync <= 0:
		return fmt.Errorf("%w: sync width must be positive", ErrInvalidTiming)
	case t.Tolerance <= 0 || t.Tolerance >= 1:
		return fmt.Errorf("%w: tolerance %.2f outside (0,1)", ErrInvalidTiming, t.Tolerance)
	case t.PreambleMin < 1:
		return fmt.Errorf("%w: preamble_min must be at least 1", ErrInvalidTiming)
	case t.NoiseBudget < 0:
		return fmt.Errorf("%w: noise_budget must not be negative", ErrInvalidTiming)
	case t.InactivityTimeout <= 0:
		return fmt.Errorf("%w: inactivity_timeout must be positive", ErrInvalidTiming)
	case t.MaxFrameBytes < 1 || t.MaxFrameBytes > MaxFrameBytes:
		return fmt.Errorf("%w: max_frame_bytes %d outside 1..%d", ErrInvalidTiming, t.MaxFrameBytes, MaxFrameBytes)
	case t.Polarity > PolaritySpace:
		return fmt.Errorf("%w: unknown polarity %d", ErrInvalidTiming, t.Polarity)
	}

	widths := []struct {
		name    string
		nominal time.Duration
	}{
		{"short", t.Short},
		{"long", t.Long},
		{"sync", t.Sync},
	}
	var widest time.Duration
	for i, a := range widths {
		aLo, aHi := t.window(a.nominal)
		if aHi > widest {
			widest = aHi
		}
		for _, b := range widths[i+1:] {
			bLo, bHi := t.window(b.nominal)
			if aLo <= bHi && bLo <= aHi {
				return fmt.Errorf("%w: %s and %s windows overlap", ErrInvalidTiming, a.name, b.name)
			}
		}
	}
	if t.Gap <= widest {
		return fmt.Errorf("%w: gap %v must exceed the widest window %v", ErrInvalidTiming, t.Gap, widest)
	}
	return nil
}
