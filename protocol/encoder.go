package protocol

import "time"

// Encode renders data as the pulse train a transmitter using this profile
// emits: PreambleMin sync pulses, eight bit pulses per byte and a closing gap.
// Levels alternate starting with a mark. When the profile only reads one
// level, every symbol is paired with a short pulse on the other level.
func (t *Timing) Encode(data []byte) []Pulse {
	perSymbol := 1
	if t.Polarity != PolarityBoth {
		perSymbol = 2
	}
	out := make([]Pulse, 0, (t.PreambleMin+len(data)*BitsPerByte)*perSymbol+1)
	level := Mark

	emit := func(width time.Duration) {
		if t.Polarity.accepts(level) {
			out = append(out, Pulse{Duration: width, Level: level})
			level ^= 1
			if t.Polarity != PolarityBoth {
				out = append(out, Pulse{Duration: t.Short, Level: level})
				level ^= 1
			}
		} else {
			out = append(out, Pulse{Duration: t.Short, Level: level})
			level ^= 1
			out = append(out, Pulse{Duration: width, Level: level})
			level ^= 1
		}
	}

	for i := 0; i < t.PreambleMin; i++ {
		emit(t.Sync)
	}
	for _, b := range data {
		for i := 0; i < BitsPerByte; i++ {
			var one bool
			if t.LSBFirst {
				one = b&(1<<i) != 0
			} else {
				one = b&(0x80>>i) != 0
			}
			if one {
				emit(t.Long)
			} else {
				emit(t.Short)
			}
		}
	}
	out = append(out, Pulse{Duration: t.Gap + t.Gap/2, Level: level})
	return out
}
