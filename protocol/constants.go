package protocol

import "time"

// Generic pulse & framing constants (platform independent). All higher layers should depend on this file.
const (
	// Frame sizing
	MaxFrameBytes = 128 // capacity of the shared last-packet record
	BitsPerByte   = 8

	// Default preset widths. A sync pulse is four short widths, a frame ends
	// after a silence longer than Gap.
	DefaultShort     = 400 * time.Microsecond
	DefaultLong      = 800 * time.Microsecond
	DefaultSync      = 1600 * time.Microsecond
	DefaultGap       = 4 * time.Millisecond
	DefaultTolerance = 0.25

	// Framing policy
	DefaultPreambleMin = 4
	DefaultNoiseBudget = 2

	// Timeouts
	DefaultInactivityTimeout = 20 * time.Millisecond

	// Capture defaults (1 MHz tick, queue depth of the receive channel)
	DefaultResolution = time.Microsecond
	DefaultQueueDepth = 64

	// minimum number of widths EstimateTiming will work from
	minEstimateSamples = 16

	// consecutive sorted widths further apart than this ratio start a new cluster
	clusterSplitRatio = 1.3
)
