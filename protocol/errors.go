package protocol

import "errors"

var (
	ErrInvalidPayload  = errors.New("invalid payload size")
	ErrInvalidTiming   = errors.New("invalid timing profile")
	ErrUnknownPreset   = errors.New("unknown timing preset")
	ErrNotEnoughPulses = errors.New("not enough pulses to estimate timing")
	ErrTimeout         = errors.New("operation timed out")
	ErrClosed          = errors.New("capture source closed")
)
