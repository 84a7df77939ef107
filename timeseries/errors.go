package timeseries

import "errors"

var (
	// ErrEmptySeries is returned when a series has no defined periods left.
	ErrEmptySeries = errors.New("timeseries: series has no defined periods")

	// ErrLengthMismatch is returned when timestamps and values differ in length.
	ErrLengthMismatch = errors.New("timeseries: timestamps and values must have the same length")

	// ErrUnordered is returned when timestamps are not strictly increasing.
	ErrUnordered = errors.New("timeseries: timestamps must be strictly increasing")

	// ErrUnknownFrequency is returned by ParseFrequency for unsupported aliases.
	ErrUnknownFrequency = errors.New("timeseries: unknown frequency")
)
