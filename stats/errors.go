package stats

import "errors"

var (
	// ErrTestFailed wraps numerical failures inside a statistical test, such
	// as a singular design matrix or too few observations for the regression.
	ErrTestFailed = errors.New("stats: statistical test failed")

	// ErrStationarizationFailed is returned when differencing leaves no data.
	ErrStationarizationFailed = errors.New("stats: differencing emptied the series")

	// ErrInvalidLag is returned for lag orders below one.
	ErrInvalidLag = errors.New("stats: lag order must be at least 1")

	// ErrLengthMismatch is returned when paired inputs differ in length.
	ErrLengthMismatch = errors.New("stats: paired series must have the same length")
)
