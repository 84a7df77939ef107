package dataset

import "errors"

var (
	// ErrEmptySelection is returned when no observation satisfies a predicate.
	ErrEmptySelection = errors.New("dataset: no observations match the selection")

	// ErrMissingColumn is returned by loaders when a required column is absent.
	ErrMissingColumn = errors.New("dataset: required column not found")

	// ErrNoRows is returned by loaders when the source holds no usable row.
	ErrNoRows = errors.New("dataset: source contains no usable rows")
)
