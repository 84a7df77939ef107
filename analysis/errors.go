package analysis

import (
	"errors"
	"fmt"

	"github.com/sartorproj/cestabasica/dataset"
	"github.com/sartorproj/cestabasica/features"
	"github.com/sartorproj/cestabasica/forecast"
	"github.com/sartorproj/cestabasica/forest"
	"github.com/sartorproj/cestabasica/leadlag"
	"github.com/sartorproj/cestabasica/stats"
	"github.com/sartorproj/cestabasica/timeseries"
)

// Kind classifies why an analysis produced no result.
type Kind string

const (
	EmptySelection         Kind = "EmptySelection"
	EmptySeries            Kind = "EmptySeries"
	InsufficientHistory    Kind = "InsufficientHistory"
	InsufficientData       Kind = "InsufficientData"
	InsufficientPairedData Kind = "InsufficientPairedData"
	StationarizationFailed Kind = "StationarizationFailed"
	AlignmentFailure       Kind = "AlignmentFailure"
	StatisticalTestFailure Kind = "StatisticalTestFailure"
	InvalidParameter       Kind = "InvalidParameter"
	Internal               Kind = "Internal"
)

// ErrorInfo is the error carried by a report in place of its data.
type ErrorInfo struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Error formats the kind and message.
func (e *ErrorInfo) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// kinds is checked in order; the first sentinel found in the chain wins.
var kinds = []struct {
	err  error
	kind Kind
}{
	{dataset.ErrEmptySelection, EmptySelection},
	{timeseries.ErrEmptySeries, EmptySeries},
	{features.ErrInsufficientHistory, InsufficientHistory},
	{forecast.ErrInsufficientData, InsufficientData},
	{forest.ErrEmptyTrainingSet, InsufficientData},
	{leadlag.ErrInsufficientPairedData, InsufficientPairedData},
	{stats.ErrStationarizationFailed, StationarizationFailed},
	{leadlag.ErrAlignmentFailure, AlignmentFailure},
	{stats.ErrTestFailed, StatisticalTestFailure},
	{features.ErrInvalidLags, InvalidParameter},
	{stats.ErrInvalidLag, InvalidParameter},
	{forecast.ErrInvalidHorizon, InvalidParameter},
	{timeseries.ErrUnknownFrequency, InvalidParameter},
}

// Classify maps an error from any analysis stage to its Kind.
func Classify(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return Internal
}

func errorInfo(err error) *ErrorInfo {
	return &ErrorInfo{Kind: Classify(err), Message: err.Error()}
}

// guard runs fn and turns a panic inside it into a statistical test
// failure.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: recovered from panic: %v", stats.ErrTestFailed, r)
		}
	}()
	return fn()
}
