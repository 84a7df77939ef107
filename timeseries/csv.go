package timeseries

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"time"
)

// CSVOptions controls how a series is written.
type CSVOptions struct {
	DateColumn  string // header of the period column (default: "ds")
	ValueColumn string // header of the value column (default: "y")
	DateFormat  string // layout of the period column (default: "2006-01-02")
	Delimiter   rune   // field delimiter (default: ',')
	Precision   int    // decimal places, -1 for shortest representation
}

// DefaultCSVOptions returns the ds,y layout.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateColumn:  "ds",
		ValueColumn: "y",
		DateFormat:  time.DateOnly,
		Delimiter:   ',',
		Precision:   -1,
	}
}

// SaveCSV writes a series to a file.
func SaveCSV(series *Series, filename string, opts *CSVOptions) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteCSV(file, series, opts)
}

// WriteCSV writes a series as two columns, period and value. Undefined
// periods are written as empty cells.
func WriteCSV(w io.Writer, series *Series, opts *CSVOptions) error {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	writer := csv.NewWriter(w)
	writer.Comma = opts.Delimiter

	if err := writer.Write([]string{opts.DateColumn, opts.ValueColumn}); err != nil {
		return err
	}
	for i, v := range series.Values {
		value := ""
		if !math.IsNaN(v) {
			value = strconv.FormatFloat(v, 'f', opts.Precision, 64)
		}
		if err := writer.Write([]string{series.Timestamps[i].Format(opts.DateFormat), value}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
