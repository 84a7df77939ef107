package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVOptions configures LoadCSV.
type CSVOptions struct {
	Columns   Columns
	Delimiter rune // default ','
}

// DefaultCSVOptions returns options for the cleaned basket export.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{Columns: DefaultColumns(), Delimiter: ','}
}

// LoadCSV loads a dataset from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file, opts)
}

// ReadCSV loads a dataset from a CSV stream with a header row. Rows that
// cannot be decoded are skipped.
func ReadCSV(r io.Reader, opts *CSVOptions) (*Dataset, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: reading header: %w", err)
	}
	dec, err := newRowDecoder(header, opts.Columns)
	if err != nil {
		return nil, err
	}

	var obs []Observation
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if o, ok := dec.decode(record); ok {
			obs = append(obs, o)
		}
	}

	if len(obs) == 0 {
		return nil, ErrNoRows
	}
	return New(obs), nil
}
