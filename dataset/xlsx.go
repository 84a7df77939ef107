package dataset

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSXOptions configures LoadXLSX.
type XLSXOptions struct {
	Columns Columns
	Sheet   string // default: first sheet
}

// DefaultXLSXOptions reads the first sheet with the default headers.
func DefaultXLSXOptions() *XLSXOptions {
	return &XLSXOptions{Columns: DefaultColumns()}
}

// LoadXLSX loads a dataset from an Excel workbook.
func LoadXLSX(filename string, opts *XLSXOptions) (*Dataset, error) {
	f, err := excelize.OpenFile(filename)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening workbook: %w", err)
	}
	defer f.Close()

	return readWorkbook(f, opts)
}

// ReadXLSX loads a dataset from a workbook stream.
func ReadXLSX(r io.Reader, opts *XLSXOptions) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening workbook: %w", err)
	}
	defer f.Close()

	return readWorkbook(f, opts)
}

func readWorkbook(f *excelize.File, opts *XLSXOptions) (*Dataset, error) {
	if opts == nil {
		opts = DefaultXLSXOptions()
	}

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoRows
		}
		sheet = sheets[0]
	}

	// Raw values keep dates as serial numbers instead of locale formatting.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("dataset: reading sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, ErrNoRows
	}

	dec, err := newRowDecoder(rows[0], opts.Columns)
	if err != nil {
		return nil, err
	}
	dec.parseTime = func(s string) (time.Time, error) {
		if serial, err := strconv.ParseFloat(s, 64); err == nil {
			return excelize.ExcelDateToTime(serial, false)
		}
		return dec.parseDate(s)
	}

	var obs []Observation
	for _, row := range rows[1:] {
		if o, ok := dec.decode(row); ok {
			obs = append(obs, o)
		}
	}
	if len(obs) == 0 {
		return nil, ErrNoRows
	}
	return New(obs), nil
}
