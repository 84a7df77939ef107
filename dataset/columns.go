package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Columns maps tabular headers onto Observation fields.
type Columns struct {
	Date           string // collection date (required)
	Product        string // product identifier (required)
	Establishment  string // establishment identifier (required)
	Brand          string // optional
	Price          string
	Quantity       string // optional
	PPK            string // required unless Price and Quantity are present
	Class          string // optional product class label
	CategoryPrefix string // prefix of boolean category columns
	DateFormats    []string
}

// DefaultColumns returns the headers of the cleaned basket export.
func DefaultColumns() Columns {
	return Columns{
		Date:           "Data_Coleta",
		Product:        "Produto",
		Establishment:  "Estabelecimento",
		Brand:          "Marca",
		Price:          "Preco",
		Quantity:       "Quantidade",
		PPK:            "PPK",
		Class:          "Classe",
		CategoryPrefix: CategoryPrefix,
		DateFormats: []string{
			time.DateOnly,
			time.DateTime,
			"2006-01-02T15:04:05",
			"02/01/2006",
			"2006/01/02",
			"02-Jan-2006",
		},
	}
}

// rowDecoder turns string records into observations once the header has
// been resolved.
type rowDecoder struct {
	cols       Columns
	index      map[string]int
	categories map[int]string
	parseTime  func(string) (time.Time, error)
}

func newRowDecoder(header []string, cols Columns) (*rowDecoder, error) {
	d := &rowDecoder{
		cols:       cols,
		index:      make(map[string]int, len(header)),
		categories: make(map[int]string),
	}
	d.parseTime = d.parseDate

	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(h, "\""))
		if _, dup := d.index[h]; !dup {
			d.index[h] = i
		}
		if cols.CategoryPrefix != "" && strings.HasPrefix(h, cols.CategoryPrefix) && len(h) > len(cols.CategoryPrefix) {
			d.categories[i] = strings.TrimPrefix(h, cols.CategoryPrefix)
		}
	}

	for _, required := range []string{cols.Date, cols.Product, cols.Establishment} {
		if _, ok := d.index[required]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, required)
		}
	}
	_, hasPPK := d.index[cols.PPK]
	_, hasPrice := d.index[cols.Price]
	_, hasQty := d.index[cols.Quantity]
	if !hasPPK && !(hasPrice && hasQty) {
		return nil, fmt.Errorf("%w: %q (or %q and %q)", ErrMissingColumn, cols.PPK, cols.Price, cols.Quantity)
	}
	return d, nil
}

func (d *rowDecoder) cell(record []string, column string) string {
	i, ok := d.index[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(strings.Trim(record[i], "\""))
}

// decode returns ok=false for rows that cannot be used: missing identity,
// unparseable date, or no way to obtain a PPK.
func (d *rowDecoder) decode(record []string) (Observation, bool) {
	o := Observation{
		ProductID:       d.cell(record, d.cols.Product),
		EstablishmentID: d.cell(record, d.cols.Establishment),
		BrandID:         d.cell(record, d.cols.Brand),
		ProductClass:    d.cell(record, d.cols.Class),
	}
	if o.ProductID == "" || o.EstablishmentID == "" {
		return o, false
	}

	ts, err := d.parseTime(d.cell(record, d.cols.Date))
	if err != nil {
		return o, false
	}
	o.CollectedAt = ts

	if price, ok := parseNumber(d.cell(record, d.cols.Price)); ok {
		o.Price = price
	}
	if qty, ok := parseNumber(d.cell(record, d.cols.Quantity)); ok {
		o.Quantity = &qty
	}

	ppk, ok := parseNumber(d.cell(record, d.cols.PPK))
	if !ok {
		if ppk, ok = DerivePPK(o.Price, o.Quantity); !ok {
			return o, false
		}
	}
	o.PPK = ppk

	var cats []string
	for i, name := range d.categories {
		if i < len(record) && parseFlag(record[i]) {
			cats = append(cats, name)
		}
	}
	o.Categories = sortedCategories(cats)
	return o, true
}

func (d *rowDecoder) parseDate(s string) (time.Time, error) {
	for _, layout := range d.cols.DateFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("dataset: unrecognized date %q", s)
}

// parseNumber accepts "12.5" and "12,5". Missing markers yield ok=false.
func parseNumber(s string) (float64, bool) {
	switch strings.ToLower(s) {
	case "", "na", "nan", "null", "none":
		return 0, false
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(strings.Trim(s, "\""))) {
	case "1", "1.0", "true", "t", "yes", "sim", "verdadeiro":
		return true
	}
	return false
}
