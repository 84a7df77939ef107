package dataset

import (
	"slices"
	"strings"
	"time"
)

// CategoryPrefix is the column prefix of category membership flags in
// tabular exports ("Classe_Vegetais", "Classe_Carnes Vermelhas", ...).
const CategoryPrefix = "Classe_"

// Category names used by the collected basket.
const (
	CarnesVermelhas = "Carnes Vermelhas"
	GraosMassas     = "Grãos & Massas"
	Laticinios      = "Laticínios"
	PadariaCozinha  = "Padaria & Cozinha"
	Vegetais        = "Vegetais"
	Aves            = "Aves"
)

// DefaultCategories are the categories forecast by a full batch run.
var DefaultCategories = []string{CarnesVermelhas, GraosMassas, Laticinios, PadariaCozinha, Vegetais}

// NormalizeCategory strips the column prefix and surrounding space, so both
// "Classe_Vegetais" and "Vegetais" name the same category.
func NormalizeCategory(name string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), CategoryPrefix))
}

// Observation is one collected price record.
type Observation struct {
	ProductID       string
	EstablishmentID string
	BrandID         string // empty when the record has no brand
	CollectedAt     time.Time
	Price           float64
	Quantity        *float64
	PPK             float64
	ProductClass    string
	// Categories holds the normalized names of every true membership flag,
	// sorted.
	Categories []string
}

// InCategory reports whether the observation carries the category flag.
func (o Observation) InCategory(name string) bool {
	_, found := slices.BinarySearch(o.Categories, NormalizeCategory(name))
	return found
}

func sortedCategories(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = NormalizeCategory(n); n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
