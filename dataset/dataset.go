package dataset

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"slices"
	"sort"
)

// Dataset is a read-only, time-ordered collection of observations. It is
// safe for concurrent use once constructed.
type Dataset struct {
	obs         []Observation
	fingerprint string
}

// New copies the observations, normalizes their category sets and sorts
// them by collection time. Records sharing a timestamp keep their order.
func New(observations []Observation) *Dataset {
	obs := make([]Observation, len(observations))
	copy(obs, observations)
	for i := range obs {
		obs[i].Categories = sortedCategories(obs[i].Categories)
		obs[i].CollectedAt = obs[i].CollectedAt.UTC()
	}
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].CollectedAt.Before(obs[j].CollectedAt)
	})
	return &Dataset{obs: obs, fingerprint: fingerprint(obs)}
}

// Len returns the number of observations.
func (d *Dataset) Len() int {
	return len(d.obs)
}

// Observations returns the ordered observations. Callers must not modify
// the returned slice.
func (d *Dataset) Observations() []Observation {
	return d.obs
}

// Filter returns the observations satisfying pred, in time order.
func (d *Dataset) Filter(pred Predicate) []Observation {
	var out []Observation
	for _, o := range d.obs {
		if pred(o) {
			out = append(out, o)
		}
	}
	return out
}

// Products returns the distinct product identifiers, sorted.
func (d *Dataset) Products() []string {
	return d.distinct(func(o Observation) []string { return []string{o.ProductID} })
}

// Establishments returns the distinct establishment identifiers, sorted.
func (d *Dataset) Establishments() []string {
	return d.distinct(func(o Observation) []string { return []string{o.EstablishmentID} })
}

// Categories returns every category that flags at least one observation.
func (d *Dataset) Categories() []string {
	return d.distinct(func(o Observation) []string { return o.Categories })
}

// Fingerprint identifies the dataset content. Two datasets built from the
// same observations share a fingerprint.
func (d *Dataset) Fingerprint() string {
	return d.fingerprint
}

func (d *Dataset) distinct(keys func(Observation) []string) []string {
	seen := make(map[string]struct{})
	for _, o := range d.obs {
		for _, k := range keys(o) {
			if k != "" {
				seen[k] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func fingerprint(obs []Observation) string {
	h := sha256.New()
	var buf [8]byte
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	for _, o := range obs {
		write(o.ProductID)
		write(o.EstablishmentID)
		write(o.BrandID)
		binary.LittleEndian.PutUint64(buf[:], uint64(o.CollectedAt.UnixNano()))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(o.PPK))
		h.Write(buf[:])
		for _, c := range o.Categories {
			write(c)
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
