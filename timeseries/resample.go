package timeseries

import (
	"math"
	"sort"
	"time"
)

// Point is a single timestamped value before it is assigned to a period.
type Point struct {
	Time  time.Time
	Value float64
}

// Resample groups points into periods of freq and averages each period over
// the grid from the first to the last observed period. Periods without
// points are NaN. Points need not be sorted.
func Resample(points []Point, freq Frequency) *Series {
	if len(points) == 0 {
		return &Series{}
	}
	first, last := points[0].Time, points[0].Time
	for _, p := range points[1:] {
		if p.Time.Before(first) {
			first = p.Time
		}
		if p.Time.After(last) {
			last = p.Time
		}
	}
	return ResampleRange(points, freq, first, last)
}

// ResampleRange is Resample over an explicit grid; points outside
// [from, to] are ignored.
func ResampleRange(points []Point, freq Frequency, from, to time.Time) *Series {
	grid := freq.Periods(from, to)
	index := make(map[time.Time]int, len(grid))
	for i, p := range grid {
		index[p] = i
	}

	sums := make([]float64, len(grid))
	counts := make([]int, len(grid))
	for _, p := range points {
		if math.IsNaN(p.Value) {
			continue
		}
		i, ok := index[freq.Truncate(p.Time)]
		if !ok {
			continue
		}
		sums[i] += p.Value
		counts[i]++
	}

	values := make([]float64, len(grid))
	for i := range grid {
		if counts[i] == 0 {
			values[i] = math.NaN()
			continue
		}
		values[i] = sums[i] / float64(counts[i])
	}
	return &Series{Timestamps: grid, Values: values}
}

// MeanByTime collapses points sharing the exact same timestamp into their
// mean and returns them sorted by time.
func MeanByTime(points []Point) []Point {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, p := range points {
		if math.IsNaN(p.Value) {
			continue
		}
		key := p.Time.UTC()
		sums[key] += p.Value
		counts[key]++
	}

	out := make([]Point, 0, len(sums))
	for t, sum := range sums {
		out = append(out, Point{Time: t, Value: sum / float64(counts[t])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
