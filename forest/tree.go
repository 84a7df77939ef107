package forest

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// node is a tree node; leaves have feature == -1.
type node struct {
	feature     int
	threshold   float64
	left, right int
	value       float64
}

type tree struct {
	nodes []node
}

func (t *tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.feature < 0 {
			return n.value
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

type builder struct {
	X   [][]float64
	y   []float64
	cfg Config
	rng *rand.Rand
	t   *tree
}

func grow(X [][]float64, y []float64, idx []int, cfg Config, rng *rand.Rand) *tree {
	b := &builder{X: X, y: y, cfg: cfg, rng: rng, t: &tree{}}
	b.split(idx, 0)
	return b.t
}

// split appends the subtree for the rows in idx and returns its root index.
func (b *builder) split(idx []int, depth int) int {
	targets := make([]float64, len(idx))
	for i, j := range idx {
		targets[i] = b.y[j]
	}
	sum := floats.Sum(targets)

	self := len(b.t.nodes)
	b.t.nodes = append(b.t.nodes, node{feature: -1, value: sum / float64(len(idx))})

	if len(idx) < b.cfg.MinSamplesSplit ||
		(b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth) ||
		floats.Min(targets) == floats.Max(targets) {
		return self
	}

	feature, threshold, ok := b.bestSplit(idx, sum)
	if !ok {
		return self
	}

	var left, right []int
	for _, j := range idx {
		if b.X[j][feature] <= threshold {
			left = append(left, j)
		} else {
			right = append(right, j)
		}
	}

	if len(left) == 0 || len(right) == 0 {
		return self
	}
	l := b.split(left, depth+1)
	r := b.split(right, depth+1)
	b.t.nodes[self] = node{feature: feature, threshold: threshold, left: l, right: r}
	return self
}

// bestSplit maximises sumL²/nL + sumR²/nR, which minimises the children's
// squared error. Thresholds sit halfway between consecutive distinct values.
func (b *builder) bestSplit(idx []int, total float64) (feature int, threshold float64, ok bool) {
	n := len(idx)
	minLeaf := b.cfg.MinSamplesLeaf
	best := total * total / float64(n)
	const eps = 1e-12

	sorted := make([]int, n)
	for _, f := range b.features() {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(i, j int) bool { return b.X[sorted[i]][f] < b.X[sorted[j]][f] })

		left := 0.0
		for s := 1; s < n; s++ {
			left += b.y[sorted[s-1]]
			if s < minLeaf || n-s < minLeaf {
				continue
			}
			lo, hi := b.X[sorted[s-1]][f], b.X[sorted[s]][f]
			if lo == hi {
				continue
			}
			right := total - left
			score := left*left/float64(s) + right*right/float64(n-s)
			if score > best+eps {
				mid := lo + (hi-lo)/2
				if mid >= hi {
					mid = lo
				}
				best = score
				feature, threshold, ok = f, mid, true
			}
		}
	}
	return feature, threshold, ok
}

// features returns the candidate features for one split, in random order
// when only a subset is tried.
func (b *builder) features() []int {
	p := len(b.X[0])
	if b.cfg.MaxFeatures <= 0 || b.cfg.MaxFeatures >= p {
		all := make([]int, p)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return b.rng.Perm(p)[:b.cfg.MaxFeatures]
}
