package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// olsFit is an ordinary least squares fit of y on the columns of X.
type olsFit struct {
	beta   []float64
	stdErr []float64 // nil when X'X is singular
	ssr    float64
	nObs   int
	nParam int
}

// fitOLS fits y on the columns of x by SVD least squares. Rank-deficient
// designs get the minimum-norm solution; their residuals are still valid but
// standard errors are only computed for full-rank designs.
func fitOLS(x [][]float64, y []float64) (*olsFit, error) {
	n := len(y)
	if n == 0 || len(x) != n {
		return nil, fmt.Errorf("%w: empty or mismatched regression data", ErrTestFailed)
	}
	k := len(x[0])
	if n <= k {
		return nil, fmt.Errorf("%w: %d observations for %d parameters", ErrTestFailed, n, k)
	}

	X := mat.NewDense(n, k, nil)
	for i, row := range x {
		X.SetRow(i, row)
	}
	Y := mat.NewVecDense(n, append([]float64(nil), y...))

	var svd mat.SVD
	if ok := svd.Factorize(X, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: SVD factorization failed", ErrTestFailed)
	}
	rank := svd.Rank(1e-12)
	if rank == 0 {
		return nil, fmt.Errorf("%w: design matrix has rank 0", ErrTestFailed)
	}
	var b mat.Dense
	svd.SolveTo(&b, Y, rank)
	beta := mat.Col(nil, 0, &b)

	fit := &olsFit{beta: beta, nObs: n, nParam: k}
	var fitted mat.VecDense
	fitted.MulVec(X, mat.NewVecDense(k, beta))
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		fit.ssr += r * r
	}

	if rank < k {
		return fit, nil
	}
	var xtx, xtxInv mat.Dense
	xtx.Mul(X.T(), X)
	if err := xtxInv.Inverse(&xtx); err != nil {
		return fit, nil
	}
	sigma2 := fit.ssr / float64(n-k)
	fit.stdErr = make([]float64, k)
	for i := range fit.stdErr {
		fit.stdErr[i] = math.Sqrt(sigma2 * xtxInv.At(i, i))
	}
	return fit, nil
}

// tStat returns the t-ratio of coefficient i.
func (f *olsFit) tStat(i int) (float64, error) {
	if f.stdErr == nil || f.stdErr[i] == 0 || math.IsNaN(f.stdErr[i]) {
		return 0, fmt.Errorf("%w: coefficient %d has no standard error (singular design)", ErrTestFailed, i)
	}
	return f.beta[i] / f.stdErr[i], nil
}

// aic is the Akaike criterion of a Gaussian linear model.
func (f *olsFit) aic() float64 {
	n := float64(f.nObs)
	llf := -n / 2 * (math.Log(2*math.Pi) + math.Log(f.ssr/n) + 1)
	return -2*llf + 2*float64(f.nParam)
}
