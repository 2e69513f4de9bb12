// Public domain.

package fit

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// jacobian approximates the residual Jacobian over the free
// parameters at x by central finite differences.
func (s *solver) jacobian(x []float64, nK int) *mat.Dense {
	jac := mat.NewDense(s.total, len(x), nil)
	fd.Jacobian(jac, func(y, xx []float64) {
		s.residualInto(y, ParamsComplete(xx, nK, s.cfg))
	}, x, &fd.JacobianSettings{Formula: fd.Central, Concurrent: true})
	return jac
}

// coMatrices derives the variance-covariance and correlation matrices
// from the residual and Jacobian at the solution.  Both are nil when
// there are no more observations than free parameters or when JᵀJ is
// singular.
func coMatrices(res []float64, jac *mat.Dense) (cov, corr *mat.Dense) {
	m, p := jac.Dims()
	if m <= p {
		return nil, nil
	}
	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)
	var inv mat.Dense
	if err := inv.Inverse(&jtj); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, nil
		}
		// ill conditioned but still usable
	}
	sigma2 := floats.Dot(res, res) / float64(m-p)
	inv.Scale(sigma2, &inv)
	cov = &inv

	d := make([]float64, p)
	for i := range d {
		d[i] = 1 / math.Sqrt(cov.At(i, i))
	}
	corr = mat.NewDense(p, p, nil)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			corr.Set(i, j, cov.At(i, j)*d[i]*d[j])
		}
	}
	return cov, corr
}

// gradient is Jᵀr, the cost gradient over the free parameters up to a
// constant factor.
func gradient(res []float64, jac *mat.Dense) []float64 {
	_, p := jac.Dims()
	g := mat.NewVecDense(p, nil)
	g.MulVec(jac.T(), mat.NewVecDense(len(res), res))
	return g.RawVector().Data
}
