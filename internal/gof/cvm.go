package gof

import (
	"errors"
	"sort"

	"gocopula/domain/copula"
)

var errNoModelCDF = errors.New("no usable model CDF for bootstrap iteration")

// cvmStatistic computes the Cramer-von Mises discrepancy
// Sn = sum_i (C_model(U_i,V_i) - C_n(U_i,V_i))^2 between the model copula and
// the empirical copula, both evaluated at the observation points.
func cvmStatistic(obs copula.PseudoObservations, modelCDF func(u, v float64) float64) float64 {
	emp := newEmpiricalCopula(obs.U, obs.V)

	stat := 0.0
	for i := range obs.U {
		d := modelCDF(obs.U[i], obs.V[i]) - emp.At(obs.U[i], obs.V[i])
		stat += d * d
	}
	return stat
}

// empiricalCopula evaluates C_n(u,v) = (1/n) #{j : U_j <= u, V_j <= v}.
// Points are pre-sorted by U so each query only scans the qualifying prefix.
type empiricalCopula struct {
	u []float64 // ascending
	v []float64 // paired with u
}

func newEmpiricalCopula(u, v []float64) *empiricalCopula {
	n := len(u)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return u[idx[a]] < u[idx[b]] })

	su := make([]float64, n)
	sv := make([]float64, n)
	for r, i := range idx {
		su[r] = u[i]
		sv[r] = v[i]
	}
	return &empiricalCopula{u: su, v: sv}
}

// At evaluates the empirical copula at one point.
func (e *empiricalCopula) At(u, v float64) float64 {
	hi := sort.SearchFloat64s(e.u, u)
	// SearchFloat64s finds the first index with e.u[i] >= u; values equal to
	// u belong in the count, so extend past them.
	for hi < len(e.u) && e.u[hi] == u {
		hi++
	}
	count := 0
	for i := 0; i < hi; i++ {
		if e.v[i] <= v {
			count++
		}
	}
	return float64(count) / float64(len(e.u))
}
