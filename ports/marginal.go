package ports

// MarginalCDF is an externally supplied invertible marginal CDF estimate used
// by the smoothed pseudo-observation mode. The transform clamps its output
// into [eps, 1-eps]; the estimator itself (I-spline, Q-spline, ...) lives
// with the marginal-smoothing collaborator, not in this core.
type MarginalCDF interface {
	Evaluate(x float64) float64
}

// MarginalCDFFunc adapts a plain function to the MarginalCDF interface.
type MarginalCDFFunc func(x float64) float64

// Evaluate calls the wrapped function.
func (f MarginalCDFFunc) Evaluate(x float64) float64 {
	return f(x)
}
