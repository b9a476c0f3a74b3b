package link

import "math"

// RealLink models real-valued data through y = w(x-μ).
type RealLink struct {
	Mu, W, Sigma float64
}

func (RealLink) Type() DataType { return Real }
func (RealLink) Scores() int    { return 1 }

func (l RealLink) Estimate(s []float64) (float64, error) {
	if err := checkScores(s, 1); err != nil {
		return 0, err
	}
	return checkEstimate(Real, l.Mu+s[0]/l.W)
}

func (l RealLink) Density(grid, s []float64) ([]float64, error) {
	if err := checkScores(s, 1); err != nil {
		return nil, err
	}
	aw := math.Abs(l.W)
	pdf := make([]float64, len(grid))
	for i, x := range grid {
		z := (l.W*(x-l.Mu) - s[0]) / l.Sigma
		pdf[i] = stdNormal.Prob(z) / l.Sigma * aw
	}
	return checkDensity(Real, pdf)
}

// PositiveLink models positive real data through x = μ + softplus(y)/w.
type PositiveLink struct {
	Mu, W, Sigma float64
}

func (PositiveLink) Type() DataType { return Positive }
func (PositiveLink) Scores() int    { return 1 }

func (l PositiveLink) Estimate(s []float64) (float64, error) {
	if err := checkScores(s, 1); err != nil {
		return 0, err
	}
	return checkEstimate(Positive, l.Mu+Softplus(s[0])/l.W)
}

// Density is the Gaussian density of the pseudo-observation pushed through
// the softplus map. It is zero at or below the shift μ.
func (l PositiveLink) Density(grid, s []float64) ([]float64, error) {
	if err := checkScores(s, 1); err != nil {
		return nil, err
	}
	pdf := make([]float64, len(grid))
	for i, x := range grid {
		t := l.W * (x - l.Mu)
		if t <= 0 {
			continue
		}
		jac := l.W / -math.Expm1(-t)
		z := (SoftplusInv(t) - s[0]) / l.Sigma
		pdf[i] = stdNormal.Prob(z) / l.Sigma * jac
	}
	return checkDensity(Positive, pdf)
}

// CountLink models non-negative integers as the floor of a positive value.
type CountLink struct {
	Mu, W, Sigma float64
}

func (CountLink) Type() DataType { return Count }
func (CountLink) Scores() int    { return 1 }

func (l CountLink) Estimate(s []float64) (float64, error) {
	if err := checkScores(s, 1); err != nil {
		return 0, err
	}
	v := math.Floor(l.Mu + Softplus(s[0])/l.W)
	return checkEstimate(Count, math.Max(0, v))
}

// Density returns P(X = x) for every integer grid point x, the probability
// that the pseudo-observation falls between the preimages of x and x+1.
func (l CountLink) Density(grid, s []float64) ([]float64, error) {
	if err := checkScores(s, 1); err != nil {
		return nil, err
	}
	pdf := make([]float64, len(grid))
	for i, x := range grid {
		lo := (SoftplusInv(l.W*(x-l.Mu)) - s[0]) / l.Sigma
		hi := (SoftplusInv(l.W*(x+1-l.Mu)) - s[0]) / l.Sigma
		pdf[i] = stdNormal.CDF(hi) - stdNormal.CDF(lo)
	}
	return checkDensity(Count, pdf)
}
