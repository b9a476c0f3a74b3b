package link

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// probitNodes is the quadrature grid for the auxiliary standard normal in the
// multinomial probit integral. Beyond ±8 the normal density is below 1e-14.
var probitNodes = floats.Span(make([]float64, 401), -8, 8)

// CategoricalLink models unordered labels 1..R. Each category r has its own
// score s_r and the observed label is the category with the largest noisy
// pseudo-observation.
type CategoricalLink struct {
	R     int
	Sigma float64
}

func (CategoricalLink) Type() DataType { return Categorical }
func (l CategoricalLink) Scores() int  { return l.R }

func (l CategoricalLink) Estimate(s []float64) (float64, error) {
	if err := checkScores(s, l.R); err != nil {
		return 0, err
	}
	return checkEstimate(Categorical, float64(floats.MaxIdx(s)+1))
}

// Probabilities returns P(x = r) for r = 1..R:
//
//	∫ φ(u) ∏_{j≠r} Φ(u + (s_r - s_j)/σ) du
//
// renormalised so the quadrature error does not leak into the total mass.
func (l CategoricalLink) Probabilities(s []float64) ([]float64, error) {
	if err := checkScores(s, l.R); err != nil {
		return nil, err
	}
	probs := make([]float64, l.R)
	f := make([]float64, len(probitNodes))
	for r := range probs {
		for i, u := range probitNodes {
			v := stdNormal.Prob(u)
			for j := range s {
				if j == r {
					continue
				}
				v *= stdNormal.CDF(u + (s[r]-s[j])/l.Sigma)
			}
			f[i] = v
		}
		probs[r] = integrate.Trapezoidal(probitNodes, f)
	}
	total := floats.Sum(probs)
	if !(total > 0) {
		return nil, fmt.Errorf("%w: categorical mass %v", ErrNonFinite, total)
	}
	floats.Scale(1/total, probs)
	return checkDensity(Categorical, probs)
}

func (l CategoricalLink) Density(grid, s []float64) ([]float64, error) {
	if len(grid) != l.R {
		return nil, fmt.Errorf("%w: categorical grid has %d labels, model has R=%d", ErrDimensionMismatch, len(grid), l.R)
	}
	return l.Probabilities(s)
}

// OrdinalLink models ordered levels 1..R cut from a single score by R-1
// ascending thresholds.
type OrdinalLink struct {
	Theta []float64
	Sigma float64
}

func (OrdinalLink) Type() DataType { return Ordinal }
func (OrdinalLink) Scores() int    { return 1 }

// Levels is the number of ordinal levels, R.
func (l OrdinalLink) Levels() int { return len(l.Theta) + 1 }

// Estimate returns the first level r whose upper threshold θ_r is at or above
// the score, or R when the score exceeds every threshold.
func (l OrdinalLink) Estimate(s []float64) (float64, error) {
	if err := checkScores(s, 1); err != nil {
		return 0, err
	}
	level := 1
	for _, th := range l.Theta {
		if s[0] <= th {
			break
		}
		level++
	}
	return checkEstimate(Ordinal, float64(level))
}

func (l OrdinalLink) Density(grid, s []float64) ([]float64, error) {
	if err := checkScores(s, 1); err != nil {
		return nil, err
	}
	if len(grid) != l.Levels() {
		return nil, fmt.Errorf("%w: ordinal grid has %d labels, model has R=%d", ErrDimensionMismatch, len(grid), l.Levels())
	}
	pdf := make([]float64, len(grid))
	prev := 0.0
	for r := range pdf {
		upper := 1.0
		if r < len(l.Theta) {
			upper = stdNormal.CDF((l.Theta[r] - s[0]) / l.Sigma)
		}
		pdf[r] = upper - prev
		prev = upper
	}
	return checkDensity(Ordinal, pdf)
}
