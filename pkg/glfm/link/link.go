package link

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Link maps the latent scores of one dimension into its observation domain.
type Link interface {
	// Type is the data type the link models.
	Type() DataType
	// Scores is the number of weight slices the link consumes: R for
	// categorical dimensions, 1 for everything else.
	Scores() int
	// Estimate returns the MAP point estimate for the given scores.
	Estimate(s []float64) (float64, error)
	// Density evaluates the predictive density (or mass) of every grid
	// point. Categorical and ordinal grids are matched to labels by position.
	Density(grid, s []float64) ([]float64, error)
}

// Params holds the learned per-dimension parameters a link needs.
type Params struct {
	Mu  float64 // shift
	W   float64 // scale
	S2Y float64 // pseudo-observation noise variance
	S2U float64 // auxiliary noise variance

	R     int       // number of categories or ordinal levels
	Theta []float64 // ordinal thresholds, at least R-1 of them
}

func (p Params) sigma() (float64, error) {
	v := p.S2Y + p.S2U
	if !(v > 0) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: noise variance %v", ErrInvalidParams, v)
	}
	return math.Sqrt(v), nil
}

// New builds the link for type t.
func New(t DataType, p Params) (Link, error) {
	sigma, err := p.sigma()
	if err != nil {
		return nil, err
	}
	switch t {
	case Real:
		if p.W == 0 || !isFinite(p.W) || !isFinite(p.Mu) {
			return nil, fmt.Errorf("%w: real scale w=%v shift mu=%v", ErrInvalidParams, p.W, p.Mu)
		}
		return RealLink{Mu: p.Mu, W: p.W, Sigma: sigma}, nil
	case Positive, Count:
		if !(p.W > 0) || !isFinite(p.W) || !isFinite(p.Mu) {
			return nil, fmt.Errorf("%w: %s scale w=%v shift mu=%v", ErrInvalidParams, t, p.W, p.Mu)
		}
		if t == Count {
			return CountLink{Mu: p.Mu, W: p.W, Sigma: sigma}, nil
		}
		return PositiveLink{Mu: p.Mu, W: p.W, Sigma: sigma}, nil
	case Categorical:
		if p.R < 1 {
			return nil, fmt.Errorf("%w: categorical with R=%d", ErrInvalidParams, p.R)
		}
		return CategoricalLink{R: p.R, Sigma: sigma}, nil
	case Ordinal:
		if p.R < 1 || len(p.Theta) < p.R-1 {
			return nil, fmt.Errorf("%w: ordinal with R=%d and %d thresholds", ErrInvalidParams, p.R, len(p.Theta))
		}
		return OrdinalLink{Theta: p.Theta[:p.R-1], Sigma: sigma}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, byte(t))
	}
}

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Softplus returns log(1+exp(y)) without overflowing for large y.
func Softplus(y float64) float64 {
	if y > 30 {
		return y + math.Log1p(math.Exp(-y))
	}
	return math.Log1p(math.Exp(y))
}

// SoftplusInv returns log(exp(v)-1), the inverse of Softplus. It is -Inf
// for v <= 0.
func SoftplusInv(v float64) float64 {
	switch {
	case v <= 0:
		return math.Inf(-1)
	case v > 30:
		return v + math.Log1p(-math.Exp(-v))
	default:
		return math.Log(math.Expm1(v))
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkScores(s []float64, want int) error {
	if len(s) != want {
		return fmt.Errorf("%w: got %d scores, want %d", ErrDimensionMismatch, len(s), want)
	}
	return nil
}

func checkEstimate(t DataType, v float64) (float64, error) {
	if !isFinite(v) {
		return 0, fmt.Errorf("%w: %s estimate %v", ErrNonFinite, t, v)
	}
	return v, nil
}

func checkDensity(t DataType, pdf []float64) ([]float64, error) {
	for i, v := range pdf {
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: %s density at grid point %d is %v", ErrNonFinite, t, i, v)
		}
	}
	return pdf, nil
}
