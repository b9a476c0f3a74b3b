// Package ridge is a deterministic point-estimate engine for glfm. It
// alternates a ridge regression of per-dimension pseudo-observations on the
// latent features with a greedy pass that flips single feature bits whenever
// that lowers the penalised reconstruction error.
//
// It never adds features, so the feature cap is always honoured.
package ridge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/samcharles93/glfm/internal/logger"
	"github.com/samcharles93/glfm/pkg/glfm"
	"github.com/samcharles93/glfm/pkg/glfm/link"
)

// ErrSingular is returned when a ridge system cannot be factorised.
var ErrSingular = errors.New("ridge system is not positive definite")

// Config bounds the work the engine does.
type Config struct {
	// MaxSweeps caps the number of fit/flip sweeps regardless of Niter.
	// Zero means no cap.
	MaxSweeps int
	// MinNoise is the floor of the per-dimension noise estimate.
	MinNoise float64
}

// DefaultConfig returns the configuration used by the CLI and the API.
func DefaultConfig() Config {
	return Config{MaxSweeps: 50, MinNoise: 1e-4}
}

// Engine implements glfm.Engine.
type Engine struct {
	cfg Config
}

var _ glfm.Engine = (*Engine)(nil)

func New(cfg Config) *Engine {
	if cfg.MinNoise <= 0 {
		cfg.MinNoise = DefaultConfig().MinNoise
	}
	return &Engine{cfg: cfg}
}

// dim holds the pseudo-observations of one dimension.
type dim struct {
	t     link.DataType
	r     int         // number of weight slices used
	y     [][]float64 // r×N targets
	obs   []bool      // N
	mu, w float64
	theta []float64
}

// Infer fits B, refines Z and estimates the per-dimension noise.
func (e *Engine) Infer(ctx context.Context, in *glfm.EngineInput) (*glfm.EngineOutput, error) {
	if in == nil || in.X == nil || in.Z == nil {
		return nil, fmt.Errorf("%w: engine input is incomplete", glfm.ErrInvalidInput)
	}
	nd, n := in.X.Dims()
	k, zn := in.Z.Dims()
	if zn != n {
		return nil, fmt.Errorf("%w: Z covers %d observations, X has %d", glfm.ErrDimensionMismatch, zn, n)
	}
	if len(in.Types) != nd {
		return nil, fmt.Errorf("%w: %d types for %d dimensions", glfm.ErrInvalidInput, len(in.Types), nd)
	}

	dims := make([]dim, nd)
	maxR := 1
	for d := range dims {
		dm, err := pseudoObservations(in, d)
		if err != nil {
			return nil, err
		}
		dims[d] = dm
		if dm.t.Discrete() {
			maxR = max(maxR, len(dm.theta)+1, dm.r)
		}
	}

	z := mat.DenseCopyOf(in.Z.T()) // N×K
	b := glfm.NewWeights(nd, k, maxR)
	s2y := make([]float64, nd)
	for d := range s2y {
		s2y[d] = 1
	}

	sweeps := in.NIter
	if e.cfg.MaxSweeps > 0 {
		sweeps = min(sweeps, e.cfg.MaxSweeps)
	}
	log := logger.FromContext(ctx)
	progress := log.Debug
	if in.Verbose {
		progress = log.Info
	}

	for sweep := 0; sweep < sweeps; sweep++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := fit(b, z, dims, in.S2B); err != nil {
			return nil, err
		}
		e.noise(s2y, b, z, dims)
		flips := flip(z, b, dims, s2y, in.Bias, in.Alpha)
		progress("ridge sweep", "sweep", sweep+1, "flips", flips, "active", floats.Sum(z.RawMatrix().Data))
		if flips == 0 {
			break
		}
	}
	if err := fit(b, z, dims, in.S2B); err != nil {
		return nil, err
	}
	e.noise(s2y, b, z, dims)

	out := &glfm.EngineOutput{
		Z:     mat.DenseCopyOf(z.T()),
		B:     b,
		Theta: make([][]float64, nd),
		Mu:    make([]float64, nd),
		W:     make([]float64, nd),
		S2Y:   s2y,
	}
	for d, dm := range dims {
		out.Mu[d] = dm.mu
		out.W[d] = dm.w
		out.Theta[d] = padThresholds(dm.theta, maxR-1)
	}
	return out, nil
}

// pseudoObservations maps the observed values of dimension d through the
// inverse of its link.
func pseudoObservations(in *glfm.EngineInput, d int) (dim, error) {
	_, n := in.X.Dims()
	t := in.Types[d]
	dm := dim{t: t, r: 1, obs: make([]bool, n), mu: 0, w: 1}

	var (
		vals []float64
		rank map[float64]int // label to 1-based level, observed labels only
	)
	for i := 0; i < n; i++ {
		v := in.X.At(d, i)
		if v == in.Missing || math.IsNaN(v) {
			continue
		}
		dm.obs[i] = true
		vals = append(vals, v)
	}

	switch t {
	case link.Real:
		if len(vals) > 0 {
			mean, std := stat.MeanStdDev(vals, nil)
			dm.mu = mean
			if std > 0 && !math.IsNaN(std) {
				dm.w = 1 / std
			}
		}
	case link.Positive, link.Count:
		shift := 0.0
		if t == link.Count {
			shift = 0.5
		}
		if len(vals) > 0 {
			if hi := floats.Max(vals) + shift; hi > 0 {
				dm.w = 2 / hi
			}
		}
	case link.Categorical, link.Ordinal:
		labels := slices.Clone(vals)
		slices.Sort(labels)
		labels = slices.Compact(labels)
		if len(labels) > 0 && labels[0] < 1 {
			return dim{}, fmt.Errorf("%w: dimension %d has label %v below 1", glfm.ErrInvalidInput, d, labels[0])
		}
		rank = make(map[float64]int, len(labels))
		for r, v := range labels {
			rank[v] = r + 1
		}
		levels := max(len(labels), 1)
		if t == link.Categorical {
			dm.r = levels
		} else {
			centre := float64(levels+1) / 2
			dm.theta = make([]float64, levels-1)
			for r := range dm.theta {
				dm.theta[r] = float64(r+1) + 0.5 - centre
			}
		}
	default:
		return dim{}, fmt.Errorf("%w: %q", glfm.ErrUnknownType, byte(t))
	}

	dm.y = make([][]float64, dm.r)
	for r := range dm.y {
		dm.y[r] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		if !dm.obs[i] {
			continue
		}
		x := in.X.At(d, i)
		switch t {
		case link.Real:
			dm.y[0][i] = dm.w * (x - dm.mu)
		case link.Positive:
			dm.y[0][i] = link.SoftplusInv(math.Max(dm.w*x, 1e-6))
		case link.Count:
			dm.y[0][i] = link.SoftplusInv(dm.w * (x + 0.5))
		case link.Categorical:
			for r := range dm.y {
				dm.y[r][i] = -1
			}
			dm.y[rank[x]-1][i] = 1
		case link.Ordinal:
			dm.y[0][i] = float64(rank[x]) - float64(len(dm.theta)+2)/2
		}
	}
	return dm, nil
}

// fit solves (Z_oᵀZ_o + I/s2B) b = Z_oᵀy_o for every weight slice in use.
func fit(b glfm.Weights, z *mat.Dense, dims []dim, s2b float64) error {
	n, k := z.Dims()
	a := mat.NewSymDense(k, nil)
	rhs := mat.NewVecDense(k, nil)
	sol := mat.NewVecDense(k, nil)
	var chol mat.Cholesky
	for d, dm := range dims {
		a.Zero()
		for i := 0; i < k; i++ {
			a.SetSym(i, i, 1/s2b)
		}
		for i := 0; i < n; i++ {
			if dm.obs[i] {
				a.SymRankOne(a, 1, z.RowView(i))
			}
		}
		if ok := chol.Factorize(a); !ok {
			return fmt.Errorf("dimension %d: %w", d, ErrSingular)
		}
		for r, y := range dm.y {
			rhs.Zero()
			for i := 0; i < n; i++ {
				if dm.obs[i] {
					rhs.AddScaledVec(rhs, y[i], z.RowView(i))
				}
			}
			if err := chol.SolveVecTo(sol, rhs); err != nil {
				return fmt.Errorf("dimension %d: %w", d, err)
			}
			for j := 0; j < k; j++ {
				b.Set(d, j, r, sol.AtVec(j))
			}
		}
	}
	return nil
}

// noise sets s2y to the mean squared residual of every dimension.
func (e *Engine) noise(s2y []float64, b glfm.Weights, z *mat.Dense, dims []dim) {
	n, _ := z.Dims()
	for d, dm := range dims {
		var sum float64
		var cnt int
		for i := 0; i < n; i++ {
			if !dm.obs[i] {
				continue
			}
			row := z.RawRowView(i)
			for r, y := range dm.y {
				res := y[i] - b.Dot(d, r, row)
				sum += res * res
				cnt++
			}
		}
		v := 1.0
		if cnt > 0 {
			v = sum / float64(cnt)
		}
		s2y[d] = math.Max(v, e.cfg.MinNoise)
	}
}

// flip toggles single non-bias entries of z when that lowers the
// noise-weighted squared error plus 1/alpha per active feature. It returns
// the number of entries changed.
func flip(z *mat.Dense, b glfm.Weights, dims []dim, s2y []float64, bias int, alpha float64) int {
	n, k := z.Dims()
	penalty := 1 / alpha
	flips := 0
	for i := 0; i < n; i++ {
		row := z.RawRowView(i)
		cur := rowCost(row, i, b, dims, s2y, penalty)
		for j := bias; j < k; j++ {
			row[j] = 1 - row[j]
			next := rowCost(row, i, b, dims, s2y, penalty)
			if next < cur {
				cur = next
				flips++
				continue
			}
			row[j] = 1 - row[j]
		}
	}
	return flips
}

func rowCost(row []float64, i int, b glfm.Weights, dims []dim, s2y []float64, penalty float64) float64 {
	cost := penalty * floats.Sum(row)
	for d, dm := range dims {
		if !dm.obs[i] {
			continue
		}
		for r, y := range dm.y {
			res := y[i] - b.Dot(d, r, row)
			cost += res * res / (2 * s2y[d])
		}
	}
	return cost
}

// padThresholds extends theta to n ascending entries.
func padThresholds(theta []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, theta)
	for r := len(theta); r < n; r++ {
		if r == 0 {
			out[r] = 0
			continue
		}
		out[r] = out[r-1] + 1
	}
	return out
}
