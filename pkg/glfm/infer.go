package glfm

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/glfm/internal/logger"
)

const (
	// initFeatures and initDensity shape the random Z used when the caller
	// does not supply one.
	initFeatures = 2
	initDensity  = 0.2
)

// Model couples an inference engine with the caller's partial options.
type Model struct {
	Engine Engine
	Params Params
}

// Infer normalises data, runs the engine and returns the learned latent
// state. If hidden carries a Z it is used as the initial feature matrix.
func (m *Model) Infer(ctx context.Context, data Data, hidden *LatentState) (*LatentState, error) {
	st, _, _, err := m.infer(ctx, data, hidden)
	return st, err
}

func (m *Model) infer(ctx context.Context, data Data, hidden *LatentState) (*LatentState, *dataset, Options, error) {
	if err := data.validate(); err != nil {
		return nil, nil, Options{}, err
	}
	if m.Engine == nil {
		return nil, nil, Options{}, fmt.Errorf("%w: no inference engine configured", ErrInvalidInput)
	}
	_, dims := data.X.Dims()
	opts, err := Resolve(dims, m.Params)
	if err != nil {
		return nil, nil, Options{}, err
	}
	ds, err := normalize(data, opts)
	if err != nil {
		return nil, nil, Options{}, err
	}
	z0, err := initialZ(ds.n, hidden, opts)
	if err != nil {
		return nil, nil, Options{}, err
	}
	_, k := z0.Dims()

	transform := make([]float64, dims)
	for i := range transform {
		transform[i] = 1
	}
	in := &EngineInput{
		X:         mat.DenseCopyOf(ds.x.T()),
		Types:     slices.Clone(ds.types),
		Z:         mat.DenseCopyOf(z0.T()),
		Transform: transform,
		Bias:      opts.Bias,
		S2U:       opts.S2U,
		S2B:       opts.S2B,
		Alpha:     opts.Alpha,
		NIter:     opts.NIter,
		MaxK:      max(opts.MaxK, k),
		Missing:   opts.Missing,
		Verbose:   opts.Verbose != 0,
	}

	id := uuid.NewString()
	log := logger.FromContext(ctx).With("run", id)
	progress := log.Debug
	if opts.Verbose != 0 {
		progress = log.Info
	}
	progress("starting inference", "n", ds.n, "d", dims, "k", k, "niter", opts.NIter)

	start := time.Now()
	out, err := m.Engine.Infer(ctx, in)
	if err != nil {
		return nil, nil, Options{}, err
	}
	elapsed := time.Since(start)
	if err := checkEngineOutput(out, ds.n, dims); err != nil {
		return nil, nil, Options{}, err
	}
	progress("inference finished", "elapsed", elapsed, "k", out.B.K)

	st := &LatentState{
		ID:      id,
		Z:       mat.DenseCopyOf(out.Z.T()),
		B:       out.B,
		Theta:   out.Theta,
		Mu:      out.Mu,
		W:       out.W,
		S2Y:     out.S2Y,
		R:       ds.cardinality(),
		Offset:  slices.Clone(ds.offset),
		Labels:  ds.labels,
		Elapsed: elapsed,
	}
	return st, ds, opts, nil
}

// initialZ returns a copy of the caller's Z, or a sparse random binary
// matrix with an optional leading bias column.
func initialZ(n int, hidden *LatentState, opts Options) (*mat.Dense, error) {
	if hidden != nil && hidden.Z != nil && !hidden.Z.IsEmpty() {
		rows, _ := hidden.Z.Dims()
		if rows != n {
			return nil, fmt.Errorf("%w: initial Z has %d rows, data has %d observations", ErrDimensionMismatch, rows, n)
		}
		return mat.DenseCopyOf(hidden.Z), nil
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	k := initFeatures + opts.Bias
	z := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		if opts.Bias == 1 {
			z.Set(i, 0, 1)
		}
		for j := opts.Bias; j < k; j++ {
			if rng.Float64() > 1-initDensity {
				z.Set(i, j, 1)
			}
		}
	}
	return z, nil
}

func checkEngineOutput(out *EngineOutput, n, dims int) error {
	if out == nil || out.Z == nil || out.Z.IsEmpty() {
		return fmt.Errorf("%w: engine returned no latent features", ErrInvalidInput)
	}
	k, cols := out.Z.Dims()
	switch {
	case cols != n:
		return fmt.Errorf("%w: engine Z covers %d observations, want %d", ErrDimensionMismatch, cols, n)
	case out.B.D != dims || out.B.K != k:
		return fmt.Errorf("%w: engine B is %dx%d, want %dx%d", ErrDimensionMismatch, out.B.D, out.B.K, dims, k)
	case len(out.B.Data) != out.B.D*out.B.K*out.B.R:
		return fmt.Errorf("%w: engine B holds %d values", ErrDimensionMismatch, len(out.B.Data))
	case len(out.Theta) != dims || len(out.Mu) != dims || len(out.W) != dims || len(out.S2Y) != dims:
		return fmt.Errorf("%w: engine parameters do not cover %d dimensions", ErrDimensionMismatch, dims)
	}
	return nil
}
