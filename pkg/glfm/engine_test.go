package glfm

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/glfm/internal/logger"
)

// fakeEngine records its input and returns a state with zero weights, unit
// scales and unit noise, sized from the input.
type fakeEngine struct {
	calls int
	in    *EngineInput
	err   error
}

func (f *fakeEngine) Infer(_ context.Context, in *EngineInput) (*EngineOutput, error) {
	f.calls++
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	d, n := in.X.Dims()
	k, _ := in.Z.Dims()
	maxR := 1
	for j, t := range in.Types {
		if !t.Discrete() {
			continue
		}
		for i := 0; i < n; i++ {
			if v := in.X.At(j, i); v != in.Missing {
				maxR = max(maxR, int(v))
			}
		}
	}
	out := &EngineOutput{
		Z:     mat.DenseCopyOf(in.Z),
		B:     NewWeights(d, k, maxR),
		Theta: make([][]float64, d),
		Mu:    make([]float64, d),
		W:     make([]float64, d),
		S2Y:   make([]float64, d),
	}
	for j := 0; j < d; j++ {
		th := make([]float64, maxR-1)
		for r := range th {
			th[r] = float64(r)
		}
		out.Theta[j] = th
		out.W[j] = 1
		out.S2Y[j] = 1
	}
	return out, nil
}

func quietContext() context.Context {
	return logger.WithContext(context.Background(), logger.Discard())
}

func mustDense(t *testing.T, rows [][]float64) *mat.Dense {
	t.Helper()
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, r := range rows {
		m.SetRow(i, r)
	}
	return m
}

func isFiniteValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func TestEngineFunc(t *testing.T) {
	t.Parallel()

	var called bool
	e := EngineFunc(func(_ context.Context, in *EngineInput) (*EngineOutput, error) {
		called = in != nil
		return nil, nil
	})
	if _, err := e.Infer(context.Background(), &EngineInput{}); err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if !called {
		t.Fatalf("expected the wrapped function to run")
	}
}
