package ridge

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/glfm/internal/logger"
	"github.com/samcharles93/glfm/pkg/glfm"
	"github.com/samcharles93/glfm/pkg/glfm/link"
)

func quietContext() context.Context {
	return logger.WithContext(context.Background(), logger.Discard())
}

func TestInferShapes(t *testing.T) {
	t.Parallel()

	in := &glfm.EngineInput{
		X: mat.NewDense(3, 4, []float64{
			0.5, 1.5, -1, 2,
			1, 2, 1, 3,
			1, 3, 2, -1,
		}),
		Types: []link.DataType{link.Real, link.Categorical, link.Ordinal},
		Z: mat.NewDense(2, 4, []float64{
			1, 1, 1, 1,
			0, 1, 0, 1,
		}),
		Bias:    1,
		S2U:     0.01,
		S2B:     1,
		Alpha:   1,
		NIter:   5,
		MaxK:    3,
		Missing: -1,
	}
	out, err := New(DefaultConfig()).Infer(quietContext(), in)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if k, n := out.Z.Dims(); k != 2 || n != 4 {
		t.Fatalf("Z is %dx%d, want 2x4", k, n)
	}
	if out.B.D != 3 || out.B.K != 2 || out.B.R != 3 {
		t.Fatalf("B is %dx%dx%d, want 3x2x3", out.B.D, out.B.K, out.B.R)
	}
	for d := 0; d < 3; d++ {
		if len(out.Theta[d]) != 2 {
			t.Fatalf("theta %d has %d entries", d, len(out.Theta[d]))
		}
		if !(out.S2Y[d] > 0) {
			t.Fatalf("noise %d: %v", d, out.S2Y[d])
		}
	}
	if out.Theta[2][0] >= out.Theta[2][1] {
		t.Fatalf("ordinal thresholds not ascending: %v", out.Theta[2])
	}
	for i := 0; i < 4; i++ {
		if out.Z.At(0, i) != 1 {
			t.Fatalf("bias feature flipped for observation %d", i)
		}
	}
	if in.X.At(0, 2) != -1 {
		t.Fatalf("input modified")
	}
}

func TestInferIsDeterministic(t *testing.T) {
	t.Parallel()

	in := func() *glfm.EngineInput {
		return &glfm.EngineInput{
			X:       mat.NewDense(2, 5, []float64{1, 2, 3, 2, 1, 0.5, 4, 1, 3, 2}),
			Types:   []link.DataType{link.Count, link.Positive},
			Z:       mat.NewDense(2, 5, []float64{1, 0, 1, 0, 1, 0, 1, 1, 0, 0}),
			S2U:     0.01,
			S2B:     1,
			Alpha:   2,
			NIter:   10,
			MaxK:    2,
			Missing: -1,
		}
	}
	eng := New(Config{MaxSweeps: 10})
	a, err := eng.Infer(quietContext(), in())
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	b, err := eng.Infer(quietContext(), in())
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if !mat.Equal(a.Z, b.Z) {
		t.Fatalf("Z differs between runs")
	}
	for i := range a.B.Data {
		if a.B.Data[i] != b.B.Data[i] {
			t.Fatalf("B differs at %d", i)
		}
	}
}

func TestInferHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(quietContext())
	cancel()
	in := &glfm.EngineInput{
		X:     mat.NewDense(1, 2, []float64{1, 2}),
		Types: []link.DataType{link.Real},
		Z:     mat.NewDense(1, 2, []float64{1, 1}),
		S2B:   1,
		Alpha: 1,
		NIter: 3,
	}
	if _, err := New(DefaultConfig()).Infer(ctx, in); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestInferRejectsBadInput(t *testing.T) {
	t.Parallel()

	eng := New(DefaultConfig())
	if _, err := eng.Infer(quietContext(), nil); !errors.Is(err, glfm.ErrInvalidInput) {
		t.Fatalf("nil input: expected ErrInvalidInput, got %v", err)
	}
	in := &glfm.EngineInput{
		X:     mat.NewDense(1, 2, nil),
		Types: []link.DataType{link.Real},
		Z:     mat.NewDense(1, 3, nil),
		S2B:   1,
	}
	if _, err := eng.Infer(quietContext(), in); !errors.Is(err, glfm.ErrDimensionMismatch) {
		t.Fatalf("short Z: expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCompleteRecoversCategory(t *testing.T) {
	t.Parallel()

	m := &glfm.Model{
		Engine: New(DefaultConfig()),
		Params: glfm.Params{NIter: glfm.Ptr(0), Bias: glfm.Ptr(1), Verbose: glfm.Ptr(0)},
	}
	data := glfm.Data{
		X:     mat.NewDense(4, 1, []float64{1, 1, 2, math.NaN()}),
		Types: []link.DataType{link.Categorical},
	}
	hidden := &glfm.LatentState{Z: mat.NewDense(4, 2, []float64{1, 0, 1, 0, 1, 1, 1, 1})}
	out, st, err := m.Complete(quietContext(), data, hidden)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got := out.At(3, 0); got != 2 {
		t.Fatalf("imputed label: got %v want 2", got)
	}
	if st.R[0] != 2 {
		t.Fatalf("R: got %d want 2", st.R[0])
	}
}

func TestRealFitTracksFeature(t *testing.T) {
	t.Parallel()

	m := &glfm.Model{
		Engine: New(DefaultConfig()),
		Params: glfm.Params{NIter: glfm.Ptr(0), Bias: glfm.Ptr(1), Verbose: glfm.Ptr(0), S2B: glfm.Ptr(100.0)},
	}
	data := glfm.Data{
		X:     mat.NewDense(6, 1, []float64{0, 0, 0, 10, 10, 10}),
		Types: []link.DataType{link.Real},
	}
	z := mat.NewDense(6, 2, []float64{1, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 1})
	st, err := m.Infer(quietContext(), data, &glfm.LatentState{Z: z})
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	opts, err := glfm.Resolve(1, m.Params)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	est, err := glfm.ComputeMAP(data.Types, mat.NewDense(2, 2, []float64{1, 0, 1, 1}), st, opts)
	if err != nil {
		t.Fatalf("ComputeMAP: %v", err)
	}
	lo, hi := est.At(0, 0), est.At(1, 0)
	if math.Abs(lo) > 0.5 || math.Abs(hi-10) > 0.5 {
		t.Fatalf("estimates: got %v and %v, want about 0 and 10", lo, hi)
	}
}

func TestCompleteWithGappedLabels(t *testing.T) {
	t.Parallel()

	m := &glfm.Model{
		Engine: New(DefaultConfig()),
		Params: glfm.Params{NIter: glfm.Ptr(0), Bias: glfm.Ptr(1), Verbose: glfm.Ptr(0)},
	}
	data := glfm.Data{
		X:     mat.NewDense(4, 1, []float64{1, 1, 3, math.NaN()}),
		Types: []link.DataType{link.Categorical},
	}
	hidden := &glfm.LatentState{Z: mat.NewDense(4, 2, []float64{1, 0, 1, 0, 1, 1, 1, 1})}
	out, st, err := m.Complete(quietContext(), data, hidden)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got := out.At(3, 0); got != 3 {
		t.Fatalf("imputed label: got %v want 3", got)
	}
	if st.R[0] != 2 || st.B.R != 2 {
		t.Fatalf("R=%d B.R=%d, want 2 and 2", st.R[0], st.B.R)
	}
}
