package glfm

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/glfm/pkg/glfm/link"
)

// Engine is the posterior inference routine. It is treated as an opaque,
// blocking call: Model.Infer marshals its inputs, and its error, if any, is
// returned to the caller unchanged.
type Engine interface {
	Infer(ctx context.Context, in *EngineInput) (*EngineOutput, error)
}

// EngineInput is the feature-major view of a normalised dataset.
type EngineInput struct {
	X     *mat.Dense // D×N observations, Missing in missing cells
	Types []link.DataType
	Z     *mat.Dense // K×N initial latent features

	// Transform selects the engine's internal transform per dimension.
	Transform []float64

	Bias    int
	S2U     float64
	S2B     float64
	Alpha   float64
	NIter   int
	MaxK    int
	Missing float64
	Verbose bool
}

// EngineOutput holds the posterior draws in the engine's layout.
type EngineOutput struct {
	Z     *mat.Dense  // K×N
	B     Weights     // D×K×maxR
	Theta [][]float64 // D×(maxR-1)
	Mu    []float64
	W     []float64
	S2Y   []float64
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, in *EngineInput) (*EngineOutput, error)

func (f EngineFunc) Infer(ctx context.Context, in *EngineInput) (*EngineOutput, error) {
	return f(ctx, in)
}
