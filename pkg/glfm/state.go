package glfm

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/glfm/pkg/glfm/link"
)

// Weights is the D×K×maxR weight tensor B. For dimension d only the first
// R[d] slices along the last axis are meaningful (one slice for
// non-categorical dimensions).
type Weights struct {
	D, K, R int
	Data    []float64
}

// NewWeights allocates a zeroed tensor.
func NewWeights(d, k, r int) Weights {
	return Weights{D: d, K: k, R: r, Data: make([]float64, d*k*r)}
}

func (w Weights) index(d, k, r int) int {
	if d < 0 || d >= w.D || k < 0 || k >= w.K || r < 0 || r >= w.R {
		panic("weights index out of range")
	}
	return (d*w.K+k)*w.R + r
}

func (w Weights) At(d, k, r int) float64 { return w.Data[w.index(d, k, r)] }

func (w Weights) Set(d, k, r int, v float64) { w.Data[w.index(d, k, r)] = v }

// Dot returns the score ⟨z, B[d,:,r]⟩.
func (w Weights) Dot(d, r int, z []float64) float64 {
	var s float64
	for k, zk := range z {
		s += zk * w.At(d, k, r)
	}
	return s
}

// LatentState is everything inference learns about a dataset: the latent
// features of every observation and the per-dimension parameters of the
// observation model.
type LatentState struct {
	// ID identifies one inference run in logs and in the API store.
	ID string

	Z     *mat.Dense  // N×K latent features
	B     Weights     // D×K×maxR weights
	Theta [][]float64 // D×(maxR-1) ordinal thresholds
	Mu    []float64   // per-dimension shift
	W     []float64   // per-dimension scale
	S2Y   []float64   // per-dimension pseudo-observation noise
	R     []int       // distinct labels per categorical/ordinal dimension

	// Offset maps 1-based model labels back to the caller's label space:
	// original = label + Offset[d]. Nil means no shift.
	Offset []float64

	// Labels holds the sorted distinct observed labels of every
	// categorical or ordinal dimension in the caller's label space; model
	// label r decodes to Labels[d][r-1]. Nil, or a nil entry, falls back to
	// Offset.
	Labels [][]float64

	Elapsed time.Duration
}

// Dims returns the number of dimensions D and latent features K.
func (s *LatentState) Dims() (d, k int) {
	return s.B.D, s.B.K
}

func (s *LatentState) validate() error {
	if s == nil {
		return fmt.Errorf("%w: latent state is not defined", ErrInvalidInput)
	}
	d := s.B.D
	if len(s.B.Data) != s.B.D*s.B.K*s.B.R {
		return fmt.Errorf("%w: weight tensor holds %d values for shape %dx%dx%d", ErrInvalidInput, len(s.B.Data), s.B.D, s.B.K, s.B.R)
	}
	if len(s.Mu) != d || len(s.W) != d || len(s.S2Y) != d || len(s.R) != d || len(s.Theta) != d {
		return fmt.Errorf("%w: per-dimension parameters do not match %d dimensions", ErrInvalidInput, d)
	}
	if s.Offset != nil && len(s.Offset) != d {
		return fmt.Errorf("%w: %d label offsets for %d dimensions", ErrInvalidInput, len(s.Offset), d)
	}
	if s.Labels != nil && len(s.Labels) != d {
		return fmt.Errorf("%w: label sets for %d dimensions, want %d", ErrInvalidInput, len(s.Labels), d)
	}
	return nil
}

func (s *LatentState) offset(d int) float64 {
	if d < 0 || d >= len(s.Offset) {
		return 0
	}
	return s.Offset[d]
}

// label maps a 1-based model label of dimension d to the caller's label.
func (s *LatentState) label(d int, v float64) float64 {
	if d >= 0 && d < len(s.Labels) {
		if r := int(v) - 1; float64(r+1) == v && r >= 0 && r < len(s.Labels[d]) {
			return s.Labels[d][r]
		}
	}
	return v + s.offset(d)
}

// linkFor builds the observation model of dimension d modelled as type t.
func (s *LatentState) linkFor(d int, t link.DataType, s2u float64) (link.Link, error) {
	l, err := link.New(t, link.Params{
		Mu:    s.Mu[d],
		W:     s.W[d],
		S2Y:   s.S2Y[d],
		S2U:   s2u,
		R:     s.R[d],
		Theta: s.Theta[d],
	})
	if err != nil {
		return nil, fmt.Errorf("dimension %d: %w", d, err)
	}
	if l.Scores() > s.B.R {
		return nil, fmt.Errorf("%w: dimension %d needs %d weight slices, B has %d", ErrDimensionMismatch, d, l.Scores(), s.B.R)
	}
	return l, nil
}

// scores fills dst with ⟨z, B[d,:,r]⟩ for every slice the link consumes.
func (s *LatentState) scores(dst []float64, d int, z []float64) []float64 {
	for r := range dst {
		dst[r] = s.B.Dot(d, r, z)
	}
	return dst
}
