package glfm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/glfm/pkg/glfm/link"
)

// ComputeMAP decodes the MAP estimate of every requested dimension for each
// query row of zp. zp is either a P×K matrix or a single K-vector. With no
// dims all D dimensions are decoded. The result is P×len(dims).
//
// Categorical and ordinal estimates are labels in the 1-based model space;
// Relabel maps them back to the labels of the original data.
func ComputeMAP(types []link.DataType, zp mat.Matrix, st *LatentState, opts Options, dims ...int) (*mat.Dense, error) {
	if err := st.validate(); err != nil {
		return nil, err
	}
	nd, k := st.Dims()
	if len(types) != nd {
		return nil, fmt.Errorf("%w: %d type codes for %d learned dimensions", ErrInvalidInput, len(types), nd)
	}
	rows, err := queryRows(zp, k)
	if err != nil {
		return nil, err
	}
	if len(dims) == 0 {
		dims = make([]int, nd)
		for i := range dims {
			dims[i] = i
		}
	}
	for _, d := range dims {
		if d < 0 || d >= nd {
			return nil, fmt.Errorf("%w: dimension %d out of range [0,%d)", ErrInvalidInput, d, nd)
		}
	}

	out := mat.NewDense(len(rows), len(dims), nil)
	for c, d := range dims {
		l, err := st.linkFor(d, opts.effectiveType(d, types[d]), opts.S2U)
		if err != nil {
			return nil, err
		}
		tr := opts.transform(d)
		s := make([]float64, l.Scores())
		for p, z := range rows {
			v, err := l.Estimate(st.scores(s, d, z))
			if err != nil {
				return nil, fmt.Errorf("dimension %d: %w", d, err)
			}
			if tr != nil {
				v = tr.Inverse(v)
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, fmt.Errorf("%w: dimension %d: inverse transform gives %v", ErrNonFinite, d, v)
				}
			}
			out.Set(p, c, v)
		}
	}
	return out, nil
}

// Relabel maps the categorical and ordinal columns of est, a ComputeMAP
// result for dims, back to the labels of the data Infer saw: model label r
// becomes the r-th smallest observed label.
func (s *LatentState) Relabel(types []link.DataType, est *mat.Dense, dims ...int) {
	rows, cols := est.Dims()
	for c := 0; c < cols; c++ {
		d := c
		if len(dims) > 0 {
			if c >= len(dims) {
				break
			}
			d = dims[c]
		}
		if d < 0 || d >= len(types) || !types[d].Discrete() {
			continue
		}
		for p := 0; p < rows; p++ {
			est.Set(p, c, s.label(d, est.At(p, c)))
		}
	}
}

// queryRows splits a query matrix into rows of length k.
func queryRows(zp mat.Matrix, k int) ([][]float64, error) {
	if zp == nil {
		return nil, fmt.Errorf("%w: query latent features are not defined", ErrInvalidInput)
	}
	if v, ok := zp.(mat.Vector); ok {
		if v.Len() != k {
			return nil, fmt.Errorf("%w: query has %d latent features, model has %d", ErrDimensionMismatch, v.Len(), k)
		}
		row := make([]float64, k)
		for i := range row {
			row[i] = v.AtVec(i)
		}
		return [][]float64{row}, nil
	}
	p, k2 := zp.Dims()
	if k2 != k {
		return nil, fmt.Errorf("%w: query has %d latent features, model has %d", ErrDimensionMismatch, k2, k)
	}
	if p == 0 {
		return nil, fmt.Errorf("%w: query has no rows", ErrInvalidInput)
	}
	rows := make([][]float64, p)
	for i := range rows {
		rows[i] = mat.Row(nil, i, zp)
	}
	return rows, nil
}
