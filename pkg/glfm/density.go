package glfm

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/glfm/pkg/glfm/link"
)

// Density is a posterior predictive evaluated on a support grid: PDF has one
// row per query and one column per grid point.
type Density struct {
	Grid []float64
	PDF  *mat.Dense
}

// ComputePDF evaluates the predictive density of dimension d for every query
// row of zp. data is in the caller's observation domain and only serves to
// derive the support: numS evenly spaced points between the observed extremes
// for real and positive columns, every integer in range for count columns,
// and the sorted distinct labels for categorical and ordinal columns.
func ComputePDF(data Data, d int, zp mat.Matrix, st *LatentState, opts Options) (*Density, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	if err := st.validate(); err != nil {
		return nil, err
	}
	nd, k := st.Dims()
	if _, cols := data.X.Dims(); cols != nd {
		return nil, fmt.Errorf("%w: data has %d columns, model has %d dimensions", ErrDimensionMismatch, cols, nd)
	}
	if d < 0 || d >= nd {
		return nil, fmt.Errorf("%w: dimension %d out of range [0,%d)", ErrInvalidInput, d, nd)
	}
	rows, err := queryRows(zp, k)
	if err != nil {
		return nil, err
	}

	vals := data.observed(d, opts.Missing)
	if len(vals) == 0 {
		return nil, fmt.Errorf("%w: dimension %d has no observed values", ErrInvalidInput, d)
	}
	var off float64
	if data.Types[d].Discrete() {
		off = st.offset(d)
	}
	tr := opts.transform(d)
	for i, v := range vals {
		v -= off
		if tr != nil {
			v = tr.Forward(v)
		}
		vals[i] = v
	}
	t := opts.effectiveType(d, data.Types[d])
	grid, err := supportGrid(t, vals, max(opts.NumS, 1))
	if err != nil {
		return nil, fmt.Errorf("dimension %d: %w", d, err)
	}

	l, err := st.linkFor(d, t, opts.S2U)
	if err != nil {
		return nil, err
	}
	pdf := mat.NewDense(len(rows), len(grid), nil)
	s := make([]float64, l.Scores())
	for p, z := range rows {
		row, err := l.Density(grid, st.scores(s, d, z))
		if err != nil {
			return nil, fmt.Errorf("dimension %d: %w", d, err)
		}
		pdf.SetRow(p, row)
	}

	if tr != nil {
		for i, x := range grid {
			grid[i] = tr.Inverse(x)
		}
		if t == link.Real || t == link.Positive {
			for i, x := range grid {
				jac := math.Abs(tr.ForwardDeriv(x))
				for p := range rows {
					pdf.Set(p, i, pdf.At(p, i)*jac)
				}
			}
		}
		if err := checkFinite(grid, pdf); err != nil {
			return nil, fmt.Errorf("dimension %d: %w", d, err)
		}
	}
	if off != 0 {
		floats.AddConst(off, grid)
	}
	return &Density{Grid: grid, PDF: pdf}, nil
}

// supportGrid builds the evaluation points for type t from the observed
// values of a column, in the model domain.
func supportGrid(t link.DataType, vals []float64, numS int) ([]float64, error) {
	lo, hi := floats.Min(vals), floats.Max(vals)
	switch t {
	case link.Real, link.Positive:
		if numS == 1 {
			return []float64{lo}, nil
		}
		return floats.Span(make([]float64, numS), lo, hi), nil
	case link.Count:
		first, last := math.Ceil(lo), math.Floor(hi)
		if first > last {
			return nil, fmt.Errorf("%w: no integer between %v and %v", ErrInvalidInput, lo, hi)
		}
		grid := make([]float64, 0, int(last-first)+1)
		for x := first; x <= last; x++ {
			grid = append(grid, x)
		}
		return grid, nil
	case link.Categorical, link.Ordinal:
		labels := slices.Clone(vals)
		slices.Sort(labels)
		return slices.Compact(labels), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, byte(t))
	}
}

func checkFinite(grid []float64, pdf *mat.Dense) error {
	rows, cols := pdf.Dims()
	for j := 0; j < cols; j++ {
		if math.IsNaN(grid[j]) || math.IsInf(grid[j], 0) {
			return fmt.Errorf("%w: grid point %d is %v", ErrNonFinite, j, grid[j])
		}
		for i := 0; i < rows; i++ {
			if v := pdf.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: density of query %d at grid point %d is %v", ErrNonFinite, i, j, v)
			}
		}
	}
	return nil
}
