package glfm

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/glfm/pkg/glfm/link"
)

// dataset is the normalised form of Data that inference works on. The
// caller's Data is never modified.
type dataset struct {
	n, d int

	// x holds observed values in the model domain and the sentinel in
	// missing cells. Only the engine boundary reads the sentinel; the rest
	// of the package consults observed.
	x        *mat.Dense
	observed []bool // row-major n×d
	types    []link.DataType

	// offset[j] is what was subtracted from the labels of a categorical or
	// ordinal column so that they start at 1 (min-1). Zero otherwise.
	offset []float64
	// labels[j] is the sorted distinct observed labels of a categorical or
	// ordinal column in the caller's label space. Nil otherwise.
	labels [][]float64
}

// normalize substitutes the sentinel for NaN, renumbers categorical and
// ordinal labels to start at 1 and applies any external transforms.
func normalize(data Data, opts Options) (*dataset, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	n, d := data.X.Dims()
	if err := opts.validate(d); err != nil {
		return nil, err
	}

	ds := &dataset{
		n:        n,
		d:        d,
		x:        mat.NewDense(n, d, nil),
		observed: make([]bool, n*d),
		types:    slices.Clone(data.Types),
		offset:   make([]float64, d),
		labels:   make([][]float64, d),
	}

	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			v := data.X.At(i, j)
			if isMissing(v, opts.Missing) {
				ds.x.Set(i, j, opts.Missing)
				continue
			}
			ds.x.Set(i, j, v)
			ds.observed[i*d+j] = true
		}
	}

	for j, t := range data.Types {
		if !t.Discrete() {
			continue
		}
		var labels []float64
		for i := 0; i < n; i++ {
			if !ds.isObserved(i, j) {
				continue
			}
			v := ds.x.At(i, j)
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("%w: %s column %d has non-integer label %v at row %d", ErrInvalidInput, t, j, v, i)
			}
			labels = append(labels, v)
		}
		if len(labels) == 0 {
			continue
		}
		slices.Sort(labels)
		ds.labels[j] = slices.Compact(labels)
		ds.offset[j] = ds.labels[j][0] - 1
		for i := 0; i < n; i++ {
			if ds.isObserved(i, j) {
				ds.x.Set(i, j, ds.x.At(i, j)-ds.offset[j])
			}
		}
	}

	for j := range ds.types {
		tr := opts.transform(j)
		if tr == nil {
			continue
		}
		for i := 0; i < n; i++ {
			if !ds.isObserved(i, j) {
				continue
			}
			v := tr.Forward(ds.x.At(i, j))
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: transform of column %d row %d gives %v", ErrInvalidInput, j, i, v)
			}
			ds.x.Set(i, j, v)
		}
		ds.types[j] = tr.Type
	}
	return ds, nil
}

func (ds *dataset) isObserved(i, j int) bool {
	return ds.observed[i*ds.d+j]
}

// missingCells lists (row, column) pairs of every missing cell in row-major
// order.
func (ds *dataset) missingCells() [][2]int {
	var out [][2]int
	for i := 0; i < ds.n; i++ {
		for j := 0; j < ds.d; j++ {
			if !ds.isObserved(i, j) {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}

// cardinality is the number of distinct observed labels of every
// categorical or ordinal column, and 1 for every other column.
func (ds *dataset) cardinality() []int {
	r := make([]int, ds.d)
	for j, t := range ds.types {
		if !t.Discrete() {
			r[j] = 1
			continue
		}
		if ds.labels[j] != nil {
			r[j] = len(ds.labels[j])
			continue
		}
		seen := make(map[float64]struct{})
		for i := 0; i < ds.n; i++ {
			if ds.isObserved(i, j) {
				seen[ds.x.At(i, j)] = struct{}{}
			}
		}
		r[j] = len(seen)
	}
	return r
}
