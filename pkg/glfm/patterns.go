package glfm

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Patterns summarises the distinct rows of a binary feature matrix.
type Patterns struct {
	Rows   *mat.Dense // numP×K distinct rows, most frequent first
	Assign []int      // pattern index of every observation
	Counts []int      // observations per pattern, non-increasing
}

// FeaturePatterns lists the activation patterns of z, assigns every
// observation to its pattern and counts them. Patterns are ordered by
// descending count; ties keep the order in which they first appear.
func FeaturePatterns(z mat.Matrix) (Patterns, error) {
	if z == nil {
		return Patterns{}, fmt.Errorf("%w: feature matrix is not defined", ErrInvalidInput)
	}
	n, k := z.Dims()
	if n == 0 || k == 0 {
		return Patterns{}, fmt.Errorf("%w: feature matrix is empty", ErrInvalidInput)
	}

	index := make(map[string]int)
	var (
		rows   [][]float64
		counts []int
	)
	assign := make([]int, n)
	for i := 0; i < n; i++ {
		row := mat.Row(nil, i, z)
		for j, v := range row {
			if v == 0 {
				row[j] = 0 // -0 and 0 are the same feature value
			}
		}
		key := fmt.Sprint(row)
		p, ok := index[key]
		if !ok {
			p = len(rows)
			index[key] = p
			rows = append(rows, row)
			counts = append(counts, 0)
		}
		assign[i] = p
		counts[p]++
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return counts[b] - counts[a]
	})
	rank := make([]int, len(order))
	out := Patterns{
		Rows:   mat.NewDense(len(order), k, nil),
		Assign: make([]int, n),
		Counts: make([]int, len(order)),
	}
	for newIdx, oldIdx := range order {
		rank[oldIdx] = newIdx
		out.Rows.SetRow(newIdx, rows[oldIdx])
		out.Counts[newIdx] = counts[oldIdx]
	}
	for i, p := range assign {
		out.Assign[i] = rank[p]
	}
	return out, nil
}

// String renders one "index. [row]: count" line per pattern.
func (p Patterns) String() string {
	var b strings.Builder
	for i, c := range p.Counts {
		fmt.Fprintf(&b, "%d. %v: %d\n", i, mat.Row(nil, i, p.Rows), c)
	}
	return b.String()
}
