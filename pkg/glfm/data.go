package glfm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/glfm/pkg/glfm/link"
)

// Data is an observation matrix with one type code per column. Missing
// cells are NaN or equal to the configured sentinel.
type Data struct {
	X     *mat.Dense
	Types []link.DataType
}

func (d Data) validate() error {
	if d.X == nil || d.X.IsEmpty() {
		return fmt.Errorf("%w: observation matrix X is not defined", ErrInvalidInput)
	}
	_, dims := d.X.Dims()
	if d.Types == nil {
		return fmt.Errorf("%w: type vector is not defined", ErrInvalidInput)
	}
	if len(d.Types) != dims {
		return fmt.Errorf("%w: %d type codes for %d columns", ErrInvalidInput, len(d.Types), dims)
	}
	for i, t := range d.Types {
		if !t.Valid() {
			return fmt.Errorf("%w: dimension %d: %w", ErrInvalidInput, i, fmt.Errorf("%w: %q", ErrUnknownType, byte(t)))
		}
	}
	return nil
}

// HasMissing reports whether any cell is NaN or equal to sentinel.
func (d Data) HasMissing(sentinel float64) bool {
	if d.X == nil || d.X.IsEmpty() {
		return false
	}
	rows, cols := d.X.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if isMissing(d.X.At(i, j), sentinel) {
				return true
			}
		}
	}
	return false
}

// observed returns the non-missing values of column j.
func (d Data) observed(j int, sentinel float64) []float64 {
	rows, _ := d.X.Dims()
	out := make([]float64, 0, rows)
	for i := 0; i < rows; i++ {
		if v := d.X.At(i, j); !isMissing(v, sentinel) {
			out = append(out, v)
		}
	}
	return out
}

func isMissing(v, sentinel float64) bool {
	return math.IsNaN(v) || v == sentinel
}
