// Package dataio loads observation matrices for the CLI and the API.
package dataio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrEmpty is returned for input without any data rows.
var ErrEmpty = errors.New("no data rows")

// ReadMatrix parses comma-separated rows of numbers. Empty cells and the
// tokens nan, NaN and NA are read as NaN. Lines starting with '#' are
// skipped. Every row must have the same number of cells.
func ReadMatrix(r io.Reader) (*mat.Dense, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = 0

	var (
		data []float64
		cols int
		rows int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && errors.Is(perr.Err, csv.ErrFieldCount) {
				return nil, fmt.Errorf("row %d: has %d cells, want %d", perr.StartLine, len(rec), cols)
			}
			return nil, err
		}
		if rows == 0 {
			cols = len(rec)
		}
		for j, cell := range rec {
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", rows+1, j+1, err)
			}
			data = append(data, v)
		}
		rows++
	}
	if rows == 0 {
		return nil, ErrEmpty
	}
	return mat.NewDense(rows, cols, data), nil
}

// ReadFile opens path and reads it with ReadMatrix.
func ReadFile(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := ReadMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// WriteMatrix writes m as comma-separated rows. NaN cells are written
// empty so the output reads back with ReadMatrix.
func WriteMatrix(w io.Writer, m mat.Matrix) error {
	cw := csv.NewWriter(w)
	rows, cols := m.Dims()
	rec := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := range rec {
			v := m.At(i, j)
			if math.IsNaN(v) {
				rec[j] = ""
				continue
			}
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseCell(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	switch s {
	case "", "nan", "NaN", "NA":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}
