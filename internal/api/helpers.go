package api

import (
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a row-major matrix on the wire. A null cell is NaN.
type Matrix [][]*float64

// Dense converts m, rejecting empty and ragged input.
func (m Matrix) Dense(name string) (*mat.Dense, error) {
	if len(m) == 0 || len(m[0]) == 0 {
		return nil, newInvalidRequest(name + " is required and must not be empty")
	}
	cols := len(m[0])
	out := mat.NewDense(len(m), cols, nil)
	for i, row := range m {
		if len(row) != cols {
			return nil, newInvalidRequest(fmt.Sprintf("%s: row %d has %d cells, want %d", name, i, len(row), cols))
		}
		for j, v := range row {
			if v == nil {
				out.Set(i, j, math.NaN())
				continue
			}
			out.Set(i, j, *v)
		}
	}
	return out, nil
}

func toMatrix(m mat.Matrix) Matrix {
	rows, cols := m.Dims()
	out := make(Matrix, rows)
	for i := range out {
		out[i] = make([]*float64, cols)
		for j := range out[i] {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			out[i][j] = &v
		}
	}
	return out
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, newInvalidRequest(err.Error())
	}
	return out, nil
}

// writeJSON encodes v with go-json.
func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	c.Set(statusKey, status)
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res.WriteHeader(status)
	_, err = res.Write(b)
	return err
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

// writeFailure reports err with the status its kind maps to.
func writeFailure(c *echo.Context, err error) error {
	status, errType := classify(err)
	return writeError(c, status, errType, err.Error())
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	c.Set(statusKey, status)
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
		},
	})
}
