package link

import "errors"

var (
	// ErrUnknownType is returned when a type code is not one of g, p, c, o, n.
	ErrUnknownType = errors.New("unknown data type")
	// ErrNonFinite is returned when an estimate or density is NaN or infinite.
	ErrNonFinite = errors.New("non-finite value")
	// ErrInvalidParams is returned when link parameters cannot define a
	// proper distribution (zero scale, non-positive variance, ...).
	ErrInvalidParams = errors.New("invalid link parameters")
	// ErrDimensionMismatch is returned when scores or grids have the wrong length.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
