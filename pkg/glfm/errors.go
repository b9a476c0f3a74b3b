package glfm

import (
	"errors"

	"github.com/samcharles93/glfm/pkg/glfm/link"
)

var (
	// ErrInvalidInput covers malformed data, options or query arguments.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDimensionMismatch is returned when a query's latent feature count
	// differs from the learned one, or a grid does not match R.
	ErrDimensionMismatch = link.ErrDimensionMismatch
	// ErrUnknownType is returned for a type code outside {g,p,c,o,n}.
	ErrUnknownType = link.ErrUnknownType
	// ErrNonFinite is returned when a decoded value or density is NaN or Inf.
	ErrNonFinite = link.ErrNonFinite
)
