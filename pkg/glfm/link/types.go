package link

import "fmt"

// DataType identifies the likelihood of one observed dimension. The values
// are the single-letter codes used on the wire.
type DataType byte

const (
	Real        DataType = 'g'
	Positive    DataType = 'p'
	Categorical DataType = 'c'
	Ordinal     DataType = 'o'
	Count       DataType = 'n'
)

// Valid reports whether t is one of the five known types.
func (t DataType) Valid() bool {
	switch t {
	case Real, Positive, Categorical, Ordinal, Count:
		return true
	default:
		return false
	}
}

// Discrete reports whether observations of this type are labels that the
// normaliser renumbers to start at 1.
func (t DataType) Discrete() bool {
	return t == Categorical || t == Ordinal
}

func (t DataType) String() string {
	switch t {
	case Real:
		return "real"
	case Positive:
		return "positive"
	case Categorical:
		return "categorical"
	case Ordinal:
		return "ordinal"
	case Count:
		return "count"
	default:
		return fmt.Sprintf("DataType(%q)", byte(t))
	}
}

// ParseType converts a single type code.
func ParseType(c byte) (DataType, error) {
	t := DataType(c)
	if !t.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, c)
	}
	return t, nil
}

// ParseTypes converts a code string such as "gpcon" into a type vector.
func ParseTypes(s string) ([]DataType, error) {
	out := make([]DataType, len(s))
	for i := 0; i < len(s); i++ {
		t, err := ParseType(s[i])
		if err != nil {
			return nil, fmt.Errorf("dimension %d: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}

// FormatTypes is the inverse of ParseTypes.
func FormatTypes(ts []DataType) string {
	b := make([]byte, len(ts))
	for i, t := range ts {
		b[i] = byte(t)
	}
	return string(b)
}
