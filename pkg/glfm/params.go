package glfm

import (
	"fmt"
	"math"

	"github.com/samcharles93/glfm/pkg/glfm/link"
)

// Transform is an optional user-supplied change of variables for one
// dimension. Forward maps observed values into the model domain, where the
// dimension is modelled as Type. Inverse maps model-domain values back and
// ForwardDeriv is the derivative of Forward, used to correct densities.
type Transform struct {
	Type         link.DataType
	Forward      func(float64) float64
	Inverse      func(float64) float64
	ForwardDeriv func(float64) float64
}

func (t *Transform) validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, byte(t.Type))
	}
	if t.Forward == nil || t.Inverse == nil || t.ForwardDeriv == nil {
		return fmt.Errorf("%w: transform needs forward, inverse and derivative functions", ErrInvalidInput)
	}
	return nil
}

// Params is a partial option set. Nil fields take their defaults in
// Resolve; set fields are never overwritten.
type Params struct {
	Missing *float64 `yaml:"missing" json:"missing,omitempty"`
	Alpha   *float64 `yaml:"alpha" json:"alpha,omitempty"`
	Bias    *int     `yaml:"bias" json:"bias,omitempty"`
	S2U     *float64 `yaml:"s2u" json:"s2u,omitempty"`
	S2B     *float64 `yaml:"s2b" json:"s2b,omitempty"`
	NIter   *int     `yaml:"niter" json:"niter,omitempty"`
	MaxK    *int     `yaml:"maxk" json:"maxk,omitempty"`
	Verbose *int     `yaml:"verbose" json:"verbose,omitempty"`
	NumS    *int     `yaml:"nums" json:"nums,omitempty"`
	Seed    *int64   `yaml:"seed" json:"seed,omitempty"`

	// Transforms has one entry per dimension; nil entries mean no transform.
	Transforms []*Transform `yaml:"-" json:"-"`
}

// Merge returns a copy of p with every field that is set in over replacing
// the value in p.
func (p Params) Merge(over Params) Params {
	out := p
	if over.Missing != nil {
		out.Missing = over.Missing
	}
	if over.Alpha != nil {
		out.Alpha = over.Alpha
	}
	if over.Bias != nil {
		out.Bias = over.Bias
	}
	if over.S2U != nil {
		out.S2U = over.S2U
	}
	if over.S2B != nil {
		out.S2B = over.S2B
	}
	if over.NIter != nil {
		out.NIter = over.NIter
	}
	if over.MaxK != nil {
		out.MaxK = over.MaxK
	}
	if over.Verbose != nil {
		out.Verbose = over.Verbose
	}
	if over.NumS != nil {
		out.NumS = over.NumS
	}
	if over.Seed != nil {
		out.Seed = over.Seed
	}
	if over.Transforms != nil {
		out.Transforms = over.Transforms
	}
	return out
}

// Ptr returns a pointer to v, for filling Params literals.
func Ptr[T any](v T) *T {
	return &v
}

// Options is a fully resolved option set. Build it with Resolve.
type Options struct {
	Missing float64 // sentinel for missing cells
	Alpha   float64 // concentration of the feature-sharing prior
	Bias    int     // 1 prepends an always-active feature
	S2U     float64 // auxiliary noise variance
	S2B     float64 // prior variance of weight entries
	NIter   int
	MaxK    int
	Verbose int
	NumS    int // density grid resolution for continuous types
	Seed    int64

	Transforms []*Transform
}

const (
	DefaultMissing = -1
	DefaultAlpha   = 1
	DefaultS2U     = 0.01
	DefaultS2B     = 1
	DefaultNIter   = 1000
	DefaultVerbose = 1
	DefaultNumS    = 1
)

// Resolve fills unset fields of p with their defaults for a dataset with
// dims columns and validates the result.
func Resolve(dims int, p Params) (Options, error) {
	if dims < 1 {
		return Options{}, fmt.Errorf("%w: dataset has %d dimensions", ErrInvalidInput, dims)
	}
	o := Options{
		Missing: DefaultMissing,
		Alpha:   DefaultAlpha,
		S2U:     DefaultS2U,
		S2B:     DefaultS2B,
		NIter:   DefaultNIter,
		MaxK:    dims,
		Verbose: DefaultVerbose,
		NumS:    DefaultNumS,
	}
	if p.Missing != nil {
		o.Missing = *p.Missing
	}
	if p.Alpha != nil {
		o.Alpha = *p.Alpha
	}
	if p.Bias != nil {
		o.Bias = *p.Bias
	}
	if p.S2U != nil {
		o.S2U = *p.S2U
	}
	if p.S2B != nil {
		o.S2B = *p.S2B
	}
	if p.NIter != nil {
		o.NIter = *p.NIter
	}
	if p.MaxK != nil {
		o.MaxK = *p.MaxK
	}
	if p.Verbose != nil {
		o.Verbose = *p.Verbose
	}
	if p.NumS != nil {
		o.NumS = *p.NumS
	}
	if p.Seed != nil {
		o.Seed = *p.Seed
	}
	o.Transforms = make([]*Transform, dims)
	if p.Transforms != nil {
		if len(p.Transforms) != dims {
			return Options{}, fmt.Errorf("%w: %d transforms for %d dimensions", ErrInvalidInput, len(p.Transforms), dims)
		}
		copy(o.Transforms, p.Transforms)
	}
	if err := o.validate(dims); err != nil {
		return Options{}, err
	}
	return o, nil
}

func (o Options) validate(dims int) error {
	switch {
	case o.Bias != 0 && o.Bias != 1:
		return fmt.Errorf("%w: bias must be 0 or 1, got %d", ErrInvalidInput, o.Bias)
	case math.IsNaN(o.Missing):
		return fmt.Errorf("%w: missing sentinel must be a number, not NaN", ErrInvalidInput)
	case !(o.S2U > 0):
		return fmt.Errorf("%w: s2u must be positive, got %v", ErrInvalidInput, o.S2U)
	case !(o.S2B > 0):
		return fmt.Errorf("%w: s2B must be positive, got %v", ErrInvalidInput, o.S2B)
	case !(o.Alpha > 0):
		return fmt.Errorf("%w: alpha must be positive, got %v", ErrInvalidInput, o.Alpha)
	case o.NIter < 0:
		return fmt.Errorf("%w: Niter must not be negative, got %d", ErrInvalidInput, o.NIter)
	case o.MaxK < 1:
		return fmt.Errorf("%w: maxK must be at least 1, got %d", ErrInvalidInput, o.MaxK)
	case o.NumS < 1:
		return fmt.Errorf("%w: numS must be at least 1, got %d", ErrInvalidInput, o.NumS)
	}
	if o.Transforms != nil && len(o.Transforms) != dims {
		return fmt.Errorf("%w: %d transforms for %d dimensions", ErrInvalidInput, len(o.Transforms), dims)
	}
	for d, t := range o.Transforms {
		if t == nil {
			continue
		}
		if err := t.validate(); err != nil {
			return fmt.Errorf("dimension %d: %w", d, err)
		}
	}
	return nil
}

// transform returns the transform registered for dimension d, or nil.
func (o Options) transform(d int) *Transform {
	if d < len(o.Transforms) {
		return o.Transforms[d]
	}
	return nil
}

// effectiveType is the type dimension d is modelled as after any transform.
func (o Options) effectiveType(d int, t link.DataType) link.DataType {
	if tr := o.transform(d); tr != nil {
		return tr.Type
	}
	return t
}
