package glfm

import (
	"errors"
	"math"
	"testing"

	"github.com/samcharles93/glfm/pkg/glfm/link"
)

func TestResolveDefaults(t *testing.T) {
	t.Parallel()

	opts, err := Resolve(4, Params{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	switch {
	case opts.Missing != -1:
		t.Fatalf("missing: got %v", opts.Missing)
	case opts.Alpha != 1:
		t.Fatalf("alpha: got %v", opts.Alpha)
	case opts.Bias != 0:
		t.Fatalf("bias: got %v", opts.Bias)
	case opts.S2U != 0.01:
		t.Fatalf("s2u: got %v", opts.S2U)
	case opts.S2B != 1:
		t.Fatalf("s2B: got %v", opts.S2B)
	case opts.NIter != 1000:
		t.Fatalf("Niter: got %v", opts.NIter)
	case opts.MaxK != 4:
		t.Fatalf("maxK: got %v", opts.MaxK)
	case opts.Verbose != 1:
		t.Fatalf("verbose: got %v", opts.Verbose)
	case opts.NumS != 1:
		t.Fatalf("numS: got %v", opts.NumS)
	case len(opts.Transforms) != 4:
		t.Fatalf("transforms: got %d entries", len(opts.Transforms))
	}
}

func TestResolveKeepsSetFields(t *testing.T) {
	t.Parallel()

	opts, err := Resolve(2, Params{
		Missing: Ptr(-99.0),
		Alpha:   Ptr(2.5),
		Bias:    Ptr(1),
		NIter:   Ptr(0),
		MaxK:    Ptr(7),
		Verbose: Ptr(0),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if opts.Missing != -99 || opts.Alpha != 2.5 || opts.Bias != 1 || opts.NIter != 0 || opts.MaxK != 7 || opts.Verbose != 0 {
		t.Fatalf("set fields overwritten: %+v", opts)
	}
	if opts.S2U != DefaultS2U {
		t.Fatalf("unset field not defaulted: s2u %v", opts.S2U)
	}
}

func TestResolveRejectsBadOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dims int
		p    Params
	}{
		{"no dimensions", 0, Params{}},
		{"bias", 2, Params{Bias: Ptr(3)}},
		{"NaN sentinel", 2, Params{Missing: Ptr(math.NaN())}},
		{"s2u", 2, Params{S2U: Ptr(0.0)}},
		{"s2B", 2, Params{S2B: Ptr(-1.0)}},
		{"alpha", 2, Params{Alpha: Ptr(0.0)}},
		{"Niter", 2, Params{NIter: Ptr(-1)}},
		{"maxK", 2, Params{MaxK: Ptr(0)}},
		{"numS", 2, Params{NumS: Ptr(0)}},
		{"transform count", 2, Params{Transforms: []*Transform{nil}}},
		{"transform funcs", 2, Params{Transforms: []*Transform{nil, {Type: link.Real}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Resolve(tc.dims, tc.p); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	bad := &Transform{Type: 'z', Forward: math.Log, Inverse: math.Exp, ForwardDeriv: math.Exp}
	if _, err := Resolve(1, Params{Transforms: []*Transform{bad}}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestParamsMerge(t *testing.T) {
	t.Parallel()

	base := Params{Alpha: Ptr(1.0), NIter: Ptr(10), Seed: Ptr(int64(3))}
	got := base.Merge(Params{NIter: Ptr(50), Bias: Ptr(1)})
	if *got.Alpha != 1 || *got.NIter != 50 || *got.Bias != 1 || *got.Seed != 3 {
		t.Fatalf("merge: %+v", got)
	}
	if *base.NIter != 10 || base.Bias != nil {
		t.Fatalf("merge modified the receiver")
	}
}

func TestEffectiveType(t *testing.T) {
	t.Parallel()

	opts := mustResolve(t, 2, Params{Transforms: []*Transform{nil, logTransform()}})
	if got := opts.effectiveType(0, link.Count); got != link.Count {
		t.Fatalf("untransformed: got %v", got)
	}
	if got := opts.effectiveType(1, link.Positive); got != link.Real {
		t.Fatalf("transformed: got %v", got)
	}
}
