package glfm

import (
	"errors"
	"math"
	"slices"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestFeaturePatterns(t *testing.T) {
	t.Parallel()

	got, err := FeaturePatterns(mustDense(t, [][]float64{{1, 0}, {1, 0}, {0, 1}}))
	if err != nil {
		t.Fatalf("FeaturePatterns: %v", err)
	}
	want := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	if !mat.Equal(got.Rows, want) {
		t.Fatalf("patterns:\n got %v\nwant %v", mat.Formatted(got.Rows), mat.Formatted(want))
	}
	if !slices.Equal(got.Counts, []int{2, 1}) {
		t.Fatalf("counts: got %v want [2 1]", got.Counts)
	}
	if !slices.Equal(got.Assign, []int{0, 0, 1}) {
		t.Fatalf("assignments: got %v want [0 0 1]", got.Assign)
	}
}

func TestFeaturePatternsOrdersByCount(t *testing.T) {
	t.Parallel()

	z := mustDense(t, [][]float64{
		{1, 1, 0},
		{0, 0, 1},
		{1, 0, 0},
		{0, 0, 1},
		{1, 0, 0},
		{0, 0, 1},
		{0, 1, 0},
	})
	got, err := FeaturePatterns(z)
	if err != nil {
		t.Fatalf("FeaturePatterns: %v", err)
	}

	total := 0
	for i, c := range got.Counts {
		total += c
		if i > 0 && c > got.Counts[i-1] {
			t.Fatalf("counts not non-increasing: %v", got.Counts)
		}
	}
	if total != 7 {
		t.Fatalf("counts sum to %d, want 7", total)
	}
	if !slices.Equal(got.Counts, []int{3, 2, 1, 1}) {
		t.Fatalf("counts: got %v want [3 2 1 1]", got.Counts)
	}
	// Singletons keep their first-appearance order.
	if !slices.Equal(mat.Row(nil, 2, got.Rows), []float64{1, 1, 0}) {
		t.Fatalf("third pattern: got %v", mat.Row(nil, 2, got.Rows))
	}
	for i, p := range got.Assign {
		if !slices.Equal(mat.Row(nil, i, z), mat.Row(nil, p, got.Rows)) {
			t.Fatalf("observation %d assigned to pattern %d", i, p)
		}
	}
}

func TestFeaturePatternsString(t *testing.T) {
	t.Parallel()

	got, err := FeaturePatterns(mustDense(t, [][]float64{{0, 1}, {0, 1}}))
	if err != nil {
		t.Fatalf("FeaturePatterns: %v", err)
	}
	if s := got.String(); !strings.Contains(s, "0. [0 1]: 2") {
		t.Fatalf("unexpected rendering %q", s)
	}
}

func TestFeaturePatternsRejectsEmpty(t *testing.T) {
	t.Parallel()

	if _, err := FeaturePatterns(nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := FeaturePatterns(&mat.Dense{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFeaturePatternsNegativeZero(t *testing.T) {
	t.Parallel()

	negZero := math.Copysign(0, -1)
	got, err := FeaturePatterns(mustDense(t, [][]float64{{1, 0}, {1, negZero}, {negZero, 1}}))
	if err != nil {
		t.Fatalf("FeaturePatterns: %v", err)
	}
	if !slices.Equal(got.Counts, []int{2, 1}) {
		t.Fatalf("counts: got %v want [2 1]", got.Counts)
	}
	if !slices.Equal(got.Assign, []int{0, 0, 1}) {
		t.Fatalf("assignments: got %v want [0 0 1]", got.Assign)
	}
}
