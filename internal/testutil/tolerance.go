// Package testutil holds numerical assertions and deterministic fixtures
// shared by the package tests.
package testutil

import (
	"fmt"
	"math"
	"math/cmplx"
	"testing"
)

// RequireSliceNearlyEqual fails t on a length mismatch or when any element
// pair differs by more than eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if d := math.Abs(got[i] - want[i]); d > eps {
			t.Fatalf("index %d: got %v, want %v (|diff| %v > %v)", i, got[i], want[i], d, eps)
		}
	}
}

// RequireComplexNearlyEqual is RequireSliceNearlyEqual for complex values,
// measuring |got-want|.
func RequireComplexNearlyEqual(t *testing.T, got, want []complex128, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if d := cmplx.Abs(got[i] - want[i]); d > eps {
			t.Fatalf("index %d: got %v, want %v (|diff| %v > %v)", i, got[i], want[i], d, eps)
		}
	}
}

// RelativeClose reports whether a and b agree within rel of the larger
// magnitude, or within abs.
func RelativeClose(a, b complex128, rel, abs float64) bool {
	d := cmplx.Abs(a - b)
	if d <= abs {
		return true
	}
	return d <= rel*math.Max(cmplx.Abs(a), cmplx.Abs(b))
}

// RequireComplexFinite fails t if any element has a NaN or infinite part.
func RequireComplexFinite(t *testing.T, data []complex128) {
	t.Helper()
	for i, v := range data {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// MaxComplexDiff returns max |a[i]-b[i]|.
func MaxComplexDiff(a, b []complex128) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	m := 0.0
	for i := range a {
		m = math.Max(m, cmplx.Abs(a[i]-b[i]))
	}
	return m, nil
}
