package sphharm

import (
	"errors"
	"fmt"
)

// Errors returned by index and expansion functions.
var (
	ErrInvalidLmax      = errors.New("sphharm: lmax must be >= 0")
	ErrInvalidSize      = errors.New("sphharm: coefficient count does not match lmax")
	ErrIndexOutOfRange  = errors.New("sphharm: index out of range")
	ErrIndexConsistency = errors.New("sphharm: negative-m region decoded to m = 0")
)

// Size returns the number of (l, m) pairs with 0 <= m <= l <= lmax.
func Size(lmax int) int {
	return (lmax + 1) * (lmax + 2) / 2
}

// ExpandedSize returns the number of (l, m) pairs with |m| <= l <= lmax,
// i.e. 2*Size(lmax)-lmax-1.
func ExpandedSize(lmax int) int {
	return 2*Size(lmax) - lmax - 1
}

// HalfIndex returns the position of (l, m), m >= 0, in the half-index
// ordering. It does not validate its arguments.
func HalfIndex(lmax, l, m int) int {
	return m*(2*lmax+1-m)/2 + l
}

// LM decodes a half-index position into (l, m).
func LM(lmax, i int) (l, m int, err error) {
	if lmax < 0 {
		return 0, 0, ErrInvalidLmax
	}
	if i < 0 || i >= Size(lmax) {
		return 0, 0, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, Size(lmax))
	}

	rem := i
	for m = 0; m <= lmax; m++ {
		n := lmax + 1 - m
		if rem < n {
			return rem + m, m, nil
		}
		rem -= n
	}

	// Unreachable for i < Size(lmax).
	return 0, 0, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
}

// ExpandedLM decodes a position of the expanded array into (l, m), m may be
// negative.
func ExpandedLM(lmax, i int) (l, m int, err error) {
	if lmax < 0 {
		return 0, 0, ErrInvalidLmax
	}
	half := Size(lmax)
	if i < 0 || i >= ExpandedSize(lmax) {
		return 0, 0, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, ExpandedSize(lmax))
	}
	if i < half {
		return LM(lmax, i)
	}

	l, m, err = LM(lmax, i-half+lmax+1)
	if err != nil {
		return 0, 0, err
	}
	if m == 0 {
		return 0, 0, fmt.Errorf("%w: position %d", ErrIndexConsistency, i)
	}
	return l, -m, nil
}

// Index is a precomputed table of (l, m) for every position of the expanded
// array of a given lmax. It is immutable and safe for concurrent use.
type Index struct {
	lmax int
	l    []int
	m    []int
}

// NewIndex builds the expanded index table for lmax.
func NewIndex(lmax int) (*Index, error) {
	if lmax < 0 {
		return nil, ErrInvalidLmax
	}

	n := ExpandedSize(lmax)
	x := &Index{
		lmax: lmax,
		l:    make([]int, n),
		m:    make([]int, n),
	}
	for i := range n {
		l, m, err := ExpandedLM(lmax, i)
		if err != nil {
			return nil, err
		}
		x.l[i] = l
		x.m[i] = m
	}
	return x, nil
}

// Lmax returns the maximum degree.
func (x *Index) Lmax() int { return x.lmax }

// Len returns the expanded length (lmax+1)^2.
func (x *Index) Len() int { return len(x.l) }

// Half returns the number of non-negative-m positions, Size(lmax).
func (x *Index) Half() int { return Size(x.lmax) }

// LM returns (l, m) at position i. i must be in [0, Len()).
func (x *Index) LM(i int) (l, m int) {
	return x.l[i], x.m[i]
}

// Position returns the expanded position of (l, m) for any |m| <= l <= lmax.
func (x *Index) Position(l, m int) (int, error) {
	if l < 0 || l > x.lmax || m > l || -m > l {
		return 0, fmt.Errorf("%w: (l=%d, m=%d) with lmax %d", ErrIndexOutOfRange, l, m, x.lmax)
	}
	if m >= 0 {
		return HalfIndex(x.lmax, l, m), nil
	}
	return x.Half() + HalfIndex(x.lmax, l, -m) - x.lmax - 1, nil
}
