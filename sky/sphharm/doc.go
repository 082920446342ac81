// Package sphharm provides spherical-harmonic bookkeeping for real fields on
// the sphere.
//
// Coefficients of a real field are stored for non-negative m only, in the
// ordering used by HEALPix:
//
//	idx(l, m) = m*(2*lmax+1-m)/2 + l,   0 <= m <= l <= lmax
//
// Negative-m coefficients follow from the reality relation
//
//	c(l, -m) = (-1)^m * conj(c(l, m))
//
// and are materialized by [Expand] into an expanded array of length
// (lmax+1)^2 = 2*Size(lmax)-lmax-1. Positions below Size(lmax) hold m >= 0 in
// the order above; positions at or above it hold m < 0, mirroring the m > 0
// entries. [Index] is the precomputed table for that bijection.
//
// The package also evaluates orthonormal spherical harmonics Y_lm (with the
// Condon-Shortley phase) through the standard three-term recurrence of the
// normalized associated Legendre functions.
package sphharm
