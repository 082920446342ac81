// Package coupling builds the Clebsch-Gordan coupling tensor that maps the
// spherical-harmonic coefficients of an amplitude field b(n) onto the
// coefficients of its intensity |b(n)|^2.
//
// A product of two harmonics decomposes into single harmonics,
//
//	Y_l1m1 Y_l2m2 = sum_LM beta(LM; l1m1, l2m2) Y_LM
//
// with
//
//	beta = sqrt((2l1+1)(2l2+1) / (4*pi*(2L+1))) * <l1 0 l2 0|L 0> * <l1 m1 l2 m2|L M>
//
// The tensor depends only on lmax, so [Cache] memoizes it per lmax.
package coupling
