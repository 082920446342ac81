package coupling

import "math"

func logFactorial(n int) float64 {
	v, _ := math.Lgamma(float64(n) + 1)
	return v
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ClebschGordan returns <j1 m1 j2 m2|J M> for integer angular momenta using
// the Racah formula evaluated in log space. Disallowed combinations (|m| > j,
// m1+m2 != M, triangle violations, odd j1+j2+J with all projections zero)
// return exactly 0.
func ClebschGordan(j1, m1, j2, m2, J, M int) float64 {
	if j1 < 0 || j2 < 0 || J < 0 {
		return 0
	}
	if abs(m1) > j1 || abs(m2) > j2 || abs(M) > J {
		return 0
	}
	if m1+m2 != M {
		return 0
	}
	if J < abs(j1-j2) || J > j1+j2 {
		return 0
	}
	if m1 == 0 && m2 == 0 && (j1+j2+J)%2 != 0 {
		return 0
	}

	pre := 0.5 * (math.Log(float64(2*J+1)) +
		logFactorial(J+j1-j2) + logFactorial(J-j1+j2) + logFactorial(j1+j2-J) -
		logFactorial(j1+j2+J+1) +
		logFactorial(J+M) + logFactorial(J-M) +
		logFactorial(j1-m1) + logFactorial(j1+m1) +
		logFactorial(j2-m2) + logFactorial(j2+m2))

	kmin := max(0, j2-J-m1, j1-J+m2)
	kmax := min(j1+j2-J, j1-m1, j2+m2)

	sum := 0.0
	for k := kmin; k <= kmax; k++ {
		den := logFactorial(k) + logFactorial(j1+j2-J-k) +
			logFactorial(j1-m1-k) + logFactorial(j2+m2-k) +
			logFactorial(J-j2+m1+k) + logFactorial(J-j1-m2+k)
		term := math.Exp(pre - den)
		if k%2 != 0 {
			term = -term
		}
		sum += term
	}
	return sum
}

// Beta returns the coupling coefficient beta(LM; l1m1, l2m2).
func Beta(l1, m1, l2, m2, L, M int) float64 {
	if M != m1+m2 || L < abs(l1-l2) || L > l1+l2 {
		return 0
	}
	cg0 := ClebschGordan(l1, 0, l2, 0, L, 0)
	if cg0 == 0 {
		return 0
	}
	cg1 := ClebschGordan(l1, m1, l2, m2, L, M)
	if cg1 == 0 {
		return 0
	}
	norm := math.Sqrt(float64((2*l1+1)*(2*l2+1)) / (4 * math.Pi * float64(2*L+1)))
	return norm * cg0 * cg1
}
