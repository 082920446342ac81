package response

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-sgwb/detector/orbit"
)

// Links holds single-link responses; Links[s-1][r-1] is the link from
// spacecraft s to spacecraft r. The diagonal is unused.
type Links [3][3]complex128

// Channels holds one response per output channel.
type Channels []complex128

// TransferFunction maps a plane wave onto detector channels.
type TransferFunction interface {
	// SingleLink returns the fractional frequency response of each link to
	// a wave travelling along k with polarization pol at frequency f.
	SingleLink(k [3]float64, pol Polarization, g orbit.Geometry, f float64) Links
	// CombineChannels forms the output channels from the link responses.
	CombineChannels(links Links, f, armTime float64) Channels
	// Channels returns the number of output channels.
	Channels() int
}

// XYZ is the first-generation Michelson TDI combination in the frequency
// domain, assuming equal and constant arms.
type XYZ struct{}

// Channels implements TransferFunction.
func (XYZ) Channels() int { return 3 }

// SingleLink implements TransferFunction:
//
//	y_sr = 1/2 sinc(pi f L (1 - k·n)) exp(-i pi f (L + k·(p_s + p_r))) (n·e·n)
//
// sinc is the unnormalized sin(x)/x. The argument already carries pi, so the
// normalized convention sin(pi x)/(pi x) would apply it twice and move the
// first transfer null from f L (1 - k·n) = 1 down to 1/pi.
func (XYZ) SingleLink(k [3]float64, pol Polarization, g orbit.Geometry, f float64) Links {
	var y Links
	L := g.ArmTime
	for s := 1; s <= 3; s++ {
		for r := 1; r <= 3; r++ {
			if s == r {
				continue
			}
			n, _ := g.Link(s, r)
			ps, pr := g.Positions[s-1], g.Positions[r-1]
			kn := dot(k, n)
			kp := k[0]*(ps[0]+pr[0]) + k[1]*(ps[1]+pr[1]) + k[2]*(ps[2]+pr[2])

			amp := 0.5 * sinc(math.Pi*f*L*(1-kn)) * pol.Contract(n)
			y[s-1][r-1] = complex(amp, 0) * cmplx.Exp(complex(0, -math.Pi*f*(L+kp)))
		}
	}
	return y
}

// CombineChannels implements TransferFunction:
//
//	X = (1 - D^2) [(y12 + D y21) - (y13 + D y31)],  D = exp(-2 pi i f L)
//
// with Y and Z following by cyclic permutation of the spacecraft labels.
func (XYZ) CombineChannels(y Links, f, armTime float64) Channels {
	d := cmplx.Exp(complex(0, -2*math.Pi*f*armTime))
	pre := 1 - d*d

	out := make(Channels, 3)
	for c := range 3 {
		i, j, k := c, (c+1)%3, (c+2)%3
		out[c] = pre * ((y[i][j] + d*y[j][i]) - (y[i][k] + d*y[k][i]))
	}
	return out
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(x) / x
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}
