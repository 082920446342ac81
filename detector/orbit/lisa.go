package orbit

import (
	"math"

	"github.com/cwbudde/algo-sgwb/internal/constants"
)

// LISA is a heliocentric cartwheel constellation trailing the Earth.
type LISA struct {
	// Kappa is the initial phase of the guiding centre.
	Kappa float64
	// Lambda is the initial orientation of the cartwheel.
	Lambda float64
}

// NewLISA returns a LISA provider with zero initial phases.
func NewLISA() *LISA { return &LISA{} }

// Name implements Provider.
func (*LISA) Name() string { return "LISA" }

// NominalArmTime implements Provider.
func (*LISA) NominalArmTime() float64 { return constants.LISAArm / constants.C }

// PositionsAt implements Provider.
func (l *LISA) PositionsAt(times []float64) ([]Geometry, error) {
	return positions(times, l.NominalArmTime(), l.at)
}

func (l *LISA) at(t float64) [3][3]float64 {
	const (
		au = constants.AU
		ec = constants.LISAEccentricity
	)
	sa, ca := math.Sincos(2*math.Pi*constants.LISAOrbitFreq*t + l.Kappa)

	var p [3][3]float64
	for i := range p {
		sb, cb := math.Sincos(float64(i)*2*math.Pi/3 + l.Lambda)
		p[i] = [3]float64{
			(au*ca + au*ec*(sa*ca*sb-(1+sa*sa)*cb)) / constants.C,
			(au*sa + au*ec*(sa*ca*cb-(1+ca*ca)*sb)) / constants.C,
			-constants.Sqrt3 * au * ec * (ca*cb + sa*sb) / constants.C,
		}
	}
	return p
}
