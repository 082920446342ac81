package orbit

import (
	"math"

	"github.com/cwbudde/algo-sgwb/internal/constants"
)

// TianQin is a geocentric constellation whose plane faces RX J0806.3+1527,
// carried along the Earth's Keplerian orbit.
type TianQin struct {
	// Kappa is the initial orbital phase of the Earth.
	Kappa float64
	// Lambda is the initial phase of spacecraft 1 around the Earth.
	Lambda float64
}

// NewTianQin returns a TianQin provider with zero initial phases.
func NewTianQin() *TianQin { return &TianQin{} }

// Name implements Provider.
func (*TianQin) Name() string { return "TianQin" }

// NominalArmTime implements Provider.
func (*TianQin) NominalArmTime() float64 { return constants.TianQinArm / constants.C }

// PositionsAt implements Provider.
func (tq *TianQin) PositionsAt(times []float64) ([]Geometry, error) {
	return positions(times, tq.NominalArmTime(), tq.at)
}

func (tq *TianQin) at(t float64) [3][3]float64 {
	earth := earthPosition(t, tq.Kappa)

	sp, cp := math.Sincos(constants.J0806Phi)
	st, ct := math.Sincos(constants.J0806Theta)
	base := constants.TianQinOmega*t + tq.Lambda

	var p [3][3]float64
	for i := range p {
		sa, ca := math.Sincos(base + float64(i)*2*math.Pi/3)
		p[i] = [3]float64{
			(earth[0] + constants.TianQinRadius*(ct*cp*sa+sp*ca)) / constants.C,
			(earth[1] + constants.TianQinRadius*(ct*sp*sa-cp*ca)) / constants.C,
			(earth[2] - constants.TianQinRadius*st*sa) / constants.C,
		}
	}
	return p
}

// earthPosition returns the heliocentric ecliptic position of the Earth in
// m, to second order in the eccentricity.
func earthPosition(t, kappa float64) [3]float64 {
	alpha := constants.EarthOrbitOmega*t + kappa + constants.EarthPhase0
	sna, csa := math.Sincos(alpha - constants.PerihelionAngle)
	e := constants.EarthEccentricity
	e2 := e * e

	return [3]float64{
		constants.AU * (csa + e*(1+sna*sna) - 1.5*e2*csa*sna*sna),
		constants.AU * (sna + e*sna*csa + 0.5*e2*sna*(1-3*sna*sna)),
		0,
	}
}
