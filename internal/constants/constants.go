// Package constants holds the physical, astronomical and detector constants
// shared by the orbit, spectrum and pipeline packages. All values are SI.
package constants

import "math"

const (
	// C is the speed of light in m/s.
	C = 299792458.0

	// AU is the astronomical unit in m.
	AU = 1.495978707e11

	// MPC is one megaparsec in m.
	MPC = 3.085677581491367e22

	// YearSidereal is one sidereal year in s.
	YearSidereal = 31558149.763545603

	// Day is one mean solar day in s.
	Day = 86400.0

	// Sqrt3 is the square root of 3.
	Sqrt3 = 1.7320508075688772

	// H0 is the Hubble constant in 1/s (Planck 2018, 67.4 km/s/Mpc).
	H0 = 67.4 * 1000 / MPC
)

// Earth orbit.
const (
	EarthOrbitOmega   = 2 * math.Pi / YearSidereal
	EarthEccentricity = 0.01671022
	PerihelionAngle   = 1.7965956472674636
	// EarthPhase0 is the ecliptic longitude offset of the Earth at t=0
	// relative to the LISA guiding centre (20 degrees).
	EarthPhase0 = 0.3490658503988659
)

// TianQin constellation.
const (
	TianQinRadius = 1e8
	TianQinArm    = Sqrt3 * TianQinRadius
	TianQinPeriod = 3.65 * Day
	TianQinOmega  = 2 * math.Pi / TianQinPeriod

	// Pointing direction of the constellation plane normal (RX J0806.3+1527)
	// in ecliptic coordinates.
	J0806Phi   = 2.103
	J0806Theta = 1.65
)

// LISA constellation.
const (
	LISAArm          = 2.5e9
	LISAOrbitFreq    = 1 / YearSidereal
	LISAEccentricity = LISAArm / (2 * Sqrt3 * AU)
)
