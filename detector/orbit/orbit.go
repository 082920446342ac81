// Package orbit provides time-dependent spacecraft positions for
// three-spacecraft constellations. Positions and times are expressed in
// light-seconds and seconds, so that link delays can be read off directly.
package orbit

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	// ErrUnknownDetector is returned by Lookup for an unrecognized name.
	ErrUnknownDetector = errors.New("orbit: unknown detector")
	// ErrEmptyTimeGrid is returned when a time grid has no samples.
	ErrEmptyTimeGrid = errors.New("orbit: empty time grid")
)

// Geometry is the constellation state at one time sample.
type Geometry struct {
	Time float64
	// Positions[i] is spacecraft i+1 in light-seconds.
	Positions [3][3]float64
	// ArmTime is the nominal one-way light travel time along an arm in s.
	ArmTime float64
}

// Link returns the unit vector pointing from spacecraft s to spacecraft r
// (both 1-based) and the link length in light-seconds.
func (g Geometry) Link(s, r int) (n [3]float64, length float64) {
	ps, pr := g.Positions[s-1], g.Positions[r-1]
	for i := range n {
		n[i] = pr[i] - ps[i]
	}
	length = math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if length > 0 {
		for i := range n {
			n[i] /= length
		}
	}
	return n, length
}

// Provider supplies constellation geometry.
type Provider interface {
	Name() string
	PositionsAt(times []float64) ([]Geometry, error)
	NominalArmTime() float64
}

// TimeGrid returns segment start times 0, tSeg, 2*tSeg, ... below tObs.
func TimeGrid(tObs, tSeg float64) ([]float64, error) {
	if !(tObs > 0) || !(tSeg > 0) || math.IsInf(tObs, 0) || math.IsInf(tSeg, 0) {
		return nil, fmt.Errorf("%w: observation %g s, segment %g s", ErrEmptyTimeGrid, tObs, tSeg)
	}

	n := int(math.Ceil(tObs / tSeg))
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * tSeg
	}
	return times, nil
}

type factory func() Provider

var registry = map[string]factory{
	"tq":      func() Provider { return NewTianQin() },
	"tianqin": func() Provider { return NewTianQin() },
	"lisa":    func() Provider { return NewLISA() },
}

// Lookup resolves a detector identifier such as "TQ", "TianQin" or "LISA".
// Matching is case-insensitive.
func Lookup(name string) (Provider, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDetector, name)
	}
	return f(), nil
}

// Names returns the identifiers accepted by Lookup.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func positions(times []float64, armTime float64, at func(t float64) [3][3]float64) ([]Geometry, error) {
	if len(times) == 0 {
		return nil, ErrEmptyTimeGrid
	}
	out := make([]Geometry, len(times))
	for i, t := range times {
		out[i] = Geometry{Time: t, Positions: at(t), ArmTime: armTime}
	}
	return out, nil
}
