// Package zoom maps a continuous map zoom value onto the engine's discrete
// resolution tiers. TierFor is a pure function of its input: any tier is
// reachable from any other on any zoom change, and there is no hysteresis
// or hidden state.
package zoom

import "github.com/bdeakin/disastermap/internal/models"

// Selector holds the ordered tier thresholds.
type Selector struct {
	RegionMax float64 // zoom <= RegionMax      -> Region
	MetroMax  float64 // zoom <  MetroMax       -> Metro
	MSAMax    float64 // zoom <  MSAMax         -> MSA
	//          otherwise                        -> Detail
}

// DefaultSelector matches the map's rendering scales: the whole country at
// zoom 3-4, multi-state at 5, metro areas at 6-7, county level past 8.
func DefaultSelector() Selector {
	return Selector{RegionMax: 4.0, MetroMax: 6.0, MSAMax: 8.0}
}

// TierFor returns the resolution tier for a zoom value. Boundary behavior
// is fixed: a zoom exactly equal to RegionMax is Region (inclusive), while
// the Metro and MSA cut-offs are exclusive, so zoom == MetroMax is MSA and
// zoom == MSAMax is Detail.
func (s Selector) TierFor(z float64) models.ZoomTier {
	switch {
	case z <= s.RegionMax:
		return models.TierRegion
	case z < s.MetroMax:
		return models.TierMetro
	case z < s.MSAMax:
		return models.TierMSA
	default:
		return models.TierDetail
	}
}
