package models

// ZoomTier is a discrete resolution level derived from a continuous zoom
// value. The tier selects which clustering strategy populates the map:
// coarse grid binning, metro nearest-center assignment, MSA nearest-center
// assignment with the expanded center list, or raw per-record detail.
type ZoomTier string

const (
	TierRegion ZoomTier = "region"
	TierMetro  ZoomTier = "metro"
	TierMSA    ZoomTier = "msa"
	TierDetail ZoomTier = "detail"
)

// Valid reports whether the tier is one of the four known levels.
func (t ZoomTier) Valid() bool {
	switch t {
	case TierRegion, TierMetro, TierMSA, TierDetail:
		return true
	}
	return false
}
