package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FilterSet is the user's active filter selection. It is an immutable value:
// equality of the derived Signature defines cache identity, and any change to
// a FilterSet invalidates every cached cluster list, selection, and detail
// row derived under the previous signature.
type FilterSet struct {
	States        []string `json:"states"`         // state geo IDs
	IncidentTypes []string `json:"incident_types"` // FEMA incident type labels
	YearMin       int      `json:"year_min"`
	YearMax       int      `json:"year_max"`
}

// Validate checks that the filter set is coherent. An invalid filter set is
// rejected before any fetch is issued.
func (f FilterSet) Validate() error {
	if f.YearMin == 0 && f.YearMax == 0 {
		// Year filter disabled; nothing else to check.
		return nil
	}
	if f.YearMin > f.YearMax {
		return errors.New("year range minimum must not exceed maximum")
	}
	if f.YearMin < 0 || f.YearMax < 0 {
		return errors.New("year range must not be negative")
	}
	return nil
}

// Signature returns a stable hash of the filter set plus the active tier and
// resolution parameter. Member order within States and IncidentTypes does not
// affect the result. The signature is the composite cache key for every
// derived artifact.
func (f FilterSet) Signature(tier ZoomTier, param float64) string {
	states := append([]string(nil), f.States...)
	incidents := append([]string(nil), f.IncidentTypes...)
	sort.Strings(states)
	sort.Strings(incidents)

	var b strings.Builder
	b.WriteString(strings.Join(states, ","))
	b.WriteByte('|')
	b.WriteString(strings.Join(incidents, ","))
	fmt.Fprintf(&b, "|%d-%d|%s|%.6f", f.YearMin, f.YearMax, tier, param)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}

// Equal reports whether two filter sets select the same rows, ignoring
// member order.
func (f FilterSet) Equal(other FilterSet) bool {
	return f.Signature(TierRegion, 0) == other.Signature(TierRegion, 0)
}

// ViewportBounds is the lat/lon bounding box currently visible on the map.
type ViewportBounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// DefaultViewport covers the continental United States.
func DefaultViewport() ViewportBounds {
	return ViewportBounds{MinLat: 24.0, MaxLat: 50.0, MinLon: -125.0, MaxLon: -66.0}
}

// Validate checks that the bounds describe a non-degenerate box.
func (v ViewportBounds) Validate() error {
	if v.MinLat > v.MaxLat {
		return errors.New("viewport min latitude must not exceed max latitude")
	}
	if v.MinLon > v.MaxLon {
		return errors.New("viewport min longitude must not exceed max longitude")
	}
	if v.MinLat < -90 || v.MaxLat > 90 {
		return errors.New("viewport latitude out of range")
	}
	if v.MinLon < -180 || v.MaxLon > 180 {
		return errors.New("viewport longitude out of range")
	}
	return nil
}

// Contains reports whether the point lies inside the bounds (inclusive).
func (v ViewportBounds) Contains(lat, lon float64) bool {
	return lat >= v.MinLat && lat <= v.MaxLat && lon >= v.MinLon && lon <= v.MaxLon
}
