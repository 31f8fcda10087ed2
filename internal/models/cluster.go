package models

import (
	"errors"
	"math"
)

// SpatialCluster is one rendered marker: either a grid cell aggregate or a
// named-center aggregate, depending on the tier that produced it. Clusters
// are created fresh on every fetch and never mutated after creation.
type SpatialCluster struct {
	Lat      float64 `json:"latitude"`
	Lon      float64 `json:"longitude"`
	Count    int64   `json:"count"`
	Size     float64 `json:"cell_or_radius_size"` // grid cell degrees, or assignment diameter in degrees for center clusters
	Level    string  `json:"grid_level"`          // "large", "small", or "center"
	Name     string  `json:"name,omitempty"`      // reference center name, when applicable
	Summary  string  `json:"incident_summary,omitempty"`
	NameList string  `json:"name_summary,omitempty"` // declaration names; only populated for small clusters
}

// Validate checks that the cluster fields are valid.
func (c *SpatialCluster) Validate() error {
	if c.Count <= 0 {
		return errors.New("cluster count must be positive")
	}
	if c.Size <= 0 {
		return errors.New("cluster size must be positive")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return errors.New("cluster latitude out of range")
	}
	if c.Lon < -180 || c.Lon > 180 {
		return errors.New("cluster longitude out of range")
	}
	return nil
}

// ClusterSelection is the user's resolved click target. A selection must
// always reference a cluster that existed under the currently active
// signature; the engine clears it whenever the filter set or tier changes.
type ClusterSelection struct {
	Lat     float64 `json:"latitude"`
	Lon     float64 `json:"longitude"`
	Size    float64 `json:"radius_or_cell_size"`
	Count   int64   `json:"count"`
	Summary string  `json:"summary,omitempty"`
}

// Equal reports whether two selections reference the same cluster by value.
// Coordinates are compared with a small epsilon so a re-click on the same
// rendered marker is recognized as a no-op.
func (s ClusterSelection) Equal(other ClusterSelection) bool {
	const eps = 1e-9
	return math.Abs(s.Lat-other.Lat) < eps &&
		math.Abs(s.Lon-other.Lon) < eps &&
		math.Abs(s.Size-other.Size) < eps &&
		s.Count == other.Count
}

// Bounds derives the drill-down bounding box [lat ± size/2, lon ± size/2]
// from the selection's stored cell or radius size.
func (s ClusterSelection) Bounds() ViewportBounds {
	half := s.Size / 2.0
	return ViewportBounds{
		MinLat: s.Lat - half,
		MaxLat: s.Lat + half,
		MinLon: s.Lon - half,
		MaxLon: s.Lon + half,
	}
}
