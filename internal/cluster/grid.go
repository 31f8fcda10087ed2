// Package cluster implements the two spatial aggregation strategies behind
// the map: uniform grid binning with a two-tier subdivision policy, and
// nearest-center assignment against a fixed list of named reference points.
//
// Both strategies consume weighted points and produce SpatialClusters. They
// are pure: identical input always yields identical output, and the sum of
// emitted cluster counts always equals the sum of input weights for the
// binner (conservation).
package cluster

import (
	"math"
	"sort"

	"github.com/bdeakin/disastermap/internal/models"
)

// Grid level labels carried on emitted clusters.
const (
	LevelLarge  = "large"
	LevelSmall  = "small"
	LevelCenter = "center"
)

// GridBinner snaps points onto a uniform lat/lon grid at two cell sizes.
// Large cells whose aggregate count reaches MetroThreshold are emitted
// as-is; sparse large cells are re-binned at the small size so low-density
// areas keep spatial detail.
type GridBinner struct {
	LargeDegrees   float64
	SmallDegrees   float64
	MetroThreshold int64
}

// NewGridBinner returns a binner with the given cell sizes and threshold.
func NewGridBinner(largeDegrees, smallDegrees float64, metroThreshold int64) *GridBinner {
	return &GridBinner{
		LargeDegrees:   largeDegrees,
		SmallDegrees:   smallDegrees,
		MetroThreshold: metroThreshold,
	}
}

// SnapCell snaps a coordinate to the center of its grid cell:
// round(x/g)*g. math.Round rounds halves away from zero, so a point exactly
// on a cell boundary snaps deterministically toward the larger magnitude.
func SnapCell(x, g float64) float64 {
	return math.Round(x/g) * g
}

type cellKey struct {
	lat float64
	lon float64
}

type cellAgg struct {
	count  int64
	points []models.Point
}

// Bin aggregates the points under the two-tier policy and returns one
// cluster per emitted cell. An empty input yields an empty (non-error)
// result; "zero clusters" is a valid terminal state for rendering.
func (b *GridBinner) Bin(points []models.Point) []models.SpatialCluster {
	if len(points) == 0 {
		return []models.SpatialCluster{}
	}

	large := make(map[cellKey]*cellAgg)
	for _, p := range points {
		key := cellKey{
			lat: SnapCell(p.Lat, b.LargeDegrees),
			lon: SnapCell(p.Lon, b.LargeDegrees),
		}
		agg, ok := large[key]
		if !ok {
			agg = &cellAgg{}
			large[key] = agg
		}
		agg.count += p.Weight
		agg.points = append(agg.points, p)
	}

	var clusters []models.SpatialCluster
	for key, agg := range large {
		if agg.count >= b.MetroThreshold {
			clusters = append(clusters, models.SpatialCluster{
				Lat:      key.lat,
				Lon:      key.lon,
				Count:    agg.count,
				Size:     b.LargeDegrees,
				Level:    LevelLarge,
				Summary:  IncidentSummary(agg.points),
				NameList: nameSummaryIfSparse(agg.points, agg.count),
			})
			continue
		}
		// Sparse large cell: re-bin only its constituent points at the
		// small size. The subdivided counts sum to the large cell's count.
		small := make(map[cellKey]*cellAgg)
		for _, p := range agg.points {
			skey := cellKey{
				lat: SnapCell(p.Lat, b.SmallDegrees),
				lon: SnapCell(p.Lon, b.SmallDegrees),
			}
			sagg, ok := small[skey]
			if !ok {
				sagg = &cellAgg{}
				small[skey] = sagg
			}
			sagg.count += p.Weight
			sagg.points = append(sagg.points, p)
		}
		for skey, sagg := range small {
			clusters = append(clusters, models.SpatialCluster{
				Lat:      skey.lat,
				Lon:      skey.lon,
				Count:    sagg.count,
				Size:     b.SmallDegrees,
				Level:    LevelSmall,
				Summary:  IncidentSummary(sagg.points),
				NameList: nameSummaryIfSparse(sagg.points, sagg.count),
			})
		}
	}

	// Deterministic output order: lat, then lon, then level.
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Lat != clusters[j].Lat {
			return clusters[i].Lat < clusters[j].Lat
		}
		if clusters[i].Lon != clusters[j].Lon {
			return clusters[i].Lon < clusters[j].Lon
		}
		return clusters[i].Level < clusters[j].Level
	})
	return clusters
}
