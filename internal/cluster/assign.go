package cluster

import (
	"math"

	"github.com/bdeakin/disastermap/internal/models"
)

// milesPerDegree is the approximate length of one degree of latitude.
// Longitude degrees shrink with latitude and are corrected by
// cos(center latitude). This planar approximation is adequate at the
// radii used here (tens to low hundreds of miles); it is not geodesic.
const milesPerDegree = 69.0

// NearestCenterAssigner assigns each point to the closest reference center
// within RadiusMiles. Points with no center in range are excluded from the
// tier's output; the caller receives the dropped count so the exclusion
// stays observable.
type NearestCenterAssigner struct {
	Centers     []ReferenceCenter
	RadiusMiles float64
}

// NewNearestCenterAssigner returns an assigner over the given ordered
// center list.
func NewNearestCenterAssigner(centers []ReferenceCenter, radiusMiles float64) *NearestCenterAssigner {
	return &NearestCenterAssigner{Centers: centers, RadiusMiles: radiusMiles}
}

// DistanceMiles computes the approximate planar distance in miles between a
// point and a reference center, with longitude scaled by the cosine of the
// center's latitude.
func DistanceMiles(lat, lon float64, center ReferenceCenter) float64 {
	dLat := (lat - center.Lat) * milesPerDegree
	dLon := (lon - center.Lon) * milesPerDegree * math.Cos(center.Lat*math.Pi/180.0)
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

// Assign buckets the points by nearest in-range center. It returns one
// cluster per center that received at least one point, in center list
// order, plus the number of points excluded for being out of range of
// every center. Equidistant ties resolve to the earlier center in the list.
func (a *NearestCenterAssigner) Assign(points []models.Point) ([]models.SpatialCluster, int64) {
	if len(points) == 0 {
		return []models.SpatialCluster{}, 0
	}

	byCenter := make(map[int][]models.Point)
	var dropped int64

	for _, p := range points {
		best := -1
		bestDist := math.Inf(1)
		for i, c := range a.Centers {
			d := DistanceMiles(p.Lat, p.Lon, c)
			if d > a.RadiusMiles {
				continue
			}
			// Strict less-than keeps the first center on exact ties.
			if d < bestDist {
				best = i
				bestDist = d
			}
		}
		if best < 0 {
			dropped += p.Weight
			continue
		}
		byCenter[best] = append(byCenter[best], p)
	}

	clusters := make([]models.SpatialCluster, 0, len(byCenter))
	for i, c := range a.Centers {
		assigned, ok := byCenter[i]
		if !ok {
			continue
		}
		var count int64
		for _, p := range assigned {
			count += p.Weight
		}
		// Size feeds the drill-down box, which spans ± size/2 around the
		// center. Store the assignment diameter in degrees at the longitude
		// scale (degrees shrink by cos(lat)), the wider of the two axes, so
		// every assigned point falls inside the box. Latitude is over-covered.
		sizeDegrees := 2 * a.RadiusMiles / (milesPerDegree * math.Cos(c.Lat*math.Pi/180.0))
		clusters = append(clusters, models.SpatialCluster{
			Lat:      c.Lat,
			Lon:      c.Lon,
			Count:    count,
			Size:     sizeDegrees,
			Level:    LevelCenter,
			Name:     c.Name,
			Summary:  IncidentSummary(assigned),
			NameList: nameSummaryIfSparse(assigned, count),
		})
	}
	return clusters, dropped
}
