// Package selection resolves a map click to the nearest rendered cluster
// and derives the drill-down request for its constituent records.
package selection

import (
	"github.com/bdeakin/disastermap/internal/models"
)

// Resolve picks the cluster minimizing squared planar distance to the click
// point. There is deliberately no distance threshold: a click always
// resolves to the nearest rendered cluster, however far away. Returns false
// only when no clusters are rendered.
func Resolve(lat, lon float64, clusters []models.SpatialCluster) (models.ClusterSelection, bool) {
	if len(clusters) == 0 {
		return models.ClusterSelection{}, false
	}
	best := 0
	bestDist := sqDist(lat, lon, clusters[0])
	for i := 1; i < len(clusters); i++ {
		if d := sqDist(lat, lon, clusters[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}
	c := clusters[best]
	return models.ClusterSelection{
		Lat:     c.Lat,
		Lon:     c.Lon,
		Size:    c.Size,
		Count:   c.Count,
		Summary: c.Summary,
	}, true
}

func sqDist(lat, lon float64, c models.SpatialCluster) float64 {
	dLat := lat - c.Lat
	dLon := lon - c.Lon
	return dLat*dLat + dLon*dLon
}
