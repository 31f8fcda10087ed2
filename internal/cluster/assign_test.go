package cluster

import (
	"strings"
	"testing"

	"github.com/bdeakin/disastermap/internal/models"
)

func TestNearestCenterAssigner_RadiusContainment(t *testing.T) {
	a := NewNearestCenterAssigner(PrimaryCenters, 150.0)

	points := []models.Point{
		{Lat: 40.8, Lon: -74.2, Weight: 1}, // near New York
		{Lat: 34.1, Lon: -118.0, Weight: 1}, // near Los Angeles
		{Lat: 41.5, Lon: -87.9, Weight: 1},  // near Chicago
		{Lat: 46.5, Lon: -105.0, Weight: 1}, // eastern Montana, nothing in range
	}

	clusters, dropped := a.Assign(points)
	if dropped != 1 {
		t.Errorf("expected 1 dropped point, got %d", dropped)
	}

	centerByName := make(map[string]ReferenceCenter)
	for _, c := range PrimaryCenters {
		centerByName[c.Name] = c
	}
	for _, cl := range clusters {
		center, ok := centerByName[cl.Name]
		if !ok {
			t.Fatalf("cluster names unknown center %q", cl.Name)
		}
		// Every assigned point must lie within the radius of its center;
		// here each cluster holds one point, so the nearest in-range center
		// also bounds the cluster's own location trivially.
		if cl.Count != 1 {
			t.Errorf("center %s: count = %d, want 1", cl.Name, cl.Count)
		}
		if cl.Lat != center.Lat || cl.Lon != center.Lon {
			t.Errorf("cluster at (%v, %v), want center position (%v, %v)", cl.Lat, cl.Lon, center.Lat, center.Lon)
		}
	}
}

func TestNearestCenterAssigner_PicksStrictlyClosest(t *testing.T) {
	centers := []ReferenceCenter{
		{"A", 40.0, -75.0},
		{"B", 41.0, -75.0},
	}
	a := NewNearestCenterAssigner(centers, 200.0)

	// Clearly closer to B.
	clusters, dropped := a.Assign([]models.Point{{Lat: 40.9, Lon: -75.0, Weight: 1}})
	if dropped != 0 {
		t.Fatalf("unexpected drop")
	}
	if len(clusters) != 1 || clusters[0].Name != "B" {
		t.Errorf("expected assignment to B, got %+v", clusters)
	}
}

func TestNearestCenterAssigner_TieBreakIsFirstInListOrder(t *testing.T) {
	// Two centers at the same latitude, equidistant from the midpoint.
	centers := []ReferenceCenter{
		{"First", 40.0, -76.0},
		{"Second", 40.0, -74.0},
	}
	a := NewNearestCenterAssigner(centers, 200.0)

	for i := 0; i < 10; i++ {
		clusters, _ := a.Assign([]models.Point{{Lat: 40.0, Lon: -75.0, Weight: 1}})
		if len(clusters) != 1 {
			t.Fatalf("expected 1 cluster, got %d", len(clusters))
		}
		if clusters[0].Name != "First" {
			t.Fatalf("tie must resolve to the first center in list order, got %q", clusters[0].Name)
		}
	}
}

func TestNearestCenterAssigner_EmptyInput(t *testing.T) {
	a := NewNearestCenterAssigner(PrimaryCenters, 150.0)
	clusters, dropped := a.Assign(nil)
	if len(clusters) != 0 || dropped != 0 {
		t.Errorf("expected empty result, got %d clusters, %d dropped", len(clusters), dropped)
	}
}

func TestNearestCenterAssigner_CountsAndOrder(t *testing.T) {
	a := NewNearestCenterAssigner(PrimaryCenters, 150.0)

	points := []models.Point{
		{Lat: 34.0, Lon: -118.2, Weight: 2, IncidentType: "Fire"},
		{Lat: 34.1, Lon: -118.3, Weight: 1, IncidentType: "Earthquake"},
		{Lat: 40.7, Lon: -74.0, Weight: 3, IncidentType: "Hurricane"},
	}

	clusters, _ := a.Assign(points)
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	// Output follows center list order: New York precedes Los Angeles.
	if clusters[0].Name != "New York" || clusters[1].Name != "Los Angeles" {
		t.Errorf("unexpected order: %q, %q", clusters[0].Name, clusters[1].Name)
	}
	if clusters[0].Count != 3 {
		t.Errorf("New York count = %d, want 3", clusters[0].Count)
	}
	if clusters[1].Count != 3 {
		t.Errorf("Los Angeles count = %d, want 3", clusters[1].Count)
	}
}

func TestNearestCenterAssigner_SelectionBoundsCoverAssignedPoints(t *testing.T) {
	a := NewNearestCenterAssigner(PrimaryCenters, 150.0)

	// Points near the outer edge of the assignment radius, well past half
	// of it: roughly 124 miles north of New York and 120 miles west of
	// Chicago.
	points := []models.Point{
		{Lat: 40.7128 + 1.8, Lon: -74.0060, Weight: 1},
		{Lat: 41.8781, Lon: -87.6298 - 2.3, Weight: 1},
	}

	clusters, dropped := a.Assign(points)
	if dropped != 0 {
		t.Fatalf("expected all points in range, dropped %d", dropped)
	}
	for _, cl := range clusters {
		sel := models.ClusterSelection{Lat: cl.Lat, Lon: cl.Lon, Size: cl.Size, Count: cl.Count}
		bounds := sel.Bounds()
		for _, p := range points {
			if DistanceMiles(p.Lat, p.Lon, ReferenceCenter{cl.Name, cl.Lat, cl.Lon}) > a.RadiusMiles {
				continue
			}
			if !bounds.Contains(p.Lat, p.Lon) {
				t.Errorf("center %s: assigned point (%v, %v) outside drill-down bounds %+v",
					cl.Name, p.Lat, p.Lon, bounds)
			}
		}
	}
}

func TestDistanceMiles_LongitudeCorrection(t *testing.T) {
	// One degree of longitude at 60°N is about half a degree's miles.
	center := ReferenceCenter{"North", 60.0, -100.0}
	d := DistanceMiles(60.0, -101.0, center)
	if d < 30.0 || d > 40.0 {
		t.Errorf("distance at 60N = %.1f miles, want ~34.5", d)
	}

	equator := ReferenceCenter{"Equator", 0.0, -100.0}
	de := DistanceMiles(0.0, -101.0, equator)
	if de < 68.0 || de > 70.0 {
		t.Errorf("distance at equator = %.1f miles, want ~69", de)
	}
}

func TestIncidentSummary_OrderedByCountThenLabel(t *testing.T) {
	points := []models.Point{
		{Weight: 1, IncidentType: "Flood"},
		{Weight: 1, IncidentType: "Flood"},
		{Weight: 1, IncidentType: "Fire"},
		{Weight: 1, IncidentType: "Earthquake"},
	}
	got := IncidentSummary(points)
	want := "Flood: 2, Earthquake: 1, Fire: 1"
	if got != want {
		t.Errorf("IncidentSummary = %q, want %q", got, want)
	}
}

func TestNameSummary_OnlyForSparseClusters(t *testing.T) {
	points := []models.Point{
		{Weight: 1, DeclarationName: "Hurricane Ian"},
		{Weight: 1, DeclarationName: "Hurricane Ian"},
		{Weight: 1, DeclarationName: "Tropical Storm Fred"},
	}
	if got := nameSummaryIfSparse(points, 3); !strings.Contains(got, "Hurricane Ian") {
		t.Errorf("sparse cluster should include names, got %q", got)
	}
	if got := nameSummaryIfSparse(points, 5); got != "" {
		t.Errorf("dense cluster should omit names, got %q", got)
	}
}
