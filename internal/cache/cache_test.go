package cache

import (
	"testing"

	"github.com/bdeakin/disastermap/internal/models"
)

func newTestCache(t *testing.T) *ResultCache {
	t.Helper()
	c, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return c
}

func sampleClusters() []models.SpatialCluster {
	return []models.SpatialCluster{
		{Lat: 39.6, Lon: -75.6, Count: 12, Size: 3.6, Level: "large"},
	}
}

func conus() models.ViewportBounds { return models.DefaultViewport() }

func TestResultCache_MissOnEmpty(t *testing.T) {
	c := newTestCache(t)
	c.SetSignature("sig-a")

	if _, ok := c.GetClusters("sig-a", conus()); ok {
		t.Error("empty cache must miss")
	}
	hits, misses := c.Stats()
	if hits != 0 || misses != 1 {
		t.Errorf("stats = (%d, %d), want (0, 1)", hits, misses)
	}
}

func TestResultCache_HitAfterPut(t *testing.T) {
	c := newTestCache(t)
	c.SetSignature("sig-a")
	c.PutClusters("sig-a", conus(), sampleClusters())

	got, ok := c.GetClusters("sig-a", conus())
	if !ok {
		t.Fatal("expected a hit")
	}
	if len(got) != 1 || got[0].Count != 12 {
		t.Errorf("unexpected cached clusters: %+v", got)
	}
}

func TestResultCache_ClustersAreViewportScoped(t *testing.T) {
	c := newTestCache(t)
	c.SetSignature("sig-a")

	west := models.ViewportBounds{MinLat: 42, MaxLat: 48, MinLon: -125, MaxLon: -115}
	east := models.ViewportBounds{MinLat: 37, MaxLat: 43, MinLon: -78, MaxLon: -72}
	c.PutClusters("sig-a", west, sampleClusters())

	// Same signature, different viewport: the west-coast result must not be
	// served for the east-coast view.
	if _, ok := c.GetClusters("sig-a", east); ok {
		t.Error("clusters computed for other bounds must miss")
	}
	// Panning back to the original bounds hits again.
	if _, ok := c.GetClusters("sig-a", west); !ok {
		t.Error("clusters for the original bounds must still hit")
	}
}

func TestResultCache_SignatureChangeEvictsEverything(t *testing.T) {
	c := newTestCache(t)
	c.SetSignature("sig-a")
	c.PutClusters("sig-a", conus(), sampleClusters())

	sel := models.ClusterSelection{Lat: 39.6, Lon: -75.6, Size: 3.6, Count: 12}
	c.PutDetails("sig-a", sel.Bounds(), []models.DisasterRecord{{DisasterID: "1011"}})

	if changed := c.SetSignature("sig-b"); !changed {
		t.Fatal("signature switch must report a change")
	}
	if _, ok := c.GetClusters("sig-a", conus()); ok {
		t.Error("clusters under the old signature must be evicted")
	}
	if _, ok := c.GetDetails("sig-a", sel.Bounds()); ok {
		t.Error("details under the old signature must be evicted")
	}
	// Re-selecting the old signature must not resurrect evicted entries.
	c.SetSignature("sig-a")
	if _, ok := c.GetClusters("sig-a", conus()); ok {
		t.Error("eviction is permanent, not a staleness mark")
	}
}

func TestResultCache_SetSameSignatureIsNoop(t *testing.T) {
	c := newTestCache(t)
	c.SetSignature("sig-a")
	c.PutClusters("sig-a", conus(), sampleClusters())

	if changed := c.SetSignature("sig-a"); changed {
		t.Error("same signature must not report a change")
	}
	if _, ok := c.GetClusters("sig-a", conus()); !ok {
		t.Error("same-signature switch must not evict")
	}
}

func TestResultCache_StalePutsDropped(t *testing.T) {
	c := newTestCache(t)
	c.SetSignature("sig-b")

	// A fetch issued under sig-a completes after the switch to sig-b.
	c.PutClusters("sig-a", conus(), sampleClusters())

	c.SetSignature("sig-a")
	if _, ok := c.GetClusters("sig-a", conus()); ok {
		t.Error("a put under a superseded signature must be dropped")
	}
}

func TestResultCache_DetailRoundTrip(t *testing.T) {
	c := newTestCache(t)
	c.SetSignature("sig-a")

	sel := models.ClusterSelection{Lat: 39.6, Lon: -75.6, Size: 3.6, Count: 12}
	rows := []models.DisasterRecord{{DisasterID: "1011"}, {DisasterID: "1012"}}
	c.PutDetails("sig-a", sel.Bounds(), rows)

	got, ok := c.GetDetails("sig-a", sel.Bounds())
	if !ok {
		t.Fatal("expected a detail hit")
	}
	if len(got) != 2 || got[0].DisasterID != "1011" {
		t.Errorf("unexpected cached rows: %+v", got)
	}
}

func TestKey_DistinguishesBounds(t *testing.T) {
	a := models.ViewportBounds{MinLat: 37.8, MaxLat: 41.4, MinLon: -77.4, MaxLon: -73.8}
	b := models.ViewportBounds{MinLat: 30.0, MaxLat: 33.6, MinLon: -99.0, MaxLon: -95.4}
	if Key("sig", a) == Key("sig", b) {
		t.Error("different bounds must map to different keys")
	}
	if Key("sig1", a) == Key("sig2", a) {
		t.Error("different signatures must map to different keys")
	}
}
