package zoom

import (
	"testing"

	"github.com/bdeakin/disastermap/internal/models"
)

func TestTierFor_Thresholds(t *testing.T) {
	s := DefaultSelector()

	cases := []struct {
		zoom float64
		want models.ZoomTier
	}{
		{0.0, models.TierRegion},
		{3.0, models.TierRegion},
		{4.0, models.TierRegion}, // boundary: inclusive on the region side
		{4.1, models.TierMetro},
		{5.9, models.TierMetro},
		{6.0, models.TierMSA}, // boundary: exclusive on the metro side
		{7.9, models.TierMSA},
		{8.0, models.TierDetail}, // boundary: exclusive on the MSA side
		{15.0, models.TierDetail},
	}
	for _, tc := range cases {
		if got := s.TierFor(tc.zoom); got != tc.want {
			t.Errorf("TierFor(%v) = %v, want %v", tc.zoom, got, tc.want)
		}
	}
}

func TestTierFor_StableAcrossRepeatedCalls(t *testing.T) {
	s := DefaultSelector()
	for i := 0; i < 100; i++ {
		if got := s.TierFor(4.0); got != models.TierRegion {
			t.Fatalf("call %d: TierFor(4.0) = %v, want region", i, got)
		}
	}
}

func TestTierFor_TotalOverWideRange(t *testing.T) {
	s := DefaultSelector()
	for z := -10.0; z <= 30.0; z += 0.25 {
		if got := s.TierFor(z); !got.Valid() {
			t.Fatalf("TierFor(%v) returned invalid tier %q", z, got)
		}
	}
}
