package cluster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bdeakin/disastermap/internal/models"
)

// nameSummaryThreshold caps how large a cluster may be before declaration
// names are dropped from the hover summary. Large clusters would otherwise
// produce unreadably long name lists.
const nameSummaryThreshold = 5

type labelCount struct {
	label string
	count int64
}

func sortedLabelCounts(counts map[string]int64) []labelCount {
	out := make([]labelCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, labelCount{label: label, count: count})
	}
	// Descending count, ties broken by label ascending for determinism.
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].label < out[j].label
	})
	return out
}

// IncidentSummary builds the per-cluster incident rollup string
// ("Flood: 12, Fire: 3"), ordered by descending count and then label.
func IncidentSummary(points []models.Point) string {
	counts := make(map[string]int64)
	for _, p := range points {
		if p.IncidentType == "" {
			continue
		}
		counts[p.IncidentType] += p.Weight
	}
	if len(counts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(counts))
	for _, lc := range sortedLabelCounts(counts) {
		parts = append(parts, fmt.Sprintf("%s: %d", lc.label, lc.count))
	}
	return strings.Join(parts, ", ")
}

// NameSummary lists the distinct declaration names in the cluster, sorted
// alphabetically.
func NameSummary(points []models.Point) string {
	seen := make(map[string]struct{})
	var names []string
	for _, p := range points {
		if p.DeclarationName == "" {
			continue
		}
		if _, ok := seen[p.DeclarationName]; ok {
			continue
		}
		seen[p.DeclarationName] = struct{}{}
		names = append(names, p.DeclarationName)
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// nameSummaryIfSparse returns the name rollup only for clusters small enough
// to read (count < nameSummaryThreshold), mirroring the hover behavior of
// the aggregate view.
func nameSummaryIfSparse(points []models.Point, count int64) string {
	if count >= nameSummaryThreshold {
		return ""
	}
	return NameSummary(points)
}
