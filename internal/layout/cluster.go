// Package layout infers page geometry from raw coordinates: it clusters nearby
// positions into bands and finds the bands that repeat across pages.
package layout

import (
	"math"
	"sort"

	"github.com/a3tai/mcp-pdf-markdown/internal/model"
)

// DefaultTolerance is the distance within which two positions share a band.
const DefaultTolerance = 2.0

// Cluster groups positions into bands. Positions are visited in ascending order
// and each joins the first existing cluster, in creation order, whose running mean
// is within tolerance. This is a first-match policy, not nearest-match.
func Cluster(positions []float64, tolerance float64) []model.PositionCluster {
	if len(positions) == 0 {
		return nil
	}
	if tolerance < 0 {
		tolerance = DefaultTolerance
	}

	sorted := make([]float64, len(positions))
	copy(sorted, positions)
	sort.Float64s(sorted)

	var clusters []model.PositionCluster
	for _, pos := range sorted {
		assigned := false
		for i := range clusters {
			c := &clusters[i]
			if math.Abs(pos-c.Center) <= tolerance {
				c.Center = (c.Center*float64(c.Count) + pos) / float64(c.Count+1)
				c.Count++
				assigned = true
				break
			}
		}
		if !assigned {
			clusters = append(clusters, model.PositionCluster{Center: pos, Count: 1})
		}
	}

	return clusters
}

// Centers returns the cluster centers in creation order.
func Centers(clusters []model.PositionCluster) []float64 {
	centers := make([]float64, len(clusters))
	for i, c := range clusters {
		centers[i] = c.Center
	}
	return centers
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
