package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCluster(t *testing.T) {
	tests := []struct {
		name      string
		positions []float64
		tolerance float64
		want      []float64
		counts    []int
	}{
		{
			name:      "empty input",
			positions: nil,
			tolerance: 2,
		},
		{
			name:      "single band",
			positions: []float64{100, 101, 100.5},
			tolerance: 2,
			want:      []float64{100.5},
			counts:    []int{3},
		},
		{
			name:      "separate bands",
			positions: []float64{700, 50, 51, 701},
			tolerance: 2,
			want:      []float64{50.5, 700.5},
			counts:    []int{2, 2},
		},
		{
			name:      "running mean drifts",
			positions: []float64{0, 2, 4},
			tolerance: 2,
			want:      []float64{1, 4},
			counts:    []int{2, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clusters := Cluster(tt.positions, tt.tolerance)
			require.Len(t, clusters, len(tt.want))
			for i, c := range clusters {
				assert.InDelta(t, tt.want[i], c.Center, 1e-9)
				assert.Equal(t, tt.counts[i], c.Count)
			}
		})
	}
}

func TestClusterJoinsAgainstRunningMean(t *testing.T) {
	// 4.5 is beyond tolerance of the first member but within tolerance of the
	// drifted mean, so it still joins the first cluster.
	clusters := Cluster([]float64{0, 3, 3.4, 4.5}, 3.0)
	require.Len(t, clusters, 1)
	assert.Equal(t, 4, clusters[0].Count)

	clusters = Cluster([]float64{0, 1, 3, 4.5}, 2.0)
	require.Len(t, clusters, 2)
	assert.InDelta(t, 0.5, clusters[0].Center, 1e-9)
	assert.InDelta(t, 3.75, clusters[1].Center, 1e-9)
}

func TestClusterDeterministic(t *testing.T) {
	positions := []float64{12.5, 700, 13, 699.2, 400, 12.9, 401.7, 14.2}
	first := Cluster(positions, DefaultTolerance)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Cluster(positions, DefaultTolerance))
	}
	assert.Equal(t, []float64{12.5, 700, 13, 699.2, 400, 12.9, 401.7, 14.2}, positions, "input must not be reordered")
}

func TestClusterAssignmentWithinTolerance(t *testing.T) {
	positions := []float64{1, 1.5, 2.9, 3.1, 5, 5.2, 9, 10.9, 11, 30}
	tolerance := 2.0

	// replay the scan and check each assignment against the mean at that moment
	var means []float64
	var counts []int
	for _, p := range positions {
		assigned := false
		for i := range means {
			if math.Abs(p-means[i]) <= tolerance {
				assert.LessOrEqual(t, math.Abs(p-means[i]), tolerance)
				means[i] = (means[i]*float64(counts[i]) + p) / float64(counts[i]+1)
				counts[i]++
				assigned = true
				break
			}
		}
		if !assigned {
			means = append(means, p)
			counts = append(counts, 1)
		}
	}

	assert.Equal(t, means, Centers(Cluster(positions, tolerance)))
}

func TestRepeatedBandDetector(t *testing.T) {
	d := NewRepeatedBandDetector()

	t.Run("band on every page is repeated", func(t *testing.T) {
		var obs []Observation
		for page := 1; page <= 5; page++ {
			obs = append(obs, Observation{Page: page, Y: 30 + float64(page)*0.1, PageHeight: 792})
			obs = append(obs, Observation{Page: page, Y: 200 + float64(page)*40, PageHeight: 792})
		}
		bands := d.Detect(obs, 5)
		require.Equal(t, 1, bands.Len())
		assert.True(t, bands.Contains(30.2))
		assert.False(t, bands.Contains(240))
	})

	t.Run("band on 80 percent of pages is repeated", func(t *testing.T) {
		var obs []Observation
		for page := 1; page <= 4; page++ {
			obs = append(obs, Observation{Page: page, Y: 50, PageHeight: 792})
		}
		bands := d.Detect(obs, 5)
		assert.True(t, bands.Contains(50))
	})

	t.Run("band below threshold is kept", func(t *testing.T) {
		var obs []Observation
		for page := 1; page <= 3; page++ {
			obs = append(obs, Observation{Page: page, Y: 50, PageHeight: 792})
		}
		assert.Equal(t, 0, d.Detect(obs, 5).Len())
	})

	t.Run("position on one page only is not repeated", func(t *testing.T) {
		obs := []Observation{
			{Page: 1, Y: 100, PageHeight: 792},
			{Page: 1, Y: 101, PageHeight: 792},
			{Page: 1, Y: 100.5, PageHeight: 792},
		}
		bands := d.Detect(obs, 3)
		assert.False(t, bands.Contains(100))
	})

	t.Run("single page documents are never banded", func(t *testing.T) {
		obs := []Observation{{Page: 1, Y: 100, PageHeight: 792}}
		assert.Equal(t, 0, d.ExclusionSet(obs, 1).Len())
	})
}

func TestDetectFooters(t *testing.T) {
	d := NewRepeatedBandDetector()
	d.Threshold = 1.0

	obs := []Observation{
		{Page: 1, Y: 760, PageHeight: 792},
		{Page: 2, Y: 760.5, PageHeight: 792},
		{Page: 1, Y: 72, PageHeight: 792},
		{Page: 2, Y: 72, PageHeight: 792},
	}

	footers := d.DetectFooters(obs, 2)
	require.Equal(t, 1, footers.Len())
	assert.True(t, footers.Contains(760))
	assert.False(t, footers.Contains(72), "bands above the bottom region are ignored")

	all := d.ExclusionSet(obs, 2)
	assert.Equal(t, 2, all.Len())
	assert.True(t, all.Contains(72))
	assert.True(t, all.Contains(760.5))
}

func TestBandsContainsIsStrict(t *testing.T) {
	b := Bands{centers: []float64{100}, tolerance: 2}
	assert.True(t, b.Contains(101.9))
	assert.False(t, b.Contains(102))
	assert.False(t, b.Contains(97.9))
}
