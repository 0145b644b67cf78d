package layout

import (
	"math"
	"sort"
)

// Defaults for repeated band detection.
const (
	DefaultRepeatThreshold = 0.8
	DefaultBottomRatio     = 0.9
	DefaultMinPages        = 2
)

// Observation is one span's vertical position on a page.
type Observation struct {
	Page       int
	Y          float64
	PageHeight float64
}

// Bands is a set of band centers excluded from the output.
type Bands struct {
	centers   []float64
	tolerance float64
}

// Contains reports whether y falls strictly within tolerance of any band.
func (b Bands) Contains(y float64) bool {
	ry := round1(y)
	for _, c := range b.centers {
		if math.Abs(ry-c) < b.tolerance {
			return true
		}
	}
	return false
}

// Centers returns the sorted band centers.
func (b Bands) Centers() []float64 {
	out := make([]float64, len(b.centers))
	copy(out, b.centers)
	return out
}

// Len returns the number of bands.
func (b Bands) Len() int { return len(b.centers) }

// Union merges two band sets. The receiver's tolerance is kept.
func (b Bands) Union(other Bands) Bands {
	seen := make(map[float64]struct{}, len(b.centers)+len(other.centers))
	merged := make([]float64, 0, len(b.centers)+len(other.centers))
	for _, c := range append(b.Centers(), other.centers...) {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		merged = append(merged, c)
	}
	sort.Float64s(merged)
	tol := b.tolerance
	if tol == 0 {
		tol = other.tolerance
	}
	return Bands{centers: merged, tolerance: tol}
}

// RepeatedBandDetector finds vertical bands that recur on a high share of pages,
// which is how running headers and footers show up in positioned text.
type RepeatedBandDetector struct {
	Tolerance   float64
	Threshold   float64
	BottomRatio float64
	MinPages    int
}

// NewRepeatedBandDetector creates a detector with default settings
func NewRepeatedBandDetector() *RepeatedBandDetector {
	return &RepeatedBandDetector{
		Tolerance:   DefaultTolerance,
		Threshold:   DefaultRepeatThreshold,
		BottomRatio: DefaultBottomRatio,
		MinPages:    DefaultMinPages,
	}
}

// Detect runs detection over the whole page.
func (d *RepeatedBandDetector) Detect(obs []Observation, totalPages int) Bands {
	return d.detect(obs, totalPages)
}

// DetectFooters runs detection over observations in the bottom region of their page.
func (d *RepeatedBandDetector) DetectFooters(obs []Observation, totalPages int) Bands {
	bottom := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if o.PageHeight <= 0 {
			continue
		}
		if o.Y >= o.PageHeight*d.BottomRatio {
			bottom = append(bottom, o)
		}
	}
	return d.detect(bottom, totalPages)
}

// ExclusionSet unions whole-page and footer-only detection.
func (d *RepeatedBandDetector) ExclusionSet(obs []Observation, totalPages int) Bands {
	return d.Detect(obs, totalPages).Union(d.DetectFooters(obs, totalPages))
}

func (d *RepeatedBandDetector) detect(obs []Observation, totalPages int) Bands {
	result := Bands{tolerance: d.Tolerance}
	if totalPages <= 0 || totalPages < d.MinPages || len(obs) == 0 {
		return result
	}

	ys := make([]float64, len(obs))
	for i, o := range obs {
		ys[i] = o.Y
	}

	for _, cluster := range Cluster(ys, d.Tolerance) {
		center := round1(cluster.Center)
		pages := make(map[int]struct{})
		for _, o := range obs {
			if math.Abs(o.Y-cluster.Center) <= d.Tolerance {
				pages[o.Page] = struct{}{}
			}
		}
		if float64(len(pages))/float64(totalPages) >= d.Threshold {
			result.centers = append(result.centers, center)
		}
	}
	sort.Float64s(result.centers)

	return result
}
