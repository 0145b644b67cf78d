// Package textnorm normalizes text for comparison and scores near-duplicates.
package textnorm

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// Normalizer collapses whitespace runs to single spaces and trims the ends.
// Results are memoized in a bounded cache shared by concurrent conversions.
type Normalizer struct {
	cache *Cache
}

// NewNormalizer creates a normalizer backed by a cache of the given size
func NewNormalizer(cacheSize int) *Normalizer {
	return &Normalizer{cache: NewCache(cacheSize)}
}

// Normalize returns s with every whitespace run replaced by one space.
func (n *Normalizer) Normalize(s string) string {
	if n == nil || n.cache == nil {
		return collapse(s)
	}
	if v, ok := n.cache.Get(s); ok {
		return v
	}
	v := collapse(s)
	n.cache.Put(s, v)
	return v
}

// Stats exposes the underlying cache statistics.
func (n *Normalizer) Stats() CacheStats {
	return n.cache.Stats()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Ratio scores the similarity of a and b from 0 to 100 using the indel
// distance: twice the longest common subsequence over the combined rune length.
func Ratio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la+lb == 0 {
		return 100
	}
	lcs := edlib.LCS(a, b)
	return float64(2*lcs) / float64(la+lb) * 100
}
