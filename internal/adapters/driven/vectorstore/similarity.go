package vectorstore

import (
	"math"
	"sort"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// cosine returns the cosine similarity of a and b, or 0 when either is a zero vector.
// Vectors of different length are never compared; callers check dimensions first.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// topK keeps the k best hits. Hits arrive in insertion order, so a stable
// sort on score alone breaks ties by insertion order.
func topK(hits []domain.ScoredChunk, k int) []domain.ScoredChunk {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
