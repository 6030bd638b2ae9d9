package vectorstore

import (
	"math"

	"github.com/voxdocs/voxdocs/domain/entities"
)

// candidate is a search hit carrying its embedding for reranking.
type candidate struct {
	segment  entities.DocumentSegment
	score    float32
	vector   []float32
	selected bool
}

// rerankMMR applies maximal marginal relevance over the candidate pool:
// each round picks the candidate maximizing
// lambda*sim(query, c) - (1-lambda)*max(sim(c, chosen)). Candidates with
// no vector fall back on their search score for the relevance term and
// contribute zero redundancy.
func rerankMMR(query []float32, candidates []candidate, k int, lambda float32) []candidate {
	if k >= len(candidates) {
		return candidates
	}

	relevance := make([]float32, len(candidates))
	for i, c := range candidates {
		if len(c.vector) > 0 {
			relevance[i] = cosineSimilarity(query, c.vector)
		} else {
			relevance[i] = c.score
		}
	}

	selected := make([]candidate, 0, k)
	for len(selected) < k {
		best := -1
		var bestScore float32 = -math.MaxFloat32
		for i, c := range candidates {
			if c.selected {
				continue
			}
			var redundancy float32 = -math.MaxFloat32
			for _, chosen := range selected {
				if len(c.vector) == 0 || len(chosen.vector) == 0 {
					continue
				}
				if sim := cosineSimilarity(c.vector, chosen.vector); sim > redundancy {
					redundancy = sim
				}
			}
			if redundancy == -math.MaxFloat32 {
				redundancy = 0
			}
			score := lambda*relevance[i] - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				best = i
			}
		}
		if best < 0 {
			break
		}
		candidates[best].selected = true
		selected = append(selected, candidates[best])
	}
	return selected
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths and zero vectors yield 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
