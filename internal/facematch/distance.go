package facematch

import "math"

// CosineDistance computes the cosine distance between two embeddings:
// 1 - cosine similarity, in [0, 2] (0 = identical direction, 1 = orthogonal,
// 2 = opposite). The second return value is false when the embeddings are
// incomparable: mismatched dimensions, empty input or a zero-magnitude
// vector. Incomparable pairs must be skipped, never treated as a distance.
func CosineDistance(a, b Embedding) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, false
	}

	similarity := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp to [-1, 1] to handle floating point errors.
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}

	return 1 - similarity, true
}

// minDistance reduces one probe embedding against a set of references to the
// smallest distance among dimension-compatible pairs. The same argmin shape
// backs per-identity aggregation, candidate ranking and exclusivity
// resolution, so the match and diagnostic paths cannot drift apart.
// compared counts references that produced a distance, skipped counts
// references excluded for incompatibility.
func minDistance(probe Embedding, references []Embedding) (best float64, compared, skipped int) {
	best = math.Inf(1)
	for _, ref := range references {
		d, ok := CosineDistance(probe, ref)
		if !ok {
			skipped++
			continue
		}
		compared++
		if d < best {
			best = d
		}
	}
	return best, compared, skipped
}
