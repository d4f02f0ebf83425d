package facematch

// MatchResult is the outcome of matching one photo's detections against a
// roster: the per-face decisions in detection order plus the resolved final
// matches. SkippedReferences counts reference embeddings that were excluded
// for dimension mismatch across all faces, for compatibility warnings.
type MatchResult struct {
	Decisions         []Decision
	Matches           []FaceMatch
	Recognized        int
	SkippedReferences int
}

// MatchFaces runs the full per-photo pipeline: each detection is ranked and
// decided independently, then a single exclusivity pass credits every
// identity to at most one face. Exclusivity is a barrier over the complete
// decision set, never interleaved with per-face matching.
func MatchFaces(detections []Detection, roster []Identity, cal Calibration) MatchResult {
	result := MatchResult{
		Decisions: make([]Decision, 0, len(detections)),
		Matches:   make([]FaceMatch, 0, len(detections)),
	}

	for _, det := range detections {
		candidates, skipped := RankCandidates(det.Embedding, roster)
		decision := cal.Decide(candidates)
		decision.Skipped = skipped
		result.SkippedReferences += skipped
		result.Decisions = append(result.Decisions, decision)
	}

	winners := resolveWinners(result.Decisions)
	result.Recognized = len(winners)

	for i, det := range detections {
		decision := result.Decisions[i]
		match := FaceMatch{
			Area:      det.Area,
			Key:       UnknownLabel,
			Distance:  JSONFloat(decision.Distance),
			Embedding: det.Embedding,
		}
		if decision.Matched && winners[decision.Key] == i {
			match.Key = decision.Key
			match.Recognized = true
		}
		result.Matches = append(result.Matches, match)
	}
	return result
}

// resolveWinners maps each matched identity key to the index of its
// best-scoring face. Two faces may both individually pass the acceptance
// policy for the same identity (look-alikes, near-identical detections);
// only the minimum-distance face keeps the credit, which guarantees at most
// one face per identity per call. On an exact distance tie the earlier face
// in detection order wins.
func resolveWinners(decisions []Decision) map[string]int {
	winners := make(map[string]int)
	bestDistance := make(map[string]float64)

	for i, d := range decisions {
		if !d.Matched {
			continue
		}
		current, seen := bestDistance[d.Key]
		if !seen || d.Distance < current {
			winners[d.Key] = i
			bestDistance[d.Key] = d.Distance
		}
	}
	return winners
}
