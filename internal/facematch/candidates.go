package facematch

import (
	"math"
	"sort"
)

// RankCandidates scores one detected-face embedding against every enrolled
// identity and returns the candidates sorted ascending by distance.
//
// Each identity is reduced to the minimum distance across its
// dimension-compatible reference embeddings; references with a mismatched
// dimension are skipped and counted (legacy enrollments degrade gracefully
// instead of aborting the match). Identities with no comparable reference
// produce no candidate at all. Ties are broken by identity key so the
// ranking is deterministic regardless of roster order.
func RankCandidates(face Embedding, roster []Identity) (candidates []Candidate, skipped int) {
	for _, id := range roster {
		best, compared, incompatible := minDistance(face, id.References)
		skipped += incompatible
		if compared == 0 {
			continue
		}
		candidates = append(candidates, Candidate{
			Key:        id.Key,
			Name:       id.DisplayName(),
			Distance:   best,
			References: compared,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance != candidates[j].Distance {
			return candidates[i].Distance < candidates[j].Distance
		}
		return candidates[i].Key < candidates[j].Key
	})
	return candidates, skipped
}

// Gap returns the separation between the best and second-best candidate.
// With fewer than two candidates the gap is +Inf: a lone candidate can only
// be rejected on absolute distance, never on separation.
func Gap(candidates []Candidate) float64 {
	if len(candidates) < 2 {
		return math.Inf(1)
	}
	return candidates[1].Distance - candidates[0].Distance
}
