package facematch

import "fmt"

// maxDiagnosticCandidates caps the ranked list returned per face.
const maxDiagnosticCandidates = 5

// FaceAnalysis is the diagnostic view of one detected face: the full ranked
// candidate list (top-5), the computed and required gaps, and human-readable
// recommendations. The accept/reject outcome comes from the exact same
// Decide call as matching, so the two views can never disagree numerically.
type FaceAnalysis struct {
	FaceIndex       int         `json:"faceIndex"`
	Area            FacialArea  `json:"facialArea"`
	BestMatch       *Candidate  `json:"bestMatch"`
	IsMatch         bool        `json:"isMatch"`
	MatchedTo       string      `json:"matchedTo"`
	Gap             JSONFloat   `json:"gap"`
	RequiredGap     float64     `json:"requiredGap"`
	Reason          string      `json:"reason,omitempty"`
	Candidates      []Candidate `json:"allCandidates"`
	Recommendations []string    `json:"recommendations"`
}

// Diagnose runs the matching pipeline per face but keeps the intermediate
// ranking instead of reducing it to a terse match/no-match.
func Diagnose(detections []Detection, roster []Identity, cal Calibration) []FaceAnalysis {
	analyses := make([]FaceAnalysis, 0, len(detections))

	for i, det := range detections {
		candidates, _ := RankCandidates(det.Embedding, roster)
		decision := cal.Decide(candidates)

		analysis := FaceAnalysis{
			FaceIndex:   i,
			Area:        det.Area,
			IsMatch:     decision.Matched,
			MatchedTo:   UnknownLabel,
			Gap:         JSONFloat(decision.Gap),
			RequiredGap: decision.RequiredGap,
			Candidates:  topCandidates(candidates),
		}
		if len(candidates) > 0 {
			best := candidates[0]
			analysis.BestMatch = &best
		}
		if decision.Matched {
			analysis.MatchedTo = decision.Name
		} else {
			analysis.Reason = decision.Reason
			analysis.Recommendations = recommendations(decision, candidates, cal)
		}
		if analysis.Recommendations == nil {
			analysis.Recommendations = []string{}
		}
		analyses = append(analyses, analysis)
	}
	return analyses
}

func topCandidates(candidates []Candidate) []Candidate {
	if len(candidates) > maxDiagnosticCandidates {
		candidates = candidates[:maxDiagnosticCandidates]
	}
	// Copy so callers cannot mutate the ranked slice shared with BestMatch.
	out := make([]Candidate, len(candidates))
	copy(out, candidates)
	return out
}

// recommendations explains an unmatched decision in operator terms.
func recommendations(d Decision, candidates []Candidate, cal Calibration) []string {
	switch d.Reason {
	case ReasonNoCandidates:
		return []string{
			"no enrolled identity has a reference embedding compatible with this face",
			"re-enroll affected identities with the current embedding model",
		}
	case ReasonOverThreshold:
		recs := []string{
			fmt.Sprintf("distance %.3f exceeds threshold %.2f", d.Distance, cal.Threshold),
		}
		if len(candidates) > 0 {
			recs = append(recs, fmt.Sprintf("re-enroll %s with a photo closer to capture conditions", candidates[0].Name))
		}
		return recs
	case ReasonInsufficientGap:
		recs := []string{
			fmt.Sprintf("gap %.3f below required %.3f - face resembles multiple enrolled identities", d.Gap, d.RequiredGap),
		}
		if len(candidates) > 1 {
			recs = append(recs, fmt.Sprintf("closest identities: %s and %s", candidates[0].Name, candidates[1].Name))
		}
		return recs
	}
	return nil
}
