package facematch

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestDiagnoseAgreesWithMatching(t *testing.T) {
	// The diagnostic path must never diverge numerically from the match
	// path for the same inputs.
	roster := []Identity{
		{Key: "A", References: []Embedding{embeddingAt(0.1)}},
		{Key: "B", References: []Embedding{embeddingAt(0.9)}},
		{Key: "C", References: []Embedding{embeddingAt(2.0)}},
	}
	detections := []Detection{
		{Embedding: embeddingAt(0.12), Area: FacialArea{X: 10, Y: 10}},
		{Embedding: embeddingAt(2.5), Area: FacialArea{X: 400, Y: 10}},
		{Embedding: embeddingAt(0.5), Area: FacialArea{X: 10, Y: 400}},
	}
	cal := DefaultCalibration()

	analyses := Diagnose(detections, roster, cal)
	matched := MatchFaces(detections, roster, cal)
	if len(analyses) != len(matched.Decisions) {
		t.Fatalf("analysis count %d != decision count %d", len(analyses), len(matched.Decisions))
	}

	for i, a := range analyses {
		d := matched.Decisions[i]
		if a.IsMatch != d.Matched {
			t.Errorf("face %d: IsMatch=%v but decision Matched=%v", i, a.IsMatch, d.Matched)
		}
		if float64(a.Gap) != d.Gap || a.RequiredGap != d.RequiredGap {
			t.Errorf("face %d: gaps diverged (%v/%v vs %v/%v)", i, a.Gap, a.RequiredGap, d.Gap, d.RequiredGap)
		}
		if a.BestMatch != nil && a.BestMatch.Distance != d.Distance {
			t.Errorf("face %d: best distance diverged (%v vs %v)", i, a.BestMatch.Distance, d.Distance)
		}
	}
}

func TestDiagnoseTopFiveCandidates(t *testing.T) {
	roster := make([]Identity, 0, 8)
	for i := 0; i < 8; i++ {
		roster = append(roster, Identity{
			Key:        string(rune('a' + i)),
			References: []Embedding{embeddingAt(float64(i) * 0.3)},
		})
	}
	detections := []Detection{{Embedding: embeddingAt(0.05)}}

	analyses := Diagnose(detections, roster, DefaultCalibration())
	if len(analyses) != 1 {
		t.Fatalf("got %d analyses, want 1", len(analyses))
	}
	if len(analyses[0].Candidates) != maxDiagnosticCandidates {
		t.Errorf("got %d candidates, want %d", len(analyses[0].Candidates), maxDiagnosticCandidates)
	}
	// Still sorted ascending.
	for i := 1; i < len(analyses[0].Candidates); i++ {
		if analyses[0].Candidates[i].Distance < analyses[0].Candidates[i-1].Distance {
			t.Errorf("candidates not sorted at %d", i)
		}
	}
}

func TestDiagnoseRecommendationsOverThreshold(t *testing.T) {
	roster := []Identity{{Key: "21", Name: "Jan Novak", References: []Embedding{axisX}}}
	detections := []Detection{{Embedding: Embedding{-1, 0, 0}}}

	analyses := Diagnose(detections, roster, DefaultCalibration())
	a := analyses[0]
	if a.IsMatch {
		t.Fatal("expected rejection")
	}
	if a.Reason != ReasonOverThreshold {
		t.Fatalf("reason = %q, want %q", a.Reason, ReasonOverThreshold)
	}
	if len(a.Recommendations) == 0 {
		t.Fatal("expected recommendations for a rejected face")
	}
	joined := strings.Join(a.Recommendations, "\n")
	if !strings.Contains(joined, "exceeds threshold") {
		t.Errorf("recommendations missing threshold hint: %q", joined)
	}
	if !strings.Contains(joined, "Jan Novak") {
		t.Errorf("recommendations missing identity name: %q", joined)
	}
}

func TestDiagnoseRecommendationsInsufficientGap(t *testing.T) {
	// Two identities nearly tied around distance 0.5: gap below 0.03.
	ref := embeddingAt(0)
	roster := []Identity{
		{Key: "a", Name: "Alice", References: []Embedding{embeddingAt(math.Acos(0.50))}},
		{Key: "b", Name: "Bela", References: []Embedding{embeddingAt(math.Acos(0.49))}},
	}
	detections := []Detection{{Embedding: ref}}

	analyses := Diagnose(detections, roster, DefaultCalibration())
	a := analyses[0]
	if a.Reason != ReasonInsufficientGap {
		t.Fatalf("reason = %q, want %q (gap %v, required %v)", a.Reason, ReasonInsufficientGap, a.Gap, a.RequiredGap)
	}
	joined := strings.Join(a.Recommendations, "\n")
	if !strings.Contains(joined, "resembles multiple") {
		t.Errorf("recommendations missing gap explanation: %q", joined)
	}
	if !strings.Contains(joined, "Alice") || !strings.Contains(joined, "Bela") {
		t.Errorf("recommendations missing the near-tied identities: %q", joined)
	}
}

func TestDiagnoseSingleIdentityMarshalsGapAsNull(t *testing.T) {
	// A one-identity roster has no runner-up, so the gap is +Inf and must
	// encode as null rather than break JSON encoding.
	roster := []Identity{{Key: "only", References: []Embedding{axisX}}}
	detections := []Detection{{Embedding: axisX}}

	analyses := Diagnose(detections, roster, DefaultCalibration())
	if !math.IsInf(float64(analyses[0].Gap), 1) {
		t.Fatalf("gap = %v, want +Inf", analyses[0].Gap)
	}
	if !analyses[0].IsMatch {
		t.Error("exact match against the only identity must be accepted")
	}

	data, err := json.Marshal(analyses)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"gap":null`) {
		t.Errorf("expected null gap in %s", data)
	}
}

func TestDiagnoseNoComparableIdentities(t *testing.T) {
	roster := []Identity{{Key: "legacy", References: []Embedding{{1, 0}}}}
	detections := []Detection{{Embedding: axisX}}

	analyses := Diagnose(detections, roster, DefaultCalibration())
	a := analyses[0]
	if a.BestMatch != nil {
		t.Errorf("BestMatch = %+v, want nil", a.BestMatch)
	}
	if a.MatchedTo != UnknownLabel {
		t.Errorf("MatchedTo = %q, want %q", a.MatchedTo, UnknownLabel)
	}
	if a.Reason != ReasonNoCandidates {
		t.Errorf("reason = %q, want %q", a.Reason, ReasonNoCandidates)
	}
}
