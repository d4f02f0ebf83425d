// Package facematch implements the face matching and disambiguation engine.
// It turns raw embedding distances into accept/reject identity decisions:
// per-identity aggregation, candidate ranking, an adaptive acceptance policy,
// cross-face exclusivity resolution and detection deduplication.
//
// The engine is a pure computation. All roster and detection data is passed
// in per call; nothing is cached or retained between calls, so independent
// calls may run concurrently.
package facematch

import (
	"encoding/json"
	"math"
)

// JSONFloat is a float64 that encodes non-finite values as JSON null.
// Distances and gaps are legitimately +Inf (no comparable reference, no
// runner-up candidate) but JSON has no representation for infinity and
// encoding/json refuses to emit it.
type JSONFloat float64

func (f JSONFloat) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

// Embedding is a fixed-length face descriptor produced by the embedding
// service. Two embeddings are only comparable when their dimensions match.
type Embedding []float32

// FacialArea is a face bounding box in pixel coordinates.
type FacialArea struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Detection source strategies.
const (
	SourcePrimary  = "primary"
	SourceUpscaled = "upscaled"
)

// Detection is one face found in a photo: its embedding, bounding box in
// original-image pixels and which detection strategy produced it.
type Detection struct {
	Embedding  Embedding  `json:"embedding"`
	Area       FacialArea `json:"facial_area"`
	Confidence float64    `json:"confidence"`
	Source     string     `json:"source,omitempty"`
}

// Identity is one enrolled person: an opaque key (e.g. roll number), a
// display name and one or more reference embeddings gathered at enrollment.
type Identity struct {
	Key        string      `json:"rollNumber"`
	Name       string      `json:"name,omitempty"`
	References []Embedding `json:"descriptors"`
}

// DisplayName returns the identity's name, falling back to its key.
func (id Identity) DisplayName() string {
	if id.Name != "" {
		return id.Name
	}
	return id.Key
}

// Candidate is one (identity, distance) pair produced for a detected face.
// Distance is the minimum over the identity's dimension-compatible references.
type Candidate struct {
	Key        string  `json:"rollNumber"`
	Name       string  `json:"name"`
	Distance   float64 `json:"minDistance"`
	References int     `json:"numDescriptors"`
}

// Reject reasons retained on unmatched decisions for diagnostics.
const (
	ReasonOverThreshold   = "over-threshold"
	ReasonInsufficientGap = "insufficient-gap"
	ReasonNoCandidates    = "no-candidates"
)

// Decision is the acceptance-policy outcome for one detected face.
// When unmatched, Key is empty and Reason explains why; Distance still
// carries the best distance seen (or +Inf when no identity was comparable).
type Decision struct {
	Matched     bool
	Key         string
	Name        string
	Distance    float64
	Gap         float64
	RequiredGap float64
	Reason      string
	Skipped     int // reference embeddings skipped for dimension mismatch
}

// UnknownLabel is reported for faces that matched no enrolled identity.
const UnknownLabel = "unknown"

// FaceMatch is the final per-face result after exclusivity resolution.
// Recognized is true only for the face that won its identity; every other
// face is reported as unknown, with its best distance kept for transparency.
type FaceMatch struct {
	Area       FacialArea `json:"facial_area"`
	Key        string     `json:"roll_number"`
	Distance   JSONFloat  `json:"distance"`
	Recognized bool       `json:"is_recognized"`
	Embedding  Embedding  `json:"embedding,omitempty"`
}
