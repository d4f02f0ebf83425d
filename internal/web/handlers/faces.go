package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"

	"go.uber.org/zap"

	"github.com/snaptick/facematch/internal/config"
	"github.com/snaptick/facematch/internal/embedder"
	"github.com/snaptick/facematch/internal/facematch"
	"github.com/snaptick/facematch/internal/metrics"
	"github.com/snaptick/facematch/internal/preprocess"
	"github.com/snaptick/facematch/internal/roster"
)

// Detector finds faces and computes embeddings for an image.
type Detector interface {
	DetectFaces(ctx context.Context, img image.Image) ([]facematch.Detection, error)
	ExtractFace(ctx context.Context, img image.Image) (facematch.Detection, error)
}

// FacesHandler serves the face detection and matching endpoints.
type FacesHandler struct {
	cfg      *config.Config
	detector Detector
	log      *zap.Logger
}

// NewFacesHandler creates the handler.
func NewFacesHandler(cfg *config.Config, detector Detector, log *zap.Logger) *FacesHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FacesHandler{cfg: cfg, detector: detector, log: log}
}

// Info describes the service.
func (h *FacesHandler) Info(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"service":  "facematch",
		"model":    h.cfg.Embedder.Model,
		"detector": h.cfg.Embedder.Detector,
		"endpoints": []string{
			"GET /health",
			"GET /metrics",
			"POST /extract-embedding",
			"POST /detect-faces",
			"POST /match-faces",
			"POST /verify",
			"POST /diagnose",
		},
	})
}

// Health reports readiness and the configured embedder setup.
func (h *FacesHandler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"model":    h.cfg.Embedder.Model,
		"detector": h.cfg.Embedder.Detector,
	})
}

// ExtractRequest asks for a single enrollment embedding.
type ExtractRequest struct {
	ImageSource
}

// ExtractResponse carries the enrollment embedding for one face.
type ExtractResponse struct {
	Embedding  facematch.Embedding  `json:"embedding"`
	Area       facematch.FacialArea `json:"facial_area"`
	Confidence float64              `json:"face_confidence"`
}

// ExtractEmbedding computes the embedding of a single-face enrollment photo.
// The photo must contain a detectable face; zero faces is a client error here,
// unlike the group endpoints.
func (h *FacesHandler) ExtractEmbedding(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	img := decodeImageOrFail(w, req.ImageSource)
	if img == nil {
		return
	}

	resized, scale := preprocess.ResizeToFit(img, preprocess.EnrollmentMaxDim)
	det, err := h.detector.ExtractFace(r.Context(), resized)
	if err != nil {
		if errors.Is(err, embedder.ErrNoFace) {
			respondError(w, http.StatusBadRequest, "no face found in image")
			return
		}
		h.log.Error("embedding extraction failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "embedding extraction failed")
		return
	}

	respondJSON(w, http.StatusOK, ExtractResponse{
		Embedding:  det.Embedding,
		Area:       det.Area.Scale(scale),
		Confidence: det.Confidence,
	})
}

// DetectRequest asks for all faces in a photo.
type DetectRequest struct {
	ImageSource
}

// DetectResponse lists every detected face with its embedding.
type DetectResponse struct {
	Faces     []facematch.Detection `json:"faces"`
	FaceCount int                   `json:"face_count"`
}

// DetectFaces returns every face found in a photo with its embedding and
// bounding box in original-image pixels, without matching anything.
func (h *FacesHandler) DetectFaces(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	img := decodeImageOrFail(w, req.ImageSource)
	if img == nil {
		return
	}

	detections, err := h.detect(r.Context(), img)
	if err != nil {
		h.log.Error("face detection failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "face detection failed")
		return
	}

	respondJSON(w, http.StatusOK, DetectResponse{
		Faces:     detections,
		FaceCount: len(detections),
	})
}

// MatchRequest matches a group photo against enrolled identities.
type MatchRequest struct {
	ImageSource
	EnrolledFaces []roster.Identity `json:"enrolled_faces"`
}

// MatchResponse is the per-face matching outcome.
type MatchResponse struct {
	Faces           []facematch.FaceMatch `json:"faces"`
	FaceCount       int                   `json:"face_count"`
	RecognizedCount int                   `json:"recognized_count"`
	Message         string                `json:"message,omitempty"`
}

// MatchFaces detects every face in the photo and matches each against the
// enrolled identities from the request. An empty roster is a client error; a
// photo with zero faces is a success with an empty result.
func (h *FacesHandler) MatchFaces(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	identities, errMsg := h.parseRoster(req.EnrolledFaces)
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	img := decodeImageOrFail(w, req.ImageSource)
	if img == nil {
		return
	}

	detections, err := h.detect(r.Context(), img)
	if err != nil {
		h.log.Error("face detection failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "face detection failed")
		return
	}

	if len(detections) == 0 {
		respondJSON(w, http.StatusOK, MatchResponse{
			Faces:   []facematch.FaceMatch{},
			Message: "no faces detected in image",
		})
		return
	}

	result := facematch.MatchFaces(detections, identities, h.cfg.Calibration)
	metrics.ObserveMatch(len(detections), result.Recognized, result.SkippedReferences)
	if result.SkippedReferences > 0 {
		h.log.Warn("skipped incompatible reference embeddings",
			zap.Int("skipped", result.SkippedReferences),
			zap.Int("expected_dim", h.cfg.Embedder.Dim))
	}

	respondJSON(w, http.StatusOK, MatchResponse{
		Faces:           result.Matches,
		FaceCount:       len(detections),
		RecognizedCount: result.Recognized,
	})
}

// VerifyRequest compares two photos of (presumably) the same person.
type VerifyRequest struct {
	Image1 ImageSource `json:"image1"`
	Image2 ImageSource `json:"image2"`
}

// VerifyResponse is the same-person check outcome.
type VerifyResponse struct {
	Verified  bool    `json:"verified"`
	Distance  float64 `json:"distance"`
	Threshold float64 `json:"threshold"`
}

// Verify checks whether two single-face photos show the same person by
// comparing their embeddings against the acceptance threshold.
func (h *FacesHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	first, ok := h.extractForVerify(w, r, req.Image1, "image1")
	if !ok {
		return
	}
	second, ok := h.extractForVerify(w, r, req.Image2, "image2")
	if !ok {
		return
	}

	distance, comparable := facematch.CosineDistance(first.Embedding, second.Embedding)
	if !comparable {
		respondError(w, http.StatusInternalServerError, "embeddings are not comparable")
		return
	}

	respondJSON(w, http.StatusOK, VerifyResponse{
		Verified:  distance <= h.cfg.Calibration.Threshold,
		Distance:  distance,
		Threshold: h.cfg.Calibration.Threshold,
	})
}

func (h *FacesHandler) extractForVerify(w http.ResponseWriter, r *http.Request, src ImageSource, label string) (facematch.Detection, bool) {
	img, err := src.Decode()
	if err != nil {
		respondError(w, http.StatusBadRequest, label+": "+err.Error())
		return facematch.Detection{}, false
	}

	resized, _ := preprocess.ResizeToFit(img, preprocess.EnrollmentMaxDim)
	det, err := h.detector.ExtractFace(r.Context(), resized)
	if err != nil {
		if errors.Is(err, embedder.ErrNoFace) {
			respondError(w, http.StatusBadRequest, "no face found in "+label)
			return facematch.Detection{}, false
		}
		h.log.Error("embedding extraction failed", zap.String("image", label), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "embedding extraction failed")
		return facematch.Detection{}, false
	}
	return det, true
}

// DiagnoseRequest asks for the detailed matching breakdown of a photo.
type DiagnoseRequest struct {
	ImageSource
	EnrolledFaces []roster.Identity `json:"enrolled_faces"`
}

// DiagnoseResponse carries the per-face candidate analysis.
type DiagnoseResponse struct {
	Faces     []facematch.FaceAnalysis `json:"faces"`
	FaceCount int                      `json:"face_count"`
	Threshold float64                  `json:"threshold"`
}

// Diagnose runs the matching pipeline but reports the full candidate ranking
// per face instead of a terse match result, for tuning enrollment data.
func (h *FacesHandler) Diagnose(w http.ResponseWriter, r *http.Request) {
	var req DiagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	identities, errMsg := h.parseRoster(req.EnrolledFaces)
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	img := decodeImageOrFail(w, req.ImageSource)
	if img == nil {
		return
	}

	detections, err := h.detect(r.Context(), img)
	if err != nil {
		h.log.Error("face detection failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "face detection failed")
		return
	}

	respondJSON(w, http.StatusOK, DiagnoseResponse{
		Faces:     facematch.Diagnose(detections, identities, h.cfg.Calibration),
		FaceCount: len(detections),
		Threshold: h.cfg.Calibration.Threshold,
	})
}

// detect prepares the image for group detection and maps the resulting
// bounding boxes back to original-image coordinates.
func (h *FacesHandler) detect(ctx context.Context, img image.Image) ([]facematch.Detection, error) {
	prepared, scale := preprocess.PrepareForDetection(img)
	detections, err := h.detector.DetectFaces(ctx, prepared)
	if err != nil {
		return nil, err
	}
	facematch.ScaleAreas(detections, scale)
	return detections, nil
}

// parseRoster converts request identities into engine form.
func (h *FacesHandler) parseRoster(entries []roster.Identity) ([]facematch.Identity, string) {
	if len(entries) == 0 {
		return nil, "enrolled_faces is required"
	}
	identities, err := roster.Convert(roster.File{Identities: entries})
	if err != nil {
		return nil, err.Error()
	}
	return identities, ""
}
