// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"encoding/json"
	"fmt"
	"image"
	"net/http"

	"go.uber.org/zap"

	"github.com/snaptick/facematch/internal/preprocess"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// respondJSON sends a JSON response. The status line is already on the wire
// when encoding runs, so an encode failure can only be logged, not reported.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// ImageSource selects one image per request, either inline base64 (optionally
// a data URL) or a path readable by the server. Exactly one must be set.
type ImageSource struct {
	Base64 string `json:"image_base64,omitempty"`
	Path   string `json:"image_path,omitempty"`
}

// Decode loads the image from whichever source is set.
func (s ImageSource) Decode() (image.Image, error) {
	switch {
	case s.Base64 != "" && s.Path != "":
		return nil, fmt.Errorf("provide either image_base64 or image_path, not both")
	case s.Base64 != "":
		return preprocess.DecodeBase64(s.Base64)
	case s.Path != "":
		return preprocess.DecodeFile(s.Path)
	default:
		return nil, fmt.Errorf("image_base64 or image_path is required")
	}
}

// decodeImageOrFail decodes the request image, writing a 400 response on
// failure. Returns nil when the response has already been written.
func decodeImageOrFail(w http.ResponseWriter, src ImageSource) image.Image {
	img, err := src.Decode()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil
	}
	return img
}
