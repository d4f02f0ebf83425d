// Package embedder talks to the external face embedding service and
// orchestrates multi-pass detection. The service is a black box that turns
// an image into face detections with fixed-dimension embeddings; model
// choice and embedding quality are its problem, not ours.
package embedder

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/snaptick/facematch/internal/facematch"
	"github.com/snaptick/facematch/internal/preprocess"
)

const defaultBaseURL = "http://localhost:7860"

// Client computes face embeddings using the embedding service.
type Client struct {
	baseURL  string
	model    string
	detector string
	client   *http.Client
	log      *zap.Logger
}

// NewClient creates a new embedding service client. The detector backend
// identifier is passed through to the service opaquely.
func NewClient(baseURL, model, detector string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		model:    model,
		detector: detector,
		client:   &http.Client{Timeout: 2 * time.Minute},
		log:      log,
	}
}

// Model returns the recognition model name being used.
func (c *Client) Model() string {
	return c.model
}

// Detector returns the detector backend identifier being used.
func (c *Client) Detector() string {
	return c.detector
}

// representRequest is the request body for the represent endpoint.
type representRequest struct {
	Image            string `json:"img"`
	ModelName        string `json:"model_name"`
	DetectorBackend  string `json:"detector_backend"`
	EnforceDetection bool   `json:"enforce_detection"`
	Align            bool   `json:"align"`
}

// representResult is one detected face in the service response.
type representResult struct {
	Embedding  []float32 `json:"embedding"`
	FacialArea struct {
		X int `json:"x"`
		Y int `json:"y"`
		W int `json:"w"`
		H int `json:"h"`
	} `json:"facial_area"`
	Confidence float64 `json:"face_confidence"`
}

// representResponse is the response from the represent endpoint.
type representResponse struct {
	Results []representResult `json:"results"`
	Error   string            `json:"error"`
}

// Represent detects faces in the image and returns their embeddings and
// bounding boxes, in service coordinates. With enforce set, the service
// fails when it finds no face; without it, zero results is a valid outcome.
func (c *Client) Represent(ctx context.Context, img image.Image, enforce bool) ([]facematch.Detection, error) {
	jpegData, err := preprocess.EncodeJPEG(img)
	if err != nil {
		return nil, err
	}

	reqBody, err := json.Marshal(representRequest{
		Image:            "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData),
		ModelName:        c.model,
		DetectorBackend:  c.detector,
		EnforceDetection: enforce,
		Align:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/represent", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedder error (status %d): %s", resp.StatusCode, string(body))
	}

	var repResp representResponse
	if err := json.Unmarshal(body, &repResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if repResp.Error != "" {
		return nil, fmt.Errorf("embedder error: %s", repResp.Error)
	}

	detections := make([]facematch.Detection, 0, len(repResp.Results))
	for _, r := range repResp.Results {
		detections = append(detections, facematch.Detection{
			Embedding: r.Embedding,
			Area: facematch.FacialArea{
				X: r.FacialArea.X,
				Y: r.FacialArea.Y,
				W: r.FacialArea.W,
				H: r.FacialArea.H,
			},
			Confidence: r.Confidence,
		})
	}
	return detections, nil
}
