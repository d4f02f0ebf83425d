package embedder

import (
	"context"
	"image"

	"go.uber.org/zap"

	"github.com/snaptick/facematch/internal/facematch"
	"github.com/snaptick/facematch/internal/preprocess"
)

// Retry-pass gate: upscaling mostly recovers small or blurry faces, which
// only pays off when the first pass came up short and the image is small
// enough to upscale cheaply.
const (
	retryFaceCount = 3
	retryMaxDim    = 1200
	upscaleFactor  = 1.5
)

// Representer detects faces and computes their embeddings for one image.
type Representer interface {
	Represent(ctx context.Context, img image.Image, enforce bool) ([]facematch.Detection, error)
}

// Service wraps the embedding client with the multi-pass detection strategy.
type Service struct {
	client Representer
	log    *zap.Logger
}

// NewService creates the detection service.
func NewService(client Representer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, log: log}
}

// DetectFaces finds faces in an already-prepared image. It runs a standard
// pass, then, when few faces were found on a small image, a second pass on
// a 1.5x upscaled copy with bounding boxes mapped back. Both passes are
// merged position-wise (first-seen wins, so the primary pass has priority)
// and the result is ordered top-to-bottom, left-to-right.
//
// A failed primary pass is fatal only when the retry pass produced nothing
// either; a photo with zero faces is a valid result, not an error.
func (s *Service) DetectFaces(ctx context.Context, img image.Image) ([]facematch.Detection, error) {
	var all []facematch.Detection

	primary, primaryErr := s.client.Represent(ctx, img, false)
	if primaryErr != nil {
		s.log.Warn("primary detection pass failed", zap.Error(primaryErr))
	} else {
		for i := range primary {
			primary[i].Source = facematch.SourcePrimary
		}
		all = facematch.Dedup(primary)
		s.log.Debug("primary detection pass", zap.Int("faces", len(all)))
	}

	if len(all) < retryFaceCount && preprocess.MaxDim(img) < retryMaxDim {
		retry, err := s.client.Represent(ctx, preprocess.Upscale(img, upscaleFactor), false)
		if err != nil {
			s.log.Warn("upscaled detection pass failed", zap.Error(err))
		} else {
			for i := range retry {
				retry[i].Source = facematch.SourceUpscaled
				retry[i].Area = retry[i].Area.Scale(upscaleFactor)
			}
			s.log.Debug("upscaled detection pass", zap.Int("faces", len(retry)))
			all = facematch.Dedup(append(all, retry...))
		}
	}

	if primaryErr != nil && len(all) == 0 {
		return nil, primaryErr
	}

	facematch.SortByPosition(all)
	return all, nil
}

// ExtractFace returns the single face of an enrollment photo, requiring the
// embedder to find one.
func (s *Service) ExtractFace(ctx context.Context, img image.Image) (facematch.Detection, error) {
	detections, err := s.client.Represent(ctx, img, true)
	if err != nil {
		return facematch.Detection{}, err
	}
	if len(detections) == 0 {
		return facematch.Detection{}, ErrNoFace
	}
	return detections[0], nil
}
