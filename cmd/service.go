package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/snaptick/facematch/internal/config"
	"github.com/snaptick/facematch/internal/embedder"
	"github.com/snaptick/facematch/internal/logger"
)

// newLogger builds the process logger. APP_ENV=production switches to JSON
// output; LOG_LEVEL overrides the level.
func newLogger() (*zap.Logger, error) {
	production := os.Getenv("APP_ENV") == "production"
	log, err := logger.New(production, os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	zap.ReplaceGlobals(log)
	return log, nil
}

// newDetector wires the embedding service client and the multi-pass
// detection service from config.
func newDetector(cfg *config.Config, log *zap.Logger) *embedder.Service {
	client := embedder.NewClient(cfg.Embedder.URL, cfg.Embedder.Model, cfg.Embedder.Detector, log)
	return embedder.NewService(client, log)
}
