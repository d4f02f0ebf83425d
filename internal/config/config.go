package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/snaptick/facematch/internal/facematch"
)

//go:embed calibration.yaml
var calibrationYAML []byte

type Config struct {
	Embedder    EmbedderConfig
	Web         WebConfig
	Calibration facematch.Calibration
}

type EmbedderConfig struct {
	URL      string // embedding service base URL (default http://localhost:7860)
	Model    string // recognition model name, passed through to the embedder
	Detector string // detector backend identifier, passed opaquely to the embedder
	Dim      int    // embedding dimension of the configured model (default 512)
}

type WebConfig struct {
	Port int
	Host string
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var cal facematch.Calibration
	if err := yaml.Unmarshal(calibrationYAML, &cal); err != nil {
		// This is an embedded file so this error should never happen in practice.
		panic("failed to unmarshal embedded calibration.yaml: " + err.Error())
	}

	// Threshold and base gap are embedder-specific and may be overridden
	// per deployment; the step table only changes with the embedded file.
	cal.Threshold = envFloat("FACE_MATCH_THRESHOLD", cal.Threshold)
	cal.BaseGap = envFloat("FACE_MATCH_GAP", cal.BaseGap)

	return &Config{
		Embedder: EmbedderConfig{
			URL:      envString("EMBEDDER_URL", "http://localhost:7860"),
			Model:    envString("EMBEDDER_MODEL", "ArcFace"),
			Detector: envString("DETECTOR_BACKEND", "retinaface"),
			Dim:      envInt("EMBEDDING_DIM", 512),
		},
		Web: WebConfig{
			Port: envInt("WEB_PORT", 8080),
			Host: envString("WEB_HOST", "0.0.0.0"),
		},
		Calibration: cal,
	}
}
