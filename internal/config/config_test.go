package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Embedder.URL != "http://localhost:7860" {
		t.Errorf("embedder URL = %q", cfg.Embedder.URL)
	}
	if cfg.Embedder.Model != "ArcFace" {
		t.Errorf("model = %q", cfg.Embedder.Model)
	}
	if cfg.Embedder.Detector != "retinaface" {
		t.Errorf("detector = %q", cfg.Embedder.Detector)
	}
	if cfg.Embedder.Dim != 512 {
		t.Errorf("dim = %d", cfg.Embedder.Dim)
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("port = %d", cfg.Web.Port)
	}
}

func TestLoadEmbeddedCalibration(t *testing.T) {
	cfg := Load()

	if err := cfg.Calibration.Validate(); err != nil {
		t.Fatalf("embedded calibration invalid: %v", err)
	}
	if cfg.Calibration.Threshold != 0.60 {
		t.Errorf("threshold = %v, want 0.60", cfg.Calibration.Threshold)
	}
	if cfg.Calibration.BaseGap != 0.05 {
		t.Errorf("base gap = %v, want 0.05", cfg.Calibration.BaseGap)
	}
	if len(cfg.Calibration.GapSteps) != 3 {
		t.Fatalf("gap steps = %d, want 3", len(cfg.Calibration.GapSteps))
	}
	if cfg.Calibration.GapSteps[0].MaxDistance != 0.35 || cfg.Calibration.GapSteps[0].Gap != 0.01 {
		t.Errorf("first step = %+v", cfg.Calibration.GapSteps[0])
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FACE_MATCH_THRESHOLD", "0.45")
	t.Setenv("FACE_MATCH_GAP", "0.10")
	t.Setenv("EMBEDDER_URL", "http://embedder:9000")
	t.Setenv("EMBEDDING_DIM", "128")

	cfg := Load()
	if cfg.Calibration.Threshold != 0.45 {
		t.Errorf("threshold = %v, want 0.45", cfg.Calibration.Threshold)
	}
	if cfg.Calibration.BaseGap != 0.10 {
		t.Errorf("base gap = %v, want 0.10", cfg.Calibration.BaseGap)
	}
	if cfg.Embedder.URL != "http://embedder:9000" {
		t.Errorf("embedder URL = %q", cfg.Embedder.URL)
	}
	if cfg.Embedder.Dim != 128 {
		t.Errorf("dim = %d, want 128", cfg.Embedder.Dim)
	}
}

func TestEnvOverridesInvalidValuesIgnored(t *testing.T) {
	t.Setenv("FACE_MATCH_THRESHOLD", "not-a-number")
	t.Setenv("EMBEDDING_DIM", "-5")

	cfg := Load()
	if cfg.Calibration.Threshold != 0.60 {
		t.Errorf("threshold = %v, want default 0.60", cfg.Calibration.Threshold)
	}
	if cfg.Embedder.Dim != 512 {
		t.Errorf("dim = %d, want default 512", cfg.Embedder.Dim)
	}
}
