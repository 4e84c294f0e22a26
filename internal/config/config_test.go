package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Matching.Model != "ArcFace" {
		t.Errorf("Model = %q, want ArcFace", cfg.Matching.Model)
	}
	if cfg.Matching.Metric != "cosine" {
		t.Errorf("Metric = %q, want cosine", cfg.Matching.Metric)
	}
	if cfg.Matching.Threshold != 0.68 {
		t.Errorf("Threshold = %v, want 0.68", cfg.Matching.Threshold)
	}
	if cfg.Matching.RequiredMatches != 2 {
		t.Errorf("RequiredMatches = %d, want 2", cfg.Matching.RequiredMatches)
	}
	if cfg.Scheduler.BatchSize != 5 || cfg.Scheduler.Workers != 4 {
		t.Errorf("Scheduler = %+v, want batch 5 and 4 workers", cfg.Scheduler)
	}
	if cfg.Scheduler.ItemTimeout != 300*time.Second {
		t.Errorf("ItemTimeout = %v, want 300s", cfg.Scheduler.ItemTimeout)
	}
	if cfg.Scheduler.BatchDelay != time.Second {
		t.Errorf("BatchDelay = %v, want 1s", cfg.Scheduler.BatchDelay)
	}
	if cfg.Backend.URL != "http://localhost:5005" {
		t.Errorf("Backend.URL = %q, want http://localhost:5005", cfg.Backend.URL)
	}
	if cfg.Slideshow.FPS != 2 || cfg.Slideshow.HoldSeconds != 3 {
		t.Errorf("Slideshow = %+v, want 2 fps and 3s hold", cfg.Slideshow)
	}
	if cfg.FFmpeg.Bin != "ffmpeg" {
		t.Errorf("FFmpeg.Bin = %q, want ffmpeg", cfg.FFmpeg.Bin)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MOODREEL_MODEL", "Facenet512")
	t.Setenv("MOODREEL_THRESHOLD", "0.30")
	t.Setenv("MOODREEL_BATCH_SIZE", "10")
	t.Setenv("MOODREEL_ITEM_TIMEOUT", "45s")
	t.Setenv("MOODREEL_BATCH_DELAY", "0s")
	t.Setenv("MOODREEL_BACKEND_URL", "http://faces:8080")

	cfg := Load()

	if cfg.Matching.Model != "Facenet512" {
		t.Errorf("Model = %q, want Facenet512", cfg.Matching.Model)
	}
	if cfg.Matching.Threshold != 0.30 {
		t.Errorf("Threshold = %v, want 0.30", cfg.Matching.Threshold)
	}
	if cfg.Scheduler.BatchSize != 10 {
		t.Errorf("BatchSize = %d, want 10", cfg.Scheduler.BatchSize)
	}
	if cfg.Scheduler.ItemTimeout != 45*time.Second {
		t.Errorf("ItemTimeout = %v, want 45s", cfg.Scheduler.ItemTimeout)
	}
	if cfg.Scheduler.BatchDelay != 0 {
		t.Errorf("BatchDelay = %v, want 0", cfg.Scheduler.BatchDelay)
	}
	if cfg.Backend.URL != "http://faces:8080" {
		t.Errorf("Backend.URL = %q, want http://faces:8080", cfg.Backend.URL)
	}
}

func TestEnvHelpersRejectInvalid(t *testing.T) {
	t.Setenv("MOODREEL_WORKERS", "not-a-number")
	t.Setenv("MOODREEL_THRESHOLD", "-1")
	t.Setenv("MOODREEL_ITEM_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Scheduler.Workers != 4 {
		t.Errorf("Workers = %d, want default 4", cfg.Scheduler.Workers)
	}
	if cfg.Matching.Threshold != 0.68 {
		t.Errorf("Threshold = %v, want default 0.68", cfg.Matching.Threshold)
	}
	if cfg.Scheduler.ItemTimeout != 300*time.Second {
		t.Errorf("ItemTimeout = %v, want default 300s", cfg.Scheduler.ItemTimeout)
	}
}
