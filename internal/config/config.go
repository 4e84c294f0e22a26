package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Matching  MatchingConfig
	Scheduler SchedulerConfig
	Backend   BackendConfig
	Slideshow SlideshowConfig
	FFmpeg    FFmpegConfig
}

type MatchingConfig struct {
	Model           string  // face recognition model name sent to the backend
	Metric          string  // distance metric (cosine, euclidean, euclidean_l2)
	Threshold       float64 // maximum distance for a positive vote
	RequiredMatches int     // reference votes needed to keep a face
}

type SchedulerConfig struct {
	BatchSize   int           // photos per batch
	Workers     int           // concurrent matches within a batch
	ItemTimeout time.Duration // budget per photo
	BatchDelay  time.Duration // pacing delay between batches
}

type BackendConfig struct {
	URL         string // face service base URL (e.g., http://localhost:5005)
	PigoCascade string // cascade file for local face detection; empty uses the HTTP backend
}

type SlideshowConfig struct {
	FPS         int
	HoldSeconds float64
}

type FFmpegConfig struct {
	Bin string // ffmpeg binary, defaults to the one on PATH
}

// envStr reads an environment variable, falling back to a default when
// it is unset or empty.
func envStr(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
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

// envDuration reads an environment variable and parses it as a Go
// duration string (e.g., "300s", "1m"). Returns the default value if
// the env var is unset, empty, invalid, or negative.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Matching: MatchingConfig{
			Model:           envStr("MOODREEL_MODEL", "ArcFace"),
			Metric:          envStr("MOODREEL_DISTANCE_METRIC", "cosine"),
			Threshold:       envFloat("MOODREEL_THRESHOLD", 0.68),
			RequiredMatches: envInt("MOODREEL_REQUIRED_MATCHES", 2),
		},
		Scheduler: SchedulerConfig{
			BatchSize:   envInt("MOODREEL_BATCH_SIZE", 5),
			Workers:     envInt("MOODREEL_WORKERS", 4),
			ItemTimeout: envDuration("MOODREEL_ITEM_TIMEOUT", 300*time.Second),
			BatchDelay:  envDuration("MOODREEL_BATCH_DELAY", time.Second),
		},
		Backend: BackendConfig{
			URL:         envStr("MOODREEL_BACKEND_URL", "http://localhost:5005"),
			PigoCascade: os.Getenv("MOODREEL_PIGO_CASCADE"),
		},
		Slideshow: SlideshowConfig{
			FPS:         envInt("MOODREEL_FPS", 2),
			HoldSeconds: envFloat("MOODREEL_HOLD_SECONDS", 3),
		},
		FFmpeg: FFmpegConfig{
			Bin: envStr("MOODREEL_FFMPEG", "ffmpeg"),
		},
	}
}
