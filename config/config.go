package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

// LLMKeys is the ordered credential list for one generation role. Primary is
// tried first.
type LLMKeys struct {
	Primary  string
	Fallback string
}

func (k LLMKeys) List() []string {
	var out []string
	for _, v := range []string{k.Primary, k.Fallback} {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

type Config struct {
	Port  string
	Debug bool

	MongoDB string

	LLMBackend   string // gemini|vertex
	LLMModel     string
	QuestionKeys LLMKeys
	FeedbackKeys LLMKeys
	GCPProject   string
	GCPLocation  string

	TTSEnabled bool
	STTEnabled bool
	GCSBucket  string

	CountdownSeconds int64
	AdminEmails      []string
	AllowedOrigins   []string

	AudioWorkers    int
	FeedbackWorkers int
	AudioTTL        time.Duration
	FeedbackTimeout time.Duration
}

// Load reads the process environment. Call godotenv.Load first to pick up a
// .env file.
func Load() (*Config, error) {
	c := &Config{
		Port:    env("PORT", "8080"),
		Debug:   envBool("DEBUG", false),
		MongoDB: env("MONGO_DB", "yoointerview"),

		LLMBackend: strings.ToLower(env("LLM_BACKEND", BackendGemini)),
		LLMModel:   env("LLM_MODEL", ""),
		QuestionKeys: LLMKeys{
			Primary:  os.Getenv("GEMINI_API_KEY"),
			Fallback: os.Getenv("GEMINI_API_KEY_FALLBACK"),
		},
		FeedbackKeys: LLMKeys{
			Primary:  os.Getenv("GEMINI_FEEDBACK_API_KEY"),
			Fallback: os.Getenv("GEMINI_FEEDBACK_API_KEY_FALLBACK"),
		},
		GCPProject:  os.Getenv("GCP_PROJECT"),
		GCPLocation: env("GCP_LOCATION", "us-central1"),

		TTSEnabled: envBool("TTS_ENABLED", false),
		STTEnabled: envBool("STT_ENABLED", false),
		GCSBucket:  os.Getenv("GCS_BUCKET"),

		AdminEmails:    envList("ADMIN_EMAILS"),
		AllowedOrigins: envList("WS_ALLOWED_ORIGINS"),
	}

	var err error
	if c.CountdownSeconds, err = envInt64("INTERVIEW_COUNTDOWN_SECONDS", 15*60); err != nil {
		return nil, err
	}
	if c.CountdownSeconds <= 0 {
		return nil, errors.New("INTERVIEW_COUNTDOWN_SECONDS must be > 0")
	}
	workers, err := envInt64("AUDIO_WORKERS", 5)
	if err != nil {
		return nil, err
	}
	c.AudioWorkers = int(workers)
	if workers, err = envInt64("FEEDBACK_WORKERS", 2); err != nil {
		return nil, err
	}
	c.FeedbackWorkers = int(workers)
	if c.AudioTTL, err = envDuration("AUDIO_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if c.FeedbackTimeout, err = envDuration("FEEDBACK_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}

	switch c.LLMBackend {
	case BackendGemini:
		// the feedback role falls back to the question keys
		if len(c.FeedbackKeys.List()) == 0 {
			c.FeedbackKeys = c.QuestionKeys
		}
		if len(c.QuestionKeys.List()) == 0 {
			return nil, errors.New("GEMINI_API_KEY (or GEMINI_API_KEY_FALLBACK) environment variable is not set")
		}
	case BackendVertex:
		if c.GCPProject == "" {
			return nil, errors.New("GCP_PROJECT environment variable is not set")
		}
	default:
		return nil, fmt.Errorf("LLM_BACKEND must be %q or %q, got %q", BackendGemini, BackendVertex, c.LLMBackend)
	}
	return c, nil
}

func env(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(k string, def int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func envDuration(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func envList(k string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
