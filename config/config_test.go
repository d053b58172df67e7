package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, c *Config)
	}{
		{
			name:    "missing gemini keys",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name: "defaults",
			env:  map[string]string{"GEMINI_API_KEY": "k1"},
			check: func(t *testing.T, c *Config) {
				if c.Port != "8080" || c.CountdownSeconds != 900 || c.AudioTTL != 24*time.Hour {
					t.Fatalf("defaults = %+v", c)
				}
				if got := c.FeedbackKeys.List(); len(got) != 1 || got[0] != "k1" {
					t.Fatalf("feedback keys = %v, want question keys", got)
				}
			},
		},
		{
			name: "separate feedback keys and admins",
			env: map[string]string{
				"GEMINI_API_KEY":                   "q1",
				"GEMINI_API_KEY_FALLBACK":          "q2",
				"GEMINI_FEEDBACK_API_KEY":          "f1",
				"GEMINI_FEEDBACK_API_KEY_FALLBACK": "f2",
				"ADMIN_EMAILS":                     " a@x.io, ,b@x.io ",
				"INTERVIEW_COUNTDOWN_SECONDS":      "60",
			},
			check: func(t *testing.T, c *Config) {
				if q := c.QuestionKeys.List(); len(q) != 2 || q[1] != "q2" {
					t.Fatalf("question keys = %v", q)
				}
				if f := c.FeedbackKeys.List(); len(f) != 2 || f[0] != "f1" {
					t.Fatalf("feedback keys = %v", f)
				}
				if len(c.AdminEmails) != 2 || c.AdminEmails[1] != "b@x.io" {
					t.Fatalf("admin emails = %v", c.AdminEmails)
				}
				if c.CountdownSeconds != 60 {
					t.Fatalf("countdown = %d", c.CountdownSeconds)
				}
			},
		},
		{
			name:    "vertex needs project",
			env:     map[string]string{"LLM_BACKEND": "vertex"},
			wantErr: true,
		},
		{
			name: "vertex without keys",
			env:  map[string]string{"LLM_BACKEND": "vertex", "GCP_PROJECT": "p"},
			check: func(t *testing.T, c *Config) {
				if c.LLMBackend != BackendVertex || c.GCPLocation != "us-central1" {
					t.Fatalf("config = %+v", c)
				}
			},
		},
		{
			name:    "bad countdown",
			env:     map[string]string{"GEMINI_API_KEY": "k", "INTERVIEW_COUNTDOWN_SECONDS": "soon"},
			wantErr: true,
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"LLM_BACKEND": "openai"},
			wantErr: true,
		},
	}

	vars := []string{
		"PORT", "LLM_BACKEND", "LLM_MODEL", "GCP_PROJECT", "GCP_LOCATION",
		"GEMINI_API_KEY", "GEMINI_API_KEY_FALLBACK", "GEMINI_FEEDBACK_API_KEY", "GEMINI_FEEDBACK_API_KEY_FALLBACK",
		"ADMIN_EMAILS", "INTERVIEW_COUNTDOWN_SECONDS", "AUDIO_TTL", "AUDIO_WORKERS", "FEEDBACK_WORKERS", "FEEDBACK_TIMEOUT",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range vars {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			c, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Load() = %+v, want error", c)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.check(t, c)
		})
	}
}

func TestParseTemplateSeed(t *testing.T) {
	raw := []byte(`
templates:
  - id: t-1
    title: Backend
    role: Backend Developer
    tech_stacks: [Go, SQL]
`)
	got, err := ParseTemplateSeed(raw)
	if err != nil {
		t.Fatalf("ParseTemplateSeed: %v", err)
	}
	if len(got) != 1 || got[0].Role != "Backend Developer" || len(got[0].TechStacks) != 2 {
		t.Fatalf("templates = %+v", got)
	}

	if _, err := ParseTemplateSeed([]byte("templates:\n  - title: no id\n")); err == nil {
		t.Fatal("want error for entry without id")
	}
}
