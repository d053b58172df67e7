package llm

import "context"

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

type Provider interface {
	// Generate returns the complete response for prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	// StreamAnswer returns a stream of text chunks (incremental).
	StreamAnswer(ctx context.Context, prompt string) (chunks <-chan string, errs <-chan error)
	Close() error
}
