package stt

import "context"

// Provider recognizes one finished chunk of candidate audio. language is a
// BCP-47 tag such as "en-US" or "hi-IN". Empty audio yields empty text.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (text string, confidence float64, err error)
	Close() error
}
