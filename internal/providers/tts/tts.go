package tts

import "context"

type Provider interface {
	// Synthesize returns MP3 audio for text. An empty voice picks the
	// default voice for language.
	Synthesize(ctx context.Context, text, voice, language string) (audio []byte, err error)
	Close() error
}
