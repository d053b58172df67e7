package tts

import (
	"context"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

type GoogleTTS struct {
	c *texttospeech.Client

	SpeakingRate float64
}

func NewGoogleTTS(ctx context.Context) (*GoogleTTS, error) {
	c, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleTTS{c: c, SpeakingRate: 1.0}, nil
}

func (g *GoogleTTS) Close() error { return g.c.Close() }

// language example: "en-US", "hi-IN"
func (g *GoogleTTS) Synthesize(ctx context.Context, text, voice, language string) ([]byte, error) {
	if language == "" {
		language = "en-US"
	}

	sel := &texttospeechpb.VoiceSelectionParams{
		LanguageCode: language,
		SsmlGender:   texttospeechpb.SsmlVoiceGender_NEUTRAL,
	}
	if voice != "" {
		sel.Name = voice
	}

	resp, err := g.c.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: sel,
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  g.SpeakingRate,
		},
	})
	if err != nil {
		return nil, err
	}
	return resp.AudioContent, nil
}
