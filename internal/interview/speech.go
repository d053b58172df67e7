package interview

import (
	"context"
	"errors"

	"github.com/yoockh/yoointerview/internal/models"
)

var (
	ErrNotStarted         = errors.New("interview has not started")
	ErrAlreadyStarted     = errors.New("interview already started")
	ErrTurnInFlight       = errors.New("question generation in flight")
	ErrSessionEnded       = errors.New("interview has ended")
	ErrCaptureUnsupported = errors.New("speech capture unsupported")
	ErrNoMediaDevice      = errors.New("no media device")
	ErrEmptyQuestion      = errors.New("question generator returned no text")
)

// Speaker plays assistant text back to the candidate. onDone is invoked once
// playback finishes; it is never invoked for cancelled speech.
type Speaker interface {
	Speak(text, voice string, onDone func())
	Cancel()
}

// Recognizer opens and closes candidate speech capture. Finalized results are
// delivered back through Controller.SubmitAnswer.
type Recognizer interface {
	StartCapture() error
	StopCapture()
}

// MediaDevice is the camera/microphone handle owned by one interview.
type MediaDevice interface {
	SetVideoEnabled(on bool)
	SetAudioEnabled(on bool)
	Release()
}

type QuestionRequest struct {
	Conversation    string
	Role            string
	RoleDescription string
	Language        models.Language
	TechStacks      []string
}

// QuestionGenerator yields the next interviewer question as a finite stream of
// fragments. The error channel carries at most one value and is closed after
// the fragment channel.
type QuestionGenerator interface {
	StreamQuestion(ctx context.Context, req QuestionRequest) (<-chan string, <-chan error)
}

// Store persists interview state transitions.
type Store interface {
	Activate(ctx context.Context, iv models.Interview) error
	Finalize(ctx context.Context, iv models.Interview, utterances []models.Utterance) error
}
