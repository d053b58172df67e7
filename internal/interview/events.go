package interview

import (
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
)

type State string

const (
	StateIdle          State = "idle"
	StateAwaitingInput State = "awaiting_candidate_input"
	StateGenerating    State = "generating_question"
	StateEnded         State = "ended"
)

type EventType string

const (
	EventState     EventType = "state"
	EventUtterance EventType = "utterance"
	EventFragment  EventType = "fragment"
	EventTick      EventType = "tick"
	EventError     EventType = "error"
	EventDegraded  EventType = "degraded"
	EventEnded     EventType = "ended"
)

type DegradedMode string

const (
	ModeTextOnly DegradedMode = "text_only"
	ModeMediaOff DegradedMode = "media_off"
)

type Event struct {
	Type        EventType         `json:"type"`
	InterviewID string            `json:"interview_id"`
	State       State             `json:"state,omitempty"`
	Utterance   *models.Utterance `json:"utterance,omitempty"`
	Fragment    string            `json:"fragment,omitempty"`
	Elapsed     *int64            `json:"elapsed,omitempty"`
	Remaining   *int64            `json:"remaining,omitempty"`
	Code        utils.Code        `json:"code,omitempty"`
	Message     string            `json:"message,omitempty"`
	Mode        DegradedMode      `json:"mode,omitempty"`
	Interview   *models.Interview `json:"interview,omitempty"`
}

// Observer receives the events of a single controller. Notify must not call
// back into the controller synchronously.
type Observer interface {
	Notify(ev Event)
}

type ObserverFunc func(ev Event)

func (f ObserverFunc) Notify(ev Event) { f(ev) }

type nopObserver struct{}

func (nopObserver) Notify(Event) {}
