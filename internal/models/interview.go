package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InterviewStatus string

const (
	StatusPending   InterviewStatus = "pending"
	StatusActive    InterviewStatus = "active"
	StatusCompleted InterviewStatus = "completed"
)

// CanTransitionTo reports whether s may move to next. Transitions only go
// forward; pending may jump straight to completed when a session is abandoned
// before it starts.
func (s InterviewStatus) CanTransitionTo(next InterviewStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusActive || next == StatusCompleted
	case StatusActive:
		return next == StatusCompleted
	default:
		return false
	}
}

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
)

func ParseLanguage(v string) (Language, bool) {
	switch Language(v) {
	case LanguageEnglish, LanguageHindi:
		return Language(v), true
	case "":
		return LanguageEnglish, true
	}
	return "", false
}

// Locale is the BCP-47 tag used by speech recognition and synthesis.
func (l Language) Locale() string {
	if l == LanguageHindi {
		return "hi-IN"
	}
	return "en-US"
}

type EndReason string

const (
	EndReasonUser       EndReason = "user"
	EndReasonTimeout    EndReason = "timeout"
	EndReasonDisconnect EndReason = "disconnect"
)

type FeedbackStatus string

const (
	FeedbackNone    FeedbackStatus = "none"
	FeedbackPending FeedbackStatus = "pending"
	FeedbackReady   FeedbackStatus = "ready"
	FeedbackFailed  FeedbackStatus = "failed"
)

type Interview struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	InterviewID string             `bson:"interview_id" json:"interview_id"` // uuid v4
	UserID      string             `bson:"user_id" json:"user_id"`

	CandidateName   string   `bson:"candidate_name" json:"candidate_name"`
	TemplateID      string   `bson:"template_id,omitempty" json:"template_id,omitempty"`
	Role            string   `bson:"role" json:"role"`
	RoleDescription string   `bson:"role_description,omitempty" json:"role_description,omitempty"`
	TechStacks      []string `bson:"tech_stacks,omitempty" json:"tech_stacks,omitempty"`
	Language        Language `bson:"language" json:"language"`

	Status    InterviewStatus `bson:"status" json:"status"`
	StartedAt *time.Time      `bson:"started_at,omitempty" json:"started_at,omitempty"`
	EndedAt   *time.Time      `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
	EndReason EndReason       `bson:"end_reason,omitempty" json:"end_reason,omitempty"`

	DurationSeconds  int64  `bson:"duration_seconds" json:"duration_seconds"`
	RemainingSeconds *int64 `bson:"remaining_seconds,omitempty" json:"remaining_seconds,omitempty"`

	Transcript string `bson:"transcript,omitempty" json:"transcript,omitempty"`

	Feedback            *FeedbackReport `bson:"feedback,omitempty" json:"feedback,omitempty"`
	Score               *int            `bson:"score,omitempty" json:"score,omitempty"`
	FeedbackStatus      FeedbackStatus  `bson:"feedback_status" json:"feedback_status"`
	FeedbackGeneratedAt *time.Time      `bson:"feedback_generated_at,omitempty" json:"feedback_generated_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
