package models

import (
	"time"

	"gorm.io/datatypes"
)

type Speaker string

const (
	SpeakerAssistant Speaker = "assistant"
	SpeakerCandidate Speaker = "candidate"
)

// Label is the line prefix used when a transcript is flattened.
func (s Speaker) Label() string {
	if s == SpeakerCandidate {
		return "You"
	}
	return "AI"
}

type InputSource string

const (
	SourceIntro     InputSource = "intro"
	SourceGenerated InputSource = "generated"
	SourceSpeech    InputSource = "speech"
	SourceText      InputSource = "text"
)

type Utterance struct {
	Seq     int         `json:"seq"`
	Speaker Speaker     `json:"speaker"`
	Text    string      `json:"text"`
	Source  InputSource `json:"source"`
	At      time.Time   `json:"at"`
}

type UtteranceLog struct {
	ID          string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID      string         `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	InterviewID string         `gorm:"column:interview_id;type:uuid;uniqueIndex:uniq_interview_seq" json:"interview_id"`
	Seq         int            `gorm:"column:seq;type:integer;uniqueIndex:uniq_interview_seq" json:"seq"`
	Speaker     string         `gorm:"column:speaker;type:text" json:"speaker"` // "assistant" | "candidate"
	Content     string         `gorm:"column:content;type:text" json:"content"`
	Timestamp   time.Time      `gorm:"column:timestamp;type:timestamptz;index" json:"timestamp"`
	Metadata    datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (UtteranceLog) TableName() string { return "utterance_logs" }
