package models

import "time"

// TranscriptArchive records a transcript file uploaded to object storage.
type TranscriptArchive struct {
	ID          string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"column:user_id;type:text;index" json:"user_id"`
	InterviewID string    `gorm:"column:interview_id;type:uuid;index" json:"interview_id"`
	ObjectPath  string    `gorm:"column:object_path;type:text" json:"object_path"`
	SizeBytes   int64     `gorm:"column:size_bytes;type:bigint" json:"size_bytes"`
	UploadedAt  time.Time `gorm:"column:uploaded_at;type:timestamptz" json:"uploaded_at"`
}

func (TranscriptArchive) TableName() string { return "transcript_archives" }
