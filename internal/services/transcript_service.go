package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/models"
	pgrepo "github.com/yoockh/yoointerview/internal/repositories/postgres"
	"github.com/yoockh/yoointerview/internal/utils"
)

type TranscriptService interface {
	Record(ctx context.Context, userID, interviewID string, utterances []models.Utterance) error
	List(ctx context.Context, userID, interviewID string) ([]models.Utterance, error)
	Render(ctx context.Context, userID, interviewID string) (string, error)
}

type transcriptService struct {
	utterances pgrepo.UtteranceRepository
}

func NewTranscriptService(utterances pgrepo.UtteranceRepository) TranscriptService {
	return &transcriptService{utterances: utterances}
}

type utteranceMeta struct {
	Source models.InputSource `json:"source"`
}

func (s *transcriptService) Record(ctx context.Context, userID, interviewID string, utterances []models.Utterance) error {
	const op = "TranscriptService.Record"

	if userID == "" || interviewID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "user_id and interview_id are required", nil)
	}

	rows := make([]models.UtteranceLog, 0, len(utterances))
	for _, u := range utterances {
		meta, _ := json.Marshal(utteranceMeta{Source: u.Source})
		rows = append(rows, models.UtteranceLog{
			ID:          uuid.NewString(),
			UserID:      userID,
			InterviewID: interviewID,
			Seq:         u.Seq,
			Speaker:     string(u.Speaker),
			Content:     u.Text,
			Timestamp:   u.At.UTC(),
			Metadata:    datatypes.JSON(meta),
		})
	}

	if err := s.utterances.InsertBatch(ctx, rows); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to store utterances", err)
	}
	return nil
}

func (s *transcriptService) List(ctx context.Context, userID, interviewID string) ([]models.Utterance, error) {
	const op = "TranscriptService.List"

	if userID == "" || interviewID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and interview_id are required", nil)
	}

	rows, err := s.utterances.ListByInterview(ctx, userID, interviewID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list utterances", err)
	}

	out := make([]models.Utterance, 0, len(rows))
	for _, r := range rows {
		var meta utteranceMeta
		_ = json.Unmarshal(r.Metadata, &meta)
		out = append(out, models.Utterance{
			Seq:     r.Seq,
			Speaker: models.Speaker(r.Speaker),
			Text:    r.Content,
			Source:  meta.Source,
			At:      r.Timestamp,
		})
	}
	return out, nil
}

func (s *transcriptService) Render(ctx context.Context, userID, interviewID string) (string, error) {
	us, err := s.List(ctx, userID, interviewID)
	if err != nil {
		return "", err
	}
	return interview.Flatten(us), nil
}
