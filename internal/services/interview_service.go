package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/models"
	mongorepo "github.com/yoockh/yoointerview/internal/repositories/mongo"
	"github.com/yoockh/yoointerview/internal/utils"
)

type CreateInterviewInput struct {
	TemplateID    string `json:"template_id" binding:"required"`
	Language      string `json:"language"` // en|hi
	CandidateName string `json:"candidate_name"`
}

type InterviewService interface {
	interview.Store

	Create(ctx context.Context, caps models.Capabilities, in CreateInterviewInput) (*models.Interview, error)
	Get(ctx context.Context, caps models.Capabilities, interviewID string) (*models.Interview, error)
	List(ctx context.Context, caps models.Capabilities) ([]models.Interview, error)
	// Abandon completes an interview that has no live session.
	Abandon(ctx context.Context, caps models.Capabilities, interviewID string) (*models.Interview, error)
}

type InterviewServiceDeps struct {
	Interviews  mongorepo.InterviewRepository
	Templates   TemplateService
	Accounts    AccountService
	Transcripts TranscriptService
	Archive     ArchiveService // optional
	Queue       FeedbackQueue  // optional
	Logger      *logrus.Logger
}

type interviewService struct {
	InterviewServiceDeps
}

func NewInterviewService(d InterviewServiceDeps) InterviewService {
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	return &interviewService{InterviewServiceDeps: d}
}

func (s *interviewService) Create(ctx context.Context, caps models.Capabilities, in CreateInterviewInput) (*models.Interview, error) {
	const op = "InterviewService.Create"

	lang, ok := models.ParseLanguage(strings.TrimSpace(in.Language))
	if !ok {
		return nil, utils.E(utils.CodeInvalidArgument, op, "language must be en or hi", nil)
	}
	if !caps.CanStartInterview() {
		return nil, utils.E(utils.CodeExhausted, op, "no interview attempts left", utils.ErrNoAttemptsLeft)
	}

	tpl, err := s.Templates.Get(ctx, caps, in.TemplateID)
	if err != nil {
		return nil, err
	}

	if err := s.Accounts.ConsumeAttempt(ctx, caps); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.CandidateName)
	if name == "" {
		name = caps.Email
	}

	iv := &models.Interview{
		InterviewID:     uuid.NewString(),
		UserID:          caps.UserID,
		CandidateName:   name,
		TemplateID:      tpl.ID,
		Role:            tpl.Role,
		RoleDescription: tpl.Description,
		TechStacks:      append([]string(nil), tpl.TechStacks...),
		Language:        lang,
		Status:          models.StatusPending,
		FeedbackStatus:  models.FeedbackNone,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.Interviews.Create(ctx, iv); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create interview", err)
	}

	s.Logger.WithFields(logrus.Fields{
		"interview_id": iv.InterviewID,
		"user_id":      iv.UserID,
		"template_id":  iv.TemplateID,
	}).Info("interview created")
	return iv, nil
}

func (s *interviewService) Get(ctx context.Context, caps models.Capabilities, interviewID string) (*models.Interview, error) {
	const op = "InterviewService.Get"

	if interviewID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id is required", nil)
	}

	iv, err := s.Interviews.GetByInterviewID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "interview not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get interview", err)
	}
	if iv.UserID != caps.UserID && !caps.IsAdmin() {
		return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}
	return iv, nil
}

func (s *interviewService) List(ctx context.Context, caps models.Capabilities) ([]models.Interview, error) {
	const op = "InterviewService.List"

	out, err := s.Interviews.ListByUser(ctx, caps.UserID, 100)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list interviews", err)
	}
	return out, nil
}

func (s *interviewService) Activate(ctx context.Context, iv models.Interview) error {
	const op = "InterviewService.Activate"

	if err := s.Interviews.Activate(ctx, iv); err != nil {
		switch {
		case errors.Is(err, utils.ErrNotFound):
			return utils.E(utils.CodeNotFound, op, "interview not found", err)
		case errors.Is(err, mongorepo.ErrStatusChanged):
			return utils.E(utils.CodeConflict, op, "interview is no longer pending", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to activate interview", err)
	}
	return nil
}

// Finalize persists a completed interview. Only the status update is
// required; the utterance log, archive and feedback job are best effort.
func (s *interviewService) Finalize(ctx context.Context, iv models.Interview, utterances []models.Utterance) error {
	const op = "InterviewService.Finalize"

	log := s.Logger.WithFields(logrus.Fields{
		"interview_id": iv.InterviewID,
		"user_id":      iv.UserID,
	})

	hasTranscript := strings.TrimSpace(iv.Transcript) != ""
	iv.FeedbackStatus = models.FeedbackNone
	if hasTranscript {
		iv.FeedbackStatus = models.FeedbackPending
	}

	if err := s.Interviews.Complete(ctx, iv); err != nil {
		return utils.E(utils.CodeUnavailable, op, "failed to complete interview", err)
	}

	if len(utterances) > 0 && s.Transcripts != nil {
		if err := s.Transcripts.Record(ctx, iv.UserID, iv.InterviewID, utterances); err != nil {
			log.WithError(err).Warn("utterance log not stored")
		}
	}
	if !hasTranscript {
		return nil
	}

	if s.Archive != nil {
		if _, err := s.Archive.Archive(ctx, iv); err != nil {
			log.WithError(err).Warn("transcript archive failed")
		}
	}
	if s.Queue != nil {
		if err := s.Queue.Enqueue(ctx, iv.InterviewID); err != nil {
			log.WithError(err).Warn("feedback job not queued, it will be generated on first read")
		}
	}
	return nil
}

func (s *interviewService) Abandon(ctx context.Context, caps models.Capabilities, interviewID string) (*models.Interview, error) {
	const op = "InterviewService.Abandon"

	iv, err := s.Get(ctx, caps, interviewID)
	if err != nil {
		return nil, err
	}
	if !iv.Status.CanTransitionTo(models.StatusCompleted) {
		return iv, nil
	}

	now := time.Now().UTC()
	iv.Status = models.StatusCompleted
	iv.EndedAt = &now
	iv.EndReason = models.EndReasonUser
	iv.RemainingSeconds = nil
	if err := s.Finalize(ctx, *iv, nil); err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to end interview", err)
	}
	if strings.TrimSpace(iv.Transcript) == "" {
		iv.FeedbackStatus = models.FeedbackNone
	} else {
		iv.FeedbackStatus = models.FeedbackPending
	}
	return iv, nil
}
