package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/feedback"
	"github.com/yoockh/yoointerview/internal/models"
	mongorepo "github.com/yoockh/yoointerview/internal/repositories/mongo"
	"github.com/yoockh/yoointerview/internal/utils"
)

type FeedbackService interface {
	// Get returns the stored report, generating it first when missing.
	Get(ctx context.Context, caps models.Capabilities, interviewID string) (*models.FeedbackReport, error)
	// Regenerate replaces the stored report.
	Regenerate(ctx context.Context, caps models.Capabilities, interviewID string) (*models.FeedbackReport, error)
	// Process is the worker entry point. It does nothing when a report is
	// already stored.
	Process(ctx context.Context, interviewID string) (*models.FeedbackReport, error)
}

type feedbackService struct {
	interviews  mongorepo.InterviewRepository
	transcripts TranscriptService
	gen         feedback.Generator
	log         *logrus.Logger
	now         func() time.Time
}

func NewFeedbackService(interviews mongorepo.InterviewRepository, transcripts TranscriptService, gen feedback.Generator, log *logrus.Logger) FeedbackService {
	if log == nil {
		log = logrus.New()
	}
	return &feedbackService{
		interviews:  interviews,
		transcripts: transcripts,
		gen:         gen,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *feedbackService) load(ctx context.Context, op, interviewID string) (*models.Interview, error) {
	if interviewID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id is required", nil)
	}
	iv, err := s.interviews.GetByInterviewID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "interview not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get interview", err)
	}
	return iv, nil
}

func (s *feedbackService) authorize(ctx context.Context, op string, caps models.Capabilities, interviewID string) (*models.Interview, error) {
	iv, err := s.load(ctx, op, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.UserID != caps.UserID && !caps.IsAdmin() {
		return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}
	if iv.Status != models.StatusCompleted {
		return nil, utils.E(utils.CodePrecondition, op, "interview is not completed", nil)
	}
	return iv, nil
}

func (s *feedbackService) Get(ctx context.Context, caps models.Capabilities, interviewID string) (*models.FeedbackReport, error) {
	const op = "FeedbackService.Get"

	iv, err := s.authorize(ctx, op, caps, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Feedback != nil {
		return iv.Feedback, nil
	}
	return s.generate(ctx, op, iv, false)
}

func (s *feedbackService) Regenerate(ctx context.Context, caps models.Capabilities, interviewID string) (*models.FeedbackReport, error) {
	const op = "FeedbackService.Regenerate"

	iv, err := s.authorize(ctx, op, caps, interviewID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, op, iv, true)
}

func (s *feedbackService) Process(ctx context.Context, interviewID string) (*models.FeedbackReport, error) {
	const op = "FeedbackService.Process"

	iv, err := s.load(ctx, op, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Feedback != nil {
		return iv.Feedback, nil
	}
	if iv.Status != models.StatusCompleted {
		return nil, utils.E(utils.CodePrecondition, op, "interview is not completed", nil)
	}
	return s.generate(ctx, op, iv, false)
}

// generate builds a report and stores it. Without replace, a report stored by
// a concurrent caller wins and is returned instead of the new one.
func (s *feedbackService) generate(ctx context.Context, op string, iv *models.Interview, replace bool) (*models.FeedbackReport, error) {
	log := s.log.WithFields(logrus.Fields{
		"interview_id": iv.InterviewID,
		"user_id":      iv.UserID,
	})

	transcript := iv.Transcript
	if strings.TrimSpace(transcript) == "" && s.transcripts != nil {
		if rendered, err := s.transcripts.Render(ctx, iv.UserID, iv.InterviewID); err == nil {
			transcript = rendered
		} else {
			log.WithError(err).Warn("utterance log unavailable")
		}
	}

	report, err := s.gen.Generate(ctx, feedback.Input{
		Transcript:    transcript,
		Role:          iv.Role,
		CandidateName: iv.CandidateName,
	})
	if err != nil {
		if !replace {
			if stored, lerr := s.stored(ctx, iv.InterviewID); lerr == nil && stored != nil {
				return stored, nil
			}
		}
		if serr := s.interviews.SetFeedbackStatus(ctx, iv.InterviewID, models.FeedbackFailed); serr != nil {
			log.WithError(serr).Warn("feedback status not updated")
		}
		log.WithError(err).Warn("feedback generation failed")
		return nil, err
	}

	if replace {
		if err := s.interviews.SetFeedback(ctx, iv.InterviewID, report, s.now()); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to store feedback", err)
		}
	} else {
		ok, err := s.interviews.SetFeedbackIfAbsent(ctx, iv.InterviewID, report, s.now())
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to store feedback", err)
		}
		if !ok {
			stored, err := s.stored(ctx, iv.InterviewID)
			if err != nil || stored == nil {
				return nil, utils.E(utils.CodeInternal, op, "failed to read stored feedback", err)
			}
			log.Debug("feedback already stored, keeping it")
			return stored, nil
		}
	}

	log.WithFields(logrus.Fields{
		"rating": report.OverallRating,
		"source": report.Source,
	}).Info("feedback stored")
	return &report, nil
}

func (s *feedbackService) stored(ctx context.Context, interviewID string) (*models.FeedbackReport, error) {
	iv, err := s.interviews.GetByInterviewID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	return iv.Feedback, nil
}
