package workers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/utils"
)

// FeedbackWorkerPool generates reports for interviews queued on the feedback
// stream by InterviewService.Finalize.
type FeedbackWorkerPool struct {
	Redis      *redis.Client
	Feedback   services.FeedbackService
	NumWorkers int
	Timeout    time.Duration

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string

	pub publisher
}

func (p *FeedbackWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Feedback == nil {
		return errors.New("FeedbackWorkerPool missing dependency: Redis/Feedback must be set")
	}
	p.defaults()
	p.pub = p.Redis

	g := &streamGroup{
		rdb:            p.Redis,
		stream:         p.Stream,
		group:          p.Group,
		consumerPrefix: p.ConsumerPrefix,
		n:              p.NumWorkers,
		log:            p.Logger,
		handle:         p.handleMsg,
	}
	g.start(ctx)
	return nil
}

func (p *FeedbackWorkerPool) defaults() {
	if p.Stream == "" {
		p.Stream = services.FeedbackStream
	}
	if p.Group == "" {
		p.Group = "feedback-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "f"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Timeout <= 0 {
		p.Timeout = 2 * time.Minute
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
}

type feedbackStatus struct {
	Type           string                `json:"type"`
	FeedbackStatus models.FeedbackStatus `json:"feedback_status"`
	Rating         *int                  `json:"overall_rating,omitempty"`
	Code           utils.Code            `json:"code,omitempty"`
}

func (p *FeedbackWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	interviewID := field(msg, "interview_id")
	if interviewID == "" {
		return
	}
	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":     msg.ID,
		"interview_id": interviewID,
	})

	jobCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	start := time.Now()
	report, err := p.Feedback.Process(jobCtx, interviewID)

	st := feedbackStatus{Type: "feedback", FeedbackStatus: models.FeedbackReady}
	if err != nil {
		st.FeedbackStatus = models.FeedbackFailed
		st.Code = utils.CodeOf(err)
		log.WithError(err).Warn("feedback job failed")
	} else {
		rating := report.OverallRating
		st.Rating = &rating
		log.WithFields(logrus.Fields{
			"rating":      rating,
			"source":      report.Source,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("feedback job done")
	}

	payload, _ := json.Marshal(st)
	_ = p.pub.Publish(ctx, services.StatusChannel(interviewID), string(payload)).Err()
}
