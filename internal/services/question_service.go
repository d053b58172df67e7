package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/providers/llm"
)

type questionService struct {
	llm llm.Provider
	log *logrus.Logger
}

// NewQuestionService returns the interviewer backend used by live
// controllers.
func NewQuestionService(p llm.Provider, log *logrus.Logger) interview.QuestionGenerator {
	if log == nil {
		log = logrus.New()
	}
	return &questionService{llm: p, log: log}
}

func (s *questionService) StreamQuestion(ctx context.Context, req interview.QuestionRequest) (<-chan string, <-chan error) {
	start := time.Now()
	chunks, errs := s.llm.StreamAnswer(ctx, interview.BuildQuestionPrompt(req))

	out := make(chan string, 32)
	outErrs := make(chan error, 1)
	go func() {
		defer close(outErrs)
		defer close(out)

		n := 0
		for c := range chunks {
			if n == 0 {
				s.log.WithFields(logrus.Fields{
					"role":     req.Role,
					"first_ms": time.Since(start).Milliseconds(),
				}).Debug("question stream started")
			}
			n++
			out <- c
		}
		if err := <-errs; err != nil {
			outErrs <- err
		}
	}()
	return out, outErrs
}
