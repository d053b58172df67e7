// Package feedback turns a finished interview transcript into a structured
// report. Backend and parse failures never surface as errors; only an empty
// transcript does.
package feedback

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/scoring"
	"github.com/yoockh/yoointerview/internal/utils"
)

// Backend produces one complete text response for a prompt.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Input struct {
	Transcript    string
	Role          string
	CandidateName string
}

type Generator interface {
	Generate(ctx context.Context, in Input) (models.FeedbackReport, error)
}

type generator struct {
	backend Backend
	log     *logrus.Logger
}

func New(backend Backend, log *logrus.Logger) Generator {
	if log == nil {
		log = logrus.New()
	}
	return &generator{backend: backend, log: log}
}

func (g *generator) Generate(ctx context.Context, in Input) (models.FeedbackReport, error) {
	const op = "feedback.Generate"

	if strings.TrimSpace(in.Transcript) == "" {
		return models.FeedbackReport{}, utils.E(utils.CodePrecondition, op, "transcript is empty", utils.ErrEmptyTranscript)
	}

	log := g.log.WithFields(logrus.Fields{
		"role":  in.Role,
		"lines": scoring.CountLines(in.Transcript),
	})

	var report models.FeedbackReport
	raw, err := g.backend.Generate(ctx, BuildPrompt(in))
	switch {
	case err != nil && ctx.Err() != nil:
		return models.FeedbackReport{}, utils.E(utils.CodeTimeout, op, "feedback generation cancelled", ctx.Err())
	case err != nil:
		log.WithError(err).Warn("feedback backend failed, using fallback report")
		report = backendFailureReport()
	default:
		res := parse(raw)
		if !res.ok {
			log.WithError(res.err).Warn("feedback response unparsable, using default report")
			report = parseFailureReport()
		} else {
			if len(res.defaulted) > 0 {
				log.WithField("fields", res.defaulted).Debug("feedback fields defaulted")
			}
			report = res.report
		}
	}

	score := scoring.ScoreTranscript(in.Transcript)
	report.OverallRating = score
	report.RatingLabel = scoring.Label(score)
	return report, nil
}
