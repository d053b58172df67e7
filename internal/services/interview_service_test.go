package services

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
)

type interviewFixture struct {
	svc         InterviewService
	repo        *fakeInterviewRepo
	accounts    *fakeAccounts
	transcripts *fakeTranscripts
	queue       *fakeQueue
}

func newInterviewFixture(ivs ...models.Interview) interviewFixture {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	f := interviewFixture{
		repo:        newFakeInterviewRepo(ivs...),
		accounts:    &fakeAccounts{},
		transcripts: &fakeTranscripts{},
		queue:       &fakeQueue{},
	}
	f.svc = NewInterviewService(InterviewServiceDeps{
		Interviews: f.repo,
		Templates: &fakeTemplates{items: map[string]models.Template{
			"tpl-1": {ID: "tpl-1", Title: "Backend", Role: "Backend Engineer", TechStacks: []string{"Go"}},
		}},
		Accounts:    f.accounts,
		Transcripts: f.transcripts,
		Queue:       f.queue,
		Logger:      log,
	})
	return f
}

func TestInterviewServiceCreate(t *testing.T) {
	caps := models.Capabilities{UserID: "u1", Email: "a@b.c", Plan: models.PlanFree, AttemptsLeft: 1}

	tests := []struct {
		name     string
		caps     models.Capabilities
		in       CreateInterviewInput
		wantCode utils.Code
	}{
		{name: "ok", caps: caps, in: CreateInterviewInput{TemplateID: "tpl-1", Language: "en"}},
		{name: "default language", caps: caps, in: CreateInterviewInput{TemplateID: "tpl-1"}},
		{name: "bad language", caps: caps, in: CreateInterviewInput{TemplateID: "tpl-1", Language: "fr"}, wantCode: utils.CodeInvalidArgument},
		{name: "unknown template", caps: caps, in: CreateInterviewInput{TemplateID: "nope"}, wantCode: utils.CodeNotFound},
		{
			name:     "no attempts left",
			caps:     models.Capabilities{UserID: "u1", AttemptsLeft: 0},
			in:       CreateInterviewInput{TemplateID: "tpl-1"},
			wantCode: utils.CodeExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInterviewFixture()
			iv, err := f.svc.Create(context.Background(), tt.caps, tt.in)
			if tt.wantCode != "" {
				if !utils.IsCode(err, tt.wantCode) {
					t.Fatalf("err = %v, want code %s", err, tt.wantCode)
				}
				if len(f.repo.items) != 0 {
					t.Fatalf("interview stored on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if iv.Status != models.StatusPending || iv.Role != "Backend Engineer" || iv.Language != models.LanguageEnglish {
				t.Fatalf("unexpected interview %+v", iv)
			}
			if iv.CandidateName != "a@b.c" {
				t.Fatalf("candidate name = %q", iv.CandidateName)
			}
			if f.accounts.consumed != 1 {
				t.Fatalf("attempts consumed = %d", f.accounts.consumed)
			}
		})
	}
}

func TestInterviewServiceGetOwnership(t *testing.T) {
	f := newInterviewFixture(models.Interview{InterviewID: "iv-1", UserID: "owner", Status: models.StatusPending})
	ctx := context.Background()

	if _, err := f.svc.Get(ctx, models.Capabilities{UserID: "owner"}, "iv-1"); err != nil {
		t.Fatalf("owner Get: %v", err)
	}
	if _, err := f.svc.Get(ctx, models.Capabilities{UserID: "other"}, "iv-1"); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("other Get err = %v", err)
	}
	if _, err := f.svc.Get(ctx, models.Capabilities{UserID: "other", Role: models.RoleAdmin}, "iv-1"); err != nil {
		t.Fatalf("admin Get: %v", err)
	}
	if _, err := f.svc.Get(ctx, models.Capabilities{UserID: "owner"}, "missing"); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("missing Get err = %v", err)
	}
}

func TestInterviewServiceActivateTwice(t *testing.T) {
	f := newInterviewFixture(models.Interview{InterviewID: "iv-1", UserID: "u1", Status: models.StatusPending})
	ctx := context.Background()
	now := time.Now()
	iv := models.Interview{InterviewID: "iv-1", StartedAt: &now}

	if err := f.svc.Activate(ctx, iv); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := f.svc.Activate(ctx, iv); !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("second Activate err = %v, want conflict", err)
	}
}

func TestInterviewServiceFinalize(t *testing.T) {
	tests := []struct {
		name         string
		transcript   string
		utterances   []models.Utterance
		wantStatus   models.FeedbackStatus
		wantEnqueued int
	}{
		{
			name:       "with transcript",
			transcript: "AI: hi\nYou: hello",
			utterances: []models.Utterance{
				{Speaker: models.SpeakerAssistant, Text: "hi"},
				{Speaker: models.SpeakerCandidate, Text: "hello"},
			},
			wantStatus:   models.FeedbackPending,
			wantEnqueued: 1,
		},
		{name: "empty transcript", wantStatus: models.FeedbackNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInterviewFixture(models.Interview{InterviewID: "iv-1", UserID: "u1", Status: models.StatusActive})
			iv := models.Interview{
				InterviewID: "iv-1",
				UserID:      "u1",
				Status:      models.StatusCompleted,
				EndReason:   models.EndReasonUser,
				Transcript:  tt.transcript,
			}
			if err := f.svc.Finalize(context.Background(), iv, tt.utterances); err != nil {
				t.Fatalf("Finalize: %v", err)
			}
			stored := f.repo.items["iv-1"]
			if stored.Status != models.StatusCompleted || stored.FeedbackStatus != tt.wantStatus {
				t.Fatalf("stored = %+v", stored)
			}
			if len(f.transcripts.recorded) != len(tt.utterances) {
				t.Fatalf("recorded %d utterances, want %d", len(f.transcripts.recorded), len(tt.utterances))
			}
			if len(f.queue.ids) != tt.wantEnqueued {
				t.Fatalf("enqueued %d jobs, want %d", len(f.queue.ids), tt.wantEnqueued)
			}
		})
	}
}

func TestInterviewServiceAbandon(t *testing.T) {
	f := newInterviewFixture(
		models.Interview{InterviewID: "pending", UserID: "u1", Status: models.StatusPending},
		models.Interview{InterviewID: "done", UserID: "u1", Status: models.StatusCompleted, EndReason: models.EndReasonTimeout},
	)
	caps := models.Capabilities{UserID: "u1"}
	ctx := context.Background()

	iv, err := f.svc.Abandon(ctx, caps, "pending")
	if err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	if iv.Status != models.StatusCompleted || iv.EndReason != models.EndReasonUser || iv.FeedbackStatus != models.FeedbackNone {
		t.Fatalf("abandoned = %+v", iv)
	}

	iv, err = f.svc.Abandon(ctx, caps, "done")
	if err != nil {
		t.Fatalf("Abandon completed: %v", err)
	}
	if iv.EndReason != models.EndReasonTimeout {
		t.Fatalf("completed interview was rewritten: %+v", iv)
	}
	if f.repo.completes != 1 {
		t.Fatalf("Complete called %d times, want 1", f.repo.completes)
	}

	if _, err := f.svc.Abandon(ctx, models.Capabilities{UserID: "u2"}, "pending"); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("foreign Abandon err = %v", err)
	}
}
