package services

import (
	"context"
	"sync"
	"time"

	"github.com/yoockh/yoointerview/internal/feedback"
	"github.com/yoockh/yoointerview/internal/models"
	mongorepo "github.com/yoockh/yoointerview/internal/repositories/mongo"
	"github.com/yoockh/yoointerview/internal/utils"
)

type fakeInterviewRepo struct {
	mu        sync.Mutex
	items     map[string]*models.Interview
	completes int
	statuses  []models.FeedbackStatus
}

func newFakeInterviewRepo(ivs ...models.Interview) *fakeInterviewRepo {
	r := &fakeInterviewRepo{items: map[string]*models.Interview{}}
	for i := range ivs {
		iv := ivs[i]
		r.items[iv.InterviewID] = &iv
	}
	return r
}

func (r *fakeInterviewRepo) Create(_ context.Context, iv *models.Interview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *iv
	r.items[iv.InterviewID] = &cp
	return nil
}

func (r *fakeInterviewRepo) GetByInterviewID(_ context.Context, id string) (*models.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.items[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *iv
	return &cp, nil
}

func (r *fakeInterviewRepo) ListByUser(_ context.Context, userID string, _ int64) ([]models.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Interview
	for _, iv := range r.items {
		if iv.UserID == userID {
			out = append(out, *iv)
		}
	}
	return out, nil
}

func (r *fakeInterviewRepo) Activate(_ context.Context, iv models.Interview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[iv.InterviewID]
	if !ok {
		return utils.ErrNotFound
	}
	if cur.Status != models.StatusPending {
		return mongorepo.ErrStatusChanged
	}
	cur.Status = models.StatusActive
	cur.StartedAt = iv.StartedAt
	return nil
}

func (r *fakeInterviewRepo) Complete(_ context.Context, iv models.Interview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[iv.InterviewID]
	if !ok {
		return utils.ErrNotFound
	}
	r.completes++
	cur.Status = models.StatusCompleted
	cur.EndedAt = iv.EndedAt
	cur.EndReason = iv.EndReason
	cur.Transcript = iv.Transcript
	cur.FeedbackStatus = iv.FeedbackStatus
	return nil
}

func (r *fakeInterviewRepo) SetFeedback(_ context.Context, id string, report models.FeedbackReport, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[id]
	if !ok {
		return utils.ErrNotFound
	}
	score := report.OverallRating
	cur.Feedback = &report
	cur.Score = &score
	cur.FeedbackStatus = models.FeedbackReady
	cur.FeedbackGeneratedAt = &at
	return nil
}

func (r *fakeInterviewRepo) SetFeedbackIfAbsent(ctx context.Context, id string, report models.FeedbackReport, at time.Time) (bool, error) {
	r.mu.Lock()
	cur, ok := r.items[id]
	if ok && cur.Feedback != nil {
		r.mu.Unlock()
		return false, nil
	}
	r.mu.Unlock()
	return true, r.SetFeedback(ctx, id, report, at)
}

func (r *fakeInterviewRepo) SetFeedbackStatus(_ context.Context, id string, status models.FeedbackStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
	if cur, ok := r.items[id]; ok {
		cur.FeedbackStatus = status
	}
	return nil
}

type fakeTemplates struct {
	TemplateService
	items map[string]models.Template
}

func (f *fakeTemplates) Get(_ context.Context, _ models.Capabilities, id string) (*models.Template, error) {
	t, ok := f.items[id]
	if !ok {
		return nil, utils.E(utils.CodeNotFound, "fakeTemplates.Get", "template not found", utils.ErrNotFound)
	}
	return &t, nil
}

type fakeAccounts struct {
	AccountService
	consumed int
}

func (f *fakeAccounts) ConsumeAttempt(_ context.Context, caps models.Capabilities) error {
	if !caps.CanStartInterview() {
		return utils.E(utils.CodeExhausted, "fakeAccounts.ConsumeAttempt", "no attempts", utils.ErrNoAttemptsLeft)
	}
	f.consumed++
	return nil
}

type fakeTranscripts struct {
	recorded []models.Utterance
	rendered string
}

func (f *fakeTranscripts) Record(_ context.Context, _, _ string, utterances []models.Utterance) error {
	f.recorded = append(f.recorded, utterances...)
	return nil
}

func (f *fakeTranscripts) List(context.Context, string, string) ([]models.Utterance, error) {
	return f.recorded, nil
}

func (f *fakeTranscripts) Render(context.Context, string, string) (string, error) {
	if f.rendered == "" {
		return "", utils.ErrNotFound
	}
	return f.rendered, nil
}

type fakeQueue struct {
	ids []string
}

func (f *fakeQueue) Enqueue(_ context.Context, id string) error {
	f.ids = append(f.ids, id)
	return nil
}

type fakeFeedbackGen struct {
	calls   int
	last    feedback.Input
	err     error
	summary string
	during  func() // runs inside Generate, before it returns
}

func (f *fakeFeedbackGen) Generate(_ context.Context, in feedback.Input) (models.FeedbackReport, error) {
	f.calls++
	f.last = in
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return models.FeedbackReport{}, f.err
	}
	summary := f.summary
	if summary == "" {
		summary = "ok"
	}
	return models.FeedbackReport{OverallRating: 2, RatingLabel: "Needs Improvement", Summary: summary, Source: models.FeedbackFromModel}, nil
}
