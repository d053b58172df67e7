package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrStatusChanged is returned by conditional updates whose status guard did
// not match.
var ErrStatusChanged = errors.New("interview status changed")

type InterviewRepository interface {
	Create(ctx context.Context, iv *models.Interview) error
	GetByInterviewID(ctx context.Context, interviewID string) (*models.Interview, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.Interview, error)
	Activate(ctx context.Context, iv models.Interview) error
	Complete(ctx context.Context, iv models.Interview) error
	SetFeedback(ctx context.Context, interviewID string, report models.FeedbackReport, at time.Time) error
	// SetFeedbackIfAbsent stores report only when none is stored yet.
	SetFeedbackIfAbsent(ctx context.Context, interviewID string, report models.FeedbackReport, at time.Time) (stored bool, err error)
	SetFeedbackStatus(ctx context.Context, interviewID string, status models.FeedbackStatus) error
}

type interviewRepo struct {
	col *mongo.Collection
}

func NewInterviewRepo(db *mongo.Database) InterviewRepository {
	return &interviewRepo{col: db.Collection("interviews")}
}

func (r *interviewRepo) Create(ctx context.Context, iv *models.Interview) error {
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now().UTC()
	}
	if iv.Status == "" {
		iv.Status = models.StatusPending
	}
	if iv.FeedbackStatus == "" {
		iv.FeedbackStatus = models.FeedbackNone
	}
	_, err := r.col.InsertOne(ctx, iv)
	return err
}

func (r *interviewRepo) GetByInterviewID(ctx context.Context, interviewID string) (*models.Interview, error) {
	var iv models.Interview
	err := r.col.FindOne(ctx, bson.M{"interview_id": interviewID}).Decode(&iv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (r *interviewRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.Interview, error) {
	if limit <= 0 {
		limit = 50
	}

	cur, err := r.col.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(limit).
			SetProjection(bson.M{"transcript": 0}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Interview
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Activate moves a pending interview to active.
func (r *interviewRepo) Activate(ctx context.Context, iv models.Interview) error {
	set := bson.M{"status": models.StatusActive}
	if iv.StartedAt != nil {
		set["started_at"] = iv.StartedAt.UTC()
	}
	if iv.RemainingSeconds != nil {
		set["remaining_seconds"] = *iv.RemainingSeconds
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": iv.InterviewID, "status": models.StatusPending},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missOrChanged(ctx, iv.InterviewID)
	}
	return nil
}

// Complete stores the final state of a pending or active interview. Completing an already completed interview is a no-op.
func (r *interviewRepo) Complete(ctx context.Context, iv models.Interview) error {
	set := bson.M{
		"status":           models.StatusCompleted,
		"end_reason":       iv.EndReason,
		"duration_seconds": iv.DurationSeconds,
		"transcript":       iv.Transcript,
		"feedback_status":  iv.FeedbackStatus,
	}
	if iv.FeedbackStatus == "" {
		set["feedback_status"] = models.FeedbackNone
	}
	if iv.EndedAt != nil {
		set["ended_at"] = iv.EndedAt.UTC()
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{
			"interview_id": iv.InterviewID,
			"status":       bson.M{"$in": []models.InterviewStatus{models.StatusPending, models.StatusActive}},
		},
		bson.M{
			"$set":   set,
			"$unset": bson.M{"remaining_seconds": ""},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		err := r.missOrChanged(ctx, iv.InterviewID)
		if errors.Is(err, ErrStatusChanged) {
			return nil
		}
		return err
	}
	return nil
}

// SetFeedback replaces the stored report wholesale.
func (r *interviewRepo) SetFeedback(ctx context.Context, interviewID string, report models.FeedbackReport, at time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": interviewID, "status": models.StatusCompleted},
		feedbackUpdate(report, at),
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missOrChanged(ctx, interviewID)
	}
	return nil
}

func (r *interviewRepo) SetFeedbackIfAbsent(ctx context.Context, interviewID string, report models.FeedbackReport, at time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": interviewID, "status": models.StatusCompleted, "feedback": nil},
		feedbackUpdate(report, at),
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.M{"interview_id": interviewID, "status": models.StatusCompleted})
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, r.missOrChanged(ctx, interviewID)
		}
		return false, nil
	}
	return true, nil
}

func feedbackUpdate(report models.FeedbackReport, at time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"feedback":              report,
		"score":                 report.OverallRating,
		"feedback_status":       models.FeedbackReady,
		"feedback_generated_at": at.UTC(),
	}}
}

func (r *interviewRepo) SetFeedbackStatus(ctx context.Context, interviewID string, status models.FeedbackStatus) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": interviewID},
		bson.M{"$set": bson.M{"feedback_status": status}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *interviewRepo) missOrChanged(ctx context.Context, interviewID string) error {
	n, err := r.col.CountDocuments(ctx, bson.M{"interview_id": interviewID})
	if err != nil {
		return err
	}
	if n == 0 {
		return utils.ErrNotFound
	}
	return ErrStatusChanged
}
