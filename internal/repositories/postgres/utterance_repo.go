package postgres

import (
	"context"

	"github.com/yoockh/yoointerview/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UtteranceRepository interface {
	// InsertBatch stores logs; rows already present for (interview_id, seq)
	// are left untouched.
	InsertBatch(ctx context.Context, logs []models.UtteranceLog) error
	ListByInterview(ctx context.Context, userID, interviewID string) ([]models.UtteranceLog, error)
	LatestN(ctx context.Context, userID string, n int) ([]models.UtteranceLog, error)
}

type utteranceRepo struct {
	db *gorm.DB
}

func NewUtteranceRepo(db *gorm.DB) UtteranceRepository {
	return &utteranceRepo{db: db}
}

func (r *utteranceRepo) InsertBatch(ctx context.Context, logs []models.UtteranceLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "interview_id"}, {Name: "seq"}},
			DoNothing: true,
		}).
		CreateInBatches(logs, 100).Error
}

func (r *utteranceRepo) ListByInterview(ctx context.Context, userID, interviewID string) ([]models.UtteranceLog, error) {
	var rows []models.UtteranceLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND interview_id = ?", userID, interviewID).
		Order("seq ASC").
		Find(&rows).Error
	return rows, err
}

func (r *utteranceRepo) LatestN(ctx context.Context, userID string, n int) ([]models.UtteranceLog, error) {
	if n <= 0 {
		n = 5
	}
	var rows []models.UtteranceLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(n).
		Find(&rows).Error
	return rows, err
}
