package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
	"gorm.io/gorm"
)

type ArchiveRepository interface {
	Insert(ctx context.Context, a *models.TranscriptArchive) error
	LatestByInterview(ctx context.Context, interviewID string) (*models.TranscriptArchive, error)
}

type archiveRepo struct {
	db *gorm.DB
}

func NewArchiveRepo(db *gorm.DB) ArchiveRepository {
	return &archiveRepo{db: db}
}

func (r *archiveRepo) Insert(ctx context.Context, a *models.TranscriptArchive) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *archiveRepo) LatestByInterview(ctx context.Context, interviewID string) (*models.TranscriptArchive, error) {
	var row models.TranscriptArchive
	err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("uploaded_at DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
