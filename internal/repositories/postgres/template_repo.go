package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TemplateRepository interface {
	// ListVisible returns global templates plus the ones ownerID created.
	ListVisible(ctx context.Context, ownerID string) ([]models.Template, error)
	ListGlobal(ctx context.Context) ([]models.Template, error)
	GetByID(ctx context.Context, id string) (*models.Template, error)
	Create(ctx context.Context, t *models.Template) error
	Upsert(ctx context.Context, t *models.Template) error
	Delete(ctx context.Context, id string) error
}

type templateRepo struct {
	db *gorm.DB
}

func NewTemplateRepo(db *gorm.DB) TemplateRepository {
	return &templateRepo{db: db}
}

func (r *templateRepo) ListVisible(ctx context.Context, ownerID string) ([]models.Template, error) {
	var rows []models.Template
	err := r.db.WithContext(ctx).
		Where("owner_id = '' OR owner_id IS NULL OR owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *templateRepo) ListGlobal(ctx context.Context) ([]models.Template, error) {
	var rows []models.Template
	err := r.db.WithContext(ctx).
		Where("owner_id = '' OR owner_id IS NULL").
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *templateRepo) GetByID(ctx context.Context, id string) (*models.Template, error) {
	var t models.Template
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *templateRepo) Create(ctx context.Context, t *models.Template) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *templateRepo) Upsert(ctx context.Context, t *models.Template) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "role", "description", "tech_stacks", "duration"}),
		}).
		Create(t).Error
}

func (r *templateRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Template{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
