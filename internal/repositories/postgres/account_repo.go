package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository interface {
	Get(ctx context.Context, userID string) (*models.Account, error)
	// Ensure creates a free account for userID when none exists and returns
	// the stored row.
	Ensure(ctx context.Context, userID, email string) (*models.Account, error)
	SetPlan(ctx context.Context, userID string, plan models.Plan) error
	// ConsumeAttempt decrements attempts_left when it is positive. Unlimited
	// accounts are left unchanged. It reports whether an attempt was available.
	ConsumeAttempt(ctx context.Context, userID string) (bool, error)
}

type accountRepo struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) Get(ctx context.Context, userID string) (*models.Account, error) {
	var a models.Account
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) Ensure(ctx context.Context, userID, email string) (*models.Account, error) {
	a := models.Account{
		UserID:       userID,
		Email:        email,
		Plan:         models.PlanFree,
		AttemptsLeft: models.PlanFree.Allowance(),
		UpdatedAt:    time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&a).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, userID)
}

func (r *accountRepo) SetPlan(ctx context.Context, userID string, plan models.Plan) error {
	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"plan":          plan,
			"attempts_left": plan.Allowance(),
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *accountRepo) ConsumeAttempt(ctx context.Context, userID string) (bool, error) {
	var ok bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Account
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			Take(&a).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotFound
		}
		if err != nil {
			return err
		}

		switch {
		case a.AttemptsLeft == models.UnlimitedAttempts:
			ok = true
			return nil
		case a.AttemptsLeft <= 0:
			return nil
		}

		ok = true
		return tx.Model(&models.Account{}).
			Where("user_id = ?", userID).
			Updates(map[string]any{
				"attempts_left": gorm.Expr("attempts_left - 1"),
				"updated_at":    time.Now().UTC(),
			}).Error
	})
	return ok, err
}
