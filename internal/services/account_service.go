package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yoockh/yoointerview/internal/models"
	pgrepo "github.com/yoockh/yoointerview/internal/repositories/postgres"
	"github.com/yoockh/yoointerview/internal/utils"
)

type AccountService interface {
	// Resolve turns an authenticated identity into the capabilities handlers
	// act on. Accounts are created on first sight.
	Resolve(ctx context.Context, user models.User) (models.Capabilities, error)
	ConsumeAttempt(ctx context.Context, caps models.Capabilities) error
	SetPlan(ctx context.Context, userID string, plan models.Plan) error
}

type accountService struct {
	accounts    pgrepo.AccountRepository
	adminEmails map[string]struct{}
}

func NewAccountService(accounts pgrepo.AccountRepository, adminEmails []string) AccountService {
	set := map[string]struct{}{}
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			set[e] = struct{}{}
		}
	}
	return &accountService{accounts: accounts, adminEmails: set}
}

func (s *accountService) Resolve(ctx context.Context, user models.User) (models.Capabilities, error) {
	const op = "AccountService.Resolve"

	if user.ID == "" {
		return models.Capabilities{}, utils.E(utils.CodeUnauthorized, op, "user_id is required", nil)
	}

	acct, err := s.accounts.Ensure(ctx, user.ID, user.Email)
	if err != nil {
		return models.Capabilities{}, utils.E(utils.CodeInternal, op, "failed to load account", err)
	}

	caps := models.Capabilities{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         models.RoleUser,
		Plan:         acct.Plan,
		AttemptsLeft: acct.AttemptsLeft,
	}
	if s.isAdmin(user, acct.Plan) {
		caps.Role = models.RoleAdmin
		caps.AttemptsLeft = models.UnlimitedAttempts
	}
	return caps, nil
}

func (s *accountService) isAdmin(user models.User, plan models.Plan) bool {
	if user.Role == models.RoleAdmin || plan == models.PlanAdmin {
		return true
	}
	_, ok := s.adminEmails[strings.ToLower(strings.TrimSpace(user.Email))]
	return ok
}

func (s *accountService) ConsumeAttempt(ctx context.Context, caps models.Capabilities) error {
	const op = "AccountService.ConsumeAttempt"

	if caps.IsAdmin() {
		return nil
	}
	ok, err := s.accounts.ConsumeAttempt(ctx, caps.UserID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "account not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to consume attempt", err)
	}
	if !ok {
		return utils.E(utils.CodeExhausted, op, "no interview attempts left", utils.ErrNoAttemptsLeft)
	}
	return nil
}

func (s *accountService) SetPlan(ctx context.Context, userID string, plan models.Plan) error {
	const op = "AccountService.SetPlan"

	switch plan {
	case models.PlanFree, models.PlanMonthly, models.PlanYearly, models.PlanAcademia, models.PlanAdmin:
	default:
		return utils.E(utils.CodeInvalidArgument, op, "unknown plan", nil)
	}
	if userID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if err := s.accounts.SetPlan(ctx, userID, plan); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "account not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to set plan", err)
	}
	return nil
}
