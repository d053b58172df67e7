package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/cache"
	"github.com/yoockh/yoointerview/internal/models"
	pgrepo "github.com/yoockh/yoointerview/internal/repositories/postgres"
	"github.com/yoockh/yoointerview/internal/utils"
)

const globalTemplatesTTL = 10 * time.Minute

type CreateTemplateInput struct {
	Title       string   `json:"title" binding:"required"`
	Role        string   `json:"role" binding:"required"`
	Description string   `json:"description"`
	TechStacks  []string `json:"tech_stacks"`
	Duration    string   `json:"duration"`
	// Global is honoured for admins only.
	Global bool `json:"global"`
}

type TemplateService interface {
	List(ctx context.Context, caps models.Capabilities) ([]models.Template, error)
	Get(ctx context.Context, caps models.Capabilities, id string) (*models.Template, error)
	Create(ctx context.Context, caps models.Capabilities, in CreateTemplateInput) (*models.Template, error)
	Delete(ctx context.Context, caps models.Capabilities, id string) error
	Seed(ctx context.Context, templates []models.Template) (int, error)
}

type templateService struct {
	templates pgrepo.TemplateRepository
	cache     cache.Cache
	log       *logrus.Logger
}

func NewTemplateService(templates pgrepo.TemplateRepository, c cache.Cache, log *logrus.Logger) TemplateService {
	if log == nil {
		log = logrus.New()
	}
	return &templateService{templates: templates, cache: c, log: log}
}

func (s *templateService) List(ctx context.Context, caps models.Capabilities) ([]models.Template, error) {
	const op = "TemplateService.List"

	global, err := s.global(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list templates", err)
	}

	visible, err := s.templates.ListVisible(ctx, caps.UserID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list templates", err)
	}

	out := make([]models.Template, 0, len(visible))
	out = append(out, global...)
	for _, t := range visible {
		if !t.IsGlobal() {
			out = append(out, t)
		}
	}
	return out, nil
}

// global serves the shared template list through the cache. Cache failures
// fall through to the database.
func (s *templateService) global(ctx context.Context) ([]models.Template, error) {
	key := cache.GlobalTemplatesKey()
	if s.cache != nil {
		var cached []models.Template
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.log.WithError(err).Warn("template cache read failed")
		}
		if hit {
			return cached, nil
		}
	}

	rows, err := s.templates.ListGlobal(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, rows, globalTemplatesTTL); err != nil {
			s.log.WithError(err).Warn("template cache write failed")
		}
	}
	return rows, nil
}

func (s *templateService) Get(ctx context.Context, caps models.Capabilities, id string) (*models.Template, error) {
	const op = "TemplateService.Get"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "template_id is required", nil)
	}
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "template not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get template", err)
	}
	if !t.IsGlobal() && t.OwnerID != caps.UserID && !caps.IsAdmin() {
		return nil, utils.E(utils.CodeNotFound, op, "template not found", utils.ErrNotFound)
	}
	return t, nil
}

func (s *templateService) Create(ctx context.Context, caps models.Capabilities, in CreateTemplateInput) (*models.Template, error) {
	const op = "TemplateService.Create"

	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Role) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title and role are required", nil)
	}
	if in.Global && !caps.IsAdmin() {
		return nil, utils.E(utils.CodeForbidden, op, "only admins can create global templates", nil)
	}

	t := &models.Template{
		ID:          uuid.NewString(),
		OwnerID:     caps.UserID,
		Title:       strings.TrimSpace(in.Title),
		Role:        strings.TrimSpace(in.Role),
		Description: strings.TrimSpace(in.Description),
		TechStacks:  cleanStacks(in.TechStacks),
		Duration:    in.Duration,
		CreatedAt:   time.Now().UTC(),
	}
	if in.Global {
		t.OwnerID = ""
	}

	if err := s.templates.Create(ctx, t); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create template", err)
	}
	if t.IsGlobal() {
		s.invalidate(ctx)
	}
	return t, nil
}

func (s *templateService) Delete(ctx context.Context, caps models.Capabilities, id string) error {
	const op = "TemplateService.Delete"

	t, err := s.Get(ctx, caps, id)
	if err != nil {
		return err
	}
	if t.IsGlobal() && !caps.IsAdmin() {
		return utils.E(utils.CodeForbidden, op, "only admins can delete global templates", nil)
	}
	if !t.IsGlobal() && t.OwnerID != caps.UserID && !caps.IsAdmin() {
		return utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}

	if err := s.templates.Delete(ctx, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "template not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete template", err)
	}
	if t.IsGlobal() {
		s.invalidate(ctx)
	}
	return nil
}

// Seed upserts global templates, ex: from the YAML seed file.
func (s *templateService) Seed(ctx context.Context, templates []models.Template) (int, error) {
	const op = "TemplateService.Seed"

	n := 0
	for i := range templates {
		t := templates[i]
		if t.ID == "" {
			return n, utils.E(utils.CodeInvalidArgument, op, "seed template without id: "+t.Title, nil)
		}
		t.OwnerID = ""
		t.TechStacks = cleanStacks(t.TechStacks)
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now().UTC()
		}
		if err := s.templates.Upsert(ctx, &t); err != nil {
			return n, utils.E(utils.CodeInternal, op, "failed to upsert template", err)
		}
		n++
	}
	s.invalidate(ctx)
	return n, nil
}

func (s *templateService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cache.GlobalTemplatesKey()); err != nil {
		s.log.WithError(err).Warn("template cache invalidation failed")
	}
}

func cleanStacks(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		k := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
