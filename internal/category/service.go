package category

import (
	"context"
	"html/template"

	"go.uber.org/zap"

	"github.com/wichananm65/football-storefront/internal/token"
)

// UnavailablePlaceholder replaces the category list when it cannot be loaded.
const UnavailablePlaceholder = "Categories unavailable"

// Service provides business logic for categories.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(r Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: r, logger: logger}
}

// List returns the categories, or an empty slice when they cannot be read.
func (s *Service) List(ctx context.Context, tokens token.Reader) []Category {
	items, err := s.repo.List(ctx, tokens)
	if err != nil {
		return []Category{}
	}
	return items
}

// Load renders the category filter region. Any failure degrades to the
// fixed placeholder; no error ever reaches the page.
func (s *Service) Load(ctx context.Context, tokens token.Reader) template.HTML {
	items, err := s.repo.List(ctx, tokens)
	if err != nil {
		s.logger.Error("load categories", zap.Error(err))
		return RenderUnavailable()
	}
	return RenderCategories(items)
}
