package product

import (
	"context"
	"errors"
	"html/template"

	"go.uber.org/zap"

	"github.com/wichananm65/football-storefront/internal/token"
)

// LoadFailedMessage replaces the product grid when products cannot be loaded.
const LoadFailedMessage = "Failed to load products"

type Service struct {
	repo    Repository
	catalog *Catalog
	logger  *zap.Logger
}

func NewService(repo Repository, catalog *Catalog, logger *zap.Logger) *Service {
	if catalog == nil {
		catalog = NewCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, catalog: catalog, logger: logger}
}

func (s *Service) Catalog() *Catalog { return s.catalog }

// Refresh fetches products, keeps the published ones and stores them as the
// current catalog. On error the catalog is left as it was.
func (s *Service) Refresh(ctx context.Context, tokens token.Reader) ([]Product, error) {
	page, err := s.repo.List(ctx, tokens)
	if err != nil {
		return nil, err
	}
	published := Published(page.Results)
	s.logger.Debug("products loaded",
		zap.Int("received", len(page.Results)), zap.Int("published", len(published)))
	s.catalog.Replace(published)
	return published, nil
}

// Load renders the product region from a fresh fetch. Failures render the
// fixed error message instead of propagating.
func (s *Service) Load(ctx context.Context, tokens token.Reader) template.HTML {
	products, err := s.Refresh(ctx, tokens)
	if err != nil {
		s.logger.Error("load products", zap.Error(err))
		return RenderLoadFailed()
	}
	return RenderProducts(products)
}

// FilterCategory renders the in-memory catalog restricted to one category.
// The API is only contacted when nothing has been loaded yet.
func (s *Service) FilterCategory(ctx context.Context, tokens token.Reader, categoryID int) template.HTML {
	if !s.catalog.Loaded() {
		if _, err := s.Refresh(ctx, tokens); err != nil {
			s.logger.Error("load products", zap.Error(err))
			return RenderLoadFailed()
		}
	}
	return RenderProducts(s.catalog.Filter(categoryID))
}

// Get returns a published product by slug for the detail view.
func (s *Service) Get(ctx context.Context, tokens token.Reader, slug string) (Product, error) {
	p, err := s.repo.GetBySlug(ctx, tokens, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Product{}, ErrNotFound
		}
		if cached, ok := s.catalog.Find(slug); ok {
			s.logger.Warn("product lookup failed, serving catalog copy", zap.String("slug", slug), zap.Error(err))
			return cached, nil
		}
		return Product{}, err
	}
	if !p.IsPublished {
		return Product{}, ErrNotFound
	}
	return p, nil
}
