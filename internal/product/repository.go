package product

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"

	"github.com/wichananm65/football-storefront/internal/api"
	"github.com/wichananm65/football-storefront/internal/token"
)

var (
	ErrNotFound = errors.New("product not found")
)

const listEndpoint = "/api/v1/product/"

// Repository provides read access to the product API. tokens may be nil;
// a present credential is forwarded.
type Repository interface {
	// List returns the first page of products. A reply without `results`
	// is an empty page.
	List(ctx context.Context, tokens token.Reader) (Page, error)
	GetBySlug(ctx context.Context, tokens token.Reader, slug string) (Product, error)
}

// APIRepository reads products from the storefront API.
type APIRepository struct {
	client *api.Client
}

func NewAPIRepository(client *api.Client) *APIRepository {
	return &APIRepository{client: client}
}

func (r *APIRepository) List(ctx context.Context, tokens token.Reader) (Page, error) {
	var page Page
	if err := r.client.Get(ctx, tokens, listEndpoint, &page); err != nil {
		return Page{}, err
	}
	if page.Results == nil {
		page.Results = []Product{}
	}
	return page, nil
}

func (r *APIRepository) GetBySlug(ctx context.Context, tokens token.Reader, slug string) (Product, error) {
	var p Product
	if err := r.client.Get(ctx, tokens, listEndpoint+url.PathEscape(slug)+"/", &p); err != nil {
		if api.StatusOf(err) == http.StatusNotFound {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// InMemoryRepository is a simple in-memory implementation useful for tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
	Err     error
	calls   int
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{storage: make([]Product, 0, len(seed))}
	r.storage = append(r.storage, seed...)
	return r
}

func (r *InMemoryRepository) List(context.Context, token.Reader) (Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.Err != nil {
		return Page{}, r.Err
	}
	out := make([]Product, len(r.storage))
	copy(out, r.storage)
	return Page{Count: len(out), Results: out}, nil
}

func (r *InMemoryRepository) GetBySlug(_ context.Context, _ token.Reader, slug string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return Product{}, r.Err
	}
	for _, p := range r.storage {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// Calls reports how many times List was invoked.
func (r *InMemoryRepository) Calls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.calls
}
