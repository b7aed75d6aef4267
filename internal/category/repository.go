package category

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/wichananm65/football-storefront/internal/api"
	"github.com/wichananm65/football-storefront/internal/token"
)

const listEndpoint = "/api/v1/category/"

// Repository provides access to categories.
type Repository interface {
	List(ctx context.Context, tokens token.Reader) ([]Category, error)
}

// APIRepository reads categories from the storefront API.
type APIRepository struct {
	client *api.Client
}

func NewAPIRepository(client *api.Client) *APIRepository {
	return &APIRepository{client: client}
}

// List accepts both a bare array and a paginated `{"results": [...]}` reply.
func (r *APIRepository) List(ctx context.Context, tokens token.Reader) ([]Category, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, tokens, listEndpoint, &raw); err != nil {
		return nil, err
	}
	var items []Category
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}
	var page struct {
		Results []Category `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("%w: categories: %v", api.ErrMalformed, err)
	}
	return page.Results, nil
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items []Category
	Err   error
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	r := &InMemoryRepository{items: make([]Category, 0, len(seed))}
	r.items = append(r.items, seed...)
	return r
}

func (r *InMemoryRepository) List(context.Context, token.Reader) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]Category, len(r.items))
	copy(out, r.items)
	return out, nil
}
