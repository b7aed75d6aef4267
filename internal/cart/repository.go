package cart

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/football-storefront/internal/api"
	"github.com/wichananm65/football-storefront/internal/token"
)

const (
	cartEndpoint  = "/api/cart/"
	addEndpoint   = "/api/cart/item/add/"
	itemEndpoint  = "/api/cart/item/"
	clearEndpoint = "/api/cart/clear/"
)

// Repository is the server side of the cart. Every call is authenticated
// with the credential held by tokens.
type Repository interface {
	Fetch(ctx context.Context, tokens token.Reader) (ServerCart, error)
	Add(ctx context.Context, tokens token.Reader, slug string, qty int) error
	Update(ctx context.Context, tokens token.Reader, itemID, qty int) error
	Remove(ctx context.Context, tokens token.Reader, itemID int) error
	Clear(ctx context.Context, tokens token.Reader) error
}

type addRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// APIRepository talks to the cart endpoints of the storefront API.
type APIRepository struct {
	client *api.Client
}

func NewAPIRepository(client *api.Client) *APIRepository {
	return &APIRepository{client: client}
}

func (r *APIRepository) Fetch(ctx context.Context, tokens token.Reader) (ServerCart, error) {
	var out ServerCart
	if err := r.client.Get(ctx, tokens, cartEndpoint, &out); err != nil {
		return ServerCart{}, err
	}
	return out, nil
}

func (r *APIRepository) Add(ctx context.Context, tokens token.Reader, slug string, qty int) error {
	return r.client.Post(ctx, tokens, addEndpoint, addRequest{Product: slug, Quantity: qty}, nil)
}

type updateRequest struct {
	Quantity int `json:"quantity"`
}

func (r *APIRepository) Update(ctx context.Context, tokens token.Reader, itemID, qty int) error {
	return r.client.Patch(ctx, tokens, itemEndpoint+strconv.Itoa(itemID)+"/", updateRequest{Quantity: qty}, nil)
}

func (r *APIRepository) Remove(ctx context.Context, tokens token.Reader, itemID int) error {
	return r.client.Delete(ctx, tokens, itemEndpoint+strconv.Itoa(itemID)+"/")
}

func (r *APIRepository) Clear(ctx context.Context, tokens token.Reader) error {
	return r.client.Post(ctx, tokens, clearEndpoint, struct{}{}, nil)
}

// Listing is a product the in-memory repository can put in a cart.
type Listing struct {
	Name  string
	Price decimal.Decimal
}

// InMemoryRepository keeps one cart per credential. It is used by tests and
// behaves like the API for unknown products and missing credentials.
type InMemoryRepository struct {
	mu        sync.RWMutex
	listings  map[string]Listing
	carts     map[string][]ServerItem
	nextID    int
	mutations int

	FetchErr error
	AddErr   error
}

func NewInMemoryRepository(listings map[string]Listing) *InMemoryRepository {
	return &InMemoryRepository{
		listings: listings,
		carts:    make(map[string][]ServerItem),
		nextID:   1,
	}
}

func unauthorized() error {
	return &api.HTTPError{Status: http.StatusUnauthorized, Detail: "Authentication credentials were not provided."}
}

func (r *InMemoryRepository) Fetch(_ context.Context, tokens token.Reader) (ServerCart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FetchErr != nil {
		return ServerCart{}, r.FetchErr
	}
	tok, ok := token.Present(tokens)
	if !ok {
		return ServerCart{}, unauthorized()
	}
	items := make([]ServerItem, len(r.carts[tok]))
	copy(items, r.carts[tok])
	return ServerCart{Items: items}, nil
}

func (r *InMemoryRepository) Add(_ context.Context, tokens token.Reader, slug string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations++
	if r.AddErr != nil {
		return r.AddErr
	}
	tok, ok := token.Present(tokens)
	if !ok {
		return unauthorized()
	}
	l, ok := r.listings[slug]
	if !ok {
		return &api.HTTPError{Status: http.StatusBadRequest, Detail: "Product not found"}
	}
	items := r.carts[tok]
	for i := range items {
		if items[i].ProductSlug == slug {
			items[i].Quantity += qty
			items[i].TotalPrice = l.Price.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
			return nil
		}
	}
	r.carts[tok] = append(items, ServerItem{
		ID:          r.nextID,
		ProductName: l.Name,
		ProductSlug: slug,
		Price:       l.Price,
		Quantity:    qty,
		TotalPrice:  l.Price.Mul(decimal.NewFromInt(int64(qty))),
	})
	r.nextID++
	return nil
}

func (r *InMemoryRepository) Update(_ context.Context, tokens token.Reader, itemID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations++
	tok, ok := token.Present(tokens)
	if !ok {
		return unauthorized()
	}
	items := r.carts[tok]
	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = qty
			items[i].TotalPrice = items[i].Price.Mul(decimal.NewFromInt(int64(qty)))
			return nil
		}
	}
	return &api.HTTPError{Status: http.StatusNotFound, Detail: "Not found."}
}

func (r *InMemoryRepository) Remove(_ context.Context, tokens token.Reader, itemID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations++
	tok, ok := token.Present(tokens)
	if !ok {
		return unauthorized()
	}
	items := r.carts[tok]
	for i := range items {
		if items[i].ID == itemID {
			r.carts[tok] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return &api.HTTPError{Status: http.StatusNotFound, Detail: "Not found."}
}

func (r *InMemoryRepository) Clear(_ context.Context, tokens token.Reader) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations++
	tok, ok := token.Present(tokens)
	if !ok {
		return unauthorized()
	}
	delete(r.carts, tok)
	return nil
}

// Mutations reports how many Add, Update, Remove and Clear calls reached the repository.
func (r *InMemoryRepository) Mutations() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mutations
}
