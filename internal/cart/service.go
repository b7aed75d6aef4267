package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wichananm65/football-storefront/internal/api"
	"github.com/wichananm65/football-storefront/internal/token"
)

var (
	ErrLoginRequired   = errors.New("login required")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Messages shown to the user when a mutation fails without a server detail.
const (
	LoginRequiredMessage = "Please log in to add products to the cart"
	AddFailedMessage     = "Could not add the product to the cart"
	UpdateFailedMessage  = "Could not change the quantity"
	RemoveFailedMessage  = "Could not remove the item from the cart"
	ClearFailedMessage   = "Could not clear the cart"
)

// Message turns a mutation error into text for the user: the server's detail
// when there is one, fallback otherwise.
func Message(err error, fallback string) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLoginRequired):
		return LoginRequiredMessage
	case errors.Is(err, ErrInvalidQuantity):
		return "Quantity must be at least 1"
	}
	if detail, ok := api.DetailOf(err); ok {
		return detail
	}
	return fallback
}

// Stores keeps one Store per credential. With an idle TTL, stores not used
// for that long are evicted, so credentials that expire without a logout do
// not accumulate.
type Stores struct {
	repo   Repository
	logger *zap.Logger
	idle   time.Duration
	now    func() time.Time

	mu        sync.Mutex
	stores    map[string]*entry
	nextSweep time.Time
}

type entry struct {
	store    *Store
	lastUsed time.Time
}

func NewStores(repo Repository, idle time.Duration, logger *zap.Logger) *Stores {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stores{repo: repo, logger: logger, idle: idle, now: time.Now, stores: make(map[string]*entry)}
}

// For returns the store of credential, creating it on first use.
func (r *Stores) For(credential string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweep(now)
	e, ok := r.stores[credential]
	if !ok {
		e = &entry{store: NewStore(r.repo, token.Static(credential), r.logger)}
		r.stores[credential] = e
	}
	e.lastUsed = now
	return e.store
}

// sweep drops idle stores, at most once per idle period.
func (r *Stores) sweep(now time.Time) {
	if r.idle <= 0 || now.Before(r.nextSweep) {
		return
	}
	r.nextSweep = now.Add(r.idle)
	for credential, e := range r.stores {
		if now.Sub(e.lastUsed) >= r.idle {
			delete(r.stores, credential)
		}
	}
}

// Drop forgets the store of credential.
func (r *Stores) Drop(credential string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, credential)
}

func (r *Stores) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Option configures a Service.
type Option func(*Service)

// WithIdleTTL evicts cart stores unused for ttl. Zero keeps them until logout.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *Service) { s.idle = ttl }
}

// Service runs cart operations on behalf of whoever holds tokens. The server
// is the only source of truth: every successful mutation reloads the cart.
type Service struct {
	repo   Repository
	stores *Stores
	idle   time.Duration
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{repo: repo, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	s.stores = NewStores(repo, s.idle, logger)
	return s
}

func (s *Service) Stores() *Stores { return s.stores }

// Load refreshes the cart of the current credential. Failures keep the last
// known cart. Without a credential the cart is empty.
func (s *Service) Load(ctx context.Context, tokens token.Reader) State {
	tok, ok := token.Present(tokens)
	if !ok {
		return State{Status: StatusEmpty, Items: []Item{}}
	}
	state, err := s.stores.For(tok).Load(ctx)
	if err != nil && !errors.Is(err, ErrSuperseded) {
		s.logger.Warn("cart load failed", zap.Error(err))
	}
	return state
}

// Add puts qty units of the product slug in the cart. Without a credential
// nothing is sent and ErrLoginRequired is returned.
func (s *Service) Add(ctx context.Context, tokens token.Reader, slug string, qty int) (State, error) {
	tok, ok := token.Present(tokens)
	if !ok {
		return State{}, ErrLoginRequired
	}
	if qty < 1 {
		return State{}, ErrInvalidQuantity
	}
	store := s.stores.For(tok)
	if err := s.repo.Add(ctx, store.tokens, slug, qty); err != nil {
		s.logger.Info("add to cart rejected", zap.String("product", slug), zap.Error(err))
		return store.State(), err
	}
	return s.reload(ctx, store), nil
}

// Update sets the quantity of one cart line.
func (s *Service) Update(ctx context.Context, tokens token.Reader, itemID, qty int) (State, error) {
	tok, ok := token.Present(tokens)
	if !ok {
		return State{}, ErrLoginRequired
	}
	if qty < 1 {
		return State{}, ErrInvalidQuantity
	}
	store := s.stores.For(tok)
	if err := s.repo.Update(ctx, store.tokens, itemID, qty); err != nil {
		return store.State(), err
	}
	return s.reload(ctx, store), nil
}

func (s *Service) Remove(ctx context.Context, tokens token.Reader, itemID int) (State, error) {
	tok, ok := token.Present(tokens)
	if !ok {
		return State{}, ErrLoginRequired
	}
	store := s.stores.For(tok)
	if err := s.repo.Remove(ctx, store.tokens, itemID); err != nil {
		return store.State(), err
	}
	return s.reload(ctx, store), nil
}

func (s *Service) Clear(ctx context.Context, tokens token.Reader) (State, error) {
	tok, ok := token.Present(tokens)
	if !ok {
		return State{}, ErrLoginRequired
	}
	store := s.stores.For(tok)
	if err := s.repo.Clear(ctx, store.tokens); err != nil {
		return store.State(), err
	}
	return s.reload(ctx, store), nil
}

// Forget drops the cart held for credential, on logout.
func (s *Service) Forget(credential string) {
	if credential == "" {
		return
	}
	s.stores.Drop(credential)
}

func (s *Service) reload(ctx context.Context, store *Store) State {
	state, err := store.Load(ctx)
	if err != nil && !errors.Is(err, ErrSuperseded) {
		s.logger.Warn("cart reload after mutation failed", zap.Error(err))
	}
	return state
}
