package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wichananm65/football-storefront/internal/token"
)

// ErrSuperseded is returned by Load when a newer load was issued while it
// was in flight. Its result has been discarded.
var ErrSuperseded = errors.New("cart load superseded")

// Store holds the cart of one credential. Items are only ever replaced
// wholesale, and Count and Total are recomputed from them right after.
type Store struct {
	repo   Repository
	tokens token.Reader
	logger *zap.Logger

	mu      sync.Mutex
	status  Status
	settled Status
	items   []Item
	count   int
	total   decimal.Decimal
	issued  uint64
}

func NewStore(repo Repository, tokens token.Reader, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		repo:    repo,
		tokens:  tokens,
		logger:  logger,
		status:  StatusEmpty,
		settled: StatusEmpty,
		items:   []Item{},
	}
}

// Load fetches the cart and applies it if no newer load was issued in the
// meantime. A failed load keeps the previous items and aggregates.
func (s *Store) Load(ctx context.Context) (State, error) {
	ticket := s.begin()

	cart, err := s.repo.Fetch(ctx, s.tokens)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.issued {
		s.logger.Debug("discarding superseded cart load", zap.Uint64("ticket", ticket), zap.Uint64("latest", s.issued))
		return s.snapshot(), ErrSuperseded
	}
	if err != nil {
		s.status = s.settled
		s.logger.Warn("cart load failed, keeping previous cart", zap.Error(err))
		return s.snapshot(), err
	}

	items := make([]Item, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, project(it))
	}
	s.replace(items)
	s.settled = StatusReady
	s.status = StatusReady
	return s.snapshot(), nil
}

// State returns a copy of the current cart.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.status = StatusLoading
	return s.issued
}

// replace swaps the item list and recomputes the aggregates. Callers hold mu.
func (s *Store) replace(items []Item) {
	s.items = items
	s.recompute()
}

func (s *Store) recompute() {
	count := 0
	total := decimal.Zero
	for _, it := range s.items {
		count += it.Quantity
		total = total.Add(it.Total)
	}
	s.count = count
	s.total = total
}

func (s *Store) snapshot() State {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return State{Status: s.status, Items: items, Count: s.count, Total: s.total}
}
