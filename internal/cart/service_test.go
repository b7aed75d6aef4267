package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/football-storefront/internal/api"
	"github.com/wichananm65/football-storefront/internal/token"
)

func newTestService() (*Service, *InMemoryRepository) {
	repo := NewInMemoryRepository(map[string]Listing{
		"a":    {Name: "A", Price: dec("10.00")},
		"ball": {Name: "Ball", Price: dec("2.50")},
	})
	return NewService(repo, nil), repo
}

func TestService_AddWithoutCredentialNeverPosts(t *testing.T) {
	svc, repo := newTestService()

	for _, tokens := range []token.Reader{nil, token.NewMemoryStore(""), token.Static("")} {
		_, err := svc.Add(context.Background(), tokens, "a", 1)
		assert.ErrorIs(t, err, ErrLoginRequired)
		assert.Equal(t, LoginRequiredMessage, Message(err, AddFailedMessage))
	}
	assert.Zero(t, repo.Mutations())
	assert.Zero(t, svc.Stores().Len())
}

func TestService_AddReloadsFromServer(t *testing.T) {
	svc, _ := newTestService()
	tokens := token.NewMemoryStore("alice")

	_, err := svc.Add(context.Background(), tokens, "a", 2)
	require.NoError(t, err)
	state, err := svc.Add(context.Background(), tokens, "ball", 1)
	require.NoError(t, err)

	assert.Equal(t, StatusReady, state.Status)
	assert.Equal(t, 3, state.Count)
	assert.True(t, state.Total.Equal(dec("22.50")))

	again := svc.Load(context.Background(), tokens)
	assert.Equal(t, state.Count, again.Count)
	assert.True(t, state.Total.Equal(again.Total))
}

func TestService_AddRejected(t *testing.T) {
	svc, repo := newTestService()
	tokens := token.NewMemoryStore("alice")

	_, err := svc.Add(context.Background(), tokens, "missing", 1)
	require.Error(t, err)
	assert.Equal(t, "Product not found", Message(err, AddFailedMessage))

	repo.AddErr = api.ErrNetwork
	_, err = svc.Add(context.Background(), tokens, "a", 1)
	assert.Equal(t, AddFailedMessage, Message(err, AddFailedMessage))

	_, err = svc.Add(context.Background(), tokens, "a", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestService_CartsArePerCredential(t *testing.T) {
	svc, _ := newTestService()
	alice := token.NewMemoryStore("alice")
	bob := token.NewMemoryStore("bob")

	_, err := svc.Add(context.Background(), alice, "a", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, svc.Load(context.Background(), alice).Count)
	assert.Equal(t, 0, svc.Load(context.Background(), bob).Count)
	assert.Equal(t, 2, svc.Stores().Len())

	svc.Forget("alice")
	assert.Equal(t, 1, svc.Stores().Len())
}

func TestService_RemoveAndClear(t *testing.T) {
	svc, _ := newTestService()
	tokens := token.NewMemoryStore("alice")
	_, err := svc.Add(context.Background(), tokens, "a", 1)
	require.NoError(t, err)
	state, err := svc.Add(context.Background(), tokens, "ball", 4)
	require.NoError(t, err)

	state, err = svc.Remove(context.Background(), tokens, state.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 4, state.Count)
	assert.True(t, state.Total.Equal(dec("10")))

	state, err = svc.Clear(context.Background(), tokens)
	require.NoError(t, err)
	assert.Zero(t, state.Count)
	assert.True(t, state.Total.IsZero())

	_, err = svc.Remove(context.Background(), tokens, 12345)
	assert.Equal(t, "Not found.", Message(err, RemoveFailedMessage))
}

func TestService_Update(t *testing.T) {
	svc, repo := newTestService()
	tokens := token.NewMemoryStore("alice")
	state, err := svc.Add(context.Background(), tokens, "ball", 1)
	require.NoError(t, err)
	id := state.Items[0].ID

	state, err = svc.Update(context.Background(), tokens, id, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, state.Count)
	assert.True(t, state.Total.Equal(dec("10")))

	before := repo.Mutations()
	_, err = svc.Update(context.Background(), tokens, id, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = svc.Update(context.Background(), nil, id, 2)
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Equal(t, before, repo.Mutations())

	_, err = svc.Update(context.Background(), tokens, 999, 2)
	assert.Equal(t, "Not found.", Message(err, UpdateFailedMessage))
}

func TestStores_EvictIdle(t *testing.T) {
	now := time.Unix(1000, 0)
	stores := NewStores(NewInMemoryRepository(nil), time.Hour, nil)
	stores.now = func() time.Time { return now }

	alice := stores.For("alice")
	stores.For("bob")
	assert.Equal(t, 2, stores.Len())

	now = now.Add(50 * time.Minute)
	assert.Same(t, alice, stores.For("alice"), "a store in use is kept")

	now = now.Add(20 * time.Minute)
	stores.For("carol")
	assert.Equal(t, 2, stores.Len(), "bob idled out")
	assert.Same(t, alice, stores.For("alice"))

	now = now.Add(2 * time.Hour)
	stores.For("dave")
	assert.Equal(t, 1, stores.Len())
	assert.NotSame(t, alice, stores.For("alice"))
}

func TestStores_NoIdleTTLKeepsUntilDropped(t *testing.T) {
	now := time.Unix(1000, 0)
	stores := NewStores(NewInMemoryRepository(nil), 0, nil)
	stores.now = func() time.Time { return now }

	stores.For("alice")
	now = now.Add(1000 * time.Hour)
	stores.For("bob")
	assert.Equal(t, 2, stores.Len())

	stores.Drop("alice")
	assert.Equal(t, 1, stores.Len())
}

func TestService_LoadFailureKeepsCart(t *testing.T) {
	svc, repo := newTestService()
	tokens := token.NewMemoryStore("alice")
	_, err := svc.Add(context.Background(), tokens, "a", 2)
	require.NoError(t, err)

	repo.FetchErr = api.ErrNetwork
	state := svc.Load(context.Background(), tokens)
	assert.Equal(t, 2, state.Count)
}

func TestAPIRepository_Endpoints(t *testing.T) {
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token alice", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == cartEndpoint:
			_, _ = w.Write([]byte(`{"items":[{"id":1,"product_name":"A","product_slug":"a","price":"10.00","quantity":2,"total_price":"20.00"}]}`))
		case r.Method == http.MethodPost && r.URL.Path == addEndpoint:
			posts.Add(1)
			var body addRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body.Quantity > 5 {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"detail":"Only 5 left in stock"}`))
				return
			}
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPatch && r.URL.Path == "/api/cart/item/1/":
			var body updateRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 3, body.Quantity)
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/cart/item/1/":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == clearEndpoint:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	svc := NewService(NewAPIRepository(api.NewClient(srv.URL, 0, nil)), nil)
	tokens := token.NewMemoryStore("alice")

	state := svc.Load(context.Background(), tokens)
	assert.Equal(t, 2, state.Count)
	assert.True(t, state.Total.Equal(dec("20")))

	state, err := svc.Add(context.Background(), tokens, "a", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Count, "state comes from the reload")

	_, err = svc.Add(context.Background(), tokens, "a", 9)
	assert.Equal(t, "Only 5 left in stock", Message(err, AddFailedMessage))
	assert.EqualValues(t, 2, posts.Load())

	_, err = svc.Update(context.Background(), tokens, 1, 3)
	require.NoError(t, err)
	_, err = svc.Remove(context.Background(), tokens, 1)
	require.NoError(t, err)
	_, err = svc.Clear(context.Background(), tokens)
	require.NoError(t, err)
}
