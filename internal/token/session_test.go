package token

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository_Expiry(t *testing.T) {
	repo := NewInMemoryRepository()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "s1", "abc", time.Minute))
	tok, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	now = now.Add(time.Minute)
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "s1"))
	assert.ErrorIs(t, repo.Delete(ctx, "s1"), ErrNotFound)
}

func TestSessionStore_KeepsCredentialServerSide(t *testing.T) {
	repo := NewInMemoryRepository()
	signer := NewSigner("secret", time.Hour)
	app := makeTokenApp(NewSessionProvider(signer, repo, false, nil))

	res, err := app.Test(httptest.NewRequest("POST", "/set/abc123", nil))
	require.NoError(t, err)
	ck := credentialCookie(t, res)

	sid, err := signer.Parse(ck.Value, claimSession)
	require.NoError(t, err, "cookie carries a signed session id")
	stored, err := repo.Get(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, "abc123", stored)

	assert.Equal(t, "abc123", getWith(t, app, ck))

	clearReq := httptest.NewRequest("POST", "/clear", nil)
	clearReq.AddCookie(ck)
	res, err = app.Test(clearReq)
	require.NoError(t, err)
	cleared := credentialCookie(t, res)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, "/", cleared.Path)

	_, err = repo.Get(context.Background(), sid)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "absent", getWith(t, app, ck), "stale cookie no longer resolves")
}

func TestSessionStore_ReusesSessionID(t *testing.T) {
	repo := NewInMemoryRepository()
	signer := NewSigner("secret", time.Hour)
	app := makeTokenApp(NewSessionProvider(signer, repo, false, nil))

	res, err := app.Test(httptest.NewRequest("POST", "/set/first", nil))
	require.NoError(t, err)
	first := credentialCookie(t, res)

	req := httptest.NewRequest("POST", "/set/second", nil)
	req.AddCookie(first)
	res, err = app.Test(req)
	require.NoError(t, err)
	second := credentialCookie(t, res)

	sid1, _ := signer.Parse(first.Value, claimSession)
	sid2, _ := signer.Parse(second.Value, claimSession)
	assert.Equal(t, sid1, sid2)

	b, _ := io.ReadAll(res.Body)
	assert.Equal(t, "second", string(b))
	assert.Equal(t, "second", getWith(t, app, &http.Cookie{Name: Key, Value: second.Value}))
}
