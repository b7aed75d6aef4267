package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wichananm65/football-storefront/internal/cart"
	"github.com/wichananm65/football-storefront/internal/config"
	"github.com/wichananm65/football-storefront/internal/token"
)

// fakeShop serves the catalog, a login and a cart that counts adds.
func fakeShop(t *testing.T) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	qty := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authed := r.Header.Get("Authorization") == "Token tok-cli"
		switch r.URL.Path {
		case "/api/v1/category/":
			_, _ = w.Write([]byte(`[{"id":5,"title":"Boots"},{"id":6,"title":"Balls"}]`))
		case "/api/v1/product/":
			_, _ = w.Write([]byte(`{"results":[
				{"slug":"boot-a","name":"Boot A","price":"10.00","category":5,"is_published":true},
				{"slug":"ball-b","name":"Ball B","price":"3.00","category":6,"is_published":true},
				{"slug":"draft","name":"Draft","price":"1.00","category":5,"is_published":false}]}`))
		case "/api/v1/product/boot-a/":
			_, _ = w.Write([]byte(`{"slug":"boot-a","name":"Boot A","price":"10.00","category":5,"is_published":true,"description":"Firm ground boot"}`))
		case "/api/auth/token/login/":
			_, _ = w.Write([]byte(`{"auth_token":"tok-cli"}`))
		case "/api/cart/item/add/":
			if !authed {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			mu.Lock()
			qty++
			mu.Unlock()
			w.WriteHeader(http.StatusCreated)
		case "/api/cart/item/1/":
			if !authed || r.Method != http.MethodPatch {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			var body struct {
				Quantity int `json:"quantity"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			qty = body.Quantity
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		case "/api/cart/":
			if !authed {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			mu.Lock()
			n := qty
			mu.Unlock()
			if n == 0 {
				_, _ = w.Write([]byte(`{"items":[]}`))
				return
			}
			fmt.Fprintf(w, `{"items":[{"id":1,"product_name":"Boot A","product_slug":"boot-a","price":"10.00","quantity":%d,"total_price":"%d.00"}]}`, n, n*10)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupEnv points the globals at a fake shop and a temporary token file.
func setupEnv(t *testing.T) string {
	t.Helper()
	cfg := config.Default()
	cfg.APIBaseURL = fakeShop(t).URL
	cfg.TokenFile = filepath.Join(t.TempDir(), "token")

	logger = zap.NewNop()
	env = newEnv(cfg, token.NewFileStore(cfg.TokenFile), logger)
	t.Cleanup(func() {
		env = nil
		productsCategory = 0
		addQuantity = 1
	})
	return cfg.TokenFile
}

func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	err := fn(cmd, args)
	return buf.String(), err
}

func TestCategoriesCmd(t *testing.T) {
	setupEnv(t)

	out, err := run(t, runCategories)
	require.NoError(t, err)
	assert.Contains(t, out, "Boots")
	assert.Contains(t, out, "Balls")
}

func TestProductsCmd(t *testing.T) {
	setupEnv(t)

	out, err := run(t, runProducts)
	require.NoError(t, err)
	assert.Contains(t, out, "boot-a")
	assert.Contains(t, out, "ball-b")
	assert.NotContains(t, out, "draft")
	assert.Contains(t, out, "10.00 ₽")

	productsCategory = 6
	out, err = run(t, runProducts)
	require.NoError(t, err)
	assert.Contains(t, out, "ball-b")
	assert.NotContains(t, out, "boot-a")

	productsCategory = 99
	out, err = run(t, runProducts)
	require.NoError(t, err)
	assert.Contains(t, out, "No products found")
}

func TestProductCmd(t *testing.T) {
	setupEnv(t)

	out, err := run(t, runProduct, "boot-a")
	require.NoError(t, err)
	assert.Contains(t, out, "Firm ground boot")

	_, err = run(t, runProduct, "nope")
	assert.Error(t, err)
}

func TestAddWithoutLogin(t *testing.T) {
	setupEnv(t)

	_, err := run(t, runAdd, "boot-a")
	require.Error(t, err)
	assert.Equal(t, cart.LoginRequiredMessage, err.Error())

	_, err = run(t, runCart)
	assert.Error(t, err)
}

func TestLoginAddCartLogout(t *testing.T) {
	tokenFile := setupEnv(t)

	out, err := run(t, runLogin, "alice", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice")
	assert.Equal(t, "tok-cli", readToken(t, tokenFile))

	out, err = run(t, runCart)
	require.NoError(t, err)
	assert.Contains(t, out, cart.EmptyMessage)

	addQuantity = 1
	out, err = run(t, runAdd, "boot-a")
	require.NoError(t, err)
	assert.Contains(t, out, cart.AddedMessage)
	assert.Contains(t, out, "items: 1, total: 10.00 ₽")

	_, err = run(t, runAdd, "boot-a")
	require.NoError(t, err)
	out, err = run(t, runCart)
	require.NoError(t, err)
	assert.Contains(t, out, "items: 2, total: 20.00 ₽")

	out, err = run(t, runCartUpdate, "1", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "items: 5, total: 50.00 ₽")

	_, err = run(t, runCartUpdate, "1", "0")
	require.Error(t, err)
	assert.Equal(t, "Quantity must be at least 1", err.Error())

	out, err = run(t, runLogout)
	require.NoError(t, err)
	assert.Contains(t, out, "You have logged out")
	_, ok := token.NewFileStore(tokenFile).Get()
	assert.False(t, ok)
}

func readToken(t *testing.T, path string) string {
	t.Helper()
	tok, ok := token.NewFileStore(path).Get()
	require.True(t, ok)
	return tok
}
