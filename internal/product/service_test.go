package product

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/wichananm65/football-storefront/internal/api"
	"github.com/wichananm65/football-storefront/internal/token"
)

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, f := range strings.Fields(a.Val) {
				if f == class {
					return true
				}
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// cards returns the slug of every rendered product card, in document order.
func cards(t *testing.T, fragment string) []string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(fragment))
	require.NoError(t, err)

	slugs := []string{}
	var inCard func(n *html.Node) string
	inCard = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == "a" {
			return strings.TrimPrefix(attr(n, "href"), "/product/")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if s := inCard(c); s != "" {
				return s
			}
		}
		return ""
	}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "product-card") {
			slugs = append(slugs, inCard(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return slugs
}

func textOf(t *testing.T, fragment string) string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(fragment))
	require.NoError(t, err)
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(sb.String())
}

func sample() []Product {
	img := "https://cdn.example.com/boot.png"
	return []Product{
		{Slug: "boot-a", Name: "Boot A", Price: decimal.RequireFromString("10.5"), Image: &img, Category: 5, IsPublished: true},
		{Slug: "ball-b", Name: "Ball B", Price: decimal.RequireFromString("3"), Category: 6, IsPublished: true},
		{Slug: "hidden", Name: "Hidden", Price: decimal.RequireFromString("1"), Category: 5, IsPublished: false},
		{Slug: "boot-c", Name: "Boot C", Price: decimal.RequireFromString("7.25"), Category: 5, IsPublished: true},
	}
}

func TestRenderProducts_OneCardPerProduct(t *testing.T) {
	for n := 0; n <= 4; n++ {
		in := sample()[:n]
		out := string(RenderProducts(in))
		if n == 0 {
			assert.Equal(t, EmptyMessage, textOf(t, out))
			assert.Empty(t, cards(t, out))
			continue
		}
		assert.Len(t, cards(t, out), n)
	}
}

func TestRenderProducts_DoesNotMutateInput(t *testing.T) {
	in := sample()
	before := append([]Product(nil), in...)
	RenderProducts(in)
	assert.Equal(t, before, in)
}

func TestRenderProducts_CardContent(t *testing.T) {
	out := string(RenderProducts(sample()[:2]))

	assert.Contains(t, out, `src="https://cdn.example.com/boot.png"`)
	assert.Contains(t, out, `src="`+PlaceholderImage+`"`, "missing image falls back to placeholder")
	assert.Contains(t, out, "10.50 ₽")
	assert.Contains(t, out, `action="/cart/add/boot-a"`)
	assert.Contains(t, out, `action="/cart/add/ball-b"`)
}

func TestLoad_OnlyPublished(t *testing.T) {
	svc := NewService(NewInMemoryRepository(sample()), nil, nil)

	out := string(svc.Load(context.Background(), nil))

	assert.Equal(t, []string{"boot-a", "ball-b", "boot-c"}, cards(t, out))
	for _, p := range svc.Catalog().All() {
		assert.True(t, p.IsPublished)
	}
}

func TestLoad_FailureKeepsCatalog(t *testing.T) {
	repo := NewInMemoryRepository(sample())
	svc := NewService(repo, nil, nil)
	svc.Load(context.Background(), nil)

	repo.Err = errors.New("down")
	out := string(svc.Load(context.Background(), nil))

	assert.Equal(t, LoadFailedMessage, textOf(t, out))
	assert.Len(t, svc.Catalog().All(), 3)
}

func TestFilterCategory_ExactMatchInOrder(t *testing.T) {
	repo := NewInMemoryRepository(sample())
	svc := NewService(repo, nil, nil)
	svc.Load(context.Background(), nil)

	out := string(svc.FilterCategory(context.Background(), nil, 5))

	assert.Equal(t, []string{"boot-a", "boot-c"}, cards(t, out))
	assert.Equal(t, 1, repo.Calls(), "filtering must not re-fetch")
}

func TestFilterCategory_LoadsOnceWhenEmpty(t *testing.T) {
	repo := NewInMemoryRepository(sample())
	svc := NewService(repo, nil, nil)

	svc.FilterCategory(context.Background(), nil, 6)
	out := string(svc.FilterCategory(context.Background(), nil, 6))

	assert.Equal(t, []string{"ball-b"}, cards(t, out))
	assert.Equal(t, 1, repo.Calls())
}

func TestFilterCategory_NoMatch(t *testing.T) {
	svc := NewService(NewInMemoryRepository(sample()), nil, nil)
	svc.Load(context.Background(), nil)

	assert.Equal(t, EmptyMessage, textOf(t, string(svc.FilterCategory(context.Background(), nil, 99))))
}

func TestGet_UnpublishedIsNotFound(t *testing.T) {
	svc := NewService(NewInMemoryRepository(sample()), nil, nil)

	_, err := svc.Get(context.Background(), nil, "hidden")
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := svc.Get(context.Background(), nil, "boot-c")
	require.NoError(t, err)
	assert.Equal(t, "Boot C", p.Name)
}

func TestAPIRepository_MissingResultsIsEmpty(t *testing.T) {
	for _, body := range []string{`{"count":0}`, `{"results":null}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, listEndpoint, r.URL.Path)
			_, _ = w.Write([]byte(body))
		}))

		svc := NewService(NewAPIRepository(api.NewClient(srv.URL, 0, nil)), nil, nil)
		out := string(svc.Load(context.Background(), nil))
		srv.Close()

		assert.Equal(t, EmptyMessage, textOf(t, out), body)
	}
}

func TestAPIRepository_GetBySlug(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/product/boot-a/" {
			_, _ = w.Write([]byte(`{"slug":"boot-a","name":"Boot A","price":"10.50","image":null,"category":5,"is_published":true}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found."}`))
	}))
	defer srv.Close()

	repo := NewAPIRepository(api.NewClient(srv.URL, 0, nil))

	p, err := repo.GetBySlug(context.Background(), nil, "boot-a")
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("10.5")))
	assert.Equal(t, PlaceholderImage, p.ImageURL())

	_, err = repo.GetBySlug(context.Background(), nil, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAPIRepository_ForwardsCredential(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	svc := NewService(NewAPIRepository(api.NewClient(srv.URL, 0, nil)), nil, nil)
	_, err := svc.Refresh(context.Background(), token.NewMemoryStore("tok-1"))
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background(), token.NewMemoryStore(""))
	require.NoError(t, err)

	assert.Equal(t, []string{"Token tok-1", ""}, got)
}
