package storefront

import (
	"context"
	"html/template"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/football-storefront/internal/auth"
	"github.com/wichananm65/football-storefront/internal/cart"
	"github.com/wichananm65/football-storefront/internal/category"
	"github.com/wichananm65/football-storefront/internal/page"
	"github.com/wichananm65/football-storefront/internal/product"
	"github.com/wichananm65/football-storefront/internal/token"
)

// Regions are the independently loaded parts of a catalog page.
type Regions struct {
	Controls   page.Controls
	Categories template.HTML
	Products   template.HTML
	CartCount  int
}

// Loader assembles catalog pages. Each region degrades on its own, so the
// branches never fail.
type Loader struct {
	categories *category.Service
	products   *product.Service
	carts      *cart.Service
	logger     *zap.Logger
}

func NewLoader(categories *category.Service, products *product.Service, carts *cart.Service, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{categories: categories, products: products, carts: carts, logger: logger}
}

// Home runs auth sync, the cart load, the category load and the product load
// concurrently.
func (l *Loader) Home(ctx context.Context, tokens token.Reader) Regions {
	return l.load(ctx, tokens, func(ctx context.Context, tokens token.Reader) template.HTML {
		return l.products.Load(ctx, tokens)
	})
}

// Category is Home with the product region filtered to categoryID from the
// in-memory catalog.
func (l *Loader) Category(ctx context.Context, tokens token.Reader, categoryID int) Regions {
	return l.load(ctx, tokens, func(ctx context.Context, tokens token.Reader) template.HTML {
		return l.products.FilterCategory(ctx, tokens, categoryID)
	})
}

func (l *Loader) load(ctx context.Context, tokens token.Reader, products func(context.Context, token.Reader) template.HTML) Regions {
	// request-bound stores are not safe for concurrent reads
	tok, _ := token.Present(tokens)
	held := token.Static(tok)

	var r Regions
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.Controls = auth.Sync(held)
		return nil
	})
	g.Go(func() error {
		r.CartCount = l.cartCount(gctx, held)
		return nil
	})
	g.Go(func() error {
		r.Categories = l.categories.Load(gctx, held)
		return nil
	})
	g.Go(func() error {
		r.Products = products(gctx, held)
		return nil
	})

	_ = g.Wait()
	return r
}

// cartCount is the item count of the visitor's cart, 0 when anonymous.
func (l *Loader) cartCount(ctx context.Context, tokens token.Reader) int {
	if l.carts == nil {
		return 0
	}
	if _, ok := token.Present(tokens); !ok {
		return 0
	}
	return l.carts.Load(ctx, tokens).Count
}
