package storefront

import (
	"errors"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/football-storefront/internal/auth"
	"github.com/wichananm65/football-storefront/internal/page"
	"github.com/wichananm65/football-storefront/internal/product"
	"github.com/wichananm65/football-storefront/internal/token"
)

const ProductNotFoundMessage = "Product not found"

// Handler serves the catalog pages: home, category filter and product detail.
type Handler struct {
	loader   *Loader
	products *product.Service
	tokens   token.Provider
	logger   *zap.Logger
}

func NewHandler(loader *Loader, products *product.Service, tokens token.Provider, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{loader: loader, products: products, tokens: tokens, logger: logger}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/", h.home)
	app.Get("/category/:id<int>", h.category)
	app.Get("/product/:slug", h.product)
}

func (h *Handler) home(c *fiber.Ctx) error {
	r := h.loader.Home(c.UserContext(), h.tokens.For(c))
	return page.Render(c, page.Layout{
		Controls:   r.Controls,
		Notice:     page.TakeNotice(c),
		Categories: r.Categories,
		Body:       r.Products,
		CartCount:  r.CartCount,
	})
}

func (h *Handler) category(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid category id")
	}
	r := h.loader.Category(c.UserContext(), h.tokens.For(c), id)
	return page.Render(c, page.Layout{
		Title:      "Category",
		Controls:   r.Controls,
		Notice:     page.TakeNotice(c),
		Categories: r.Categories,
		Body:       r.Products,
		CartCount:  r.CartCount,
	})
}

func (h *Handler) product(c *fiber.Ctx) error {
	tokens := h.tokens.For(c)
	p, err := h.products.Get(c.UserContext(), tokens, c.Params("slug"))
	if err != nil {
		layout := page.Layout{
			Title:    ProductNotFoundMessage,
			Controls: auth.Sync(tokens),
			Body:     template.HTML(`<p class="products-message">` + template.HTMLEscapeString(ProductNotFoundMessage) + `</p>`),
		}
		if errors.Is(err, product.ErrNotFound) {
			c.Status(fiber.StatusNotFound)
		} else {
			h.logger.Error("load product", zap.String("slug", c.Params("slug")), zap.Error(err))
			layout.Title = product.LoadFailedMessage
			layout.Body = product.RenderLoadFailed()
			c.Status(fiber.StatusBadGateway)
		}
		return page.Render(c, layout)
	}
	return page.Render(c, page.Layout{
		Title:     p.Name,
		Controls:  auth.Sync(tokens),
		Notice:    page.TakeNotice(c),
		Body:      product.RenderProduct(p),
		CartCount: h.loader.cartCount(c.UserContext(), tokens),
	})
}
