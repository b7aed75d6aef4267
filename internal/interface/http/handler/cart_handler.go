package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/football-storefront/internal/cart"
	"github.com/wichananm65/football-storefront/internal/interface/presenter"
	"github.com/wichananm65/football-storefront/internal/token"
)

type errorResponse struct {
	Error string `json:"error"`
}

// CartHandler serves the cart as JSON for scripts and header widgets.
type CartHandler struct {
	service   *cart.Service
	tokens    token.Provider
	presenter *presenter.CartPresenter
}

func NewCartHandler(service *cart.Service, tokens token.Provider, presenter *presenter.CartPresenter) *CartHandler {
	return &CartHandler{service: service, tokens: tokens, presenter: presenter}
}

func (h *CartHandler) Summary(c *fiber.Ctx) error {
	tokens := h.tokens.For(c)
	if _, ok := token.Present(tokens); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "unauthorized"})
	}
	state := h.service.Load(c.UserContext(), tokens)
	return c.JSON(h.presenter.ToResponse(state))
}
