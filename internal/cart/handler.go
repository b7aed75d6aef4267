package cart

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/football-storefront/internal/auth"
	"github.com/wichananm65/football-storefront/internal/page"
	"github.com/wichananm65/football-storefront/internal/token"
)

const AddedMessage = "Product added to the cart"

// Handler exposes the cart pages and form actions.
type Handler struct {
	service *Service
	tokens  token.Provider
	logger  *zap.Logger
}

func NewHandler(s *Service, tokens token.Provider, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: s, tokens: tokens, logger: logger}
}

// RegisterPublicRoutes registers routes that answer anonymous users
// themselves, with a prompt to log in.
func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Post("/cart/add/:slug", h.add)
}

// RegisterProtectedRoutes must be registered behind auth.Guard.
func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/cart", h.show)
	app.Post("/cart/item/:id/update", h.update)
	app.Post("/cart/item/:id/delete", h.remove)
	app.Post("/cart/clear", h.clear)
}

// formQuantity reads the quantity field, 1 when absent. Garbage parses as 0
// and is rejected by the service.
func formQuantity(c *fiber.Ctx) int {
	raw := c.FormValue("quantity")
	if raw == "" {
		return 1
	}
	qty, _ := strconv.Atoi(raw)
	return qty
}

func (h *Handler) add(c *fiber.Ctx) error {
	qty := formQuantity(c)

	_, err := h.service.Add(c.UserContext(), h.tokens.For(c), c.Params("slug"), qty)
	switch {
	case err == nil:
		page.SetNotice(c, AddedMessage)
	case errors.Is(err, ErrLoginRequired):
		page.SetNotice(c, LoginRequiredMessage)
		return c.Redirect("/login", fiber.StatusSeeOther)
	default:
		page.SetNotice(c, Message(err, AddFailedMessage))
	}
	return page.Back(c, "/")
}

func (h *Handler) show(c *fiber.Ctx) error {
	tokens := h.tokens.For(c)
	if _, ok := token.Present(tokens); !ok {
		page.SetNotice(c, auth.LoginRequiredMessage)
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	state := h.service.Load(c.UserContext(), tokens)
	return page.Render(c, page.Layout{
		Title:     "Cart",
		Controls:  auth.Sync(tokens),
		Notice:    page.TakeNotice(c),
		Body:      RenderCart(state),
		CartCount: state.Count,
	})
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).SendString("invalid item id")
	}
	if _, err := h.service.Update(c.UserContext(), h.tokens.For(c), id, formQuantity(c)); err != nil {
		page.SetNotice(c, Message(err, UpdateFailedMessage))
	}
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

func (h *Handler) remove(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).SendString("invalid item id")
	}
	if _, err := h.service.Remove(c.UserContext(), h.tokens.For(c), id); err != nil {
		page.SetNotice(c, Message(err, RemoveFailedMessage))
	}
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

func (h *Handler) clear(c *fiber.Ctx) error {
	if _, err := h.service.Clear(c.UserContext(), h.tokens.For(c)); err != nil {
		page.SetNotice(c, Message(err, ClearFailedMessage))
	}
	return c.Redirect("/cart", fiber.StatusSeeOther)
}
