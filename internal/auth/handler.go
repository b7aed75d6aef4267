package auth

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/football-storefront/internal/page"
	"github.com/wichananm65/football-storefront/internal/token"
)

var loginTmpl = template.Must(template.New("login").Parse(`<form class="login" method="post" action="/login">
  <label>Username <input name="username" value="{{.}}" autocomplete="username" required></label>
  <label>Password <input type="password" name="password" autocomplete="current-password" required></label>
  <button type="submit">Log in</button>
</form>`))

// Handler serves the login form and the login and logout actions.
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

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/login", h.loginForm)
	app.Post("/login", h.login)
	app.Post("/logout", h.logout)
}

func (h *Handler) loginForm(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := loginTmpl.Execute(&buf, c.Query("username")); err != nil {
		return err
	}
	return page.Render(c, page.Layout{
		Title:    "Log in",
		Controls: Sync(h.tokens.For(c)),
		Notice:   page.TakeNotice(c),
		Body:     template.HTML(buf.String()),
	})
}

func (h *Handler) login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	err := h.service.Login(c.UserContext(), h.tokens.For(c), username, c.FormValue("password"))
	if err != nil {
		h.logger.Info("login failed", zap.String("username", username), zap.Error(err))
		page.SetNotice(c, Message(err))
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) logout(c *fiber.Ctx) error {
	msg, err := h.service.Logout(h.tokens.For(c))
	if err != nil {
		h.logger.Error("logout", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("logout failed")
	}
	page.SetNotice(c, msg)
	return c.Redirect("/", fiber.StatusSeeOther)
}
