package auth

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"

	"github.com/wichananm65/football-storefront/internal/page"
	"github.com/wichananm65/football-storefront/internal/token"
)

const LoginRequiredMessage = "Please log in first"

// Guard only lets through requests carrying a valid credential cookie.
// Everyone else is sent to the login page.
func Guard(signer *token.Signer) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  signer.Key(),
		TokenLookup: "cookie:" + token.Key,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			page.SetNotice(c, LoginRequiredMessage)
			return c.Redirect("/login", fiber.StatusSeeOther)
		},
	})
}
