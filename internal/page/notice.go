package page

import (
	"encoding/base64"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const noticeCookie = "notice"

type secureKey struct{}

// SecureCookies marks the cookies this package writes as Secure for every
// request passing through it.
func SecureCookies(secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(secureKey{}, secure)
		return c.Next()
	}
}

func isSecure(c *fiber.Ctx) bool {
	v, _ := c.Locals(secureKey{}).(bool)
	return v
}

// SetNotice stores a one-shot message shown on the next rendered page.
func SetNotice(c *fiber.Ctx, msg string) {
	if msg == "" {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:        noticeCookie,
		Value:       base64.RawURLEncoding.EncodeToString([]byte(msg)),
		Path:        "/",
		HTTPOnly:    true,
		Secure:      isSecure(c),
		SameSite:    fiber.CookieSameSiteLaxMode,
		SessionOnly: true,
	})
}

// TakeNotice returns the pending message, if any, and clears it.
func TakeNotice(c *fiber.Ctx) string {
	raw := c.Cookies(noticeCookie)
	if raw == "" {
		return ""
	}
	// same path as SetNotice, or the browser keeps the original
	c.Cookie(&fiber.Cookie{
		Name:     noticeCookie,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   isSecure(c),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return ""
	}
	return string(b)
}

// Back redirects to the form's redirect_to, then the referring page, then
// fallback. Only same-site paths are followed.
func Back(c *fiber.Ctx, fallback string) error {
	for _, candidate := range []string{c.FormValue("redirect_to"), c.Get(fiber.HeaderReferer)} {
		if p, ok := localPath(candidate); ok {
			return c.Redirect(p, fiber.StatusSeeOther)
		}
	}
	return c.Redirect(fallback, fiber.StatusSeeOther)
}

func localPath(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if unsafePath(raw) {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") || unsafePath(u.Path) {
		return "", false
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery, true
	}
	return u.Path, true
}

// unsafePath reports backslashes, which browsers read as slashes, and
// control characters.
func unsafePath(p string) bool {
	return strings.ContainsFunc(p, func(r rune) bool { return r == '\\' || r < 0x20 || r == 0x7f })
}
