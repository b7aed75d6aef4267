package token

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Provider hands out a Store bound to one browser request.
type Provider interface {
	For(c *fiber.Ctx) Store
}

// CookieProvider keeps the credential itself in a signed cookie.
type CookieProvider struct {
	signer *Signer
	secure bool
}

func NewCookieProvider(signer *Signer, secure bool) *CookieProvider {
	return &CookieProvider{signer: signer, secure: secure}
}

func (p *CookieProvider) For(c *fiber.Ctx) Store {
	return &CookieStore{c: c, signer: p.signer, secure: p.secure}
}

// CookieStore reads and writes the credential cookie of a single request.
// Writes are visible to later reads within the same request.
type CookieStore struct {
	c      *fiber.Ctx
	signer *Signer
	secure bool

	cached *string
}

func (s *CookieStore) Get() (string, bool) {
	if s.cached == nil {
		tok := ""
		if raw := s.c.Cookies(Key); raw != "" {
			if v, err := s.signer.Parse(raw, claimToken); err == nil {
				tok = v
			}
		}
		s.cached = &tok
	}
	return *s.cached, *s.cached != ""
}

func (s *CookieStore) Set(token string) error {
	if token == "" {
		return s.Clear()
	}
	signed, err := s.signer.Sign(claimToken, token)
	if err != nil {
		return err
	}
	writeCookie(s.c, signed, s.signer.TTL(), s.secure)
	s.cached = &token
	return nil
}

func (s *CookieStore) Clear() error {
	expireCookie(s.c, s.secure)
	empty := ""
	s.cached = &empty
	return nil
}

func writeCookie(c *fiber.Ctx, value string, ttl time.Duration, secure bool) {
	cookie := &fiber.Cookie{
		Name:     Key,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if ttl > 0 {
		cookie.Expires = time.Now().Add(ttl)
	} else {
		cookie.SessionOnly = true
	}
	c.Cookie(cookie)
}

// expireCookie deletes the credential cookie under the same path it was
// written with.
func expireCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     Key,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
