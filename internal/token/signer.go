package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claim names carried by the signed cookie.
const (
	claimToken   = "tok"
	claimSession = "sid"
)

// Signer wraps cookie payloads in HS256 JWTs so a browser cannot forge them.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSigner returns a signer for secret. An empty secret gets a random
// per-process key, which invalidates cookies on restart.
func NewSigner(secret string, ttl time.Duration) *Signer {
	key := []byte(secret)
	if len(key) == 0 {
		key = randomKey()
	}
	return &Signer{key: key, ttl: ttl, now: time.Now}
}

// Key returns the HMAC key, for middleware that verifies the same cookie.
func (s *Signer) Key() []byte { return s.key }

func (s *Signer) TTL() time.Duration { return s.ttl }

func (s *Signer) Sign(claim, value string) (string, error) {
	claims := jwt.MapClaims{
		claim: value,
		"iat": s.now().Unix(),
	}
	if s.ttl > 0 {
		claims["exp"] = s.now().Add(s.ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Parse verifies raw and returns the string value of claim.
func (s *Signer) Parse(raw, claim string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return "", fmt.Errorf("invalid token")
	}
	v, ok := claims[claim].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("claim %q missing", claim)
	}
	return v, nil
}

func randomKey() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return []byte(hex.EncodeToString(b))
}
