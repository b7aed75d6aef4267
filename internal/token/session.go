package token

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRepository stores credentials server-side, keyed by session id.
type SessionRepository interface {
	Get(ctx context.Context, sid string) (string, error)
	Put(ctx context.Context, sid, token string, ttl time.Duration) error
	Delete(ctx context.Context, sid string) error
}

// SessionProvider keeps only a signed session id in the cookie and the
// credential itself in a SessionRepository.
type SessionProvider struct {
	signer *Signer
	repo   SessionRepository
	secure bool
	logger *zap.Logger
}

func NewSessionProvider(signer *Signer, repo SessionRepository, secure bool, logger *zap.Logger) *SessionProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionProvider{signer: signer, repo: repo, secure: secure, logger: logger}
}

func (p *SessionProvider) For(c *fiber.Ctx) Store {
	return &SessionStore{c: c, p: p}
}

// SessionStore is the per-request view of a server-side session.
type SessionStore struct {
	c *fiber.Ctx
	p *SessionProvider

	sid    string
	cached *string
}

func (s *SessionStore) ctx() context.Context {
	return s.c.UserContext()
}

func (s *SessionStore) sessionID() string {
	if s.sid == "" {
		if raw := s.c.Cookies(Key); raw != "" {
			if v, err := s.p.signer.Parse(raw, claimSession); err == nil {
				s.sid = v
			}
		}
	}
	return s.sid
}

func (s *SessionStore) Get() (string, bool) {
	if s.cached != nil {
		return *s.cached, *s.cached != ""
	}
	tok := ""
	if sid := s.sessionID(); sid != "" {
		v, err := s.p.repo.Get(s.ctx(), sid)
		switch {
		case err == nil:
			tok = v
		case errors.Is(err, ErrNotFound):
		default:
			s.p.logger.Warn("session lookup failed", zap.String("sid", sid), zap.Error(err))
		}
	}
	s.cached = &tok
	return tok, tok != ""
}

func (s *SessionStore) Set(token string) error {
	if token == "" {
		return s.Clear()
	}
	sid := s.sessionID()
	if sid == "" {
		sid = uuid.NewString()
	}
	if err := s.p.repo.Put(s.ctx(), sid, token, s.p.signer.TTL()); err != nil {
		return err
	}
	signed, err := s.p.signer.Sign(claimSession, sid)
	if err != nil {
		return err
	}
	writeCookie(s.c, signed, s.p.signer.TTL(), s.p.secure)
	s.sid = sid
	s.cached = &token
	return nil
}

func (s *SessionStore) Clear() error {
	if sid := s.sessionID(); sid != "" {
		if err := s.p.repo.Delete(s.ctx(), sid); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	expireCookie(s.c, s.p.secure)
	s.sid = ""
	empty := ""
	s.cached = &empty
	return nil
}

type memorySession struct {
	token     string
	expiresAt time.Time
}

// InMemoryRepository is a SessionRepository for tests and single-process deployments.
type InMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{sessions: make(map[string]memorySession), now: time.Now}
}

func (r *InMemoryRepository) Get(_ context.Context, sid string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sid]
	if !ok || (!s.expiresAt.IsZero() && !r.now().Before(s.expiresAt)) {
		return "", ErrNotFound
	}
	return s.token, nil
}

func (r *InMemoryRepository) Put(_ context.Context, sid, token string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := memorySession{token: token}
	if ttl > 0 {
		s.expiresAt = r.now().Add(ttl)
	}
	r.sessions[sid] = s
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, sid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sid]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, sid)
	return nil
}
