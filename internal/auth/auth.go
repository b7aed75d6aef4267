package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/wichananm65/football-storefront/internal/api"
	"github.com/wichananm65/football-storefront/internal/page"
	"github.com/wichananm65/football-storefront/internal/token"
)

const DefaultLoginEndpoint = "/api/auth/token/login/"

// LoggedOutMessage is shown once after logout.
const LoggedOutMessage = "You have logged out"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoToken            = errors.New("login reply carried no token")
)

// Sync derives control visibility from the credential. It is evaluated once
// per rendered page.
func Sync(tokens token.Reader) page.Controls {
	_, ok := token.Present(tokens)
	return page.Controls{ShowLogin: !ok, ShowLogout: ok}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginReply struct {
	AuthToken string `json:"auth_token"`
	Token     string `json:"token"`
}

// Service logs users in against the API and out locally.
type Service struct {
	client        *api.Client
	loginEndpoint string
	onLogout      func(credential string)
	logger        *zap.Logger
}

// NewService builds the auth service. onLogout, when set, runs with the
// credential being discarded.
func NewService(client *api.Client, loginEndpoint string, onLogout func(string), logger *zap.Logger) *Service {
	if loginEndpoint == "" {
		loginEndpoint = DefaultLoginEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, loginEndpoint: loginEndpoint, onLogout: onLogout, logger: logger}
}

// Login exchanges username and password for a credential and saves it.
func (s *Service) Login(ctx context.Context, tokens token.Store, username, password string) error {
	if username == "" || password == "" {
		return ErrInvalidCredentials
	}
	var reply loginReply
	err := s.client.Post(ctx, nil, s.loginEndpoint, loginRequest{Username: username, Password: password}, &reply)
	if err != nil {
		switch api.StatusOf(err) {
		case http.StatusBadRequest, http.StatusUnauthorized:
			return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return err
	}
	tok := reply.AuthToken
	if tok == "" {
		tok = reply.Token
	}
	if tok == "" {
		return ErrNoToken
	}
	if err := tokens.Set(tok); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	s.logger.Info("user logged in", zap.String("username", username))
	return nil
}

// Message turns a login error into text for the user.
func Message(err error) string {
	if errors.Is(err, ErrInvalidCredentials) {
		if detail, ok := api.DetailOf(err); ok {
			return detail
		}
		return "Invalid username or password"
	}
	return "Login failed, please try again later"
}

// Logout clears the credential and returns the notice to show.
func (s *Service) Logout(tokens token.Store) (string, error) {
	tok, had := token.Present(tokens)
	if err := tokens.Clear(); err != nil {
		return "", err
	}
	if had && s.onLogout != nil {
		s.onLogout(tok)
	}
	return LoggedOutMessage, nil
}
