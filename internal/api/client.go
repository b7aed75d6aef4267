package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/football-storefront/internal/token"
)

// Client talks to the storefront REST API. Every call attaches
// `Authorization: Token <credential>` only when tokens yields one.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fiber.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    fiber.AcquireClient(),
		logger:  logger,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Get issues GET baseURL+endpoint and decodes a 2xx JSON body into out.
func (c *Client) Get(ctx context.Context, tokens token.Reader, endpoint string, out any) error {
	return c.do(ctx, fiber.MethodGet, tokens, endpoint, nil, out)
}

// Post issues POST with payload encoded as JSON and decodes a 2xx body into out.
func (c *Client) Post(ctx context.Context, tokens token.Reader, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", endpoint, err)
	}
	return c.do(ctx, fiber.MethodPost, tokens, endpoint, body, out)
}

// Patch issues PATCH with payload encoded as JSON and decodes a 2xx body into out.
func (c *Client) Patch(ctx context.Context, tokens token.Reader, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", endpoint, err)
	}
	return c.do(ctx, fiber.MethodPatch, tokens, endpoint, body, out)
}

func (c *Client) Delete(ctx context.Context, tokens token.Reader, endpoint string) error {
	return c.do(ctx, fiber.MethodDelete, tokens, endpoint, nil, nil)
}

func (c *Client) do(ctx context.Context, method string, tokens token.Reader, endpoint string, body []byte, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout, err := c.effectiveTimeout(ctx)
	if err != nil {
		return err
	}

	url := c.baseURL + endpoint
	var a *fiber.Agent
	switch method {
	case fiber.MethodPost:
		a = c.http.Post(url)
	case fiber.MethodPatch:
		a = c.http.Patch(url)
	case fiber.MethodDelete:
		a = c.http.Delete(url)
	default:
		a = c.http.Get(url)
	}
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if tok, ok := token.Present(tokens); ok {
		a.Set(fiber.HeaderAuthorization, "Token "+tok)
	}
	if body != nil {
		a.ContentType(fiber.MIMEApplicationJSON)
		a.Body(body)
	}
	if timeout > 0 {
		a.Timeout(timeout)
	}

	start := time.Now()
	code, resp, errs := a.Bytes()
	if len(errs) > 0 {
		c.logger.Debug("api request failed",
			zap.String("method", method), zap.String("endpoint", endpoint), zap.Errors("errors", errs))
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, endpoint, errs[0])
	}
	c.logger.Debug("api request",
		zap.String("method", method), zap.String("endpoint", endpoint),
		zap.Int("status", code), zap.Duration("latency", time.Since(start)))

	if code < 200 || code > 299 {
		return newHTTPError(code, resp)
	}
	if out == nil || len(bytes.TrimSpace(resp)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformed, method, endpoint, err)
	}
	return nil
}

// effectiveTimeout merges the configured timeout with the ctx deadline.
func (c *Client) effectiveTimeout(ctx context.Context) (time.Duration, error) {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return 0, context.DeadlineExceeded
		}
		if timeout == 0 || left < timeout {
			timeout = left
		}
	}
	return timeout, nil
}
