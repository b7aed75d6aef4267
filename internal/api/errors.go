package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNetwork means no response was received at all.
	ErrNetwork = errors.New("api: no response from server")
	// ErrMalformed means a 2xx response body could not be decoded.
	ErrMalformed = errors.New("api: malformed response")
)

// HTTPError is a non-2xx response. Detail holds the server's `detail`
// message, or the first field error of a validation reply.
type HTTPError struct {
	Status int
	Detail string
	Body   []byte
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

func newHTTPError(status int, body []byte) *HTTPError {
	return &HTTPError{Status: status, Detail: parseDetail(body), Body: body}
}

// parseDetail understands `{"detail": "..."}` and field errors such as
// `{"quantity": ["only 3 left"]}`.
func parseDetail(body []byte) string {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	if d, ok := m["detail"].(string); ok {
		return d
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			return v
		case []any:
			parts := make([]string, 0, len(v))
			for _, p := range v {
				if s, ok := p.(string); ok {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, " ")
			}
		}
	}
	return ""
}

// DetailOf returns the server-provided message carried by err, if any.
func DetailOf(err error) (string, bool) {
	var he *HTTPError
	if errors.As(err, &he) && he.Detail != "" {
		return he.Detail, true
	}
	return "", false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}
