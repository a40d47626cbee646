package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrModelNotFound       = errors.New("model not found")
	ErrRateLimited         = errors.New("rate limited")
	ErrBadRequest          = errors.New("bad request")
	ErrEmptyResponse       = errors.New("empty response")
	ErrNoCandidates        = errors.New("no model candidate succeeded")
	ErrMissingKey          = errors.New("api key not configured")
)

// APIError is a non-2xx answer from a provider. It unwraps to one of the
// sentinel errors above when the status code has a known meaning.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("api returned status %d", e.Status)
	}
	return fmt.Sprintf("api returned status %d: %s", e.Status, body)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusPaymentRequired:
		return ErrInsufficientBalance
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}

// retryable reports whether the next candidate in the list should be tried
// after err.
func retryable(err error) bool {
	return errors.Is(err, ErrModelNotFound) || errors.Is(err, ErrBadRequest) || errors.Is(err, ErrEmptyResponse)
}

// fatal reports errors after which no further request can succeed during
// this run.
func fatal(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInsufficientBalance) || errors.Is(err, ErrMissingKey)
}

// guidance returns an actionable hint for err, or "" when there is none.
func guidance(p Provider, err error) string {
	switch {
	case errors.Is(err, ErrMissingKey):
		return fmt.Sprintf("set %s or pass --provider ollama to use a local model", p.keyEnv())
	case errors.Is(err, ErrInsufficientBalance):
		return fmt.Sprintf("add credits at %s, switch to --provider ollama, or run without --llm", p.consoleURL())
	case errors.Is(err, ErrUnauthorized):
		return fmt.Sprintf("check %s; the key may be invalid or expired (%s)", p.keyEnv(), p.consoleURL())
	case errors.Is(err, ErrModelNotFound):
		return "the model is not available to this account; for captions a vision-capable model is required"
	case errors.Is(err, ErrRateLimited):
		return "rate limit exceeded; wait and try again or lower --samples"
	}
	if p == Ollama {
		return "make sure ollama is running (ollama serve) or set OLLAMA_URL"
	}
	return ""
}
