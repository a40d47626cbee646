package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider names a text generation service.
type Provider string

const (
	OpenAI   Provider = "openai"
	DeepSeek Provider = "deepseek"
	Ollama   Provider = "ollama"
)

const (
	defaultOpenAIURL   = "https://api.openai.com/v1"
	defaultDeepSeekURL = "https://api.deepseek.com/v1"
	defaultOllamaURL   = "http://localhost:11434/api/generate"
)

// ParseProvider validates a provider name.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case OpenAI, DeepSeek, Ollama:
		return p, nil
	case "":
		return OpenAI, nil
	default:
		return "", fmt.Errorf("unknown llm provider %q (want openai, deepseek or ollama)", s)
	}
}

func (p Provider) keyEnv() string {
	if p == DeepSeek {
		return "DEEPSEEK_API_KEY"
	}
	return "OPENAI_API_KEY"
}

func (p Provider) consoleURL() string {
	if p == DeepSeek {
		return "https://platform.deepseek.com"
	}
	return "https://platform.openai.com"
}

// Shape selects how token limits and temperature are sent to a model.
type Shape int

const (
	// MaxTokens sends max_tokens and temperature.
	MaxTokens Shape = iota
	// MaxCompletionTokens sends max_completion_tokens and temperature.
	MaxCompletionTokens
	// NoTemperature sends max_completion_tokens and leaves temperature at the
	// model default.
	NoTemperature
)

func (s Shape) String() string {
	switch s {
	case MaxCompletionTokens:
		return "max_completion_tokens"
	case NoTemperature:
		return "no_temperature"
	default:
		return "max_tokens"
	}
}

// Candidate is one (model, parameter shape) combination to try.
type Candidate struct {
	Model string
	Shape Shape
}

func (c Candidate) String() string {
	return c.Model + "/" + c.Shape.String()
}

// Result reports which candidate produced Text. Attempt is 1-based.
type Result struct {
	Text      string
	Candidate Candidate
	Attempt   int
}

func textCandidates(p Provider) []Candidate {
	switch p {
	case DeepSeek:
		return []Candidate{{"deepseek-chat", MaxTokens}}
	case Ollama:
		return []Candidate{{"llama3.2", MaxTokens}}
	default:
		return []Candidate{
			{"gpt-4o-mini", MaxTokens},
			{"gpt-4o-mini", MaxCompletionTokens},
			{"gpt-4o-mini", NoTemperature},
		}
	}
}

func visionCandidates(p Provider) []Candidate {
	switch p {
	case DeepSeek:
		return []Candidate{{"deepseek-vl2", MaxTokens}, {"deepseek-vl", MaxTokens}}
	case Ollama:
		return []Candidate{{"llama3.2-vision", MaxTokens}}
	default:
		return []Candidate{{"gpt-4o", MaxTokens}, {"gpt-4o-mini", MaxTokens}}
	}
}

// tryCandidates tries each candidate in order. It moves on when a model is
// missing, rejects the parameter shape or answers with nothing, and stops at
// the first other error.
func tryCandidates(ctx context.Context, b backend, candidates []Candidate, req Request) (Result, error) {
	if len(candidates) == 0 {
		return Result{}, ErrNoCandidates
	}
	var lastErr error
	for i, c := range candidates {
		req.Model = c.Model
		req.Shape = c.Shape
		text, err := b.complete(ctx, req)
		if err == nil && text == "" {
			err = ErrEmptyResponse
		}
		if err == nil {
			return Result{Text: text, Candidate: c, Attempt: i + 1}, nil
		}
		if !retryable(err) {
			return Result{}, fmt.Errorf("%s: %w", c, err)
		}
		lastErr = fmt.Errorf("%s: %w", c, err)
	}
	return Result{}, fmt.Errorf("%w: %w", ErrNoCandidates, lastErr)
}
