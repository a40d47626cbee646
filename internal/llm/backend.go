package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Request is one completion call against a single model.
type Request struct {
	Model       string
	System      string
	Prompt      string
	Image       []byte
	ImageFormat string // "png" or "jpeg"
	MaxTokens   int
	Temperature float64
	Shape       Shape
}

type backend interface {
	complete(ctx context.Context, req Request) (string, error)
}

// chatBackend speaks the OpenAI chat completions protocol, which DeepSeek
// also implements.
type chatBackend struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxTokens           int           `json:"max_tokens,omitempty"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	Temperature         *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (b *chatBackend) complete(ctx context.Context, req Request) (string, error) {
	if b.apiKey == "" {
		return "", ErrMissingKey
	}

	body := chatRequest{Model: req.Model}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	if len(req.Image) > 0 {
		format := req.ImageFormat
		if format == "" {
			format = "png"
		}
		url := fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(req.Image))
		body.Messages = append(body.Messages, chatMessage{Role: "user", Content: []chatPart{
			{Type: "text", Text: req.Prompt},
			{Type: "image_url", ImageURL: &chatImageURL{URL: url}},
		}})
	} else {
		body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})
	}

	switch req.Shape {
	case MaxCompletionTokens:
		body.MaxCompletionTokens = req.MaxTokens
		body.Temperature = &req.Temperature
	case NoTemperature:
		body.MaxCompletionTokens = req.MaxTokens
	default:
		body.MaxTokens = req.MaxTokens
		body.Temperature = &req.Temperature
	}

	var resp chatResponse
	if err := postJSON(ctx, b.client, strings.TrimRight(b.baseURL, "/")+"/chat/completions", b.apiKey, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ollamaBackend talks to a local Ollama server's /api/generate endpoint.
type ollamaBackend struct {
	client *http.Client
	url    string
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Images  []string       `json:"images,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (b *ollamaBackend) complete(ctx context.Context, req Request) (string, error) {
	body := ollamaRequest{
		Model:   req.Model,
		Prompt:  req.Prompt,
		System:  req.System,
		Options: map[string]any{"num_predict": req.MaxTokens},
	}
	if len(req.Image) > 0 {
		body.Images = []string{base64.StdEncoding.EncodeToString(req.Image)}
	}
	if req.Shape != NoTemperature {
		body.Options["temperature"] = req.Temperature
	}

	var resp ollamaResponse
	if err := postJSON(ctx, b.client, b.url, "", body, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Response), nil
}

func postJSON(ctx context.Context, client *http.Client, url, apiKey string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
