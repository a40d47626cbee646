// Package llm generates slide text and slide captions with a hosted or local
// language model. Every method has a deterministic local fallback, so callers
// never see an error: failures are logged with a hint and the fallback is
// returned instead.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const systemPrompt = "You are a professional presentation slide text generator. " +
	"Generate concise, clear text suitable for business presentations."

const (
	maxTitleLen  = 100
	maxBulletLen = 150
	maxHeaderLen = 30
	minCaption   = 10
)

// Config selects and configures the provider.
type Config struct {
	Provider Provider
	// APIKey overrides OPENAI_API_KEY / DEEPSEEK_API_KEY.
	APIKey string
	// BaseURL overrides the provider endpoint. For Ollama it is the full
	// /api/generate URL and defaults to OLLAMA_URL.
	BaseURL string
	// Enabled turns model calls on. When false every method returns local
	// fallback content.
	Enabled       bool
	Timeout       time.Duration
	VisionTimeout time.Duration
	HTTPClient    *http.Client
	Logger        *log.Logger
}

// Generator produces titles, bullets, table content and captions.
type Generator struct {
	provider      Provider
	enabled       bool
	backend       backend
	timeout       time.Duration
	visionTimeout time.Duration
	logger        *log.Logger

	mu  sync.Mutex
	rng *rand.Rand
	// stopped is set after an error no later request can recover from.
	stopped bool
}

// New builds a Generator. Only an unknown provider is an error.
func New(cfg Config, rng *rand.Rand) (*Generator, error) {
	p, err := ParseProvider(string(cfg.Provider))
	if err != nil {
		return nil, err
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	g := &Generator{
		provider:      p,
		enabled:       cfg.Enabled,
		timeout:       cfg.Timeout,
		visionTimeout: cfg.VisionTimeout,
		logger:        logger,
		rng:           rng,
	}
	if g.timeout <= 0 {
		g.timeout = 30 * time.Second
	}
	if g.visionTimeout <= 0 {
		g.visionTimeout = 60 * time.Second
	}

	switch p {
	case Ollama:
		url := cfg.BaseURL
		if url == "" {
			url = os.Getenv("OLLAMA_URL")
		}
		if url == "" {
			url = defaultOllamaURL
		}
		g.backend = &ollamaBackend{client: client, url: url}
	default:
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv(p.keyEnv())
		}
		base := cfg.BaseURL
		if base == "" {
			base = defaultOpenAIURL
			if p == DeepSeek {
				base = defaultDeepSeekURL
			}
		}
		g.backend = &chatBackend{client: client, baseURL: base, apiKey: key}
	}
	return g, nil
}

// Provider returns the configured provider.
func (g *Generator) Provider() Provider {
	return g.provider
}

// Enabled reports whether model calls are made at all.
func (g *Generator) Enabled() bool {
	return g.enabled
}

// ask sends prompt to the candidate list and returns the model's text, or ""
// after logging why it could not.
func (g *Generator) ask(ctx context.Context, what string, candidates []Candidate, req Request, timeout time.Duration) string {
	g.mu.Lock()
	stopped := g.stopped
	g.mu.Unlock()
	if !g.enabled || stopped {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := tryCandidates(ctx, g.backend, candidates, req)
	if err != nil {
		g.report(what, err)
		return ""
	}
	if res.Attempt > 1 {
		g.logger.Printf("%s: used %s after %d attempts", what, res.Candidate, res.Attempt)
	}
	return res.Text
}

func (g *Generator) report(what string, err error) {
	msg := fmt.Sprintf("Warning: %s via %s failed, using fallback: %v", what, g.provider, err)
	if hint := guidance(g.provider, err); hint != "" {
		msg += "\n  -> " + hint
	}
	if fatal(err) {
		g.mu.Lock()
		g.stopped = true
		g.mu.Unlock()
		msg += "\n  -> local fallback content will be used for the rest of this run"
	}
	g.logger.Print(msg)
}

func (g *Generator) choose(options []string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return options[g.rng.IntN(len(options))]
}

func (g *Generator) intN(lo, hi int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return lo + g.rng.IntN(hi-lo+1)
}

// Title returns a short slide title.
func (g *Generator) Title(ctx context.Context) string {
	return g.TitleFor(ctx, "")
}

// TitleFor returns a slide title, optionally steered by a context phrase.
func (g *Generator) TitleFor(ctx context.Context, topic string) string {
	prompt := "Generate a short, professional presentation slide title (5-8 words max). "
	if topic != "" {
		prompt += "Context: " + topic + ". "
	}
	prompt += "Return only the title, no quotes or extra text."

	out := g.ask(ctx, "title", textCandidates(g.provider), g.textRequest(prompt, 20, 0.8), g.timeout)
	if out = clip(stripQuotes(out), maxTitleLen); out != "" {
		return out
	}
	return g.choose(fallbackTitles)
}

// Bullet returns one bullet line relevant to title.
func (g *Generator) Bullet(ctx context.Context, title string) string {
	prompt := "Generate a concise bullet point for a presentation slide (8-12 words max). "
	if title != "" {
		prompt += "Make it relevant to: " + title + ". "
	}
	prompt += "Focus on achievements, metrics, or key points. Return only the bullet point text, no bullet symbol."

	out := g.ask(ctx, "bullet", textCandidates(g.provider), g.textRequest(prompt, 30, 0.8), g.timeout)
	out = strings.TrimSpace(strings.TrimLeft(stripQuotes(out), "•-* "))
	if out = clip(out, maxBulletLen); out != "" {
		return out
	}
	return g.choose(fallbackBullets)
}

// TableHeaders returns exactly n column headers.
func (g *Generator) TableHeaders(ctx context.Context, n int) []string {
	return g.TableHeadersFor(ctx, n, "")
}

// TableHeadersFor returns exactly n column headers for an optional theme.
func (g *Generator) TableHeadersFor(ctx context.Context, n int, theme string) []string {
	if n <= 0 {
		return nil
	}
	prompt := fmt.Sprintf("Generate %d professional table column headers for a presentation slide. ", n)
	if theme != "" {
		prompt += "Theme: " + theme + ". "
	}
	prompt += fmt.Sprintf("Return exactly %d headers, one per line, short (1-2 words each). No numbers or extra formatting.", n)

	out := g.ask(ctx, "table headers", textCandidates(g.provider), g.textRequest(prompt, 50, 0.7), g.timeout)
	if headers := parseHeaders(out, n); len(headers) == n {
		return headers
	}
	return g.fallbackHeaders(n)
}

func parseHeaders(out string, n int) []string {
	var headers []string
	for _, line := range strings.Split(strings.ReplaceAll(out, ",", "\n"), "\n") {
		h := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "0123456789.-) "))
		if h != "" && len(h) < maxHeaderLen {
			headers = append(headers, h)
		}
		if len(headers) >= n {
			break
		}
	}
	return headers
}

func (g *Generator) fallbackHeaders(n int) []string {
	var suitable [][]string
	for _, pool := range fallbackHeaderPools {
		if len(pool) >= n {
			suitable = append(suitable, pool)
		}
	}
	if len(suitable) == 0 {
		headers := make([]string, n)
		for i := range headers {
			headers[i] = fmt.Sprintf("Column %d", i+1)
		}
		return headers
	}
	g.mu.Lock()
	pool := suitable[g.rng.IntN(len(suitable))]
	g.mu.Unlock()
	return append([]string(nil), pool[:n]...)
}

var numbers = message.NewPrinter(language.English)

// TableCell returns a plausible value for a cell under header. Values are
// generated locally from keywords in the header; row is 1-based.
func (g *Generator) TableCell(ctx context.Context, header string, row, col int) string {
	h := strings.ToLower(header)
	switch {
	case containsAny(h, "sales", "revenue", "profit", "total", "price", "cost", "budget", "spent"):
		return numbers.Sprintf("$%d", g.intN(100, 9999))
	case containsAny(h, "growth", "change", "margin"):
		return g.choose([]string{"+", "-"}) + fmt.Sprintf("%d%%", g.intN(1, 50))
	case containsAny(h, "units", "visitors", "conversions"):
		return fmt.Sprintf("%d", g.intN(10, 9999))
	case containsAny(h, "q1", "q2", "q3", "q4", "month", "quarter"):
		if strings.Contains(h, "q") {
			return fmt.Sprintf("Q%d", g.intN(1, 4))
		}
		return g.choose(months)
	case containsAny(h, "status", "state"):
		return g.choose([]string{"Active", "Pending", "Complete", "On Hold"})
	case containsAny(h, "region", "country"):
		return g.choose([]string{"USA", "UK", "Germany", "France", "Japan"})
	case containsAny(h, "department", "team"):
		return g.choose([]string{"Sales", "Marketing", "IT", "HR", "Finance"})
	case containsAny(h, "category", "product"):
		return g.choose([]string{"A", "B", "C", "D", "Premium"})
	default:
		return fmt.Sprintf("Data %d", row)
	}
}

const visionPrompt = `You are analyzing a presentation slide image. Generate a short presentation script (3-5 sentences, max %d characters) that a presenter would use to introduce and explain this slide to an audience.

Analyze the slide image carefully and identify:
- The title/main topic
- Key bullet points or content areas
- Any tables or data visualizations
- Overall message and purpose

The presentation text should be natural, engaging, and suitable for a business presentation. Focus on the main message and key takeaways visible in the slide. Write as if you're the presenter introducing this slide to your audience.

Return only the presentation text, no quotes or extra formatting.`

const blindPrompt = `Generate a short presentation script (3-5 sentences, max %d characters) for a presentation slide.
The slide likely contains business content such as titles, bullet points, tables, and data visualizations.
Write as if you're a presenter introducing this slide to an audience. Be natural and engaging.
Return only the presentation text, no quotes or extra formatting.`

const contentPrompt = `Generate a short presentation script (3-5 sentences, max %d characters) for a presentation slide with the following content:

Title: %s
Key Points:
%s%s

Write as if you're a presenter introducing this slide to an audience. Be natural, engaging, and focus on the main message. Return only the presentation text, no quotes or extra formatting.`

// Fixed captions returned when no model text is available.
const (
	CaptionDisabled      = "Presentation about this slide (image analysis disabled)"
	CaptionNoKey         = "Presentation about this slide (API key not configured)"
	CaptionUnavailable   = "Presentation about this slide (analysis unavailable)"
	CaptionImageNotFound = "Presentation about this slide (image not found)"
)

// CaptionFromImage asks a vision model to narrate the rendered slide at path.
// If the vision call fails it tries a text-only prompt. The boolean reports
// whether a model produced the caption; when false the string is one of the
// fixed Caption* values.
func (g *Generator) CaptionFromImage(ctx context.Context, path string, maxLen int) (string, bool) {
	if !g.enabled {
		return CaptionDisabled, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		g.logger.Printf("Warning: cannot caption %s: %v", path, err)
		return CaptionImageNotFound, false
	}
	if cb, ok := g.backend.(*chatBackend); ok && cb.apiKey == "" {
		g.report("caption", ErrMissingKey)
		return CaptionNoKey, false
	}

	format := "jpeg"
	if strings.EqualFold(filepath.Ext(path), ".png") {
		format = "png"
	}
	req := g.textRequest(fmt.Sprintf(visionPrompt, maxLen), maxLen/4, 0.8)
	req.System = ""
	req.Image = data
	req.ImageFormat = format

	out := stripQuotes(g.ask(ctx, "vision caption", visionCandidates(g.provider), req, g.visionTimeout))
	if out = trimSentences(out, maxLen); len(out) > minCaption {
		return out, true
	}

	g.logger.Printf("Vision analysis unavailable for %s, trying text-only generation", filepath.Base(path))
	out = stripQuotes(g.ask(ctx, "caption", textCandidates(g.provider), g.textRequest(fmt.Sprintf(blindPrompt, maxLen), maxLen/4, 0.8), g.timeout))
	if out = cut(out, maxLen); len(out) > minCaption {
		return out, true
	}
	return CaptionUnavailable, false
}

// CaptionFromContent narrates a slide from its known content. Without a
// model it builds a sentence from the title, first two bullets and up to
// three table headers.
func (g *Generator) CaptionFromContent(ctx context.Context, title string, bullets, headers []string, maxLen int) string {
	var points []string
	for _, b := range bullets {
		points = append(points, "- "+b)
	}
	tableInfo := ""
	if len(headers) > 0 {
		tableInfo = "\nTable Headers: " + strings.Join(headers, ", ")
	}
	prompt := fmt.Sprintf(contentPrompt, maxLen, title, strings.Join(points, "\n"), tableInfo)

	out := stripQuotes(g.ask(ctx, "content caption", textCandidates(g.provider), g.textRequest(prompt, maxLen/4, 0.8), g.timeout))
	if out = cut(out, maxLen); len(out) > 2*minCaption {
		return out
	}
	return cut(DescribeContent(title, bullets, headers), maxLen)
}

// DescribeContent is the template caption used when no model is available.
func DescribeContent(title string, bullets, headers []string) string {
	var lowered []string
	for _, b := range bullets[:min(2, len(bullets))] {
		lowered = append(lowered, strings.ToLower(b))
	}
	s := fmt.Sprintf("This slide presents %s.", strings.ToLower(title))
	if len(lowered) > 0 {
		s += fmt.Sprintf(" Key highlights include %s.", strings.Join(lowered, " and "))
	}
	if len(headers) > 0 {
		s += fmt.Sprintf(" The slide also contains a data table with %s.", strings.Join(headers[:min(3, len(headers))], ", "))
	}
	return s
}

func (g *Generator) textRequest(prompt string, maxTokens int, temperature float64) Request {
	return Request{System: systemPrompt, Prompt: prompt, MaxTokens: max(1, maxTokens), Temperature: temperature}
}

func stripQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

func clip(s string, n int) string {
	if len(s) > n {
		s = strings.TrimSpace(s[:n])
	}
	return s
}

// cut shortens s to at most n bytes, marking the cut with an ellipsis.
func cut(s string, n int) string {
	if n <= 3 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// trimSentences keeps the first sentence, or the first two when the first
// is short, before falling back to a hard cut.
func trimSentences(s string, n int) string {
	if len(s) <= n {
		return s
	}
	sentences := strings.Split(s, ". ")
	out := sentences[0]
	if float64(len(out)) < float64(n)*0.7 && len(sentences) > 1 {
		out = strings.Join(sentences[:2], ". ")
	}
	return cut(out, n)
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// IsFallbackCaption reports whether s is one of the fixed captions.
func IsFallbackCaption(s string) bool {
	switch s {
	case CaptionDisabled, CaptionNoKey, CaptionUnavailable, CaptionImageNotFound:
		return true
	}
	return false
}

var errStopped = errors.New("generator stopped after an unrecoverable error")

// Err reports whether an unrecoverable provider error has switched the
// generator to local content.
func (g *Generator) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return errStopped
	}
	return nil
}
