// Package dataset renders sampled slides to disk and records what was
// rendered. It is a thin layer over the sampler, the compositor and the
// caption generator; it owns file naming, retries and progress reporting.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/bagtoad/slidegen/internal/sampler"
	"github.com/bagtoad/slidegen/internal/slide"
)

// ErrNoRenderer is returned by NewBuilder when no renderer is supplied.
var ErrNoRenderer = errors.New("no renderer configured")

// DisabledCaption is written for every slide when captioning is turned off.
const DisabledCaption = "Presentation about this slide (disabled)"

// Renderer draws one attribute set to an image file.
type Renderer interface {
	Render(a slide.AttributeSet, path string) error
}

// Captioner narrates rendered slides. CaptionFromImage reports false when
// no model produced the text.
type Captioner interface {
	CaptionFromImage(ctx context.Context, path string, maxLen int) (string, bool)
	CaptionFromContent(ctx context.Context, title string, bullets, headers []string, maxLen int) string
}

// Options configures a Builder.
type Options struct {
	OutDir string
	// MaxRetries bounds fresh draws after a failed render of the same index.
	MaxRetries int
	// CaptionMaxLen is passed to the captioner.
	CaptionMaxLen int
	Logger        *log.Logger
}

// Builder produces pair and caption datasets.
type Builder struct {
	r      Renderer
	s      *sampler.Sampler
	opts   Options
	logger *log.Logger
}

// NewBuilder validates its collaborators up front so that a misconfigured
// run fails before anything is written.
func NewBuilder(r Renderer, s *sampler.Sampler, opts Options) (*Builder, error) {
	if r == nil {
		return nil, ErrNoRenderer
	}
	if s == nil {
		return nil, errors.New("no sampler configured")
	}
	if opts.OutDir == "" {
		return nil, errors.New("no output directory configured")
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.CaptionMaxLen <= 0 {
		opts.CaptionMaxLen = 500
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Builder{r: r, s: s, opts: opts, logger: logger}, nil
}

// PairEntry is one rendered pair as recorded in the manifest.
type PairEntry struct {
	PairID      int                `json:"pair_id"`
	Img1        string             `json:"img1"`
	Img2        string             `json:"img2"`
	StyleLabel  int                `json:"style_label"`
	FontLabel   int                `json:"font_label"`
	StyleMatch  string             `json:"style_match"`
	FontMatch   string             `json:"font_match"`
	Differences []string           `json:"differences"`
	Slide1      slide.AttributeSet `json:"slide1"`
	Slide2      slide.AttributeSet `json:"slide2"`
}

// CaptionEntry is one rendered complex slide and its narration.
type CaptionEntry struct {
	ImageID   int    `json:"image_id"`
	ImagePath string `json:"image_path"`
	Filename  string `json:"filename"`
	Text      string `json:"presentation_text"`
	// Source is "vision", "content" or "disabled".
	Source string             `json:"source"`
	Slide  slide.AttributeSet `json:"slide"`
}

// Pairs samples n balanced pairs and renders them as img1_<i>.png and
// img2_<i>.png under the output directory. A pair that still fails after
// MaxRetries fresh draws is logged and left out; its index is not reused.
func (b *Builder) Pairs(ctx context.Context, n int, progress func(current, total int)) ([]PairEntry, error) {
	if err := os.MkdirAll(b.opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	pairs, err := b.s.BalancedPairs(ctx, n)
	if err != nil {
		return nil, err
	}

	entries := make([]PairEntry, 0, len(pairs))
	for i, p := range pairs {
		if err := ctx.Err(); err != nil {
			return entries, err
		}
		if progress != nil {
			progress(i+1, len(pairs))
		}
		img1 := filepath.Join(b.opts.OutDir, fmt.Sprintf("img1_%d.png", i))
		img2 := filepath.Join(b.opts.OutDir, fmt.Sprintf("img2_%d.png", i))

		rendered, err := b.renderPair(ctx, p, img1, img2)
		if err != nil {
			b.logger.Printf("Warning: skipping pair %d after %d attempts: %v", i, b.opts.MaxRetries+1, err)
			os.Remove(img1)
			os.Remove(img2)
			continue
		}
		rendered.ID = i
		entries = append(entries, newPairEntry(rendered, img1, img2))
	}
	return entries, nil
}

// renderPair renders p, redrawing a pair with the same style label when a
// render fails.
func (b *Builder) renderPair(ctx context.Context, p sampler.Pair, img1, img2 string) (sampler.Pair, error) {
	var lastErr error
	for attempt := 0; attempt <= b.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			b.logger.Printf("Warning: retrying pair with a fresh draw (attempt %d/%d): %v", attempt, b.opts.MaxRetries, lastErr)
			p = b.s.Draw(ctx, p.StyleLabel == 1)
		}
		if lastErr = b.r.Render(p.First, img1); lastErr != nil {
			continue
		}
		if lastErr = b.r.Render(p.Second, img2); lastErr != nil {
			continue
		}
		return p, nil
	}
	return p, lastErr
}

func newPairEntry(p sampler.Pair, img1, img2 string) PairEntry {
	e := PairEntry{
		PairID:      p.ID,
		Img1:        img1,
		Img2:        img2,
		StyleLabel:  p.StyleLabel,
		FontLabel:   p.FontLabel,
		StyleMatch:  "different",
		FontMatch:   "different",
		Differences: p.Differences,
		Slide1:      p.First,
		Slide2:      p.Second,
	}
	if e.Differences == nil {
		e.Differences = []string{}
	}
	if p.StyleLabel == 1 {
		e.StyleMatch = "identical"
	}
	if p.FontLabel == 1 {
		e.FontMatch = "same"
	}
	return e
}

// Captions renders n complex slides and narrates each. A nil captioner
// writes DisabledCaption for every slide. Otherwise the image caption is
// tried first and the slide's own content is the fallback.
func (b *Builder) Captions(ctx context.Context, n int, c Captioner, progress func(current, total int)) ([]CaptionEntry, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative sample count %d", n)
	}
	if err := os.MkdirAll(b.opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	entries := make([]CaptionEntry, 0, n)
	for i := range n {
		if err := ctx.Err(); err != nil {
			return entries, err
		}
		if progress != nil {
			progress(i+1, n)
		}
		name := fmt.Sprintf("img1_%d.png", i)
		path := filepath.Join(b.opts.OutDir, name)

		a, err := b.renderComplex(ctx, path)
		if err != nil {
			b.logger.Printf("Warning: skipping slide %d after %d attempts: %v", i, b.opts.MaxRetries+1, err)
			os.Remove(path)
			continue
		}
		text, source := b.caption(ctx, c, path, a)
		entries = append(entries, CaptionEntry{
			ImageID:   i,
			ImagePath: path,
			Filename:  name,
			Text:      text,
			Source:    source,
			Slide:     a,
		})
	}
	return entries, nil
}

func (b *Builder) renderComplex(ctx context.Context, path string) (slide.AttributeSet, error) {
	var lastErr error
	for attempt := 0; attempt <= b.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			b.logger.Printf("Warning: retrying slide with a fresh draw (attempt %d/%d): %v", attempt, b.opts.MaxRetries, lastErr)
		}
		a := b.s.Complex(ctx)
		if lastErr = b.r.Render(a, path); lastErr == nil {
			return a, nil
		}
	}
	return slide.AttributeSet{}, lastErr
}

func (b *Builder) caption(ctx context.Context, c Captioner, path string, a slide.AttributeSet) (string, string) {
	if c == nil {
		return DisabledCaption, "disabled"
	}
	if text, ok := c.CaptionFromImage(ctx, path, b.opts.CaptionMaxLen); ok {
		return text, "vision"
	}
	var bullets []string
	for _, line := range a.Body {
		if line != "" {
			bullets = append(bullets, line)
		}
	}
	var headers []string
	if a.Table != nil {
		headers = a.Table.Headers
	}
	return c.CaptionFromContent(ctx, a.Title, bullets, headers, b.opts.CaptionMaxLen), "content"
}
