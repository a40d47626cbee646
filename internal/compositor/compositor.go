// Package compositor renders an AttributeSet onto a fixed-size raster canvas:
// border, title, bullet lines, table, inline images and an optional corner
// logo that is only drawn where it does not cover any content.
package compositor

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/bagtoad/slidegen/internal/slide"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Options configures a Compositor. Zero sizes take the layout's defaults.
type Options struct {
	Layout        Layout
	Width, Height int
	LogoW, LogoH  int
	Logger        *log.Logger
}

// Compositor draws slides. It is safe for concurrent use.
type Compositor struct {
	layout Layout
	logger *log.Logger
	fonts  *fontCache
	mu     sync.Mutex
}

// New returns a Compositor for the given options.
func New(opts Options) *Compositor {
	l := opts.Layout
	if l.Name == "" {
		l = Compact()
	}
	if opts.Width > 0 {
		l.Width = opts.Width
	}
	if opts.Height > 0 {
		l.Height = opts.Height
	}
	if opts.LogoW > 0 {
		l.LogoW = opts.LogoW
	}
	if opts.LogoH > 0 {
		l.LogoH = opts.LogoH
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Compositor{layout: l, logger: logger, fonts: newFontCache(logger)}
}

// Layout returns the effective layout, including size overrides.
func (c *Compositor) Layout() Layout {
	return c.layout
}

// Render draws a and writes it to path, creating parent directories. The
// format follows the file extension.
func (c *Compositor) Render(a slide.AttributeSet, path string) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid attributes: %w", err)
	}
	img, _ := c.Draw(a)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// Draw renders a in memory and returns the image together with the content
// regions recorded while placing title, body, table and inline images.
func (c *Compositor) Draw(a slide.AttributeSet) (image.Image, []slide.Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := &render{
		c:         c,
		l:         c.layout,
		a:         a,
		dc:        gg.NewContext(c.layout.Width, c.layout.Height),
		textColor: slide.MustColor(a.TextColor),
	}
	r.draw()
	return r.dc.Image(), r.regions
}

// render is the state of a single Draw call.
type render struct {
	c         *Compositor
	l         Layout
	a         slide.AttributeSet
	dc        *gg.Context
	textColor color.NRGBA
	regions   []slide.Rect

	logo image.Image
	y    int
}

func (r *render) draw() {
	W, H := r.l.Width, r.l.Height
	r.dc.SetColor(slide.MustColor(r.a.Background))
	r.dc.Clear()

	if r.a.Border {
		r.dc.SetColor(slide.MustColor(r.a.BorderColor))
		for i := 0; i < r.a.BorderWidth; i++ {
			strokeRect(r.dc, i, i, W-1-i, H-1-i, 1)
		}
	}

	if r.a.Logo != nil {
		img, err := loadAsset(r.a.Logo.Path, r.l.LogoW, r.l.LogoH)
		if err != nil {
			r.c.logger.Printf("Warning: could not load logo %s: %v", r.a.Logo.Path, err)
		} else {
			r.logo = img
		}
	}

	margin := r.l.marginX(r.a.BorderWidth)
	r.y = r.l.marginY(r.a.BorderWidth)
	if r.logo != nil && r.a.Logo.Position.IsTop() {
		r.y = max(r.y, r.l.LogoInset+r.l.LogoH+r.l.TopLogoPad)
	}

	r.drawTitle(margin)
	r.drawBody(margin)
	r.drawTable(margin)
	r.drawImages(margin)
	r.drawLogo()
}

func (r *render) drawTitle(margin int) {
	if r.a.Title == "" {
		return
	}
	W := r.l.Width
	maxWidth := W - 2*margin
	if r.logo != nil && r.a.Logo.Position == slide.TopRight {
		maxWidth = W - margin - r.l.LogoW - r.l.TitleLogoGap
	}

	face := r.c.fonts.face(r.a.Font, float64(r.a.TitleFontSize))
	r.dc.SetFontFace(face)
	r.dc.SetColor(r.textColor)

	start := r.y
	for _, line := range FitTitle(r.dc, r.a.Title, float64(maxWidth)) {
		r.text(face, line, margin, r.y)
		r.y += r.a.TitleFontSize + r.a.LineSpacing*r.l.TitleSpacing
	}
	end := r.y
	r.y += r.a.LineSpacing * r.l.TitleSpacing

	lineY := r.y + r.l.SeparatorOffset
	r.dc.SetLineWidth(1)
	r.dc.DrawLine(float64(margin), float64(lineY)+0.5, float64(W-margin), float64(lineY)+0.5)
	r.dc.Stroke()
	r.y = lineY + r.l.AfterSeparator

	r.record(margin, start, W-2*margin, end-start)
}

func (r *render) drawBody(margin int) {
	face := r.c.fonts.face(r.a.Font, float64(r.a.FontSize))
	r.dc.SetFontFace(face)
	r.dc.SetColor(r.textColor)

	prefix, indent := "", 0
	if r.a.Bullet {
		prefix, indent = "• ", r.l.BulletIndent
	}
	for _, line := range r.a.Body {
		if line == "" {
			continue
		}
		r.text(face, prefix+line, margin+indent, r.y)
		r.record(margin, r.y, r.l.Width-2*margin, r.a.FontSize)
		r.y += r.a.FontSize + r.a.LineSpacing*r.l.BodySpacing
	}
	r.y += r.l.AfterBody
}

func (r *render) drawTable(margin int) {
	t := r.a.Table
	if !t.Drawable() {
		return
	}
	x0, y0 := margin, r.y
	tableW := min(r.l.TableMaxWidth, r.l.Width-2*margin)
	cols := len(t.Headers)
	cellW := tableW / cols
	cellH := r.l.CellHeight
	tableH := (len(t.Rows) + 1) * cellH
	bw := max(1, t.BorderWidth)
	borderColor := slide.MustColor(t.BorderColor)

	r.dc.SetColor(borderColor)
	strokeRect(r.dc, x0, y0, x0+tableW, y0+tableH, bw)

	size := max(r.l.MinTableFont, int(float64(r.a.FontSize)*r.l.TableFontScale))
	face := r.c.fonts.face(r.a.Font, float64(size))
	r.dc.SetFontFace(face)
	maxText := float64(max(5, cellW-2*r.l.CellPad))

	cell := func(text string, col, row int) {
		cx := x0 + col*cellW
		cy := y0 + row*cellH
		r.dc.SetColor(borderColor)
		strokeRect(r.dc, cx, cy, cx+cellW, cy+cellH, bw)

		text = Truncate(r.dc, text, maxText)
		if text == "" {
			return
		}
		r.dc.SetColor(r.textColor)
		baseline := float64(cy) + float64(cellH)/2 + (ascent(face)-descent(face))/2
		r.dc.DrawString(text, float64(cx+r.l.CellPad), baseline)
	}
	for col, h := range t.Headers {
		cell(h, col, 0)
	}
	for row, cells := range t.Rows {
		for col, v := range cells {
			if col >= cols {
				break
			}
			cell(v, col, row+1)
		}
	}

	// the outline is inclusive of x0+tableW and y0+tableH
	r.record(x0, y0, tableW+1, tableH+1)
	r.y += tableH + r.l.AfterTable
}

func (r *render) drawImages(margin int) {
	var paths []string
	for _, p := range r.a.Images {
		if p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return
	}

	availH := r.l.Height - r.y - r.l.BottomMargin
	if r.logo != nil && !r.a.Logo.Position.IsTop() {
		availH = r.l.Height - r.y - r.l.LogoH - r.l.BottomLogoGap
	}
	if availH < r.l.MinImage {
		return
	}
	availW := r.l.Width - 2*margin

	if len(paths) == 2 {
		w := (availW - r.l.ImageGutter) / 2
		h := min(availH, w, r.l.ImageCap)
		w = min(w, r.l.ImageCap)
		if w < r.l.MinImage || h < r.l.MinImage {
			return
		}
		r.inlineImage(paths[0], margin, r.y, w, h)
		r.inlineImage(paths[1], margin+w+r.l.ImageGutter, r.y, w, h)
		return
	}

	size := min(availW, availH, r.l.ImageCap)
	if size < r.l.MinImage {
		return
	}
	r.inlineImage(paths[0], margin, r.y, size, size)
}

func (r *render) inlineImage(path string, x, y, w, h int) {
	img, err := loadAsset(path, w, h)
	if err != nil {
		r.c.logger.Printf("Warning: could not load image %s, drawing placeholder: %v", path, err)
		r.dc.SetColor(r.textColor)
		strokeRect(r.dc, x, y, x+w-1, y+h-1, 1)
	} else {
		r.dc.DrawImage(img, x, y)
	}
	r.record(x, y, w, h)
}

func (r *render) drawLogo() {
	if r.logo == nil {
		return
	}
	rect := LogoRect(r.l, r.a.Logo.Position)
	if rect.OverlapsAny(r.regions) {
		return
	}
	r.dc.DrawImage(r.logo, rect.X, rect.Y)
}

// LogoRect returns where a logo at pos is placed on a canvas with layout l.
func LogoRect(l Layout, pos slide.LogoPosition) slide.Rect {
	x, y := l.LogoInset, l.LogoInset
	switch pos {
	case slide.TopRight:
		x = l.Width - l.LogoW - l.LogoInset
	case slide.BottomLeft:
		y = l.Height - l.LogoH - l.LogoInset
	case slide.BottomRight:
		x = l.Width - l.LogoW - l.LogoInset
		y = l.Height - l.LogoH - l.LogoInset
	}
	return slide.Rect{X: x, Y: y, W: l.LogoW, H: l.LogoH}
}

func (r *render) text(face font.Face, s string, x, top int) {
	r.dc.DrawString(s, float64(x), float64(top)+ascent(face))
}

func (r *render) record(x, y, w, h int) {
	r.regions = append(r.regions, slide.Rect{X: x, Y: y, W: w, H: h})
}

// strokeRect outlines the pixel box [x0,x1] x [y0,y1] inclusive with width
// concentric one-pixel rings drawn inwards.
func strokeRect(dc *gg.Context, x0, y0, x1, y1, width int) {
	dc.SetLineWidth(1)
	for i := 0; i < width; i++ {
		w, h := x1-x0-2*i, y1-y0-2*i
		if w < 0 || h < 0 {
			break
		}
		dc.DrawRectangle(float64(x0+i)+0.5, float64(y0+i)+0.5, float64(w), float64(h))
		dc.Stroke()
	}
}
