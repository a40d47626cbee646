// Package slide defines the attribute record that fully describes one
// rendered presentation slide.
package slide

import (
	"fmt"
	"strings"
)

// LogoPosition is one of the four canvas corners a logo can be pinned to.
type LogoPosition string

const (
	TopLeft     LogoPosition = "top-left"
	TopRight    LogoPosition = "top-right"
	BottomLeft  LogoPosition = "bottom-left"
	BottomRight LogoPosition = "bottom-right"
)

// LogoPositions lists every valid corner in a stable order.
var LogoPositions = []LogoPosition{TopLeft, TopRight, BottomLeft, BottomRight}

// ParseLogoPosition converts a configuration string to a LogoPosition.
func ParseLogoPosition(s string) (LogoPosition, error) {
	p := LogoPosition(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range LogoPositions {
		if p == valid {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown logo position %q", s)
}

// IsTop reports whether the position is one of the two top corners.
func (p LogoPosition) IsTop() bool {
	return p == TopLeft || p == TopRight
}

// Logo is an enabled logo. A nil *Logo on an AttributeSet means no logo.
type Logo struct {
	Path     string       `json:"path" yaml:"path"`
	Position LogoPosition `json:"position" yaml:"position"`
}

// Table holds the grid content and the table's own border styling, which is
// independent of the slide border.
type Table struct {
	Headers     []string   `json:"headers" yaml:"headers"`
	Rows        [][]string `json:"rows" yaml:"rows"`
	BorderWidth int        `json:"border_width" yaml:"border_width"`
	BorderColor string     `json:"border_color" yaml:"border_color"`
}

// Validate checks that every row has exactly one cell per header.
func (t *Table) Validate() error {
	if len(t.Headers) == 0 {
		return fmt.Errorf("table has no headers")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return fmt.Errorf("table row %d has %d cells, want %d", i, len(row), len(t.Headers))
		}
	}
	return nil
}

// Drawable reports whether the table has both headers and data.
func (t *Table) Drawable() bool {
	return t != nil && len(t.Headers) > 0 && len(t.Rows) > 0
}

// AttributeSet is the complete, self-contained description of one slide.
// The compositor consults nothing outside it while rendering.
type AttributeSet struct {
	Font          string `json:"font" yaml:"font"`
	FontSize      int    `json:"font_size" yaml:"font_size"`
	TitleFontSize int    `json:"title_font_size" yaml:"title_font_size"`
	LineSpacing   int    `json:"line_spacing" yaml:"line_spacing"`

	Background  string `json:"background" yaml:"background"`
	TextColor   string `json:"text_color" yaml:"text_color"`
	Border      bool   `json:"border" yaml:"border"`
	BorderWidth int    `json:"border_width" yaml:"border_width"`
	BorderColor string `json:"border_color" yaml:"border_color"`

	Title  string    `json:"title,omitempty" yaml:"title,omitempty"`
	Body   [2]string `json:"body" yaml:"body"`
	Bullet bool      `json:"bullet" yaml:"bullet"`
	Table  *Table    `json:"table,omitempty" yaml:"table,omitempty"`

	Images [2]string `json:"images" yaml:"images"`
	Logo   *Logo     `json:"logo,omitempty" yaml:"logo,omitempty"`
}

// Validate reports malformed attribute sets. Missing asset files are not an
// error here; the compositor degrades those at render time.
func (a AttributeSet) Validate() error {
	if _, err := ParseColor(a.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	if _, err := ParseColor(a.TextColor); err != nil {
		return fmt.Errorf("text color: %w", err)
	}
	if a.Border {
		if _, err := ParseColor(a.BorderColor); err != nil {
			return fmt.Errorf("border color: %w", err)
		}
	}
	if a.BorderWidth < 0 {
		return fmt.Errorf("negative border width %d", a.BorderWidth)
	}
	if a.FontSize <= 0 || a.TitleFontSize <= 0 {
		return fmt.Errorf("font sizes must be positive (got %d/%d)", a.FontSize, a.TitleFontSize)
	}
	if a.Table != nil {
		if err := a.Table.Validate(); err != nil {
			return err
		}
		if _, err := ParseColor(a.Table.BorderColor); err != nil {
			return fmt.Errorf("table border color: %w", err)
		}
	}
	if a.Logo != nil {
		if _, err := ParseLogoPosition(string(a.Logo.Position)); err != nil {
			return err
		}
	}
	return nil
}
