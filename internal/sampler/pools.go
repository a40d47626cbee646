package sampler

import (
	"errors"
	"fmt"

	"github.com/bagtoad/slidegen/internal/slide"
)

// ErrEmptyPool is returned when a required attribute pool has no values.
var ErrEmptyPool = errors.New("empty attribute pool")

// Range is an inclusive integer range.
type Range struct {
	Min int `json:"min" yaml:"min" toml:"min"`
	Max int `json:"max" yaml:"max" toml:"max"`
}

// Pools holds every value the sampler may draw from. It is passed by value;
// the sampler never reads attribute values from anywhere else.
type Pools struct {
	Fonts             []string
	FontSizes         []int
	TitleFontSizes    []int
	Backgrounds       []string
	TextColors        []string
	BorderWidths      []int
	BorderColor       string
	Logos             []string
	LogoPositions     []slide.LogoPosition
	Images            []string
	TableBorderWidths []int
	TableBorderColors []string
	LineSpacings      []int

	TableRows     Range
	TableCols     Range
	IncludeTables bool

	// ImageChance is the probability of filling each inline-image slot.
	ImageChance float64
	// TextLines bounds the number of text lines per pair: the title plus up
	// to two body lines.
	TextLines Range
}

// Validate reports the first missing or inconsistent pool. Logos and Images
// may be empty, which disables those elements.
func (p Pools) Validate() error {
	required := []struct {
		name string
		n    int
	}{
		{"fonts", len(p.Fonts)},
		{"font sizes", len(p.FontSizes)},
		{"title font sizes", len(p.TitleFontSizes)},
		{"background colors", len(p.Backgrounds)},
		{"text colors", len(p.TextColors)},
		{"border widths", len(p.BorderWidths)},
		{"logo positions", len(p.LogoPositions)},
		{"table border widths", len(p.TableBorderWidths)},
		{"table border colors", len(p.TableBorderColors)},
		{"line spacings", len(p.LineSpacings)},
	}
	for _, r := range required {
		if r.n == 0 {
			return fmt.Errorf("%s: %w", r.name, ErrEmptyPool)
		}
	}
	for _, w := range p.BorderWidths {
		if w < 0 {
			return fmt.Errorf("negative border width %d", w)
		}
	}
	for _, w := range p.TableBorderWidths {
		if w < 0 {
			return fmt.Errorf("negative table border width %d", w)
		}
	}
	for _, s := range p.LineSpacings {
		if s <= 0 {
			return fmt.Errorf("line spacing %d must be positive", s)
		}
	}
	if p.IncludeTables {
		if p.TableRows.Min < 1 || p.TableRows.Min > p.TableRows.Max {
			return fmt.Errorf("invalid table row range %d-%d", p.TableRows.Min, p.TableRows.Max)
		}
		if p.TableCols.Min < 1 || p.TableCols.Min > p.TableCols.Max {
			return fmt.Errorf("invalid table column range %d-%d", p.TableCols.Min, p.TableCols.Max)
		}
	}
	if p.TextLines.Min < 1 || p.TextLines.Max > 3 || p.TextLines.Min > p.TextLines.Max {
		return fmt.Errorf("invalid text line range %d-%d (must be within 1-3)", p.TextLines.Min, p.TextLines.Max)
	}
	if p.ImageChance < 0 || p.ImageChance > 1 {
		return fmt.Errorf("image chance %.2f outside [0,1]", p.ImageChance)
	}
	return nil
}
