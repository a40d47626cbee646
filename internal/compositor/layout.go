package compositor

import (
	"fmt"
	"strings"
)

// Layout holds the spacing constants of one canvas preset. Margins grow with
// the slide border width: x_margin = MarginX + BorderScale*bw and the first
// text line sits at MarginY + BorderScale*bw.
type Layout struct {
	Name string

	Width, Height int
	LogoW, LogoH  int

	MarginX, MarginY int
	BorderScale      int

	LogoInset    int // distance of a logo from its corner
	TopLogoPad   int // gap below a top logo before the first text line
	TitleLogoGap int // gap left of a top-right logo when wrapping the title

	TitleSpacing    int // title line advance = title size + TitleSpacing*line spacing
	SeparatorOffset int
	AfterSeparator  int
	BodySpacing     int // body line advance = font size + BodySpacing*line spacing
	BulletIndent    int
	AfterBody       int

	TableMaxWidth  int
	CellHeight     int
	CellPad        int
	AfterTable     int
	TableFontScale float64
	MinTableFont   int

	BottomMargin  int // free space kept below inline images
	BottomLogoGap int // extra space kept above a bottom logo
	MinImage      int // smallest readable inline image edge
	ImageGutter   int
	ImageCap      int
}

// Compact is the 224x224 preset used for model training data.
func Compact() Layout {
	return Layout{
		Name:   "compact",
		Width:  224,
		Height: 224,
		LogoW:  20,
		LogoH:  20,

		MarginX:     10,
		MarginY:     15,
		BorderScale: 2,

		LogoInset:    5,
		TopLogoPad:   3,
		TitleLogoGap: 5,

		TitleSpacing:    2,
		SeparatorOffset: 2,
		AfterSeparator:  4,
		BodySpacing:     3,
		BulletIndent:    5,
		AfterBody:       4,

		TableMaxWidth:  200,
		CellHeight:     18,
		CellPad:        2,
		AfterTable:     4,
		TableFontScale: 0.8,
		MinTableFont:   8,

		BottomMargin:  5,
		BottomLogoGap: 8,
		MinImage:      30,
		ImageGutter:   4,
		ImageCap:      400,
	}
}

// Wide is the 1024x768 presentation preset.
func Wide() Layout {
	return Layout{
		Name:   "wide",
		Width:  1024,
		Height: 768,
		LogoW:  40,
		LogoH:  40,

		MarginX:     80,
		MarginY:     60,
		BorderScale: 5,

		LogoInset:    20,
		TopLogoPad:   10,
		TitleLogoGap: 40,

		TitleSpacing:    5,
		SeparatorOffset: 10,
		AfterSeparator:  20,
		BodySpacing:     12,
		BulletIndent:    20,
		AfterBody:       30,

		TableMaxWidth:  700,
		CellHeight:     40,
		CellPad:        10,
		AfterTable:     40,
		TableFontScale: 0.8,
		MinTableFont:   8,

		BottomMargin:  20,
		BottomLogoGap: 30,
		MinImage:      60,
		ImageGutter:   30,
		ImageCap:      400,
	}
}

// LayoutByName returns the preset called name ("compact" or "wide").
func LayoutByName(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "compact":
		return Compact(), nil
	case "wide":
		return Wide(), nil
	default:
		return Layout{}, fmt.Errorf("unknown layout %q (want compact or wide)", name)
	}
}

func (l Layout) marginX(borderWidth int) int { return l.MarginX + l.BorderScale*borderWidth }
func (l Layout) marginY(borderWidth int) int { return l.MarginY + l.BorderScale*borderWidth }
