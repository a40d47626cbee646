// Package assets creates placeholder logos and inline images for asset
// paths that do not exist yet, so a fresh checkout can render slides
// without any artwork.
package assets

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// Inline placeholder cards are always this size; the compositor scales
// them to fit.
const (
	CardWidth  = 300
	CardHeight = 200
)

var (
	logoColors  = []string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#95E1D3", "#F38181", "#AA96DA"}
	imageColors = []string{"#95E1D3", "#F38181", "#AA96DA", "#FFD93D", "#6BCB77"}
)

// Spec lists the asset paths to ensure.
type Spec struct {
	Logos        []string
	LogoW, LogoH int
	Images       []string
	// QR draws logos as QR codes encoding the logo's label instead of
	// coloured badges.
	QR bool
}

// Result reports what EnsurePlaceholders did.
type Result struct {
	Created  []string
	Existing []string
}

// EnsurePlaceholders writes a placeholder for every path in spec that does
// not exist. Existing files are never touched.
func EnsurePlaceholders(spec Spec) (*Result, error) {
	res := &Result{}
	for i, path := range spec.Logos {
		c := logoColors[i%len(logoColors)]
		label := fmt.Sprintf("LOGO %d", i+1)
		err := ensure(path, res, c, func() (image.Image, error) {
			if spec.QR {
				return QR(label, spec.LogoW, spec.LogoH)
			}
			return Badge(spec.LogoW, spec.LogoH, c, label)
		})
		if err != nil {
			return res, fmt.Errorf("logo %s: %w", path, err)
		}
	}
	for i, path := range spec.Images {
		c := imageColors[i%len(imageColors)]
		label := fmt.Sprintf("IMG %d", i+1)
		err := ensure(path, res, c, func() (image.Image, error) {
			return Badge(CardWidth, CardHeight, c, label)
		})
		if err != nil {
			return res, fmt.Errorf("image %s: %w", path, err)
		}
	}
	return res, nil
}

// ensure writes path unless it exists. SVG paths get a vector badge in fill.
func ensure(path string, res *Result, fill string, draw func() (image.Image, error)) error {
	if _, err := os.Stat(path); err == nil {
		res.Existing = append(res.Existing, path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		if err := os.WriteFile(path, []byte(svgBadge(fill)), 0o644); err != nil {
			return err
		}
	} else {
		img, err := draw()
		if err != nil {
			return err
		}
		if err := imaging.Save(img, path); err != nil {
			return err
		}
	}
	res.Created = append(res.Created, path)
	return nil
}

// Badge draws a solid card with a white outline and a centred white label.
// The label shrinks until it fits; on very small badges it is dropped.
func Badge(w, h int, fill, label string) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid badge size %dx%d", w, h)
	}
	dc := gg.NewContext(w, h)
	dc.SetHexColor(fill)
	dc.Clear()

	dc.SetColor(color.White)
	stroke := max(1.0, float64(min(w, h))/40)
	dc.SetLineWidth(stroke)
	dc.DrawRectangle(stroke/2, stroke/2, float64(w)-stroke, float64(h)-stroke)
	dc.Stroke()

	if face := fitLabel(dc, label, float64(w)-4*stroke, float64(h)-4*stroke); face != nil {
		dc.SetFontFace(face)
		dc.DrawStringAnchored(label, float64(w)/2, float64(h)/2, 0.5, 0.35)
	}
	return dc.Image(), nil
}

func fitLabel(dc *gg.Context, label string, maxW, maxH float64) font.Face {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil
	}
	for size := 20.0; size >= 6; size-- {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return nil
		}
		dc.SetFontFace(face)
		if w, h := dc.MeasureString(label); w <= maxW && h <= maxH {
			return face
		}
	}
	return nil
}

// QR encodes text as a QR code scaled to w×h.
func QR(text string, w, h int) (image.Image, error) {
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	q.DisableBorder = min(w, h) < 64
	img := q.Image(max(w, h, 64))
	return imaging.Resize(img, w, h, imaging.NearestNeighbor), nil
}

func svgBadge(fill string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100" viewBox="0 0 100 100">
<rect x="2" y="2" width="96" height="96" fill="%s" stroke="#FFFFFF" stroke-width="4"/>
<circle cx="50" cy="50" r="24" fill="#FFFFFF"/>
</svg>
`, fill)
}
