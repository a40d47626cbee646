package compositor

import (
	"fmt"
	"log"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type faceKey struct {
	path string
	size float64
}

// fontCache parses each font file once and caches faces per size. A font
// that cannot be loaded is reported once and replaced by Go Regular.
type fontCache struct {
	mu     sync.Mutex
	fonts  map[string]*opentype.Font
	faces  map[faceKey]font.Face
	failed map[string]bool
	logger *log.Logger

	fallbackOnce sync.Once
	fallback     *opentype.Font
}

func newFontCache(logger *log.Logger) *fontCache {
	return &fontCache{
		fonts:  make(map[string]*opentype.Font),
		faces:  make(map[faceKey]font.Face),
		failed: make(map[string]bool),
		logger: logger,
	}
}

// face returns a face for path at size pixels. An empty path selects the
// built-in default font without a warning.
func (fc *fontCache) face(path string, size float64) font.Face {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	key := faceKey{path: path, size: size}
	if f, ok := fc.faces[key]; ok {
		return f
	}

	parsed := fc.load(path)
	if parsed == nil {
		parsed = fc.defaultFont()
	}
	if parsed == nil {
		return basicfont.Face7x13
	}

	f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		fc.logger.Printf("Warning: could not create face for %s at %.0fpx: %v", displayPath(path), size, err)
		return basicfont.Face7x13
	}
	fc.faces[key] = f
	return f
}

func (fc *fontCache) load(path string) *opentype.Font {
	if path == "" || fc.failed[path] {
		return nil
	}
	if f, ok := fc.fonts[path]; ok {
		return f
	}
	f, err := parseFontFile(path)
	if err != nil {
		fc.failed[path] = true
		fc.logger.Printf("Warning: could not load font %s, using default: %v", path, err)
		return nil
	}
	fc.fonts[path] = f
	return f
}

func (fc *fontCache) defaultFont() *opentype.Font {
	fc.fallbackOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fc.logger.Printf("Warning: could not parse built-in font: %v", err)
			return
		}
		fc.fallback = f
	})
	return fc.fallback
}

func parseFontFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	return f, nil
}

func displayPath(path string) string {
	if path == "" {
		return "default font"
	}
	return path
}

// ascent returns the distance from the top of a line box to its baseline.
func ascent(f font.Face) float64 {
	return float64(f.Metrics().Ascent) / 64
}

func descent(f font.Face) float64 {
	return float64(f.Metrics().Descent) / 64
}
