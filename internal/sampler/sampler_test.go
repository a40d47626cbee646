package sampler

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/bagtoad/slidegen/internal/content"
	"github.com/bagtoad/slidegen/internal/slide"
)

func testPools() Pools {
	return Pools{
		Fonts:             []string{"a.ttf", "b.ttf", "c.ttf"},
		FontSizes:         []int{12, 14, 16},
		TitleFontSizes:    []int{20, 22, 24},
		Backgrounds:       []string{"#FFFFFF", "#F0F0F0", "#E6F3FF"},
		TextColors:        []string{"#000000", "#333333"},
		BorderWidths:      []int{0, 2, 4},
		BorderColor:       "#000000",
		Logos:             []string{"logo1.png", "logo2.png"},
		LogoPositions:     slide.LogoPositions,
		Images:            []string{"img1.png", "img2.png", "img3.png"},
		TableBorderWidths: []int{1, 2},
		TableBorderColors: []string{"#000000", "#666666"},
		LineSpacings:      []int{1, 2},
		TableRows:         Range{Min: 2, Max: 4},
		TableCols:         Range{Min: 2, Max: 3},
		IncludeTables:     true,
		ImageChance:       0.3,
		TextLines:         Range{Min: 1, Max: 3},
	}
}

func degeneratePools() Pools {
	p := testPools()
	p.Fonts = []string{"only.ttf"}
	p.FontSizes = []int{14}
	p.TitleFontSizes = []int{22}
	p.Backgrounds = []string{"#FFFFFF"}
	p.TextColors = []string{"#000000"}
	p.BorderWidths = []int{2}
	p.Logos = nil
	p.TableBorderWidths = []int{1}
	p.TableBorderColors = []string{"#000000"}
	p.IncludeTables = false
	return p
}

func newSampler(t *testing.T, pools Pools, seed uint64, opts ...Option) *Sampler {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed))
	s, err := New(pools, rng, content.NewRandom(rng), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewRejectsEmptyPool(t *testing.T) {
	p := testPools()
	p.Backgrounds = nil
	_, err := New(p, rand.New(rand.NewPCG(1, 1)), content.NewRandom(rand.New(rand.NewPCG(1, 1))))
	if !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool, got %v", err)
	}
}

func TestPoolsValidateRejectsUndrawableValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Pools)
	}{
		{"negative border", func(p *Pools) { p.BorderWidths = []int{0, -2} }},
		{"negative table border", func(p *Pools) { p.TableBorderWidths = []int{-1} }},
		{"zero line spacing", func(p *Pools) { p.LineSpacings = []int{1, 0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPools()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
	if err := testPools().Validate(); err != nil {
		t.Errorf("valid pools: %v", err)
	}
}

func TestBalancedPairsQuota(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 4, 7, 10, 51} {
		s := newSampler(t, testPools(), uint64(n)+1)
		pairs, err := s.BalancedPairs(context.Background(), n)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(pairs) != n {
			t.Fatalf("n=%d: got %d pairs", n, len(pairs))
		}
		ones := 0
		for i, p := range pairs {
			if p.ID != i {
				t.Errorf("n=%d: pair %d has ID %d", n, i, p.ID)
			}
			ones += p.StyleLabel
		}
		if ones != n/2 {
			t.Errorf("n=%d: %d identical pairs, want %d", n, ones, n/2)
		}
		if zeros := n - ones; zeros != n-n/2 {
			t.Errorf("n=%d: %d differing pairs, want %d", n, zeros, n-n/2)
		}
	}
}

func TestIdenticalPairsShareStyle(t *testing.T) {
	s := newSampler(t, testPools(), 42)
	pairs, err := s.BalancedPairs(context.Background(), 200)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range pairs {
		if p.StyleLabel != 1 {
			continue
		}
		if d := slide.Differences(p.First, p.Second); len(d) != 0 {
			t.Fatalf("identical pair %d differs in %v", p.ID, d)
		}
		if p.FontLabel != 1 {
			t.Errorf("identical pair %d has font label 0", p.ID)
		}
	}
}

func TestPairsShareContent(t *testing.T) {
	s := newSampler(t, testPools(), 9)
	pairs, err := s.BalancedPairs(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range pairs {
		a, b := p.First, p.Second
		if a.Title != b.Title || a.Body != b.Body || a.Images != b.Images {
			t.Errorf("pair %d does not share text or images", p.ID)
		}
		if a.LineSpacing != b.LineSpacing || a.Border != b.Border {
			t.Errorf("pair %d does not share line spacing or border flag", p.ID)
		}
		if a.Table != nil && b.Table != nil && len(a.Table.Rows) != len(b.Table.Rows) {
			t.Errorf("pair %d does not share its table grid", p.ID)
		}
		for _, tbl := range []*slide.Table{a.Table, b.Table} {
			if tbl != nil {
				if err := tbl.Validate(); err != nil {
					t.Errorf("pair %d: %v", p.ID, err)
				}
			}
		}
	}
}

func TestFontLabelFollowsFontPath(t *testing.T) {
	s := newSampler(t, testPools(), 3)
	pairs, err := s.BalancedPairs(context.Background(), 300)
	if err != nil {
		t.Fatal(err)
	}
	sawDifferentFont := false
	for _, p := range pairs {
		want := 0
		if p.First.Font == p.Second.Font {
			want = 1
		} else {
			sawDifferentFont = true
		}
		if p.FontLabel != want {
			t.Errorf("pair %d: font label %d, fonts %q/%q", p.ID, p.FontLabel, p.First.Font, p.Second.Font)
		}
	}
	if !sawDifferentFont {
		t.Error("no differing fonts in 300 pairs")
	}
}

func TestDegeneratePools(t *testing.T) {
	s := newSampler(t, degeneratePools(), 5)
	pairs, err := s.BalancedPairs(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range pairs {
		if p.StyleLabel == 1 && len(p.Differences) != 0 {
			t.Errorf("identical pair %d differs in %v", p.ID, p.Differences)
		}
		if p.StyleLabel == 0 && p.FontLabel != 1 {
			t.Errorf("pair %d: single font pool must give font label 1", p.ID)
		}
	}
}

func TestDifferingDrawMayCoincide(t *testing.T) {
	s := newSampler(t, degeneratePools(), 8)
	coincided := false
	for i := 0; i < 200 && !coincided; i++ {
		p := s.Draw(context.Background(), false)
		if p.StyleLabel != 0 {
			t.Fatalf("differing draw labelled %d", p.StyleLabel)
		}
		coincided = len(p.Differences) == 0
	}
	if !coincided {
		t.Error("expected at least one attribute-identical differing draw with degenerate pools")
	}
}

func TestForceDifference(t *testing.T) {
	s := newSampler(t, degeneratePools(), 8, WithForceDifference())
	for i := 0; i < 200; i++ {
		p := s.Draw(context.Background(), false)
		if len(p.Differences) == 0 {
			t.Fatalf("draw %d: forced differing pair has no differences", i)
		}
	}
}

func TestComplex(t *testing.T) {
	s := newSampler(t, testPools(), 13)
	for i := 0; i < 50; i++ {
		a := s.Complex(context.Background())
		if !a.Border || !a.Bullet {
			t.Error("complex slide must have border and bullets")
		}
		if a.Logo == nil {
			t.Error("complex slide must have a logo")
		}
		if !a.Table.Drawable() {
			t.Error("complex slide must have a table")
		}
		if a.Images[0] == "" || a.Images[1] == "" || a.Images[0] == a.Images[1] {
			t.Errorf("expected two distinct images, got %v", a.Images)
		}
		if a.Body[0] == "" || a.Body[1] == "" {
			t.Error("complex slide must have two body lines")
		}
		if err := a.Validate(); err != nil {
			t.Errorf("invalid complex slide: %v", err)
		}
	}
}
