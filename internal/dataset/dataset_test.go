package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bagtoad/slidegen/internal/content"
	"github.com/bagtoad/slidegen/internal/sampler"
	"github.com/bagtoad/slidegen/internal/slide"
)

// fakeRenderer records every render and fails the first failFirst calls.
type fakeRenderer struct {
	mu        sync.Mutex
	calls     []string
	failFirst int
}

func (f *fakeRenderer) Render(a slide.AttributeSet, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	if len(f.calls) <= f.failFirst {
		return errors.New("disk full")
	}
	return os.WriteFile(path, []byte("png"), 0o644)
}

type fakeCaptioner struct {
	vision      bool
	contentArgs []string
}

func (f *fakeCaptioner) CaptionFromImage(ctx context.Context, path string, maxLen int) (string, bool) {
	if f.vision {
		return "A slide seen by a model", true
	}
	return "Presentation about this slide (analysis unavailable)", false
}

func (f *fakeCaptioner) CaptionFromContent(ctx context.Context, title string, bullets, headers []string, maxLen int) string {
	f.contentArgs = append(f.contentArgs, title)
	return "From content: " + title
}

func testSampler(t *testing.T, seed uint64) *sampler.Sampler {
	t.Helper()
	pools := sampler.Pools{
		Fonts:             []string{"a.ttf", "b.ttf"},
		FontSizes:         []int{12, 14},
		TitleFontSizes:    []int{20, 22},
		Backgrounds:       []string{"#FFFFFF", "#F0F0F0"},
		TextColors:        []string{"#000000", "#333333"},
		BorderWidths:      []int{0, 2},
		BorderColor:       "#000000",
		Logos:             []string{"logo1.png"},
		LogoPositions:     slide.LogoPositions,
		Images:            []string{"img1.png", "img2.png"},
		TableBorderWidths: []int{1},
		TableBorderColors: []string{"#000000"},
		LineSpacings:      []int{1, 2},
		TableRows:         sampler.Range{Min: 2, Max: 3},
		TableCols:         sampler.Range{Min: 2, Max: 3},
		IncludeTables:     true,
		ImageChance:       0.3,
		TextLines:         sampler.Range{Min: 1, Max: 3},
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	s, err := sampler.New(pools, rng, content.NewRandom(rng))
	if err != nil {
		t.Fatalf("sampler.New: %v", err)
	}
	return s
}

func TestNewBuilderRequiresRenderer(t *testing.T) {
	_, err := NewBuilder(nil, testSampler(t, 1), Options{OutDir: t.TempDir()})
	if !errors.Is(err, ErrNoRenderer) {
		t.Fatalf("expected ErrNoRenderer, got %v", err)
	}
}

func TestPairsNamesAndLabels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	r := &fakeRenderer{}
	b, err := NewBuilder(r, testSampler(t, 2), Options{OutDir: dir})
	if err != nil {
		t.Fatal(err)
	}

	var progress []int
	entries, err := b.Pairs(context.Background(), 6, func(current, total int) {
		if total != 6 {
			t.Errorf("total = %d, want 6", total)
		}
		progress = append(progress, current)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 6 || len(progress) != 6 {
		t.Fatalf("got %d entries, %d progress calls", len(entries), len(progress))
	}
	if len(r.calls) != 12 {
		t.Errorf("renders = %d, want 12", len(r.calls))
	}

	ones := 0
	for i, e := range entries {
		if e.PairID != i {
			t.Errorf("entry %d has pair_id %d", i, e.PairID)
		}
		if filepath.Base(e.Img1) != "img1_"+strconv.Itoa(i)+".png" || filepath.Base(e.Img2) != "img2_"+strconv.Itoa(i)+".png" {
			t.Errorf("entry %d has paths %s, %s", i, e.Img1, e.Img2)
		}
		if e.StyleLabel == 1 {
			ones++
			if e.StyleMatch != "identical" || len(e.Differences) != 0 {
				t.Errorf("identical entry %d: match %q, diffs %v", i, e.StyleMatch, e.Differences)
			}
		} else if e.StyleMatch != "different" {
			t.Errorf("entry %d: style_match %q", i, e.StyleMatch)
		}
		wantFont := "different"
		if e.Slide1.Font == e.Slide2.Font {
			wantFont = "same"
		}
		if e.FontMatch != wantFont {
			t.Errorf("entry %d: font_match %q, want %q", i, e.FontMatch, wantFont)
		}
	}
	if ones != 3 {
		t.Errorf("identical pairs = %d, want 3", ones)
	}
}

func TestPairsRetriesFailedRender(t *testing.T) {
	r := &fakeRenderer{failFirst: 1}
	b, err := NewBuilder(r, testSampler(t, 3), Options{OutDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	entries, err := b.Pairs(context.Background(), 2, nil)
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if len(r.calls) != 5 {
		t.Errorf("renders = %d, want 5", len(r.calls))
	}
}

func TestPairsGivesUpAfterRetries(t *testing.T) {
	r := &fakeRenderer{failFirst: 1000}
	b, err := NewBuilder(r, testSampler(t, 4), Options{OutDir: t.TempDir(), MaxRetries: 2})
	if err != nil {
		t.Fatal(err)
	}
	entries, err := b.Pairs(context.Background(), 2, nil)
	if err != nil {
		t.Fatalf("render failures should not abort the batch: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
	if len(r.calls) != 6 {
		t.Errorf("renders = %d, want 3 per pair", len(r.calls))
	}
}

func TestCaptionsFallbackChain(t *testing.T) {
	tests := []struct {
		name       string
		captioner  Captioner
		wantSource string
		wantPrefix string
	}{
		{"disabled", nil, "disabled", DisabledCaption},
		{"vision", &fakeCaptioner{vision: true}, "vision", "A slide seen"},
		{"content", &fakeCaptioner{}, "content", "From content: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBuilder(&fakeRenderer{}, testSampler(t, 5), Options{OutDir: t.TempDir()})
			if err != nil {
				t.Fatal(err)
			}
			entries, err := b.Captions(context.Background(), 3, tt.captioner, nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 3 {
				t.Fatalf("got %d entries", len(entries))
			}
			for i, e := range entries {
				if e.Source != tt.wantSource || !strings.HasPrefix(e.Text, tt.wantPrefix) {
					t.Errorf("entry %d: source %q text %q", i, e.Source, e.Text)
				}
				if e.Filename != "img1_"+strconv.Itoa(i)+".png" {
					t.Errorf("entry %d: filename %q", i, e.Filename)
				}
				if e.Slide.Logo == nil || e.Slide.Table == nil || !e.Slide.Border {
					t.Errorf("entry %d is not a complex slide", i)
				}
			}
		})
	}
}

func TestWritePairsManifest(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBuilder(&fakeRenderer{}, testSampler(t, 6), Options{OutDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	entries, err := b.Pairs(context.Background(), 4, nil)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	if err := WritePairs(dir, NewPairManifest(now, map[string]int{"samples": 4}, entries)); err != nil {
		t.Fatal(err)
	}

	m, err := ReadPairs(filepath.Join(dir, MetadataFile))
	if err != nil {
		t.Fatal(err)
	}
	if m.GenerationDate != "2024-03-01 12:30:00" || m.NumSamples != 4 || len(m.Dataset) != 4 {
		t.Errorf("manifest header = %q/%d/%d", m.GenerationDate, m.NumSamples, len(m.Dataset))
	}
	for i, e := range m.Dataset {
		if e.StyleLabel != entries[i].StyleLabel || e.Slide1.Font != entries[i].Slide1.Font {
			t.Errorf("entry %d did not survive the manifest", i)
		}
	}

	rows := readCSV(t, filepath.Join(dir, PairsCSVFile))
	if len(rows) != 5 || rows[0][0] != "pair_id" {
		t.Fatalf("dataset.csv rows = %v", rows)
	}
	if rows[1][1] != "img1_0.png" {
		t.Errorf("first img1 = %q", rows[1][1])
	}
}

func TestWriteCaptionsFiles(t *testing.T) {
	dir := t.TempDir()
	entries := []CaptionEntry{
		{ImageID: 0, ImagePath: filepath.Join(dir, "img1_0.png"), Filename: "img1_0.png", Text: "First, with a comma"},
		{ImageID: 1, ImagePath: filepath.Join(dir, "img1_1.png"), Filename: "img1_1.png", Text: "Second"},
	}
	m := NewCaptionManifest(time.Now(), nil, true, entries)
	if err := WriteCaptions(dir, m); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, filepath.Join(dir, ResultFile))
	want := [][]string{
		{"img_path", "text", "in-sync"},
		{entries[0].ImagePath, "First, with a comma", "1"},
		{entries[1].ImagePath, "Second", "1"},
	}
	if len(rows) != len(want) {
		t.Fatalf("result.csv rows = %v", rows)
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}

	texts, err := os.ReadFile(filepath.Join(dir, TextsFile))
	if err != nil {
		t.Fatal(err)
	}
	wantTexts := "=== Slide 0: img1_0.png ===\nFirst, with a comma\n\n=== Slide 1: img1_1.png ===\nSecond\n\n"
	if string(texts) != wantTexts {
		t.Errorf("presentation_texts.txt = %q", texts)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestResolvePaths(t *testing.T) {
	dir := t.TempDir()
	here := filepath.Join(dir, "img1_0.png")
	if err := os.WriteFile(here, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}
	m := PairManifest{Dataset: []PairEntry{{Img1: here, Img2: "old/place/img2_0.png"}}}
	m.ResolvePaths(dir)
	if m.Dataset[0].Img1 != here {
		t.Errorf("existing path rewritten to %q", m.Dataset[0].Img1)
	}
	if want := filepath.Join(dir, "img2_0.png"); m.Dataset[0].Img2 != want {
		t.Errorf("Img2 = %q, want %q", m.Dataset[0].Img2, want)
	}
}
