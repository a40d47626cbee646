package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bagtoad/slidegen/internal/config"
	"github.com/bagtoad/slidegen/internal/dataset"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"224x224", 224, 224, false},
		{"1024X768", 1024, 768, false},
		{" 640 x 480 ", 640, 480, false},
		{"640", 0, 0, true},
		{"0x10", 0, 0, true},
		{"axb", 0, 0, true},
	}
	for _, tt := range tests {
		w, h, err := parseSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSize(%q) error = %v", tt.in, err)
			continue
		}
		if w != tt.w || h != tt.h {
			t.Errorf("parseSize(%q) = %dx%d, want %dx%d", tt.in, w, h, tt.w, tt.h)
		}
	}
}

func TestLoadConfigAppliesSetFlagsOnly(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var o options
	cmd := pairsCmd(&o)
	flags := cmd.Flags()
	for name, value := range map[string]string{
		"samples":          "12",
		"force-difference": "true",
		"no-tables":        "true",
	} {
		if err := flags.Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	cfg, src, err := loadConfig(cmd, &o)
	if err != nil {
		t.Fatal(err)
	}
	if src != "built-in defaults" {
		t.Errorf("source = %q", src)
	}
	if cfg.Samples != 12 || !cfg.ForceDifference || cfg.IncludeTables {
		t.Errorf("flags not applied: samples %d force %v tables %v", cfg.Samples, cfg.ForceDifference, cfg.IncludeTables)
	}
	def := config.Default()
	if cfg.OutDir != def.OutDir || cfg.Width != def.Width || cfg.LLM.Enabled {
		t.Errorf("unset flags changed the config: %+v", cfg)
	}
}

func TestLoadConfigFontDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	for _, name := range []string{"a.ttf", "sub/b.otf", "notes.txt"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	o := options{fontDir: dir}
	cmd := captionsCmd(&o)
	cfg, _, err := loadConfig(cmd, &o)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Fonts) != 2 {
		t.Errorf("fonts = %v", cfg.Fonts)
	}
}

func TestFinishPairsWritesPartialManifest(t *testing.T) {
	cfg := config.Default()
	cfg.OutDir = t.TempDir()
	cfg.Samples = 10
	entries := []dataset.PairEntry{
		{PairID: 0, Img1: filepath.Join(cfg.OutDir, "img1_0.png"), Img2: filepath.Join(cfg.OutDir, "img2_0.png"), StyleLabel: 1, FontLabel: 1},
		{PairID: 1, Img1: filepath.Join(cfg.OutDir, "img1_1.png"), Img2: filepath.Join(cfg.OutDir, "img2_1.png")},
	}

	err := finishPairs(cfg, entries, context.Canceled)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("finishPairs error = %v, want context.Canceled", err)
	}
	m, err := dataset.ReadPairs(filepath.Join(cfg.OutDir, dataset.MetadataFile))
	if err != nil {
		t.Fatalf("metadata not written: %v", err)
	}
	if m.NumSamples != 2 || len(m.Dataset) != 2 {
		t.Errorf("manifest holds %d samples, want 2", m.NumSamples)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutDir, dataset.PairsCSVFile)); err != nil {
		t.Errorf("csv not written: %v", err)
	}
}

func TestFinishPairsWithoutEntries(t *testing.T) {
	cfg := config.Default()
	cfg.OutDir = t.TempDir()
	if err := finishPairs(cfg, nil, context.Canceled); !errors.Is(err, context.Canceled) {
		t.Fatalf("finishPairs error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutDir, dataset.MetadataFile)); !os.IsNotExist(err) {
		t.Errorf("metadata written for an empty interrupted run: %v", err)
	}
}

func TestFinishCaptionsWritesPartialManifest(t *testing.T) {
	cfg := config.Default()
	cfg.OutDir = t.TempDir()
	entries := []dataset.CaptionEntry{
		{ImageID: 0, ImagePath: "slide_0.png", Filename: "slide_0.png", Text: dataset.DisabledCaption, Source: "disabled"},
	}

	if err := finishCaptions(cfg, false, entries, context.Canceled); !errors.Is(err, context.Canceled) {
		t.Fatalf("finishCaptions error = %v, want context.Canceled", err)
	}
	data, err := os.ReadFile(filepath.Join(cfg.OutDir, dataset.TextsFile))
	if err != nil {
		t.Fatalf("texts not written: %v", err)
	}
	if !strings.Contains(string(data), "=== Slide 0: slide_0.png ===") {
		t.Errorf("texts file = %q", data)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutDir, dataset.MetadataFile)); err != nil {
		t.Errorf("metadata not written: %v", err)
	}
}
