package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// File names written next to the rendered images.
const (
	MetadataFile = "dataset_metadata.json"
	PairsCSVFile = "dataset.csv"
	ResultFile   = "result.csv"
	TextsFile    = "presentation_texts.txt"
)

// DateLayout formats generation_date.
const DateLayout = "2006-01-02 15:04:05"

// PairManifest is the metadata document of a pairs-mode run.
type PairManifest struct {
	GenerationDate string      `json:"generation_date"`
	NumSamples     int         `json:"num_samples"`
	Configuration  any         `json:"configuration"`
	Dataset        []PairEntry `json:"dataset"`
}

// CaptionManifest is the metadata document of a captions-mode run.
type CaptionManifest struct {
	GenerationDate           string         `json:"generation_date"`
	NumSamples               int            `json:"num_samples"`
	ComplexImages            bool           `json:"complex_images"`
	AllFeaturesEnabled       bool           `json:"all_features_enabled"`
	PresentationTextsEnabled bool           `json:"presentation_texts_enabled"`
	Configuration            any            `json:"configuration"`
	Dataset                  []CaptionEntry `json:"dataset"`
}

// NewPairManifest stamps entries with the generation time.
func NewPairManifest(now time.Time, cfg any, entries []PairEntry) PairManifest {
	return PairManifest{
		GenerationDate: now.Format(DateLayout),
		NumSamples:     len(entries),
		Configuration:  cfg,
		Dataset:        entries,
	}
}

// NewCaptionManifest stamps entries with the generation time.
func NewCaptionManifest(now time.Time, cfg any, captions bool, entries []CaptionEntry) CaptionManifest {
	return CaptionManifest{
		GenerationDate:           now.Format(DateLayout),
		NumSamples:               len(entries),
		ComplexImages:            true,
		AllFeaturesEnabled:       true,
		PresentationTextsEnabled: captions,
		Configuration:            cfg,
		Dataset:                  entries,
	}
}

// WritePairs writes dataset_metadata.json and dataset.csv into dir.
func WritePairs(dir string, m PairManifest) error {
	if err := writeJSON(filepath.Join(dir, MetadataFile), m); err != nil {
		return err
	}
	rows := [][]string{{"pair_id", "img1", "img2", "style_label", "font_label", "differences"}}
	for _, e := range m.Dataset {
		rows = append(rows, []string{
			strconv.Itoa(e.PairID),
			filepath.Base(e.Img1),
			filepath.Base(e.Img2),
			strconv.Itoa(e.StyleLabel),
			strconv.Itoa(e.FontLabel),
			strings.Join(e.Differences, ";"),
		})
	}
	return writeCSV(filepath.Join(dir, PairsCSVFile), rows)
}

// WriteCaptions writes dataset_metadata.json, result.csv and
// presentation_texts.txt into dir.
func WriteCaptions(dir string, m CaptionManifest) error {
	if err := writeJSON(filepath.Join(dir, MetadataFile), m); err != nil {
		return err
	}

	rows := [][]string{{"img_path", "text", "in-sync"}}
	for _, e := range m.Dataset {
		rows = append(rows, []string{e.ImagePath, e.Text, "1"})
	}
	if err := writeCSV(filepath.Join(dir, ResultFile), rows); err != nil {
		return err
	}

	var b strings.Builder
	for _, e := range m.Dataset {
		fmt.Fprintf(&b, "=== Slide %d: %s ===\n%s\n\n", e.ImageID, e.Filename, e.Text)
	}
	if err := os.WriteFile(filepath.Join(dir, TextsFile), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", TextsFile, err)
	}
	return nil
}

// ReadPairs loads a pairs-mode metadata file.
func ReadPairs(path string) (PairManifest, error) {
	var m PairManifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("reading manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return m, nil
}

// ResolvePaths points image paths that do not exist as recorded at the
// file of the same name in dir, so a dataset can be audited after it was
// moved.
func (m *PairManifest) ResolvePaths(dir string) {
	resolve := func(p string) string {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		return filepath.Join(dir, filepath.Base(p))
	}
	for i := range m.Dataset {
		m.Dataset[i].Img1 = resolve(m.Dataset[i].Img1)
		m.Dataset[i].Img2 = resolve(m.Dataset[i].Img2)
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
