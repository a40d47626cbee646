package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/bagtoad/slidegen/internal/audit"
	"github.com/bagtoad/slidegen/internal/dataset"
	"github.com/bagtoad/slidegen/internal/doctor"
	"github.com/bagtoad/slidegen/internal/mover"
)

func contains(t *testing.T, output string, checks ...string) {
	t.Helper()
	for _, check := range checks {
		if !strings.Contains(output, check) {
			t.Errorf("report missing %q\nFull output:\n%s", check, output)
		}
	}
}

func TestPairs(t *testing.T) {
	entries := []dataset.PairEntry{
		{PairID: 0, StyleLabel: 1, FontLabel: 1},
		{PairID: 1, StyleLabel: 0, FontLabel: 0, Differences: []string{"font"}},
		{PairID: 2, StyleLabel: 0, FontLabel: 1},
	}
	var buf bytes.Buffer
	Pairs(&buf, entries, "data")

	contains(t, buf.String(),
		"=== Summary ===",
		"Pairs generated:     3",
		"Identical style:     1",
		"Different style:     2",
		"Same font:           2",
		"Different font:      1",
		"Unchanged draws:     1",
		"Output:              data",
		"dataset.csv",
	)
}

func TestCaptions(t *testing.T) {
	entries := []dataset.CaptionEntry{
		{Source: "vision"}, {Source: "content"}, {Source: "vision"},
	}
	var buf bytes.Buffer
	Captions(&buf, entries, "out")

	contains(t, buf.String(),
		"Slides generated:    3",
		"vision:",
		"content:",
		"result.csv",
		"presentation_texts.txt",
	)
}

func TestAudit(t *testing.T) {
	sum := audit.Summary{
		Pairs: 4, Identical: 2, Different: 2, SameFont: 3, LabelNoise: 1, Scored: 4,
		MeanSimilarity:   [2]float64{0.5, 0.98},
		DifferenceCounts: map[string]int{"background": 2},
	}
	noisy := []audit.Result{{PairID: 3, Img1: "/d/img1_3.png", Img2: "/d/img2_3.png", LabelNoise: true}}
	moves := []mover.MoveResult{{PairID: 3, SourcePath: "/d/img1_3.png", DestPath: "/d/label_noise/img1_3.png"}}

	var buf bytes.Buffer
	Audit(&buf, sum, noisy, moves, false)

	contains(t, buf.String(),
		"Pairs audited:       4",
		"Label noise:         1",
		"background:",
		"identical 0.980, different 0.500",
		"pair 3: img1_3.png / img2_3.png",
		"Moved img1_3.png",
	)
}

func TestAuditDryRunUnscored(t *testing.T) {
	sum := audit.Summary{Pairs: 1, MeanSimilarity: [2]float64{math.NaN(), math.NaN()}}
	moves := []mover.MoveResult{{SourcePath: "/d/a.png", DestPath: "/d/label_noise/a.png"}}

	var buf bytes.Buffer
	Audit(&buf, sum, nil, moves, true)
	output := buf.String()

	contains(t, output, "Dry Run Summary", "Would move")
	if strings.Contains(output, "Mean similarity") {
		t.Errorf("unscored audit should not print similarity:\n%s", output)
	}
}

func TestDoctor(t *testing.T) {
	checks := []doctor.Check{
		{Name: "Fonts", Status: doctor.OK, Detail: "6 fonts usable"},
		{Name: "Logos", Status: doctor.Warn, Detail: "3 of 3 files missing", Hint: "run `slidegen assets`"},
		{Name: "Write permissions", Status: doctor.Fail, Detail: "permission denied"},
	}
	var buf bytes.Buffer
	Doctor(&buf, checks)

	contains(t, buf.String(),
		"[PASS] Fonts",
		"[WARN] Logos",
		"run `slidegen assets`",
		"[FAIL] Write permissions",
		"Results: 1/3 checks passed",
		"Fix the failures",
	)
}
