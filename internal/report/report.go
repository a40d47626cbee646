// Package report prints run summaries.
package report

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"

	"github.com/bagtoad/slidegen/internal/audit"
	"github.com/bagtoad/slidegen/internal/dataset"
	"github.com/bagtoad/slidegen/internal/doctor"
	"github.com/bagtoad/slidegen/internal/mover"
)

// Pairs summarises a pairs-mode run.
func Pairs(w io.Writer, entries []dataset.PairEntry, outDir string) {
	var identical, sameFont, noDiff int
	for _, e := range entries {
		if e.StyleLabel == 1 {
			identical++
		} else if len(e.Differences) == 0 {
			noDiff++
		}
		if e.FontLabel == 1 {
			sameFont++
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Summary ===")
	fmt.Fprintf(w, "Pairs generated:     %d\n", len(entries))
	fmt.Fprintf(w, "Identical style:     %d\n", identical)
	fmt.Fprintf(w, "Different style:     %d\n", len(entries)-identical)
	fmt.Fprintf(w, "Same font:           %d\n", sameFont)
	fmt.Fprintf(w, "Different font:      %d\n", len(entries)-sameFont)
	if noDiff > 0 {
		fmt.Fprintf(w, "Unchanged draws:     %d (run `slidegen audit` to review)\n", noDiff)
	}
	fmt.Fprintf(w, "Output:              %s\n", outDir)
	fmt.Fprintf(w, "  %s\n  %s\n", dataset.MetadataFile, dataset.PairsCSVFile)
	fmt.Fprintln(w)
}

// Captions summarises a captions-mode run, counting captions by source.
func Captions(w io.Writer, entries []dataset.CaptionEntry, outDir string) {
	sources := make(map[string]int)
	for _, e := range entries {
		sources[e.Source]++
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Summary ===")
	fmt.Fprintf(w, "Slides generated:    %d\n", len(entries))
	for _, s := range sortedKeys(sources) {
		fmt.Fprintf(w, "  %-18s %d\n", s+":", sources[s])
	}
	fmt.Fprintf(w, "Output:              %s\n", outDir)
	fmt.Fprintf(w, "  %s\n  %s\n  %s\n", dataset.MetadataFile, dataset.ResultFile, dataset.TextsFile)
	fmt.Fprintln(w)
}

// Audit summarises an audit and, if any, the quarantine moves.
func Audit(w io.Writer, sum audit.Summary, noisy []audit.Result, moves []mover.MoveResult, dryRun bool) {
	fmt.Fprintln(w)
	if dryRun {
		fmt.Fprintln(w, "=== Dry Run Summary ===")
	} else {
		fmt.Fprintln(w, "=== Summary ===")
	}
	fmt.Fprintf(w, "Pairs audited:       %d\n", sum.Pairs)
	fmt.Fprintf(w, "Identical style:     %d\n", sum.Identical)
	fmt.Fprintf(w, "Different style:     %d\n", sum.Different)
	fmt.Fprintf(w, "Same font:           %d\n", sum.SameFont)
	fmt.Fprintf(w, "Label noise:         %d\n", sum.LabelNoise)

	if len(sum.DifferenceCounts) > 0 {
		fmt.Fprintln(w, "Differing attributes:")
		for _, name := range sortedKeys(sum.DifferenceCounts) {
			fmt.Fprintf(w, "  %-18s %d\n", name+":", sum.DifferenceCounts[name])
		}
	}

	if sum.Scored > 0 {
		fmt.Fprintf(w, "Pairs scored:        %d\n", sum.Scored)
		fmt.Fprintf(w, "Mean similarity:     identical %s, different %s\n",
			similarity(sum.MeanSimilarity[1]), similarity(sum.MeanSimilarity[0]))
	}

	for _, r := range noisy {
		fmt.Fprintf(w, "  pair %d: %s / %s have identical attributes\n",
			r.PairID, filepath.Base(r.Img1), filepath.Base(r.Img2))
	}

	if len(moves) == 0 {
		fmt.Fprintln(w)
		return
	}
	verb := "Moved"
	if dryRun {
		verb = "Would move"
	}
	fmt.Fprintln(w)
	for _, m := range moves {
		fmt.Fprintf(w, "  %s %s → %s\n", verb, filepath.Base(m.SourcePath), m.DestPath)
	}
	fmt.Fprintln(w)
}

// Doctor prints one line per check and a pass count.
func Doctor(w io.Writer, checks []doctor.Check) {
	passed := 0
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Environment ===")
	for _, c := range checks {
		if c.Status == doctor.OK {
			passed++
		}
		fmt.Fprintf(w, "[%s] %-18s %s\n", c.Status, c.Name, c.Detail)
		if c.Hint != "" && c.Status != doctor.OK {
			fmt.Fprintf(w, "       %s\n", c.Hint)
		}
	}
	fmt.Fprintf(w, "\nResults: %d/%d checks passed\n", passed, len(checks))
	if doctor.Failed(checks) {
		fmt.Fprintln(w, "Fix the failures above before generating a dataset.")
	}
}

func similarity(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
