// Package audit checks a generated pair dataset: how many style attributes
// actually differ per pair, which "different" pairs are attribute-identical,
// and optionally how alike the two renders look to CLIP.
package audit

import (
	"fmt"
	"io"
	"log"
	"math"

	"github.com/bagtoad/slidegen/internal/dataset"
)

// Scorer profiles a rendered slide against text descriptors and returns one
// probability per descriptor.
type Scorer interface {
	Profile(path string, descriptors []string) ([]float32, error)
}

// Descriptors are the visual traits a slide profile is measured over.
var Descriptors = []string{
	"a plain white background",
	"a light grey background",
	"a cream coloured background",
	"a thick dark border",
	"no border",
	"a small logo in a corner",
	"bullet points",
	"a data table with grid lines",
	"embedded pictures",
	"a large title",
	"serif lettering",
	"sans-serif lettering",
	"bold lettering",
	"monospaced lettering",
}

// Result is the audit of one pair.
type Result struct {
	PairID      int
	Img1, Img2  string
	StyleLabel  int
	FontLabel   int
	Differences []string
	// LabelNoise marks a "different" pair whose attributes came out equal.
	LabelNoise bool
	// Similarity is the cosine similarity of the two CLIP profiles; valid
	// only when Scored.
	Similarity float64
	Scored     bool
}

// Options configures Pairs.
type Options struct {
	// Scorer may be nil, which skips the visual comparison.
	Scorer      Scorer
	Descriptors []string
	Logger      *log.Logger
}

// Pairs audits every manifest entry. Pairs that cannot be scored are
// reported with a warning and kept unscored.
func Pairs(entries []dataset.PairEntry, opts Options, progressFn func(current, total int)) []Result {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	descriptors := opts.Descriptors
	if len(descriptors) == 0 {
		descriptors = Descriptors
	}

	results := make([]Result, 0, len(entries))
	for i, e := range entries {
		if progressFn != nil {
			progressFn(i+1, len(entries))
		}
		r := Result{
			PairID:      e.PairID,
			Img1:        e.Img1,
			Img2:        e.Img2,
			StyleLabel:  e.StyleLabel,
			FontLabel:   e.FontLabel,
			Differences: e.Differences,
			LabelNoise:  e.StyleLabel == 0 && len(e.Differences) == 0,
		}
		if opts.Scorer != nil {
			sim, err := similarity(opts.Scorer, e.Img1, e.Img2, descriptors)
			if err != nil {
				logger.Printf("Warning: cannot score pair %d: %v", e.PairID, err)
			} else {
				r.Similarity, r.Scored = sim, true
			}
		}
		results = append(results, r)
	}
	return results
}

func similarity(s Scorer, img1, img2 string, descriptors []string) (float64, error) {
	p1, err := s.Profile(img1, descriptors)
	if err != nil {
		return 0, err
	}
	p2, err := s.Profile(img2, descriptors)
	if err != nil {
		return 0, err
	}
	return Cosine(p1, p2)
}

// Cosine returns the cosine similarity of two equal-length vectors.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("profile lengths differ: %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0, fmt.Errorf("zero-length profile")
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// Summary aggregates audit results.
type Summary struct {
	Pairs      int
	Identical  int
	Different  int
	SameFont   int
	LabelNoise int
	Scored     int
	// MeanSimilarity is indexed by style label; NaN when no pair with that
	// label was scored.
	MeanSimilarity [2]float64
	// DifferenceCounts counts how often each attribute differed.
	DifferenceCounts map[string]int
}

// Summarize aggregates results.
func Summarize(results []Result) Summary {
	s := Summary{Pairs: len(results), DifferenceCounts: make(map[string]int)}
	var sums [2]float64
	var counts [2]int
	for _, r := range results {
		if r.StyleLabel == 1 {
			s.Identical++
		} else {
			s.Different++
		}
		if r.FontLabel == 1 {
			s.SameFont++
		}
		if r.LabelNoise {
			s.LabelNoise++
		}
		for _, d := range r.Differences {
			s.DifferenceCounts[d]++
		}
		if r.Scored && (r.StyleLabel == 0 || r.StyleLabel == 1) {
			s.Scored++
			sums[r.StyleLabel] += r.Similarity
			counts[r.StyleLabel]++
		}
	}
	for l := range sums {
		s.MeanSimilarity[l] = math.NaN()
		if counts[l] > 0 {
			s.MeanSimilarity[l] = sums[l] / float64(counts[l])
		}
	}
	return s
}

// Noisy returns the pairs flagged as label noise.
func Noisy(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.LabelNoise {
			out = append(out, r)
		}
	}
	return out
}
