// Package content produces placeholder slide text: random pseudo-words for
// titles and bullets, and random or numbered table grids.
package content

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const letters = "abcdefghijklmnopqrstuvwxyz"

// RandomLength picks one of six length buckets uniformly and returns a word
// count drawn from that bucket.
func RandomLength(rng *rand.Rand) int {
	switch rng.IntN(6) {
	case 0: // very short
		return 1
	case 1: // short
		return between(rng, 1, 2)
	case 2: // medium-short
		return between(rng, 2, 4)
	case 3: // medium
		return between(rng, 3, 6)
	case 4: // long
		return between(rng, 5, 8)
	default: // very long
		return between(rng, 7, 10)
	}
}

// RandomText joins numWords pseudo-words of minLen..maxLen lowercase letters.
// Each word is capitalised with probability 0.5. A numWords of zero or less
// picks a length bucket with RandomLength.
func RandomText(rng *rand.Rand, numWords, minLen, maxLen int) string {
	if numWords <= 0 {
		numWords = RandomLength(rng)
	}
	title := cases.Title(language.English)
	words := make([]string, numWords)
	for i := range words {
		n := between(rng, minLen, maxLen)
		var b strings.Builder
		b.Grow(n)
		for j := 0; j < n; j++ {
			b.WriteByte(letters[rng.IntN(len(letters))])
		}
		w := b.String()
		if rng.Float64() < 0.5 {
			w = title.String(w)
		}
		words[i] = w
	}
	return strings.Join(words, " ")
}

// between returns a uniform integer in [lo, hi].
func between(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}

// Random is a content source backed by pseudo-words.
type Random struct {
	rng *rand.Rand
	// Numbered switches table content to "Column N" / "Data r-c".
	Numbered bool
}

// NewRandom returns a Random source drawing from rng.
func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (r *Random) Title(ctx context.Context) string {
	return RandomText(r.rng, 0, 2, 12)
}

func (r *Random) Bullet(ctx context.Context, title string) string {
	return RandomText(r.rng, 0, 2, 12)
}

func (r *Random) TableHeaders(ctx context.Context, n int) []string {
	headers := make([]string, n)
	for i := range headers {
		if r.Numbered {
			headers[i] = fmt.Sprintf("Column %d", i+1)
			continue
		}
		headers[i] = RandomText(r.rng, between(r.rng, 1, 2), 3, 8)
	}
	return headers
}

// TableCell ignores the header; row is 1-based.
func (r *Random) TableCell(ctx context.Context, header string, row, col int) string {
	if r.Numbered {
		return fmt.Sprintf("Data %d-%d", row, col)
	}
	return RandomText(r.rng, between(r.rng, 1, 3), 2, 10)
}
