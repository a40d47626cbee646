package clip

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

const (
	startToken = "<|startoftext|>"
	endToken   = "<|endoftext|>"
	wordSuffix = "</w>"
	contextLen = 77
)

var wordPattern = regexp.MustCompile(`<\|startoftext\|>|<\|endoftext\|>|'s|'t|'re|'ve|'m|'ll|'d|[\pL]+|[\pN]|[^\s\pL\pN]+`)

// byteRunes is CLIP's reversible byte-to-rune table: printable bytes map to
// themselves, the rest to runes from 256 upward.
var byteRunes = func() [256]rune {
	var t [256]rune
	n := 0
	for b := 0; b < 256; b++ {
		r := rune(b)
		if (r >= '!' && r <= '~') || (r >= 0xA1 && r <= 0xAC) || (r >= 0xAE && r <= 0xFF) {
			t[b] = r
			continue
		}
		t[b] = rune(256 + n)
		n++
	}
	return t
}()

// Tokenizer is CLIP's byte-level BPE tokenizer.
type Tokenizer struct {
	vocab  map[string]int
	ranks  map[[2]string]int
	start  int
	end    int
	merged map[string][]string
}

// LoadTokenizer reads vocab.json and merges.txt.
func LoadTokenizer(vocabPath, mergesPath string) (*Tokenizer, error) {
	data, err := os.ReadFile(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read vocab file: %w", err)
	}
	var vocab map[string]int
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("cannot parse vocab file: %w", err)
	}
	start, ok1 := vocab[startToken]
	end, ok2 := vocab[endToken]
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("vocab file %s lacks start/end tokens", vocabPath)
	}

	data, err = os.ReadFile(mergesPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read merges file: %w", err)
	}
	ranks := make(map[[2]string]int)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#version") {
			continue
		}
		a, b, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		ranks[[2]string{a, b}] = len(ranks)
	}

	return &Tokenizer{vocab: vocab, ranks: ranks, start: start, end: end, merged: make(map[string][]string)}, nil
}

// Encode returns the token ids of text wrapped in start/end tokens, padded
// with zeros or truncated to the 77-token context.
func (t *Tokenizer) Encode(text string) []int64 {
	ids := []int{t.start}
	for _, word := range wordPattern.FindAllString(strings.ToLower(strings.TrimSpace(text)), -1) {
		var b strings.Builder
		for i := 0; i < len(word); i++ {
			b.WriteRune(byteRunes[word[i]])
		}
		for _, piece := range t.bpe(b.String()) {
			if id, ok := t.vocab[piece]; ok {
				ids = append(ids, id)
			}
		}
	}
	ids = append(ids, t.end)

	out := make([]int64, contextLen)
	for i := 0; i < contextLen && i < len(ids); i++ {
		out[i] = int64(ids[i])
	}
	return out
}

// EncodeBatch encodes each prompt and concatenates the rows.
func (t *Tokenizer) EncodeBatch(prompts []string) []int64 {
	out := make([]int64, 0, len(prompts)*contextLen)
	for _, p := range prompts {
		out = append(out, t.Encode(p)...)
	}
	return out
}

// bpe merges the lowest-ranked adjacent pair until none is left. Results
// are memoised per word.
func (t *Tokenizer) bpe(word string) []string {
	if word == "" {
		return nil
	}
	if pieces, ok := t.merged[word]; ok {
		return pieces
	}

	runes := []rune(word)
	pieces := make([]string, len(runes))
	for i, r := range runes {
		pieces[i] = string(r)
	}
	pieces[len(pieces)-1] += wordSuffix

	for len(pieces) > 1 {
		best, bestRank := -1, 0
		for i := 0; i+1 < len(pieces); i++ {
			if rank, ok := t.ranks[[2]string{pieces[i], pieces[i+1]}]; ok && (best < 0 || rank < bestRank) {
				best, bestRank = i, rank
			}
		}
		if best < 0 {
			break
		}
		a, b := pieces[best], pieces[best+1]
		next := pieces[:0:0]
		for i := 0; i < len(pieces); i++ {
			if i+1 < len(pieces) && pieces[i] == a && pieces[i+1] == b {
				next = append(next, a+b)
				i++
				continue
			}
			next = append(next, pieces[i])
		}
		pieces = next
	}

	t.merged[word] = pieces
	return pieces
}
