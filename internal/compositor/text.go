package compositor

import "strings"

const ellipsis = "..."

// Measurer reports the rendered size of a string in the current font.
// *gg.Context satisfies it.
type Measurer interface {
	MeasureString(s string) (w, h float64)
}

func width(m Measurer, s string) float64 {
	w, _ := m.MeasureString(s)
	return w
}

// Wrap breaks text into lines no wider than maxWidth without splitting words.
// A single word wider than maxWidth stays on its own line. Text without any
// words comes back as a single line.
func Wrap(m Measurer, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	var lines []string
	var current []string
	for _, word := range words {
		candidate := strings.Join(append(current, word), " ")
		if width(m, candidate) <= maxWidth {
			current = append(current, word)
			continue
		}
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
		}
		current = []string{word}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	if len(lines) == 0 {
		return []string{text}
	}
	return lines
}

// FitTitle wraps a title to at most two lines. When wrapping needs more, the
// second line carries all remaining words and is shortened character by
// character, with an ellipsis, until it fits. A first line holding a single
// word wider than maxWidth is shortened the same way.
func FitTitle(m Measurer, title string, maxWidth float64) []string {
	lines := Wrap(m, title, maxWidth)
	if width(m, lines[0]) > maxWidth {
		lines[0] = shorten(m, lines[0], maxWidth)
	}
	if len(lines) <= 2 {
		return lines
	}
	second := strings.Join(lines[1:], " ")
	if width(m, second) > maxWidth {
		second = shorten(m, second, maxWidth)
	}
	return []string{lines[0], second}
}

func shorten(m Measurer, s string, maxWidth float64) string {
	runes := []rune(s)
	for n := len(runes); n > 1; n-- {
		candidate := string(runes[:n]) + ellipsis
		if width(m, candidate) <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

// Truncate shortens text until it fits maxWidth, appending an ellipsis once
// any characters have been removed. If nothing with an ellipsis fits, the
// first character alone is tried, then the empty string. Truncating an
// already truncated string at the same width returns it unchanged.
func Truncate(m Measurer, text string, maxWidth float64) string {
	if text == "" {
		return ""
	}
	if width(m, text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := string(runes[:n]) + ellipsis
		if width(m, candidate) <= maxWidth {
			return candidate
		}
	}
	first := string(runes[:1])
	if width(m, first) <= maxWidth {
		return first
	}
	return ""
}
