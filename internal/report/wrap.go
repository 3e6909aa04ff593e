package report

import (
	"strings"
	"unicode/utf8"
)

// Measurer returns the printed width of text at a font size.
type Measurer interface {
	Width(text string, size float64, bold bool) float64
}

// wrap breaks text into lines no wider than width. Words wider than a line
// are split between runes. Explicit newlines are kept.
func wrap(m Measurer, text string, size float64, bold bool, width float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		line := ""
		for _, w := range words {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if m.Width(candidate, size, bold) <= width {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			line = w
			for m.Width(line, size, bold) > width && utf8.RuneCountInString(line) > 1 {
				head, rest := splitToWidth(m, line, size, bold, width)
				lines = append(lines, head)
				line = rest
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitToWidth cuts the longest prefix of s that fits width, keeping at least
// one rune.
func splitToWidth(m Measurer, s string, size float64, bold bool, width float64) (string, string) {
	_, first := utf8.DecodeRuneInString(s)
	cut := first
	for i := range s {
		if i <= cut {
			continue
		}
		if m.Width(s[:i], size, bold) > width {
			break
		}
		cut = i
	}
	if m.Width(s, size, bold) <= width {
		return s, ""
	}
	return s[:cut], s[cut:]
}
