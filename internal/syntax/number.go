package syntax

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// Number highlights numeric literals: runs of digits that start after a
// separator, with '.' allowed inside a run for simple decimals.
type Number struct{}

func (Number) Name() string { return "number" }

func (Number) Classify(render []rune) []Tag {
	tags := make([]Tag, len(render))
	prevSep := true
	for i, c := range render {
		prev := TagNormal
		if i > 0 {
			prev = tags[i-1]
		}
		if (isDigit(c) && (prevSep || prev == TagNumber)) || (c == '.' && prev == TagNumber) {
			tags[i] = TagNumber
			prevSep = false
			continue
		}
		tags[i] = TagNormal
		prevSep = IsSeparator(c)
	}
	return tags
}

func (Number) ColorFor(tag Tag) lipgloss.TerminalColor {
	switch tag {
	case TagNumber:
		return numberColor
	case TagSearchMatch:
		return searchColor
	default:
		return lipgloss.NoColor{}
	}
}

const separators = ",.()+-/*=~%<>\"';"

// IsSeparator reports whether c ends a token for the number detector.
func IsSeparator(c rune) bool {
	return unicode.IsSpace(c) || strings.ContainsRune(separators, c)
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }
