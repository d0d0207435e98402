// Package syntax classifies rendered line text into highlight tags and maps
// each tag to a display colour.
package syntax

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tag classifies one rendered character for colour lookup.
type Tag uint8

const (
	TagNormal Tag = iota
	TagNumber
	TagSearchMatch
)

func (t Tag) String() string {
	switch t {
	case TagNormal:
		return "normal"
	case TagNumber:
		return "number"
	case TagSearchMatch:
		return "match"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Highlighter is one syntax variant. Only one is active per session.
//
// Classify must return exactly one tag per rune of render. Tags of later
// characters may depend on earlier ones, so callers always classify a whole
// line rather than patching a range.
type Highlighter interface {
	Name() string
	Classify(render []rune) []Tag
	ColorFor(tag Tag) lipgloss.TerminalColor
}

// DefaultName is the variant used when none is configured.
const DefaultName = "number"

var registry = map[string]Highlighter{
	"number": Number{},
	"none":   Plain{},
}

// Lookup returns the registered variant with the given name.
func Lookup(name string) (Highlighter, error) {
	h, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown syntax %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return h, nil
}

// Default returns the default variant.
func Default() Highlighter {
	return registry[DefaultName]
}

// Names lists the registered variant names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Plain tags everything TagNormal. Search matches still get a colour.
type Plain struct{}

func (Plain) Name() string { return "none" }

func (Plain) Classify(render []rune) []Tag {
	return make([]Tag, len(render))
}

func (Plain) ColorFor(tag Tag) lipgloss.TerminalColor {
	if tag == TagSearchMatch {
		return searchColor
	}
	return lipgloss.NoColor{}
}

var (
	numberColor = lipgloss.Color("6") // cyan
	searchColor = lipgloss.Color("4") // blue
)
