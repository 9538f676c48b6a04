// Package rules implements the pattern rules that turn typed or pasted
// Markdown syntax into marks and nodes.
package rules

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/eykd/tanmark-go/internal/doc"
)

// Target says what a rule produces.
type Target int

const (
	TargetMark Target = iota
	TargetNode
)

// Rule is a stateless pattern rule.
//
// Input is anchored at the end of the text before the caret; Paste is its
// global form. Both expose the named group "span" for the whole syntax; mark
// rules add "text" for the content that keeps the mark, node rules pass their
// submatches to Build.
type Rule struct {
	Name      string
	Input     *regexp.Regexp
	Paste     *regexp.Regexp
	AppliesTo Target
	Mark      doc.Mark
	Build     func(groups map[string]string) doc.Attrs
}

// Delimiters need no surrounding whitespace so CJK text can carry emphasis.
// Single-delimiter rules refuse an opener preceded by the same delimiter so
// that typing **bold** never closes as italic at **bold*.
var (
	BoldStar = Rule{
		Name:      "bold",
		Input:     regexp.MustCompile(`(?:^|[^*])(?P<span>\*\*(?P<text>[^*]+)\*\*)$`),
		Paste:     regexp.MustCompile(`(?P<span>\*\*(?P<text>[^*]+)\*\*)`),
		AppliesTo: TargetMark,
		Mark:      doc.Bold(),
	}
	BoldUnderscore = Rule{
		Name:      "bold",
		Input:     regexp.MustCompile(`(?:^|[^_])(?P<span>__(?P<text>[^_]+)__)$`),
		Paste:     regexp.MustCompile(`(?P<span>__(?P<text>[^_]+)__)`),
		AppliesTo: TargetMark,
		Mark:      doc.Bold(),
	}
	ItalicStar = Rule{
		Name:      "italic",
		Input:     regexp.MustCompile(`(?:^|[^*])(?P<span>\*(?P<text>[^*]+)\*)$`),
		Paste:     regexp.MustCompile(`(?P<span>\*(?P<text>[^*]+)\*)`),
		AppliesTo: TargetMark,
		Mark:      doc.Italic(),
	}
	ItalicUnderscore = Rule{
		Name:      "italic",
		Input:     regexp.MustCompile(`(?:^|[^_])(?P<span>_(?P<text>[^_]+)_)$`),
		Paste:     regexp.MustCompile(`(?P<span>_(?P<text>[^_]+)_)`),
		AppliesTo: TargetMark,
		Mark:      doc.Italic(),
	}
	ImageSyntax = Rule{
		Name:      "image",
		Input:     regexp.MustCompile(`(?P<span>!\[(?P<alt>[^\]]*)\]\((?P<src>[^)]+?)(?:\s+"(?P<title>[^"]*)")?\))$`),
		Paste:     regexp.MustCompile(`(?P<span>!\[(?P<alt>[^\]]*)\]\((?P<src>[^)]+?)(?:\s+"(?P<title>[^"]*)")?\))`),
		AppliesTo: TargetNode,
		Build: func(g map[string]string) doc.Attrs {
			return doc.Attrs{Alt: g["alt"], Src: g["src"], Title: g["title"]}
		},
	}
)

// DefaultRules returns the built-in rules in registration order.
func DefaultRules() []Rule {
	return []Rule{BoldStar, BoldUnderscore, ItalicStar, ItalicUnderscore, ImageSyntax}
}

// objectReplacement stands in for non-text inline leaves when rules read a
// textblock.
const objectReplacement = "\uFFFC"

// blockText returns the inline content of a textblock as a string in which
// every rune occupies exactly one position.
func blockText(block *doc.Node) string {
	var b strings.Builder
	for i := 0; i < block.ChildCount(); i++ {
		c := block.Child(i)
		if c.Kind() == doc.KindText {
			b.WriteString(c.Text())
			continue
		}
		b.WriteString(objectReplacement)
	}
	return b.String()
}

// match is one rule hit in rune offsets relative to the textblock content.
type match struct {
	rule     Rule
	from, to int
	textFrom int
	textTo   int
	groups   map[string]string
}

// newMatch converts a regexp submatch index (byte offsets into s) into rune
// offsets.
func newMatch(r Rule, re *regexp.Regexp, s string, loc []int) match {
	runeAt := func(b int) int { return utf8.RuneCountInString(s[:b]) }
	m := match{rule: r, groups: map[string]string{}}
	for i, name := range re.SubexpNames() {
		if name == "" || loc[2*i] < 0 {
			continue
		}
		m.groups[name] = s[loc[2*i]:loc[2*i+1]]
		switch name {
		case "span":
			m.from, m.to = runeAt(loc[2*i]), runeAt(loc[2*i+1])
		case "text":
			m.textFrom, m.textTo = runeAt(loc[2*i]), runeAt(loc[2*i+1])
		}
	}
	return m
}

// shift moves the match by off runes.
func (m match) shift(off int) match {
	m.from += off
	m.to += off
	m.textFrom += off
	m.textTo += off
	return m
}

// touchesCode reports whether any text in the content range [from, to) of
// block carries the code mark.
func touchesCode(block *doc.Node, from, to int) bool {
	for _, n := range block.Cut(from, to) {
		if n.Marks().Has(doc.MarkCode) {
			return true
		}
	}
	return false
}
