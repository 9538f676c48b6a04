package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark/util"

	"github.com/eykd/tanmark-go/internal/doc"
)

// run is a piece of inline content: text with marks, or a hard break.
type run struct {
	text  string
	marks doc.MarkSet
	brk   bool
}

// emphasis records where a bold or italic span was written.
type emphasis struct {
	mark        doc.MarkType
	first, last int // run indices
	open, close int // byte offsets of the delimiters
}

// inline renders the inline content of a textblock. Whitespace at the start
// and end of the block and around hard breaks is dropped since Markdown
// cannot carry it; newlines inside text become spaces. Emphasis whose
// delimiters would not be read back as emphasis is written as plain text.
func inline(block *doc.Node, heading bool) string {
	runs := trimRuns(collectRuns(block))
	for {
		out, spans := renderRuns(runs, heading)
		bad := unflanked(out, spans)
		if len(bad) == 0 {
			return out
		}
		for _, e := range bad {
			for i := e.first; i <= e.last; i++ {
				runs[i].marks = runs[i].marks.Remove(e.mark)
			}
		}
	}
}

func renderRuns(runs []run, heading bool) (string, []emphasis) {
	var (
		out     strings.Builder
		active  doc.MarkSet
		open    []emphasis
		done    []emphasis
		pending string
		last    int
	)
	lineStart := func() bool {
		s := out.String()
		return s == "" || strings.HasSuffix(s, "\n")
	}
	closeTo := func(keep int) {
		for i := len(active) - 1; i >= keep; i-- {
			if isEmphasis(active[i]) {
				e := open[i]
				e.last, e.close = last, out.Len()
				done = append(done, e)
			}
			out.WriteString(closer(active[i]))
		}
		active = active[:keep]
		open = open[:keep]
	}
	for i, r := range runs {
		if r.brk {
			closeTo(0)
			pending = ""
			out.WriteString("\\\n")
			continue
		}
		lead, core, trail := splitSpace(r.text)
		if r.marks.Has(doc.MarkCode) {
			lead, core, trail = "", r.text, ""
		}
		if core == "" {
			pending += r.text
			continue
		}
		keep := 0
		for keep < len(active) && keep < len(r.marks) && active[keep] == r.marks[keep] &&
			active[keep].Type != doc.MarkCode {
			keep++
		}
		closeTo(keep)
		out.WriteString(pending + lead)
		pending = ""
		for _, m := range r.marks[keep:] {
			if m.Type == doc.MarkCode {
				continue
			}
			open = append(open, emphasis{mark: m.Type, first: i, open: out.Len()})
			out.WriteString(opener(m))
			active = append(active, m)
		}
		if r.marks.Has(doc.MarkCode) {
			out.WriteString(codeSpan(core))
		} else {
			text := escapeText(core, lineStart())
			if heading && i == len(runs)-1 {
				text = escapeClosingHashes(text)
			}
			out.WriteString(text)
		}
		pending = trail
		last = i
	}
	closeTo(0)
	return out.String(), done
}

func isEmphasis(m doc.Mark) bool {
	return m.Type == doc.MarkBold || m.Type == doc.MarkItalic
}

// unflanked returns the spans whose opening run cannot open or whose closing
// run cannot close under the CommonMark flanking rules for '*'.
func unflanked(out string, spans []emphasis) []emphasis {
	delim := make([]bool, len(out))
	for _, e := range spans {
		n := len(opener(doc.Mark{Type: e.mark}))
		for k := 0; k < n; k++ {
			delim[e.open+k] = true
			delim[e.close+k] = true
		}
	}
	var bad []emphasis
	for _, e := range spans {
		before, after := delimiterNeighbours(out, delim, e.open)
		canOpen := leftFlanking(before, after)
		before, after = delimiterNeighbours(out, delim, e.close)
		canClose := leftFlanking(after, before)
		if !canOpen || !canClose {
			bad = append(bad, e)
		}
	}
	return bad
}

// delimiterNeighbours returns the runes around the delimiter run containing
// offset at. Block edges count as whitespace.
func delimiterNeighbours(out string, delim []bool, at int) (before, after rune) {
	start, end := at, at
	for start > 0 && delim[start-1] {
		start--
	}
	for end < len(out) && delim[end] {
		end++
	}
	before, after = '\n', '\n'
	if start > 0 {
		before, _ = utf8.DecodeLastRuneInString(out[:start])
	}
	if end < len(out) {
		after, _ = utf8.DecodeRuneInString(out[end:])
	}
	return before, after
}

// leftFlanking reports whether a delimiter run between before and after is
// left-flanking. A run is right-flanking when leftFlanking(after, before).
func leftFlanking(before, after rune) bool {
	if util.IsSpaceRune(after) {
		return false
	}
	return !util.IsPunctRune(after) || util.IsSpaceRune(before) || util.IsPunctRune(before)
}

func collectRuns(block *doc.Node) []run {
	var runs []run
	for i := 0; i < block.ChildCount(); i++ {
		c := block.Child(i)
		if c.Kind() == doc.KindHardBreak {
			runs = append(runs, run{brk: true})
			continue
		}
		text := strings.ReplaceAll(c.Text(), "\r\n", " ")
		text = strings.ReplaceAll(text, "\n", " ")
		runs = append(runs, run{text: text, marks: c.Marks()})
	}
	return runs
}

// trimRuns drops whitespace at the block edges and around hard breaks, and
// hard breaks that would start or end the block.
func trimRuns(runs []run) []run {
	trimmed := make([]run, 0, len(runs))
	for i, r := range runs {
		if r.brk {
			continue
		}
		if i == 0 || runs[i-1].brk {
			r.text = strings.TrimLeftFunc(r.text, unicode.IsSpace)
		}
		if i == len(runs)-1 || runs[i+1].brk {
			r.text = strings.TrimRightFunc(r.text, unicode.IsSpace)
		}
		runs[i] = r
	}
	seenText := false
	for i, r := range runs {
		if r.brk {
			if seenText && hasTextAfter(runs[i+1:]) {
				trimmed = append(trimmed, r)
			}
			continue
		}
		if r.text == "" {
			continue
		}
		seenText = true
		trimmed = append(trimmed, r)
	}
	return trimmed
}

func hasTextAfter(runs []run) bool {
	for _, r := range runs {
		if !r.brk && r.text != "" {
			return true
		}
	}
	return false
}

func splitSpace(s string) (lead, core, trail string) {
	core = strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRightFunc(core, unicode.IsSpace)
	trail = core[len(trimmed):]
	return lead, trimmed, trail
}

func opener(m doc.Mark) string {
	switch m.Type {
	case doc.MarkLink:
		return "["
	case doc.MarkBold:
		return "**"
	case doc.MarkItalic:
		return "*"
	}
	return ""
}

func closer(m doc.Mark) string {
	switch m.Type {
	case doc.MarkLink:
		return "](" + destination(m.Href) + ")"
	case doc.MarkBold:
		return "**"
	case doc.MarkItalic:
		return "*"
	}
	return ""
}

// codeSpan wraps text in a backtick run longer than any inside it, padding
// with spaces where the parser would otherwise strip or merge them.
func codeSpan(text string) string {
	fence := strings.Repeat("`", longestRun(text, '`')+1)
	pad := strings.HasPrefix(text, "`") || strings.HasSuffix(text, "`") ||
		(strings.HasPrefix(text, " ") && strings.HasSuffix(text, " ") && strings.TrimSpace(text) != "")
	if pad {
		return fence + " " + text + " " + fence
	}
	return fence + text + fence
}
