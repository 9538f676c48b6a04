package markdown

import "strings"

const alwaysEscaped = "\\*_`[]~&<|"

// escapeText backslash-escapes characters that would otherwise start Markdown
// syntax. atLineStart adds the block-level triggers that only matter at the
// beginning of a line.
func escapeText(s string, atLineStart bool) string {
	var out strings.Builder
	out.Grow(len(s))
	digits := atLineStart
	for i, r := range s {
		switch {
		case strings.ContainsRune(alwaysEscaped, r):
			out.WriteByte('\\')
		case i == 0 && atLineStart && strings.ContainsRune("#-+>=", r):
			out.WriteByte('\\')
		case digits && (r == '.' || r == ')') && i > 0:
			out.WriteByte('\\')
		}
		if digits && (r < '0' || r > '9') {
			digits = false
		}
		out.WriteRune(r)
	}
	return out.String()
}

// escapeClosingHashes keeps a trailing run of '#' in heading text from being
// read as the optional closing sequence.
func escapeClosingHashes(s string) string {
	trimmed := strings.TrimRight(s, "#")
	if trimmed == s {
		return s
	}
	if trimmed != "" && !strings.HasSuffix(trimmed, " ") && !strings.HasSuffix(trimmed, "\t") {
		return s
	}
	return trimmed + "\\" + s[len(trimmed):]
}

// escapeReferences escapes each '&' that would start a character reference.
func escapeReferences(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	b := []byte(s)
	var out strings.Builder
	for i := 0; i < len(b); i++ {
		if b[i] == '&' && referenceEnd(b, i) > 0 {
			out.WriteByte('\\')
		}
		out.WriteByte(b[i])
	}
	return out.String()
}
