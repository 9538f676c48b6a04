package rules

import (
	"regexp"

	"github.com/eykd/tanmark-go/internal/doc"
)

var imageFull = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)]+?)(?:\s+"([^"]*)")?\)$`)

// ParseImageMarkdown parses the complete image syntax ![alt](src) or
// ![alt](src "title"). It reports false when value is anything else.
func ParseImageMarkdown(value string) (doc.Attrs, bool) {
	m := imageFull.FindStringSubmatch(value)
	if m == nil {
		return doc.Attrs{}, false
	}
	return doc.Attrs{Alt: m[1], Src: m[2], Title: m[3]}, true
}

// BuildImageMarkdown is the inverse of ParseImageMarkdown. The title is
// omitted when empty.
func BuildImageMarkdown(a doc.Attrs) string {
	if a.Title != "" {
		return "![" + a.Alt + "](" + a.Src + ` "` + a.Title + `")`
	}
	return "![" + a.Alt + "](" + a.Src + ")"
}
