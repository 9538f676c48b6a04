package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eykd/tanmark-go/internal/doc"
)

func TestParseImageMarkdown(t *testing.T) {
	tests := []struct {
		in     string
		want   doc.Attrs
		wantOK bool
	}{
		{"![logo](logo.png)", doc.Attrs{Alt: "logo", Src: "logo.png"}, true},
		{`![logo](logo.png "The Logo")`, doc.Attrs{Alt: "logo", Src: "logo.png", Title: "The Logo"}, true},
		{"![](a.png)", doc.Attrs{Src: "a.png"}, true},
		{"![logo](logo.png", doc.Attrs{}, false},
		{"![logo]()", doc.Attrs{}, false},
		{"x ![logo](logo.png)", doc.Attrs{}, false},
		{"", doc.Attrs{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseImageMarkdown(tt.in)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBuildImageMarkdown(t *testing.T) {
	require.Equal(t, "![a](a.png)", BuildImageMarkdown(doc.Attrs{Alt: "a", Src: "a.png"}))
	require.Equal(t, `![a](a.png "t")`, BuildImageMarkdown(doc.Attrs{Alt: "a", Src: "a.png", Title: "t"}))

	attrs := doc.Attrs{Alt: "a b", Src: "img/a.png", Title: "x"}
	parsed, ok := ParseImageMarkdown(BuildImageMarkdown(attrs))
	require.True(t, ok)
	require.Equal(t, attrs, parsed)
}
