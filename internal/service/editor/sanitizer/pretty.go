package sanitizer

import (
	"regexp"
	"strings"
)

// Elements a line break may follow without changing rendered content:
// whitespace between these is dropped when the HTML is parsed again.
var (
	breakAfterEnd = map[string]bool{
		"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"table": true, "thead": true, "tbody": true, "tfoot": true, "tr": true, "td": true, "th": true,
		"div": true, "ul": true, "ol": true, "li": true, "iframe": true, "blockquote": true,
	}
	breakAfterStart = map[string]bool{
		"table": true, "thead": true, "tbody": true, "tfoot": true, "tr": true,
		"ul": true, "ol": true,
	}
)

var blankLines = regexp.MustCompile(`\n(?:[ \t\r]*\n)+`)

// PrettyPrint puts block-level tags on their own lines for the raw editor and
// collapses blank lines. Breaks are only inserted between block boundaries,
// so parsing the result gives the same document as parsing the input.
func PrettyPrint(html string) string {
	var b strings.Builder
	b.Grow(len(html) + len(html)/16)

	tagStart := -1
	for i := 0; i < len(html); i++ {
		c := html[i]
		switch c {
		case '<':
			tagStart = i
		case '>':
			b.WriteByte(c)
			if tagStart >= 0 && i+1 < len(html) && html[i+1] == '<' && breaksAfter(html[tagStart:i+1]) {
				b.WriteByte('\n')
			}
			tagStart = -1
			continue
		}
		b.WriteByte(c)
	}

	return blankLines.ReplaceAllString(b.String(), "\n")
}

// breaksAfter reports whether a newline may follow tag.
func breaksAfter(tag string) bool {
	name, closing := tagName(tag)
	if closing {
		return breakAfterEnd[name]
	}
	return breakAfterStart[name]
}

func tagName(tag string) (string, bool) {
	s := strings.TrimPrefix(tag, "<")
	closing := strings.HasPrefix(s, "/")
	s = strings.TrimPrefix(s, "/")
	end := strings.IndexAny(s, " \t\n\r\f/>")
	if end < 0 {
		end = len(s)
	}
	return strings.ToLower(s[:end]), closing
}
