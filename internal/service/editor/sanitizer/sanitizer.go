// Package sanitizer strips scripts and inline event handlers from HTML typed
// into the raw editor, and pretty-prints HTML for editing.
//
// Sanitize is not a security boundary. Content leaving the app goes through
// the bluemonday publish policy as well.
package sanitizer

import (
	"regexp"
	"strings"
)

var (
	scriptElement  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	danglingScript = regexp.MustCompile(`(?is)<script\b.*$`)

	// A start tag, with quoted attribute values that may contain '>'.
	startTag = regexp.MustCompile(`<[a-zA-Z][^>"']*(?:"[^"]*"[^>"']*|'[^']*'[^>"']*)*>`)

	// One attribute with its leading whitespace; group 1 is the name.
	attribute = regexp.MustCompile(`\s+([^\s"'=<>/]+)(?:\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'>]+))?`)

	eventHandlerName = regexp.MustCompile(`^(?i:on\w+)$`)
)

// Sanitize removes <script> elements with their content and every on*
// attribute. Input without either is returned unchanged, and
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(html string) string {
	// Removing one script can join the halves of another, e.g.
	// "<scr<script></script>ipt>", so passes repeat until nothing changes.
	// Every pass that changes the string shortens it.
	for {
		next := sanitizeOnce(html)
		if next == html {
			return html
		}
		html = next
	}
}

func sanitizeOnce(html string) string {
	out := scriptElement.ReplaceAllString(html, "")
	if out == html {
		out = danglingScript.ReplaceAllString(out, "")
	}
	return startTag.ReplaceAllStringFunc(out, stripHandlers)
}

// stripHandlers removes on* attributes from a single start tag.
func stripHandlers(tag string) string {
	nameEnd := strings.IndexAny(tag, " \t\n\r\f/>")
	if nameEnd < 0 {
		return tag
	}
	head, rest := tag[:nameEnd], tag[nameEnd:]

	var b strings.Builder
	pos := 0
	for _, m := range attribute.FindAllStringSubmatchIndex(rest, -1) {
		if !eventHandlerName.MatchString(rest[m[2]:m[3]]) {
			continue
		}
		b.WriteString(rest[pos:m[0]])
		pos = m[1]
	}
	if pos == 0 {
		return tag
	}
	b.WriteString(rest[pos:])
	return head + b.String()
}
