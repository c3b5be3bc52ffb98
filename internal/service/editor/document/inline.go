package document

import (
	"slices"
	"strings"
	"unicode/utf8"

	"copydesk/internal/domain/models/content"
)

func hasMark(marks []content.MarkType, m content.MarkType) bool {
	return slices.Contains(marks, m)
}

// sortMarks orders marks by content.MarkOrder, dropping duplicates.
func sortMarks(marks []content.MarkType) []content.MarkType {
	if len(marks) == 0 {
		return nil
	}
	out := make([]content.MarkType, 0, len(marks))
	for _, m := range content.MarkOrder {
		if hasMark(marks, m) {
			out = append(out, m)
		}
	}
	return out
}

func sameMarks(a, b []content.MarkType) bool {
	return slices.Equal(sortMarks(a), sortMarks(b))
}

// isCollapsible reports the whitespace that HTML rendering collapses.
// Non-breaking spaces are content.
func isCollapsible(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if isCollapsible(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// normalizeInline collapses whitespace the way a browser renders it, trims
// the edges of the textblock and around hard breaks, and merges adjacent text
// nodes that carry the same marks.
func normalizeInline(nodes []*content.Node) []*content.Node {
	var out []*content.Node
	lastSpace := true // at block start, leading space is dropped
	for _, n := range nodes {
		if n.Type != content.NodeText {
			if n.Type == content.NodeHardBreak {
				trimTrailingSpace(out)
				lastSpace = true
			} else {
				lastSpace = false
			}
			out = append(out, n)
			continue
		}

		text := collapseWhitespace(n.Text)
		if lastSpace {
			text = strings.TrimPrefix(text, " ")
		}
		if text == "" {
			continue
		}
		lastSpace = strings.HasSuffix(text, " ")
		out = append(out, &content.Node{Type: content.NodeText, Text: text, Marks: sortMarks(n.Marks)})
	}
	trimTrailingSpace(out)
	return mergeText(out)
}

// trimTrailingSpace drops one trailing space from the last text node,
// removing the node if it becomes empty.
func trimTrailingSpace(nodes []*content.Node) {
	if len(nodes) == 0 {
		return
	}
	last := nodes[len(nodes)-1]
	if last.Type == content.NodeText {
		last.Text = strings.TrimSuffix(last.Text, " ")
	}
}

// mergeText joins adjacent text nodes with equal marks and drops empty ones.
func mergeText(nodes []*content.Node) []*content.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if n.Type == content.NodeText {
			if n.Text == "" {
				continue
			}
			if len(out) > 0 {
				prev := out[len(out)-1]
				if prev.Type == content.NodeText && sameMarks(prev.Marks, n.Marks) {
					prev.Text += n.Text
					continue
				}
			}
		}
		out = append(out, n)
	}
	return out
}

// nodeLen is the number of selection positions an inline node occupies.
func nodeLen(n *content.Node) int {
	if n.Type == content.NodeText {
		return utf8.RuneCountInString(n.Text)
	}
	return 1
}

func inlineLen(nodes []*content.Node) int {
	total := 0
	for _, n := range nodes {
		total += nodeLen(n)
	}
	return total
}

// splitAt ensures a node boundary at offset, splitting a text node if needed.
func splitAt(nodes []*content.Node, offset int) []*content.Node {
	pos := 0
	for i, n := range nodes {
		l := nodeLen(n)
		if n.Type == content.NodeText && offset > pos && offset < pos+l {
			runes := []rune(n.Text)
			left := &content.Node{Type: content.NodeText, Text: string(runes[:offset-pos]), Marks: slices.Clone(n.Marks)}
			right := &content.Node{Type: content.NodeText, Text: string(runes[offset-pos:]), Marks: slices.Clone(n.Marks)}
			return slices.Concat(nodes[:i], []*content.Node{left, right}, nodes[i+1:])
		}
		pos += l
		if pos >= offset {
			break
		}
	}
	return nodes
}

// rangeHasMark reports whether every text node within [from, to) carries m.
// A range without text has no marks.
func rangeHasMark(nodes []*content.Node, from, to int, m content.MarkType) bool {
	pos, seen := 0, false
	for _, n := range nodes {
		l := nodeLen(n)
		if n.Type == content.NodeText && pos < to && pos+l > from {
			if !n.HasMark(m) {
				return false
			}
			seen = true
		}
		pos += l
	}
	return seen
}

// toggleMarkInRange adds m to every text node in [from, to), or removes it
// when the whole range already carries it.
func toggleMarkInRange(nodes []*content.Node, from, to int, m content.MarkType) []*content.Node {
	active := rangeHasMark(nodes, from, to, m)
	nodes = splitAt(splitAt(nodes, from), to)

	pos := 0
	for _, n := range nodes {
		l := nodeLen(n)
		if n.Type == content.NodeText && pos >= from && pos+l <= to {
			if active {
				n.Marks = slices.DeleteFunc(n.Marks, func(have content.MarkType) bool { return have == m })
				if len(n.Marks) == 0 {
					n.Marks = nil
				}
			} else {
				n.Marks = sortMarks(append(slices.Clone(n.Marks), m))
			}
		}
		pos += l
	}
	return mergeText(nodes)
}
