package analysis

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"copydesk/internal/domain/services"
)

// Elements whose end starts a new line of text.
const blockSelector = "p, h1, h2, h3, h4, h5, h6, li, tr, div, br, td, th"

type contentAnalyzerService struct{}

// NewContentAnalyzer creates a new content analyzer service
func NewContentAnalyzer() services.ContentAnalyzer {
	return &contentAnalyzerService{}
}

// CountWords counts the words in the visible text of an HTML fragment
func (s *contentAnalyzerService) CountWords(html string) int {
	words := strings.FieldsFunc(s.PlainText(html), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) && r != '\'' && r != '-'
	})
	return len(words)
}

// PlainText strips markup from an HTML fragment. Block boundaries become
// newlines; runs of spaces collapse.
func (s *contentAnalyzerService) PlainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// The html5 parser accepts any input; a read error is the only failure
		return ""
	}
	doc.Find("script, style, iframe").Remove()

	// Mark block ends so the text keeps its line structure
	doc.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		if goquery.NodeName(sel) == "br" {
			sel.ReplaceWithHtml("\n")
			return
		}
		sel.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
