package services

// ContentAnalyzer handles content analysis operations
type ContentAnalyzer interface {
	// CountWords counts words in the visible text of an HTML fragment
	CountWords(html string) int

	// PlainText strips markup, returning the visible text
	PlainText(html string) string
}
