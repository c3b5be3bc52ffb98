package store

// Template is a stored generation pattern selected to drive a request.
type Template struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Class       string `json:"class"`
	PageType    string `json:"pageType,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Content     string `json:"content,omitempty"`
}

// CreateTemplateRequest is a merchant-authored template.
type CreateTemplateRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Class       string `json:"class"`
	PageType    string `json:"page_type"`
	ContentType string `json:"content_type"`
}
