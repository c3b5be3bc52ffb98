package store

// PlaceholderImage is used when a product or collection has no media.
const PlaceholderImage = "/images/placeholder.png"

// MissingTimestamp is rendered when the backend has no update time for a product.
const MissingTimestamp = "--"

// StatusTab filters the product listing by catalog status.
type StatusTab string

const (
	TabAll      StatusTab = ""
	TabActive   StatusTab = "ACTIVE"
	TabDraft    StatusTab = "DRAFT"
	TabArchived StatusTab = "ARCHIVED"
)

// Product is one row of the product listing.
type Product struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Handle          string `json:"handle"`
	Status          string `json:"status"`
	ImageURL        string `json:"image_url"`
	DescriptionHTML string `json:"description_html"`
	SEODescription  string `json:"seo_description,omitempty"`
	UpdatedAt       string `json:"updated_at"`

	// Filled from the generation backend
	GeneratedAt     string `json:"generated_at"`
	GenerateContent string `json:"generate_content,omitempty"`
}

// Collection is one row of the collection listing.
type Collection struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Handle          string `json:"handle"`
	ImageURL        string `json:"image_url"`
	DescriptionHTML string `json:"description_html"`
	UpdatedAt       string `json:"updated_at"`
}

// PageInfo carries the cursor pagination markers of a listing window.
type PageInfo struct {
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	StartCursor     string `json:"startCursor"`
	EndCursor       string `json:"endCursor"`
}

// Page is one cursor-paginated window over the catalog.
type Page[T any] struct {
	Items    []T      `json:"items"`
	PageInfo PageInfo `json:"page_info"`
}

// PageRequest selects a listing window. At most one of After/Before is set.
type PageRequest struct {
	Query  string `json:"query"`
	First  int    `json:"first"`
	After  string `json:"after,omitempty"`
	Before string `json:"before,omitempty"`
}

// ProductRecord is the generation backend's view of a product.
type ProductRecord struct {
	ProductID       string `json:"productId"`
	UpdateTime      string `json:"updateTime"`
	GenerateContent string `json:"generateContent"`
}
