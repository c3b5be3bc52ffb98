package config

import "time"

const (
	// MaxSEOKeywords is the number of SEO keywords a generation request may carry.
	MaxSEOKeywords = 3

	// ListingPageSize is the number of catalog rows fetched per listing window.
	// The platform caps a connection page at 250; 50 keeps GraphQL query cost
	// well under the bucket size.
	ListingPageSize = 50

	// MaxTemplateTitleLength is the maximum length for template names.
	MaxTemplateTitleLength = 255

	// MaxTemplateContentLength bounds the template body sent to the backend.
	MaxTemplateContentLength = 20000

	// MaxBrandFieldLength is the maximum length of brand word and slogan.
	MaxBrandFieldLength = 255

	// MaxUploadSize is the largest image accepted for data URL embedding.
	MaxUploadSize = 5 << 20

	// MaxSelection bounds the number of products in one batch job.
	MaxSelection = 250

	// PublishHistoryLimit is the number of publish records shown per review.
	PublishHistoryLimit = 10
)

const (
	// DefaultPollInterval is the delay between batch progress polls.
	DefaultPollInterval = 5 * time.Second

	// MaxPollBackoff caps the delay after consecutive failed polls.
	MaxPollBackoff = 60 * time.Second

	// PollJitter is the fraction of the interval randomly added or removed.
	PollJitter = 0.1
)
