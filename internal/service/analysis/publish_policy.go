package analysis

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Embeds allowed in published descriptions.
var videoEmbedSrc = regexp.MustCompile(`^https://(www\.youtube\.com/embed/|www\.youtube-nocookie\.com/embed/|player\.vimeo\.com/video/)[\w-]+`)

var textAlign = regexp.MustCompile(`^(left|center|right|justify)$`)

// PublishPolicy sanitizes generated HTML before it is written back to the
// catalog. It keeps what the editor produces: formatting, headings, tables,
// text alignment, data URL images and video embeds.
//
// Thread-safe for concurrent use.
type PublishPolicy struct {
	policy *bluemonday.Policy
}

// NewPublishPolicy creates the policy
func NewPublishPolicy() *PublishPolicy {
	// Start with UGC policy (balanced security/functionality)
	policy := bluemonday.UGCPolicy()
	policy.AllowDataURIImages()

	policy.AllowStyles("text-align").Matching(textAlign).OnElements("p", "h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("td", "th")

	policy.AllowAttrs("src").Matching(videoEmbedSrc).OnElements("iframe")
	policy.AllowAttrs("width", "height").Matching(bluemonday.Integer).OnElements("iframe")
	policy.AllowAttrs("frameborder").Matching(bluemonday.Integer).OnElements("iframe")
	policy.AllowAttrs("allowfullscreen").OnElements("iframe")

	return &PublishPolicy{policy: policy}
}

// Sanitize removes everything the policy does not allow
func (p *PublishPolicy) Sanitize(html string) string {
	return p.policy.Sanitize(html)
}
