// Package backend is the HTTP client of the content-generation and billing
// backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"copydesk/internal/domain"
	"copydesk/internal/domain/models/batch"
	"copydesk/internal/domain/models/store"
)

// DefaultTimeout is the HTTP timeout for backend requests
const DefaultTimeout = 60 * time.Second

// Client implements services.GenerationBackend over JSON POST endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a backend client. A zero timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// envelope accepts both result shapes the backend uses:
// {success, message, response} and {errorCode, errorMessage, data}.
type envelope struct {
	Success  *bool           `json:"success"`
	Message  string          `json:"message"`
	Response json.RawMessage `json:"response"`

	ErrorCode    *int            `json:"errorCode"`
	ErrorMessage string          `json:"errorMessage"`
	Data         json.RawMessage `json:"data"`
}

// payload returns the result body, or an error when the backend reported
// failure.
func (e *envelope) payload() (json.RawMessage, error) {
	switch {
	case e.ErrorCode != nil:
		if *e.ErrorCode != 0 {
			return nil, fmt.Errorf("backend error %d: %s", *e.ErrorCode, e.ErrorMessage)
		}
		return e.Data, nil
	case e.Success != nil:
		if !*e.Success {
			return nil, fmt.Errorf("backend reported failure: %s", e.Message)
		}
		return e.Response, nil
	default:
		return nil, fmt.Errorf("unrecognized response envelope")
	}
}

// call posts body to path and decodes the envelope payload into out.
// out may be nil when only the success flag matters. Every failure is
// returned as a *domain.UpstreamError for operation.
func (c *Client) call(ctx context.Context, operation, shop, path string, body any, out any) error {
	start := time.Now()
	status, err := c.do(ctx, path, body, out)

	attrs := []any{
		"operation", operation,
		"shop", shop,
		"path", path,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		c.logger.Warn("backend request failed", append(attrs, "error", err)...)
		return domain.Upstream(operation, err)
	}
	c.logger.Debug("backend request", attrs...)
	return nil
}

func (c *Client) do(ctx context.Context, path string, body any, out any) (int, error) {
	payloadBytes, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
	}
	data, err := env.payload()
	if err != nil {
		return resp.StatusCode, err
	}
	if out == nil || len(data) == 0 || string(data) == "null" {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to parse payload: %w", err)
	}
	return resp.StatusCode, nil
}

// ProductRecords looks up the generation record of each product
func (c *Client) ProductRecords(ctx context.Context, shop string, productIDs []string) ([]store.ProductRecord, error) {
	var records []store.ProductRecord
	err := c.call(ctx, "getting product records", shop, "/product/getByIds", map[string]any{
		"shop":       shop,
		"productIds": productIDs,
	}, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Templates lists the shop's templates for a page and content type
func (c *Client) Templates(ctx context.Context, shop, pageType, contentType string) ([]store.Template, error) {
	var templates []store.Template
	err := c.call(ctx, "getting templates", shop, "/template/getTemplateByShop", map[string]any{
		"shop":        shop,
		"pageType":    pageType,
		"contentType": contentType,
	}, &templates)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []store.Template{}
	}
	return templates, nil
}

// CreateTemplate stores a new template
func (c *Client) CreateTemplate(ctx context.Context, shop string, req *store.CreateTemplateRequest) (*store.Template, error) {
	var tpl store.Template
	err := c.call(ctx, "creating template", shop, "/template/create", map[string]any{
		"shop":        shop,
		"title":       req.Title,
		"content":     req.Content,
		"class":       req.Class,
		"pageType":    req.PageType,
		"contentType": req.ContentType,
	}, &tpl)
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// Generate produces one product description. Newlines in the generated
// text become <br/>.
func (c *Client) Generate(ctx context.Context, shop, productID string, settings batch.Settings) (string, error) {
	body := settingsBody(shop, settings)
	body["productId"] = productID

	var text string
	if err := c.call(ctx, "generating description", shop, "/product/generateDescription", body, &text); err != nil {
		return "", err
	}
	return NewlinesToBreaks(text), nil
}

// SubmitBatch starts a batch generation job
func (c *Client) SubmitBatch(ctx context.Context, shop string, productIDs []string, settings batch.Settings) (*batch.Job, error) {
	body := settingsBody(shop, settings)
	body["productIds"] = productIDs

	var job batch.Job
	if err := c.call(ctx, "submitting batch", shop, "/product/batchGenerateDescription", body, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Progress returns the shop's job snapshot
func (c *Client) Progress(ctx context.Context, shop string) (*batch.Job, error) {
	var job batch.Job
	if err := c.call(ctx, "getting progress", shop, "/user/getUserData", map[string]any{"shop": shop}, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// StopBatch cancels the running job
func (c *Client) StopBatch(ctx context.Context, shop string) error {
	return c.call(ctx, "stopping batch", shop, "/product/stopBatchGenerate", map[string]any{"shop": shop}, nil)
}

// Credits returns the shop's usage counters
func (c *Client) Credits(ctx context.Context, shop string) (*store.Credits, error) {
	var credits store.Credits
	if err := c.call(ctx, "getting credits", shop, "/user/getCredits", map[string]any{"shop": shop}, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// AddCredits raises the shop's allowance by tokens
func (c *Client) AddCredits(ctx context.Context, shop string, tokens int) (*store.Credits, error) {
	var credits store.Credits
	err := c.call(ctx, "adding credits", shop, "/user/addCredits", map[string]any{
		"shop":   shop,
		"tokens": tokens,
	}, &credits)
	if err != nil {
		return nil, err
	}
	return &credits, nil
}

// Publish writes body to the catalog product
func (c *Client) Publish(ctx context.Context, shop, productID, body, contentType string) error {
	return c.call(ctx, "publishing description", shop, "/product/publish", map[string]any{
		"shop":        shop,
		"productId":   productID,
		"content":     body,
		"contentType": contentType,
	}, nil)
}

func settingsBody(shop string, s batch.Settings) map[string]any {
	return map[string]any{
		"shop":          shop,
		"language":      s.Language,
		"contentType":   s.ContentType,
		"tone":          s.Tone,
		"brandTone":     s.BrandTone,
		"brandWord":     s.BrandWord,
		"brandSlogan":   s.BrandSlogan,
		"seoKeyword":    strings.Join(s.SEOKeywords, ","),
		"templateId":    s.TemplateID,
		"templateClass": s.TemplateClass,
		"model":         s.Model,
	}
}

// NewlinesToBreaks converts line breaks in generated text to <br/> tags.
func NewlinesToBreaks(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", "<br/>")
}
