// Package servicetest provides in-memory fakes of the external collaborators
// for service tests.
package servicetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"copydesk/internal/domain"
	"copydesk/internal/domain/models/batch"
	"copydesk/internal/domain/models/review"
	"copydesk/internal/domain/models/store"
	"copydesk/internal/domain/repositories"
	"copydesk/internal/domain/services"
)

// Backend is a services.GenerationBackend whose behavior is set per field.
// Unset functions return zero values. Calls are counted by method name.
type Backend struct {
	mu    sync.Mutex
	calls map[string]int

	ProductRecordsFunc func(ids []string) ([]store.ProductRecord, error)
	TemplatesFunc      func(pageType, contentType string) ([]store.Template, error)
	CreateTemplateFunc func(req *store.CreateTemplateRequest) (*store.Template, error)
	GenerateFunc       func(productID string, settings batch.Settings) (string, error)
	SubmitBatchFunc    func(ids []string, settings batch.Settings) (*batch.Job, error)
	ProgressFunc       func() (*batch.Job, error)
	StopBatchFunc      func() error
	CreditsFunc        func() (*store.Credits, error)
	AddCreditsFunc     func(tokens int) (*store.Credits, error)
	PublishFunc        func(productID, body, contentType string) error
}

// Calls returns how often method was called.
func (b *Backend) Calls(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

func (b *Backend) record(method string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.calls == nil {
		b.calls = make(map[string]int)
	}
	b.calls[method]++
}

func (b *Backend) ProductRecords(_ context.Context, _ string, ids []string) ([]store.ProductRecord, error) {
	b.record("ProductRecords")
	if b.ProductRecordsFunc == nil {
		return nil, nil
	}
	return b.ProductRecordsFunc(ids)
}

func (b *Backend) Templates(_ context.Context, _ string, pageType, contentType string) ([]store.Template, error) {
	b.record("Templates")
	if b.TemplatesFunc == nil {
		return []store.Template{}, nil
	}
	return b.TemplatesFunc(pageType, contentType)
}

func (b *Backend) CreateTemplate(_ context.Context, _ string, req *store.CreateTemplateRequest) (*store.Template, error) {
	b.record("CreateTemplate")
	if b.CreateTemplateFunc == nil {
		return &store.Template{ID: "tpl-1", Title: req.Title, Content: req.Content}, nil
	}
	return b.CreateTemplateFunc(req)
}

func (b *Backend) Generate(_ context.Context, _ string, productID string, settings batch.Settings) (string, error) {
	b.record("Generate")
	if b.GenerateFunc == nil {
		return "", nil
	}
	return b.GenerateFunc(productID, settings)
}

func (b *Backend) SubmitBatch(_ context.Context, _ string, ids []string, settings batch.Settings) (*batch.Job, error) {
	b.record("SubmitBatch")
	if b.SubmitBatchFunc == nil {
		return &batch.Job{AllCount: len(ids), UnfinishedCount: len(ids), TaskStatus: batch.TaskStatusRunning}, nil
	}
	return b.SubmitBatchFunc(ids, settings)
}

func (b *Backend) Progress(_ context.Context, _ string) (*batch.Job, error) {
	b.record("Progress")
	if b.ProgressFunc == nil {
		return &batch.Job{}, nil
	}
	return b.ProgressFunc()
}

func (b *Backend) StopBatch(_ context.Context, _ string) error {
	b.record("StopBatch")
	if b.StopBatchFunc == nil {
		return nil
	}
	return b.StopBatchFunc()
}

func (b *Backend) Credits(_ context.Context, _ string) (*store.Credits, error) {
	b.record("Credits")
	if b.CreditsFunc == nil {
		return &store.Credits{}, nil
	}
	return b.CreditsFunc()
}

func (b *Backend) AddCredits(_ context.Context, _ string, tokens int) (*store.Credits, error) {
	b.record("AddCredits")
	if b.AddCreditsFunc == nil {
		return &store.Credits{AllToken: tokens}, nil
	}
	return b.AddCreditsFunc(tokens)
}

func (b *Backend) Publish(_ context.Context, _ string, productID, body, contentType string) error {
	b.record("Publish")
	if b.PublishFunc == nil {
		return nil
	}
	return b.PublishFunc(productID, body, contentType)
}

// Catalog is a services.CatalogGateway backed by fixed data.
type Catalog struct {
	mu    sync.Mutex
	calls map[string]int

	ProductsFunc     func(req store.PageRequest) (*store.Page[store.Product], error)
	CollectionsFunc  func(req store.PageRequest) (*store.Page[store.Collection], error)
	ProductByID      map[string]*store.Product
	CreateChargeFunc func(req services.ChargeRequest) (*store.Charge, error)
	ChargeFunc       func(chargeID string) (*store.Charge, error)
}

// Calls returns how often method was called.
func (c *Catalog) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func (c *Catalog) record(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[method]++
}

func (c *Catalog) Products(_ context.Context, _ string, req store.PageRequest) (*store.Page[store.Product], error) {
	c.record("Products")
	if c.ProductsFunc == nil {
		return &store.Page[store.Product]{Items: []store.Product{}}, nil
	}
	return c.ProductsFunc(req)
}

func (c *Catalog) Collections(_ context.Context, _ string, req store.PageRequest) (*store.Page[store.Collection], error) {
	c.record("Collections")
	if c.CollectionsFunc == nil {
		return &store.Page[store.Collection]{Items: []store.Collection{}}, nil
	}
	return c.CollectionsFunc(req)
}

func (c *Catalog) Product(_ context.Context, _ string, productID string) (*store.Product, error) {
	c.record("Product")
	p, ok := c.ProductByID[productID]
	if !ok {
		return nil, &domain.NotFoundError{Message: "product not found: " + productID}
	}
	cp := *p
	return &cp, nil
}

func (c *Catalog) CreateCharge(_ context.Context, _ string, req services.ChargeRequest) (*store.Charge, error) {
	c.record("CreateCharge")
	if c.CreateChargeFunc == nil {
		return &store.Charge{ID: "charge-1", Status: "PENDING", ConfirmationURL: "https://example.test/confirm"}, nil
	}
	return c.CreateChargeFunc(req)
}

func (c *Catalog) Charge(_ context.Context, _ string, chargeID string) (*store.Charge, error) {
	c.record("Charge")
	if c.ChargeFunc == nil {
		return &store.Charge{ID: chargeID, Status: store.ChargeStatusActive}, nil
	}
	return c.ChargeFunc(chargeID)
}

// Drafts is an in-memory repositories.DraftRepository.
type Drafts struct {
	mu     sync.Mutex
	drafts map[string]*review.Draft // shop + "/" + product ID

	// UpsertErr, when set, fails every Upsert
	UpsertErr error
}

func draftKey(shop, productID string) string { return shop + "/" + productID }

func (d *Drafts) Get(_ context.Context, shop, productID string) (*review.Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	draft, ok := d.drafts[draftKey(shop, productID)]
	if !ok {
		return nil, &domain.NotFoundError{Message: "draft not found"}
	}
	cp := *draft
	return &cp, nil
}

func (d *Drafts) Upsert(_ context.Context, draft *review.Draft) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.UpsertErr != nil {
		return d.UpsertErr
	}
	if d.drafts == nil {
		d.drafts = make(map[string]*review.Draft)
	}

	now := time.Now()
	key := draftKey(draft.Shop, draft.ProductID)
	if existing, ok := d.drafts[key]; ok {
		draft.ID = existing.ID
		draft.CreatedAt = existing.CreatedAt
		if existing.HTML == draft.HTML {
			draft.PublishedAt = existing.PublishedAt
		}
	} else {
		draft.ID = fmt.Sprintf("draft-%d", len(d.drafts)+1)
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now
	cp := *draft
	d.drafts[key] = &cp
	return nil
}

func (d *Drafts) MarkPublished(_ context.Context, shop, productID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	draft, ok := d.drafts[draftKey(shop, productID)]
	if !ok {
		return &domain.NotFoundError{Message: "draft not found"}
	}
	now := time.Now()
	draft.PublishedAt = &now
	return nil
}

// PublishLog is an in-memory repositories.PublishLogRepository.
type PublishLog struct {
	mu      sync.Mutex
	Records []review.PublishRecord
}

func (p *PublishLog) Append(_ context.Context, record *review.PublishRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	record.ID = fmt.Sprintf("publish-%d", len(p.Records)+1)
	record.CreatedAt = time.Now()
	p.Records = append(p.Records, *record)
	return nil
}

func (p *PublishLog) ListByProduct(_ context.Context, shop, productID string, limit int) ([]review.PublishRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []review.PublishRecord
	for i := len(p.Records) - 1; i >= 0 && len(out) < limit; i-- {
		if r := p.Records[i]; r.Shop == shop && r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

// TxManager runs the function directly. Err, when set, is returned instead
// of running it.
type TxManager struct {
	Err error
}

func (t *TxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if t.Err != nil {
		return t.Err
	}
	return fn(ctx)
}

// Grants is an in-memory repositories.CreditGrantRepository.
type Grants struct {
	mu     sync.Mutex
	Grants []store.CreditGrant
}

func (g *Grants) Create(_ context.Context, grant *store.CreditGrant) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, existing := range g.Grants {
		if existing.ChargeID == grant.ChargeID {
			return &domain.ConflictError{
				Message:      "charge already credited",
				ResourceType: "credit_grant",
				ResourceID:   existing.ID,
			}
		}
	}
	grant.ID = fmt.Sprintf("grant-%d", len(g.Grants)+1)
	grant.CreatedAt = time.Now()
	g.Grants = append(g.Grants, *grant)
	return nil
}

func (g *Grants) ListByShop(_ context.Context, shop string) ([]store.CreditGrant, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []store.CreditGrant
	for _, grant := range g.Grants {
		if grant.Shop == shop {
			out = append(out, grant)
		}
	}
	return out, nil
}
