package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"copydesk/internal/config"
	"copydesk/internal/domain"
	"copydesk/internal/domain/models/batch"
	"copydesk/internal/domain/models/content"
	"copydesk/internal/domain/models/review"
	"copydesk/internal/domain/models/store"
	"copydesk/internal/domain/repositories"
	"copydesk/internal/domain/services"
	"copydesk/internal/notify"
	"copydesk/internal/options"
	"copydesk/internal/service/analysis"
	"copydesk/internal/service/editor"
)

const (
	msgGenerated        = "Description generated"
	msgPublished        = "Description published"
	msgNothingToPublish = "The generated description is empty"
	msgDraftNotSaved    = "Error saving draft"
	msgHistoryNotSaved  = "Published, but the publish history could not be updated"
)

// entry is one open review row: two independent editors of a product.
type entry struct {
	product   string // title
	imageURL  string
	original  *editor.Controller
	generated *editor.Controller

	mu          sync.Mutex
	generatedAt string
	settings    *batch.Settings
	publishedAt *time.Time
}

// Service implements services.ReviewService.
type Service struct {
	catalog    services.CatalogGateway
	backend    services.GenerationBackend
	editors    *editor.Service
	drafts     repositories.DraftRepository
	publishLog repositories.PublishLogRepository
	txManager  repositories.TransactionManager
	analyzer   services.ContentAnalyzer
	policy     *analysis.PublishPolicy
	options    *options.Registry
	notices    *notify.Queue
	logger     *slog.Logger

	mu      sync.Mutex
	entries map[string]map[string]*entry // shop -> product ID -> entry
}

// NewService creates the review service and registers the draft-saving
// hook on editors.
func NewService(
	catalog services.CatalogGateway,
	backend services.GenerationBackend,
	editors *editor.Service,
	drafts repositories.DraftRepository,
	publishLog repositories.PublishLogRepository,
	txManager repositories.TransactionManager,
	analyzer services.ContentAnalyzer,
	opts *options.Registry,
	notices *notify.Queue,
	logger *slog.Logger,
) *Service {
	s := &Service{
		catalog:    catalog,
		backend:    backend,
		editors:    editors,
		drafts:     drafts,
		publishLog: publishLog,
		txManager:  txManager,
		analyzer:   analyzer,
		policy:     analysis.NewPublishPolicy(),
		options:    opts,
		notices:    notices,
		logger:     logger,
		entries:    make(map[string]map[string]*entry),
	}
	editors.OnChange(s.saveDraft)
	return s
}

// Open loads both editors of a product, reusing them if already open.
// The original editor holds the catalog description and is read-only; the
// generated editor holds the saved draft, else the backend's last result.
func (s *Service) Open(ctx context.Context, shop, productID string) (*review.Review, error) {
	e, err := s.entry(ctx, shop, productID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, shop, productID, e), nil
}

// Close releases the editors of a product.
func (s *Service) Close(shop, productID string) {
	s.mu.Lock()
	e, ok := s.entries[shop][productID]
	delete(s.entries[shop], productID)
	if len(s.entries[shop]) == 0 {
		delete(s.entries, shop)
	}
	s.mu.Unlock()

	if ok {
		s.editors.Close(shop, e.original.ID())
		s.editors.Close(shop, e.generated.ID())
	}
}

func (s *Service) lookup(shop, productID string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[shop][productID]
}

func (s *Service) entry(ctx context.Context, shop, productID string) (*entry, error) {
	if e := s.lookup(shop, productID); e != nil {
		return e, nil
	}

	product, err := s.catalog.Product(ctx, shop, productID)
	if err != nil {
		if errors.Is(err, domain.ErrUpstream) {
			s.fail(ctx, shop, err)
		}
		return nil, err
	}

	e := &entry{product: product.Title, imageURL: product.ImageURL, generatedAt: store.MissingTimestamp}
	generated := ""

	draft, err := s.drafts.Get(ctx, shop, productID)
	switch {
	case err == nil:
		generated = draft.HTML
		settings := draft.Settings.Clone()
		e.settings = &settings
		e.publishedAt = draft.PublishedAt
		e.generatedAt = draft.UpdatedAt.Format(time.DateTime)
	case errors.Is(err, domain.ErrNotFound):
		generated, e.generatedAt = s.lastGenerated(ctx, shop, productID)
	default:
		return nil, fmt.Errorf("load draft: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have opened the row meanwhile
	if existing := s.entries[shop][productID]; existing != nil {
		return existing, nil
	}
	e.original = s.editors.Open(shop, content.RoleOriginal, productID, product.DescriptionHTML, true)
	e.generated = s.editors.Open(shop, content.RoleGenerated, productID, generated, false)
	if s.entries[shop] == nil {
		s.entries[shop] = make(map[string]*entry)
	}
	s.entries[shop][productID] = e

	s.logger.Debug("review opened", "shop", shop, "product_id", productID, "has_draft", e.settings != nil)
	return e, nil
}

// lastGenerated returns the backend's stored content for a product. A failed
// lookup yields an empty editor.
func (s *Service) lastGenerated(ctx context.Context, shop, productID string) (string, string) {
	records, err := s.backend.ProductRecords(ctx, shop, []string{productID})
	if err != nil {
		s.logger.Warn("generated content lookup failed", "shop", shop, "product_id", productID, "error", err)
		return "", store.MissingTimestamp
	}
	for _, r := range records {
		if r.ProductID == productID {
			at := r.UpdateTime
			if at == "" {
				at = store.MissingTimestamp
			}
			return r.GenerateContent, at
		}
	}
	return "", store.MissingTimestamp
}

func (s *Service) view(ctx context.Context, shop, productID string, e *entry) *review.Review {
	history, err := s.publishLog.ListByProduct(ctx, shop, productID, config.PublishHistoryLimit)
	if err != nil {
		s.logger.Warn("publish history lookup failed", "shop", shop, "product_id", productID, "error", err)
	}
	if history == nil {
		history = []review.PublishRecord{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	r := &review.Review{
		ProductID:   productID,
		Title:       e.product,
		ImageURL:    e.imageURL,
		GeneratedAt: e.generatedAt,
		Original:    *e.original.Snapshot(),
		Generated:   *e.generated.Snapshot(),
		PublishedAt: e.publishedAt,
		History:     history,
	}
	if e.settings != nil {
		settings := e.settings.Clone()
		r.Settings = &settings
	}
	return r
}

// Generate asks the backend for a new description and loads it into the
// generated editor.
func (s *Service) Generate(ctx context.Context, shop, productID string, settings batch.Settings) (*review.Review, error) {
	notifier := s.notices.For(shop)

	settings = settings.Clone()
	if settings.Model == "" {
		settings.Model = s.options.DefaultModel()
	}
	if err := s.options.Validate(&settings); err != nil {
		notifier.Show(ctx, notify.LevelWarning, err.Error())
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	e, err := s.entry(ctx, shop, productID)
	if err != nil {
		return nil, err
	}

	html, err := s.backend.Generate(ctx, shop, productID, settings)
	if err != nil {
		s.fail(ctx, shop, err)
		return nil, err
	}
	e.generated.SetContent(html)

	e.mu.Lock()
	e.settings = &settings
	e.publishedAt = nil
	e.generatedAt = time.Now().Format(time.DateTime)
	e.mu.Unlock()

	s.persist(ctx, shop, productID, e)
	notifier.Show(ctx, notify.LevelSuccess, msgGenerated)
	return s.view(ctx, shop, productID, e), nil
}

// Publish writes the generated content back to the catalog. Content types
// flagged plain-text (seo) are sent tag-stripped; everything else goes
// through the publish policy. A successful publish appends to the history
// and marks the draft published in one transaction.
func (s *Service) Publish(ctx context.Context, shop, productID string) (*review.Review, error) {
	notifier := s.notices.For(shop)

	e, err := s.entry(ctx, shop, productID)
	if err != nil {
		return nil, err
	}

	html := e.generated.Content()
	if strings.TrimSpace(s.analyzer.PlainText(html)) == "" && !strings.Contains(html, "<img") && !strings.Contains(html, "<iframe") {
		notifier.Show(ctx, notify.LevelWarning, msgNothingToPublish)
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, msgNothingToPublish)
	}

	e.mu.Lock()
	contentType := "description"
	var settings batch.Settings
	if e.settings != nil {
		settings = e.settings.Clone()
		if settings.ContentType != "" {
			contentType = settings.ContentType
		}
	}
	e.mu.Unlock()

	body := s.policy.Sanitize(html)
	if ct, err := s.options.ContentType(contentType); err == nil && ct.PlainText {
		body = strings.TrimSpace(s.analyzer.PlainText(html))
	}

	if err := s.backend.Publish(ctx, shop, productID, body, contentType); err != nil {
		s.fail(ctx, shop, err)
		return nil, err
	}
	s.logger.Info("description published", "shop", shop, "product_id", productID, "content_type", contentType, "bytes", len(body))

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		draft := &review.Draft{Shop: shop, ProductID: productID, HTML: html, Settings: settings}
		if err := s.drafts.Upsert(txCtx, draft); err != nil {
			return err
		}
		if err := s.publishLog.Append(txCtx, &review.PublishRecord{
			Shop:        shop,
			ProductID:   productID,
			ContentType: contentType,
			Body:        body,
		}); err != nil {
			return err
		}
		return s.drafts.MarkPublished(txCtx, shop, productID)
	})
	if err != nil {
		// The catalog already has the new content; only the bookkeeping failed.
		s.logger.Error("failed to record publish", "shop", shop, "product_id", productID, "error", err)
		notifier.Show(ctx, notify.LevelWarning, msgHistoryNotSaved)
	} else {
		now := time.Now()
		e.mu.Lock()
		e.publishedAt = &now
		e.mu.Unlock()
		notifier.Show(ctx, notify.LevelSuccess, msgPublished)
	}

	return s.view(ctx, shop, productID, e), nil
}

// saveDraft persists generated-editor edits. Registered as an editor change
// hook.
func (s *Service) saveDraft(ctx context.Context, shop string, c *editor.Controller) {
	if c.Role() != content.RoleGenerated {
		return
	}
	e := s.lookup(shop, c.ProductID())
	if e == nil || e.generated != c {
		return
	}

	e.mu.Lock()
	e.publishedAt = nil
	e.mu.Unlock()
	s.persist(ctx, shop, c.ProductID(), e)
}

func (s *Service) persist(ctx context.Context, shop, productID string, e *entry) {
	draft := &review.Draft{
		Shop:      shop,
		ProductID: productID,
		HTML:      e.generated.Content(),
	}
	e.mu.Lock()
	if e.settings != nil {
		draft.Settings = e.settings.Clone()
	}
	e.mu.Unlock()

	if err := s.drafts.Upsert(ctx, draft); err != nil {
		s.logger.Error("failed to save draft", "shop", shop, "product_id", productID, "error", err)
		s.notices.For(shop).Show(ctx, notify.LevelError, msgDraftNotSaved)
	}
}

func (s *Service) fail(ctx context.Context, shop string, err error) {
	s.logger.Error("review operation failed", "shop", shop, "error", err)
	notify.ShowError(ctx, s.notices.For(shop), err)
}
