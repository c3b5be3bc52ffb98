package batch

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	mstream "github.com/haowjy/meridian-stream-go"

	"copydesk/internal/config"
	"copydesk/internal/domain"
	batchModels "copydesk/internal/domain/models/batch"
	"copydesk/internal/domain/models/store"
	"copydesk/internal/domain/services"
	"copydesk/internal/notify"
	"copydesk/internal/options"
)

// Notice texts shown by the workflow.
const (
	msgSelectProduct  = "Please select at least one product"
	msgSelectTemplate = "Please select a template"
	msgSubmitted      = "Batch generation started"
	msgStopped        = "Batch generation stopped"
)

// Service implements services.BatchService. It keeps one workflow per shop
// and owns the progress poll loops.
type Service struct {
	backend  services.GenerationBackend
	catalog  services.CatalogGateway
	options  *options.Registry
	notices  *notify.Queue
	poller   *Poller
	pageSize int
	now      func() time.Time
	logger   *slog.Logger

	mu        sync.Mutex
	workflows map[string]*workflow
}

// NewService creates the batch service. Polling follows cfg; a zero
// Interval uses config.DefaultPollInterval.
func NewService(
	backend services.GenerationBackend,
	catalog services.CatalogGateway,
	opts *options.Registry,
	notices *notify.Queue,
	registry *mstream.Registry,
	cfg PollerConfig,
	logger *slog.Logger,
) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = config.DefaultPollInterval
	}
	s := &Service{
		backend:   backend,
		catalog:   catalog,
		options:   opts,
		notices:   notices,
		pageSize:  config.ListingPageSize,
		now:       time.Now,
		logger:    logger,
		workflows: make(map[string]*workflow),
	}
	s.poller = NewPoller(registry, s.poll, cfg, logger)
	return s
}

// Shutdown stops every poll loop.
func (s *Service) Shutdown() {
	s.poller.Shutdown()
}

func (s *Service) workflow(shop string) *workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workflows[shop]
	if !ok {
		w = newWorkflow(s.now())
		s.workflows[shop] = w
	}
	return w
}

// Products loads a product listing window and merges the backend's
// generation records into its rows.
func (s *Service) Products(ctx context.Context, shop string, q services.ListingQuery) (*services.ListingView[store.Product], error) {
	w := s.workflow(shop)

	w.mu.Lock()
	seq, q := w.products.begin(q)
	w.mu.Unlock()

	page, err := s.catalog.Products(ctx, shop, pageRequest(q, s.pageSize))
	if err != nil {
		s.fail(ctx, shop, err)
		return nil, err
	}
	s.mergeRecords(ctx, shop, page.Items)

	w.mu.Lock()
	defer w.mu.Unlock()
	stale := w.products.apply(seq, page)
	if stale {
		s.logger.Debug("discarded stale product page", "shop", shop, "seq", seq, "latest", w.products.issued)
	}
	return w.products.view(seq, stale), nil
}

// Collections loads a collection listing window.
func (s *Service) Collections(ctx context.Context, shop string, q services.ListingQuery) (*services.ListingView[store.Collection], error) {
	w := s.workflow(shop)

	// Collections have no status filter
	q.Tab = store.TabAll

	w.mu.Lock()
	seq, q := w.collections.begin(q)
	w.mu.Unlock()

	page, err := s.catalog.Collections(ctx, shop, pageRequest(q, s.pageSize))
	if err != nil {
		s.fail(ctx, shop, err)
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	stale := w.collections.apply(seq, page)
	return w.collections.view(seq, stale), nil
}

// mergeRecords fills GeneratedAt and GenerateContent from the backend.
// A failed lookup leaves the fallback timestamp; the listing is still served.
func (s *Service) mergeRecords(ctx context.Context, shop string, products []store.Product) {
	for i := range products {
		products[i].GeneratedAt = store.MissingTimestamp
	}
	if len(products) == 0 {
		return
	}

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	records, err := s.backend.ProductRecords(ctx, shop, ids)
	if err != nil {
		s.logger.Warn("product record lookup failed", "shop", shop, "count", len(ids), "error", err)
		return
	}

	byID := make(map[string]store.ProductRecord, len(records))
	for _, r := range records {
		byID[r.ProductID] = r
	}
	for i := range products {
		r, ok := byID[products[i].ID]
		if !ok {
			continue
		}
		if r.UpdateTime != "" {
			products[i].GeneratedAt = r.UpdateTime
		}
		products[i].GenerateContent = r.GenerateContent
	}
}

// Select edits the multi-selection and returns it.
func (s *Service) Select(_ context.Context, shop string, add, remove []string, clear bool) []string {
	w := s.workflow(shop)
	w.mu.Lock()
	defer w.mu.Unlock()

	w.selectIDs(add, remove, clear)
	w.updatedAt = s.now()

	selected := slices.Clone(w.selected)
	if selected == nil {
		selected = []string{}
	}
	return selected
}

// Status returns the workflow state and makes sure a poll loop runs while
// needed. Before the first snapshot it fetches one directly, but only when no
// loop is running; otherwise the loop's cadence and backoff apply and the
// cached state is returned.
func (s *Service) Status(ctx context.Context, shop string) (*batchModels.Status, error) {
	w := s.workflow(shop)

	w.mu.Lock()
	first := !w.snapshot
	w.mu.Unlock()

	var fetchErr error
	if first && !s.poller.Active(shop) {
		_, _, fetchErr = s.poll(ctx, shop)
	}

	w.mu.Lock()
	needsPolling := w.needsPolling()
	w.mu.Unlock()

	if needsPolling {
		s.poller.Ensure(shop)
	}
	if fetchErr != nil {
		s.fail(ctx, shop, fetchErr)
		return nil, fetchErr
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status(s.poller.Active(shop)), nil
}

// Submit starts a batch job for the selected products. Missing selection,
// missing template and invalid settings are rejected before any backend
// call and leave the state unchanged.
func (s *Service) Submit(ctx context.Context, shop string, settings batchModels.Settings) (*batchModels.Status, error) {
	notifier := s.notices.For(shop)
	w := s.workflow(shop)

	w.mu.Lock()
	if w.state != batchModels.StateIdle {
		state := w.state
		w.mu.Unlock()
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("batch job is %s", state),
			ResourceType: "batch",
			ResourceID:   shop,
		}
	}
	if len(w.selected) == 0 {
		w.mu.Unlock()
		notifier.Show(ctx, notify.LevelWarning, msgSelectProduct)
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, msgSelectProduct)
	}
	if settings.TemplateID == "" {
		w.mu.Unlock()
		notifier.Show(ctx, notify.LevelWarning, msgSelectTemplate)
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, msgSelectTemplate)
	}
	if len(w.selected) > config.MaxSelection {
		w.mu.Unlock()
		msg := fmt.Sprintf("Please select at most %d products", config.MaxSelection)
		notifier.Show(ctx, notify.LevelWarning, msg)
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, msg)
	}
	settings = settings.Clone()
	if settings.Model == "" {
		settings.Model = s.options.DefaultModel()
	}
	if err := s.options.Validate(&settings); err != nil {
		w.mu.Unlock()
		notifier.Show(ctx, notify.LevelWarning, err.Error())
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	ids := slices.Clone(w.selected)
	w.transition(batchModels.StateSubmitting, s.now())
	w.mu.Unlock()

	s.logger.Info("submitting batch", "shop", shop, "products", len(ids), "model", settings.Model)
	job, err := s.backend.SubmitBatch(ctx, shop, ids, settings)

	w.mu.Lock()
	if err != nil {
		w.transition(batchModels.StateIdle, s.now())
		w.mu.Unlock()
		s.fail(ctx, shop, err)
		return nil, err
	}

	if job == nil {
		job = &batchModels.Job{AllCount: len(ids), UnfinishedCount: len(ids), TaskModel: settings.Model}
	}
	job.TaskStatus = batchModels.TaskStatusRunning
	w.job = job
	w.snapshot = true
	w.selected = nil
	w.transition(batchModels.StateRunning, s.now())
	w.mu.Unlock()

	notifier.Show(ctx, notify.LevelSuccess, msgSubmitted)
	s.poller.Ensure(shop)

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status(true), nil
}

// Stop cancels the running job. A confirmed stop sets the job idle at once.
func (s *Service) Stop(ctx context.Context, shop string) (*batchModels.Status, error) {
	w := s.workflow(shop)

	w.mu.Lock()
	if w.state != batchModels.StateRunning {
		state := w.state
		w.mu.Unlock()
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("batch job is %s", state),
			ResourceType: "batch",
			ResourceID:   shop,
		}
	}
	w.transition(batchModels.StateStopping, s.now())
	w.mu.Unlock()

	if err := s.backend.StopBatch(ctx, shop); err != nil {
		w.mu.Lock()
		w.transition(batchModels.StateRunning, s.now())
		w.mu.Unlock()
		s.fail(ctx, shop, err)
		return nil, err
	}

	s.poller.Cancel(shop)

	w.mu.Lock()
	w.forceIdle(s.now())
	status := w.status(false)
	w.mu.Unlock()

	s.logger.Info("batch stopped", "shop", shop)
	s.notices.For(shop).Show(ctx, notify.LevelSuccess, msgStopped)
	return status, nil
}

// poll fetches the job snapshot and records it unless a local transition
// happened while the request was in flight.
func (s *Service) poll(ctx context.Context, shop string) (*batchModels.Job, bool, error) {
	w := s.workflow(shop)

	w.mu.Lock()
	epoch := w.epoch
	w.mu.Unlock()

	job, err := s.backend.Progress(ctx, shop)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		return nil, w.needsPolling(), err
	}
	if job == nil {
		job = &batchModels.Job{}
	}
	if w.epoch != epoch {
		return job, w.needsPolling(), nil
	}
	w.observe(job, s.now())
	return job, w.needsPolling(), nil
}

func (s *Service) fail(ctx context.Context, shop string, err error) {
	s.logger.Error("batch operation failed", "shop", shop, "error", err)
	notify.ShowError(ctx, s.notices.For(shop), err)
}
