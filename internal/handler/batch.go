package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"copydesk/internal/domain/models/batch"
	"copydesk/internal/domain/models/store"
	"copydesk/internal/domain/services"
	"copydesk/internal/handler/sse"
	"copydesk/internal/httputil"
	"copydesk/internal/notify"
)

// BatchHandler handles catalog listing, selection and batch job requests
type BatchHandler struct {
	batchService services.BatchService
	notices      *notify.Queue
	sseConfig    *sse.Config
	logger       *slog.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(batchService services.BatchService, notices *notify.Queue, sseConfig *sse.Config, logger *slog.Logger) *BatchHandler {
	if sseConfig == nil {
		sseConfig = sse.DefaultConfig()
	}
	return &BatchHandler{
		batchService: batchService,
		notices:      notices,
		sseConfig:    sseConfig,
		logger:       logger,
	}
}

// listingQuery reads tab, query and cursor parameters
func listingQuery(r *http.Request) (services.ListingQuery, bool) {
	q := r.URL.Query()
	tab := store.StatusTab(strings.ToUpper(q.Get("tab")))
	switch tab {
	case store.TabAll, store.TabActive, store.TabDraft, store.TabArchived:
	default:
		return services.ListingQuery{}, false
	}
	return services.ListingQuery{
		Tab:    tab,
		Query:  q.Get("query"),
		After:  q.Get("after"),
		Before: q.Get("before"),
	}, true
}

// ListProducts returns a product listing window
// GET /api/products?tab=&query=&after=&before=
func (h *BatchHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query, ok := listingQuery(r)
	if !ok {
		httputil.RespondError(w, http.StatusBadRequest, "tab must be one of active, draft, archived")
		return
	}

	view, err := h.batchService.Products(r.Context(), httputil.GetShop(r), query)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// ListCollections returns a collection listing window
// GET /api/collections?query=&after=&before=
func (h *BatchHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	query, _ := listingQuery(r)

	view, err := h.batchService.Collections(r.Context(), httputil.GetShop(r), query)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// SelectionRequest edits the product multi-selection
type SelectionRequest struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
	Clear  bool     `json:"clear"`
}

// UpdateSelection edits the multi-selection
// POST /api/selection
func (h *BatchHandler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	selected := h.batchService.Select(r.Context(), httputil.GetShop(r), req.Add, req.Remove, req.Clear)
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"selected": selected})
}

// SettingsRequest carries generation settings
type SettingsRequest struct {
	Settings batch.Settings `json:"settings"`
}

// SubmitBatch starts a batch job for the selection
// POST /api/batch
func (h *BatchHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status, err := h.batchService.Submit(r.Context(), httputil.GetShop(r), req.Settings)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusAccepted, status)
}

// GetStatus returns the batch workflow state
// GET /api/batch
func (h *BatchHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.batchService.Status(r.Context(), httputil.GetShop(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, status)
}

// StopBatch cancels the running job
// POST /api/batch/stop
func (h *BatchHandler) StopBatch(w http.ResponseWriter, r *http.Request) {
	status, err := h.batchService.Stop(r.Context(), httputil.GetShop(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, status)
}

// StreamStatus pushes batch status changes and notices via Server-Sent Events
// GET /api/batch/stream
func (h *BatchHandler) StreamStatus(w http.ResponseWriter, r *http.Request) {
	shop := httputil.GetShop(r)
	ctx := r.Context()

	writer, ok := sse.NewWriter(w)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	h.logger.Debug("batch stream connected", "shop", shop)

	keepAliveCtx, stopKeepAlive := context.WithCancel(ctx)
	defer stopKeepAlive()
	dropped := sse.KeepAlive(keepAliveCtx, writer, h.sseConfig.KeepAliveInterval, h.logger)

	ticker := time.NewTicker(h.sseConfig.PushInterval)
	defer ticker.Stop()

	var last time.Time
	var lastPolling bool
	for {
		if !h.push(ctx, writer, shop, &last, &lastPolling) {
			return
		}

		select {
		case <-ctx.Done():
			h.logger.Debug("batch stream disconnected", "shop", shop)
			return
		case <-dropped:
			return
		case <-ticker.C:
		}
	}
}

// push writes pending notices and, when it changed, the status. It reports
// whether the connection is still usable.
func (h *BatchHandler) push(ctx context.Context, writer *sse.Writer, shop string, last *time.Time, lastPolling *bool) bool {
	for _, n := range h.notices.Drain(shop) {
		if err := writer.WriteEvent("notice", n); err != nil {
			return false
		}
	}

	status, err := h.batchService.Status(ctx, shop)
	if err != nil {
		// The failure was queued as a notice; the next tick delivers it
		return ctx.Err() == nil
	}
	if status.UpdatedAt.Equal(*last) && status.Polling == *lastPolling {
		return true
	}
	*last, *lastPolling = status.UpdatedAt, status.Polling
	return writer.WriteEvent("status", status) == nil
}
