package handler

import (
	"log/slog"
	"net/http"

	"copydesk/internal/domain/models/store"
	"copydesk/internal/domain/services"
	"copydesk/internal/httputil"
)

// TemplateHandler handles template HTTP requests
type TemplateHandler struct {
	templateService services.TemplateService
	logger          *slog.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService services.TemplateService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		logger:          logger,
	}
}

// ListTemplates returns the templates for a page and content type
// GET /api/templates?page_type=&content_type=
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageType := q.Get("page_type")
	if pageType == "" {
		pageType = "product"
	}
	contentType := q.Get("content_type")
	if contentType == "" {
		contentType = "description"
	}

	templates, err := h.templateService.List(r.Context(), httputil.GetShop(r), pageType, contentType)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, templates)
}

// CreateTemplate stores a merchant-authored template
// POST /api/templates
func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req store.CreateTemplateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tpl, err := h.templateService.Create(r.Context(), httputil.GetShop(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, tpl)
}
