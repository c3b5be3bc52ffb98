package handler

import (
	"log/slog"
	"net/http"

	"copydesk/internal/config"
	"copydesk/internal/domain/models/content"
	"copydesk/internal/domain/services"
	"copydesk/internal/httputil"
)

// EditorHandler handles requests against one open editor
type EditorHandler struct {
	editorService services.EditorService
	logger        *slog.Logger
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(editorService services.EditorService, logger *slog.Logger) *EditorHandler {
	return &EditorHandler{
		editorService: editorService,
		logger:        logger,
	}
}

// GetEditor returns the editor snapshot
// GET /api/editors/{id}
func (h *EditorHandler) GetEditor(w http.ResponseWriter, r *http.Request) {
	editorID, ok := PathParam(w, r, "id", "Editor ID")
	if !ok {
		return
	}

	snap, err := h.editorService.Get(r.Context(), httputil.GetShop(r), editorID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snap)
}

// Toggle switches between structured and raw editing
// POST /api/editors/{id}/toggle
func (h *EditorHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	editorID, ok := PathParam(w, r, "id", "Editor ID")
	if !ok {
		return
	}

	snap, err := h.editorService.Toggle(r.Context(), httputil.GetShop(r), editorID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snap)
}

// RawRequest replaces the raw HTML buffer
type RawRequest struct {
	HTML string `json:"html"`
}

// SetRaw replaces the raw buffer
// PUT /api/editors/{id}/raw
func (h *EditorHandler) SetRaw(w http.ResponseWriter, r *http.Request) {
	editorID, ok := PathParam(w, r, "id", "Editor ID")
	if !ok {
		return
	}

	var req RawRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := h.editorService.SetRaw(r.Context(), httputil.GetShop(r), editorID, req.HTML)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snap)
}

// SetSelection moves the selection commands apply to
// PUT /api/editors/{id}/selection
func (h *EditorHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	editorID, ok := PathParam(w, r, "id", "Editor ID")
	if !ok {
		return
	}

	var sel content.Selection
	if err := httputil.ParseJSON(w, r, &sel); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := h.editorService.Select(r.Context(), httputil.GetShop(r), editorID, sel)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snap)
}

// CommandRequest runs a toolbar command
type CommandRequest struct {
	Command string         `json:"command"`
	Args    map[string]any `json:"args"`
}

// ApplyCommand runs a toolbar command against the document
// POST /api/editors/{id}/commands
func (h *EditorHandler) ApplyCommand(w http.ResponseWriter, r *http.Request) {
	editorID, ok := PathParam(w, r, "id", "Editor ID")
	if !ok {
		return
	}

	var req CommandRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Command == "" {
		httputil.RespondError(w, http.StatusBadRequest, "command is required")
		return
	}

	snap, err := h.editorService.Apply(r.Context(), httputil.GetShop(r), editorID, req.Command, req.Args)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snap)
}

// InsertImage embeds an uploaded image as a data URL
// POST /api/editors/{id}/images (multipart field "file")
func (h *EditorHandler) InsertImage(w http.ResponseWriter, r *http.Request) {
	editorID, ok := PathParam(w, r, "id", "Editor ID")
	if !ok {
		return
	}

	filename, data, err := httputil.ParseMultipartFile(w, r, "file", config.MaxUploadSize)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.editorService.InsertImage(r.Context(), httputil.GetShop(r), editorID, filename, data)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snap)
}

// VideoRequest embeds a video by URL
type VideoRequest struct {
	URL string `json:"url"`
}

// InsertVideo embeds a video player
// POST /api/editors/{id}/videos
func (h *EditorHandler) InsertVideo(w http.ResponseWriter, r *http.Request) {
	editorID, ok := PathParam(w, r, "id", "Editor ID")
	if !ok {
		return
	}

	var req VideoRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := h.editorService.InsertVideo(r.Context(), httputil.GetShop(r), editorID, req.URL)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snap)
}
