package handler

import (
	"log/slog"
	"net/http"

	"copydesk/internal/domain/services"
	"copydesk/internal/httputil"
)

// ReviewCloser releases the editors of a review row
type ReviewCloser interface {
	Close(shop, productID string)
}

// ReviewHandler handles the original vs. generated review screen
type ReviewHandler struct {
	reviewService services.ReviewService
	closer        ReviewCloser
	logger        *slog.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService services.ReviewService, closer ReviewCloser, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		closer:        closer,
		logger:        logger,
	}
}

// GetReview opens both editors of a product
// GET /api/reviews/{productId}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	review, err := h.reviewService.Open(r.Context(), httputil.GetShop(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, review)
}

// CloseReview releases the editors of a product
// DELETE /api/reviews/{productId}
func (h *ReviewHandler) CloseReview(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	h.closer.Close(httputil.GetShop(r), id)
	w.WriteHeader(http.StatusNoContent)
}

// Generate produces a new description for the product
// POST /api/reviews/{productId}/generate
func (h *ReviewHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req SettingsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	review, err := h.reviewService.Generate(r.Context(), httputil.GetShop(r), id, req.Settings)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, review)
}

// Publish writes the generated description to the catalog
// POST /api/reviews/{productId}/publish
func (h *ReviewHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	review, err := h.reviewService.Publish(r.Context(), httputil.GetShop(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, review)
}
