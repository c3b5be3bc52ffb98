package handler

import (
	"log/slog"
	"net/http"

	"copydesk/internal/domain/services"
	"copydesk/internal/httputil"
)

// CreditsHandler handles credit balance and purchase requests
type CreditsHandler struct {
	creditsService services.CreditsService
	logger         *slog.Logger
}

// NewCreditsHandler creates a new credits handler
func NewCreditsHandler(creditsService services.CreditsService, logger *slog.Logger) *CreditsHandler {
	return &CreditsHandler{
		creditsService: creditsService,
		logger:         logger,
	}
}

// GetCredits returns the credit counters with the remaining balance
// GET /api/credits
func (h *CreditsHandler) GetCredits(w http.ResponseWriter, r *http.Request) {
	credits, err := h.creditsService.Get(r.Context(), httputil.GetShop(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"allToken":  credits.AllToken,
		"userToken": credits.UserToken,
		"remaining": credits.Remaining(),
	})
}

// ListGrants returns the charges already credited
// GET /api/credits/grants
func (h *CreditsHandler) ListGrants(w http.ResponseWriter, r *http.Request) {
	grants, err := h.creditsService.Grants(r.Context(), httputil.GetShop(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, grants)
}

// PurchaseRequest selects a credit package
type PurchaseRequest struct {
	PackageID string `json:"package_id"`
	ReturnURL string `json:"return_url"`
}

// Purchase starts a one-time charge
// POST /api/credits/purchase
func (h *CreditsHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	charge, err := h.creditsService.Purchase(r.Context(), httputil.GetShop(r), req.PackageID, req.ReturnURL)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, charge)
}

// ConfirmRequest identifies an approved charge
type ConfirmRequest struct {
	PackageID string `json:"package_id"`
	ChargeID  string `json:"charge_id"`
}

// Confirm credits an approved charge
// POST /api/credits/confirm
func (h *CreditsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	credits, err := h.creditsService.Confirm(r.Context(), httputil.GetShop(r), req.PackageID, req.ChargeID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, credits)
}
