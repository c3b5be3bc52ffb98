package handler

import (
	"net/http"

	"copydesk/internal/httputil"
	"copydesk/internal/options"
)

// OptionsHandler serves the generation settings choices
type OptionsHandler struct {
	registry *options.Registry
}

// NewOptionsHandler creates a new options handler
func NewOptionsHandler(registry *options.Registry) *OptionsHandler {
	return &OptionsHandler{registry: registry}
}

// GetOptions returns models, languages, content types, tones and credit packages
// GET /api/options
func (h *OptionsHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"generation":    h.registry.Generation(),
		"packages":      h.registry.Packages(),
		"default_model": h.registry.DefaultModel(),
	})
}
