package handler

import (
	"errors"
	"net/http"
	"strings"

	"copydesk/internal/domain"
	"copydesk/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError
	var upstreamErr *domain.UpstreamError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.As(err, &upstreamErr):
		httputil.RespondUpstreamError(w, upstreamErr.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// PathParam reads a required path wildcard, responding 400 when it is empty
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	return value, true
}

// productGIDPrefix is the global ID prefix of catalog products
const productGIDPrefix = "gid://shopify/Product/"

// productID reads the {productId} wildcard. Routes carry the numeric ID;
// services use the global ID.
func productID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := PathParam(w, r, "productId", "Product ID")
	if !ok {
		return "", false
	}
	if strings.HasPrefix(id, "gid://") {
		return id, true
	}
	return productGIDPrefix + id, true
}
