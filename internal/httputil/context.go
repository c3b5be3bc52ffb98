package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	shopKey      contextKey = "shop"
	requestIDKey contextKey = "requestID"
)

// WithShop adds the authenticated shop host to the request context
func WithShop(r *http.Request, shop string) *http.Request {
	ctx := context.WithValue(r.Context(), shopKey, shop)
	return r.WithContext(ctx)
}

// GetShop retrieves the shop from context, returns empty string if not found
func GetShop(r *http.Request) string {
	shop, _ := r.Context().Value(shopKey).(string)
	return shop
}

// WithRequestID adds a request ID to the request context
func WithRequestID(r *http.Request, id string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), requestIDKey, id))
}

// GetRequestID retrieves the request ID from context
func GetRequestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}
