package services

import (
	"context"

	"copydesk/internal/domain/models/batch"
	"copydesk/internal/domain/models/store"
)

// ListingQuery selects a catalog listing window
type ListingQuery struct {
	Tab    store.StatusTab `json:"tab"`
	Query  string          `json:"query"`
	After  string          `json:"after,omitempty"`
	Before string          `json:"before,omitempty"`
}

// ListingView is the shop's current listing state.
// Stale is set when the response belonged to a superseded request and was
// discarded; Rows then hold the newest applied page.
type ListingView[T any] struct {
	Tab      store.StatusTab `json:"tab"`
	Query    string          `json:"query"`
	Rows     []T             `json:"rows"`
	PageInfo store.PageInfo  `json:"page_info"`
	Seq      uint64          `json:"seq"`
	Stale    bool            `json:"stale"`
}

// BatchService drives the list, select, configure, submit, poll, stop flow
type BatchService interface {
	Products(ctx context.Context, shop string, q ListingQuery) (*ListingView[store.Product], error)
	Collections(ctx context.Context, shop string, q ListingQuery) (*ListingView[store.Collection], error)

	// Select edits the multi-selection and returns it
	Select(ctx context.Context, shop string, add, remove []string, clear bool) []string

	Status(ctx context.Context, shop string) (*batch.Status, error)
	Submit(ctx context.Context, shop string, settings batch.Settings) (*batch.Status, error)
	Stop(ctx context.Context, shop string) (*batch.Status, error)
}
