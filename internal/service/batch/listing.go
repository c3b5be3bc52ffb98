package batch

import (
	"strings"

	"copydesk/internal/domain/models/store"
	"copydesk/internal/domain/services"
)

// ComposeQuery builds the catalog search string from a status tab and the
// merchant's free-text search.
func ComposeQuery(tab store.StatusTab, text string) string {
	parts := make([]string, 0, 2)
	if tab != store.TabAll {
		parts = append(parts, "status:"+string(tab))
	}
	if text = strings.TrimSpace(text); text != "" {
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

// listing is one paginated catalog window. Requests are numbered; a
// response is applied only if no newer request was issued after it.
type listing[T any] struct {
	tab      store.StatusTab
	query    string
	rows     []T
	pageInfo store.PageInfo
	issued   uint64
}

// begin registers a new request and returns its sequence number and the
// effective query. A filter change drops the loaded rows and the cursors so
// the next page starts from the beginning.
func (l *listing[T]) begin(q services.ListingQuery) (uint64, services.ListingQuery) {
	q.Query = strings.TrimSpace(q.Query)
	if q.Tab != l.tab || q.Query != l.query {
		l.tab = q.Tab
		l.query = q.Query
		l.rows = nil
		l.pageInfo = store.PageInfo{}
		q.After, q.Before = "", ""
	}
	l.issued++
	return l.issued, q
}

// apply stores page as the current window unless seq was superseded.
// It reports whether the page was stale.
func (l *listing[T]) apply(seq uint64, page *store.Page[T]) bool {
	if seq != l.issued {
		return true
	}
	l.rows = page.Items
	l.pageInfo = page.PageInfo
	return false
}

func (l *listing[T]) view(seq uint64, stale bool) *services.ListingView[T] {
	rows := l.rows
	if rows == nil {
		rows = []T{}
	}
	return &services.ListingView[T]{
		Tab:      l.tab,
		Query:    l.query,
		Rows:     rows,
		PageInfo: l.pageInfo,
		Seq:      seq,
		Stale:    stale,
	}
}

func pageRequest(q services.ListingQuery, pageSize int) store.PageRequest {
	return store.PageRequest{
		Query:  ComposeQuery(q.Tab, q.Query),
		First:  pageSize,
		After:  q.After,
		Before: q.Before,
	}
}
