package sse

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	rec := httptest.NewRecorder()

	w, ok := NewWriter(rec)
	require.True(t, ok)
	require.NoError(t, w.WriteEvent("status", map[string]any{"state": "running"}))
	require.NoError(t, w.WriteKeepAlive())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "event: status\ndata: {\"state\":\"running\"}\n\n: keepalive\n\n", rec.Body.String())
}

func TestWriter_EncodeFailure(t *testing.T) {
	w, ok := NewWriter(httptest.NewRecorder())
	require.True(t, ok)

	assert.Error(t, w.WriteEvent("status", make(chan int)))
}

type failingWriter struct {
	calls chan struct{}
}

func (f *failingWriter) WriteKeepAlive() error {
	f.calls <- struct{}{}
	return errors.New("broken pipe")
}

func TestKeepAlive_StopsWhenWriteFails(t *testing.T) {
	w := &failingWriter{calls: make(chan struct{}, 1)}

	stopped := KeepAlive(context.Background(), w, time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive did not stop after a failed write")
	}
	assert.Len(t, w.calls, 1)
}

func TestKeepAlive_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := httptest.NewRecorder()
	w, ok := NewWriter(rec)
	require.True(t, ok)

	stopped := KeepAlive(ctx, w, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive did not stop with its context")
	}
	assert.NotContains(t, rec.Body.String(), "keepalive")
}
