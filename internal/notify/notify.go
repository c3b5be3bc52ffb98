// Package notify queues user-visible notices per shop. The UI drains the
// queue and shows each notice as a toast.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"copydesk/internal/domain"
)

// Level is the severity of a notice
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is one toast message
type Notice struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier shows notices to the merchant of one shop
type Notifier interface {
	Show(ctx context.Context, level Level, message string)
}

// ShowError shows a failed operation. Upstream failures carry their own
// "Error <operation>" message; other errors get a generic one.
func ShowError(ctx context.Context, n Notifier, err error) {
	msg := "Something went wrong"
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		msg = upstream.Error()
	}
	n.Show(ctx, LevelError, msg)
}

// maxPending bounds the notices kept for a shop whose UI is not draining.
const maxPending = 50

// Queue holds pending notices for every shop
type Queue struct {
	mu      sync.Mutex
	pending map[string][]Notice
	logger  *slog.Logger
}

// NewQueue creates an empty notice queue
func NewQueue(logger *slog.Logger) *Queue {
	return &Queue{
		pending: make(map[string][]Notice),
		logger:  logger,
	}
}

// For returns the Notifier that queues notices for shop
func (q *Queue) For(shop string) Notifier {
	return shopNotifier{queue: q, shop: shop}
}

// Push queues a notice for shop, dropping the oldest when full
func (q *Queue) Push(shop string, level Level, message string) Notice {
	n := Notice{
		ID:        ulid.Make().String(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	list := append(q.pending[shop], n)
	if len(list) > maxPending {
		list = list[len(list)-maxPending:]
	}
	q.pending[shop] = list
	q.mu.Unlock()

	q.logger.Debug("notice queued", "shop", shop, "level", level, "message", message)
	return n
}

// Drain returns and removes every pending notice for shop, oldest first
func (q *Queue) Drain(shop string) []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()

	list := q.pending[shop]
	delete(q.pending, shop)
	if list == nil {
		return []Notice{}
	}
	return list
}

type shopNotifier struct {
	queue *Queue
	shop  string
}

func (s shopNotifier) Show(_ context.Context, level Level, message string) {
	s.queue.Push(s.shop, level, message)
}

// Recorder is a Notifier that keeps notices in memory. Used by tests and the CLI.
type Recorder struct {
	mu      sync.Mutex
	Notices []Notice
}

func (r *Recorder) Show(_ context.Context, level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notices = append(r.Notices, Notice{Level: level, Message: message, CreatedAt: time.Now()})
}

// Messages returns the recorded messages in order
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Notices))
	for i, n := range r.Notices {
		out[i] = n.Message
	}
	return out
}
