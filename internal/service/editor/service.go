package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"copydesk/internal/domain"
	"copydesk/internal/domain/models/content"
	"copydesk/internal/domain/services"
	"copydesk/internal/notify"
)

// ChangeHook runs after an editor operation that may have changed content.
type ChangeHook func(ctx context.Context, shop string, c *Controller)

// Service holds the open editors of every shop.
type Service struct {
	mu      sync.RWMutex
	editors map[string]map[string]*Controller // shop -> editor ID -> controller
	hooks   []ChangeHook

	analyzer services.ContentAnalyzer
	notices  *notify.Queue
	logger   *slog.Logger
}

// NewService creates an editor service
func NewService(analyzer services.ContentAnalyzer, notices *notify.Queue, logger *slog.Logger) *Service {
	return &Service{
		editors:  make(map[string]map[string]*Controller),
		analyzer: analyzer,
		notices:  notices,
		logger:   logger,
	}
}

// OnChange registers a hook run after content-changing operations.
// Register hooks before serving requests.
func (s *Service) OnChange(hook ChangeHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Open creates a new editor for shop holding html.
func (s *Service) Open(shop string, role content.Role, productID, html string, readOnly bool) *Controller {
	c := NewController(Options{
		ID:        uuid.NewString(),
		Role:      role,
		ProductID: productID,
		HTML:      html,
		ReadOnly:  readOnly,
		Analyzer:  s.analyzer,
		Notifier:  s.notices.For(shop),
	})

	s.mu.Lock()
	if s.editors[shop] == nil {
		s.editors[shop] = make(map[string]*Controller)
	}
	s.editors[shop][c.ID()] = c
	s.mu.Unlock()

	s.logger.Debug("editor opened", "shop", shop, "editor_id", c.ID(), "role", role, "product_id", productID)
	return c
}

// Close forgets an editor.
func (s *Service) Close(shop, editorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.editors[shop], editorID)
	if len(s.editors[shop]) == 0 {
		delete(s.editors, shop)
	}
}

// Controller returns an open editor of shop.
func (s *Service) Controller(shop, editorID string) (*Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.editors[shop][editorID]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("editor %s not found", editorID)}
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, shop, editorID string) (*content.EditorSnapshot, error) {
	c, err := s.Controller(shop, editorID)
	if err != nil {
		return nil, err
	}
	return c.Snapshot(), nil
}

func (s *Service) Toggle(ctx context.Context, shop, editorID string) (*content.EditorSnapshot, error) {
	return s.mutate(ctx, shop, editorID, func(c *Controller) error {
		c.Toggle()
		return nil
	})
}

func (s *Service) SetRaw(ctx context.Context, shop, editorID, html string) (*content.EditorSnapshot, error) {
	return s.mutate(ctx, shop, editorID, func(c *Controller) error {
		return c.SetRaw(html)
	})
}

func (s *Service) Select(ctx context.Context, shop, editorID string, sel content.Selection) (*content.EditorSnapshot, error) {
	c, err := s.Controller(shop, editorID)
	if err != nil {
		return nil, err
	}
	if err := c.Select(sel); err != nil {
		return nil, err
	}
	return c.Snapshot(), nil
}

func (s *Service) Apply(ctx context.Context, shop, editorID, command string, args map[string]any) (*content.EditorSnapshot, error) {
	return s.mutate(ctx, shop, editorID, func(c *Controller) error {
		return c.Apply(command, args)
	})
}

func (s *Service) InsertImage(ctx context.Context, shop, editorID, filename string, data []byte) (*content.EditorSnapshot, error) {
	return s.mutate(ctx, shop, editorID, func(c *Controller) error {
		return c.InsertImage(ctx, filename, data)
	})
}

func (s *Service) InsertVideo(ctx context.Context, shop, editorID, url string) (*content.EditorSnapshot, error) {
	return s.mutate(ctx, shop, editorID, func(c *Controller) error {
		return c.InsertVideo(ctx, url)
	})
}

// mutate runs op and then the change hooks, outside the controller lock.
func (s *Service) mutate(ctx context.Context, shop, editorID string, op func(*Controller) error) (*content.EditorSnapshot, error) {
	c, err := s.Controller(shop, editorID)
	if err != nil {
		return nil, err
	}
	if err := op(c); err != nil {
		return nil, err
	}

	s.mu.RLock()
	hooks := s.hooks
	s.mu.RUnlock()
	for _, hook := range hooks {
		hook(ctx, shop, c)
	}

	return c.Snapshot(), nil
}
