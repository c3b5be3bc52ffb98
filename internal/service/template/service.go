package template

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"copydesk/internal/config"
	"copydesk/internal/domain"
	"copydesk/internal/domain/models/store"
	"copydesk/internal/domain/services"
	"copydesk/internal/notify"
)

// templateService implements the TemplateService interface
type templateService struct {
	backend services.GenerationBackend
	notices *notify.Queue
	logger  *slog.Logger
}

// NewService creates a new template service
func NewService(backend services.GenerationBackend, notices *notify.Queue, logger *slog.Logger) services.TemplateService {
	return &templateService{
		backend: backend,
		notices: notices,
		logger:  logger,
	}
}

// List returns the templates offered for a page and content type
func (s *templateService) List(ctx context.Context, shop, pageType, contentType string) ([]store.Template, error) {
	templates, err := s.backend.Templates(ctx, shop, pageType, contentType)
	if err != nil {
		notify.ShowError(ctx, s.notices.For(shop), err)
		return nil, err
	}
	if templates == nil {
		templates = []store.Template{}
	}
	return templates, nil
}

// Create stores a merchant-authored template. Invalid requests never reach
// the backend.
func (s *templateService) Create(ctx context.Context, shop string, req *store.CreateTemplateRequest) (*store.Template, error) {
	notifier := s.notices.For(shop)

	if err := validateCreateRequest(req); err != nil {
		notifier.Show(ctx, notify.LevelWarning, err.Error())
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	req.Title = strings.TrimSpace(req.Title)
	tpl, err := s.backend.CreateTemplate(ctx, shop, req)
	if err != nil {
		notify.ShowError(ctx, notifier, err)
		return nil, err
	}

	s.logger.Info("template created",
		"id", tpl.ID,
		"title", tpl.Title,
		"shop", shop,
	)
	notifier.Show(ctx, notify.LevelSuccess, "Template created")
	return tpl, nil
}

func validateCreateRequest(req *store.CreateTemplateRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required.Error("please enter a template name"),
			validation.Length(1, config.MaxTemplateTitleLength),
			validation.By(notBlank),
		),
		validation.Field(&req.Content,
			validation.Required.Error("please enter the template content"),
			validation.Length(1, config.MaxTemplateContentLength),
			validation.By(notBlank),
		),
	)
}

func notBlank(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
}
