package credits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"copydesk/internal/domain"
	"copydesk/internal/domain/models/store"
	"copydesk/internal/domain/repositories"
	"copydesk/internal/domain/services"
	"copydesk/internal/notify"
	"copydesk/internal/options"
)

const (
	msgNotApproved     = "The purchase has not been approved"
	msgAlreadyCredited = "These credits were already added"
)

// Config holds the billing settings.
type Config struct {
	// AppURL is where the merchant returns after approving a charge
	AppURL string
	// TestCharges creates charges that are never billed
	TestCharges bool
}

// creditsService implements the CreditsService interface
type creditsService struct {
	backend   services.GenerationBackend
	catalog   services.CatalogGateway
	grants    repositories.CreditGrantRepository
	txManager repositories.TransactionManager
	options   *options.Registry
	notices   *notify.Queue
	cfg       Config
	logger    *slog.Logger
}

// NewService creates a new credits service
func NewService(
	backend services.GenerationBackend,
	catalog services.CatalogGateway,
	grants repositories.CreditGrantRepository,
	txManager repositories.TransactionManager,
	opts *options.Registry,
	notices *notify.Queue,
	cfg Config,
	logger *slog.Logger,
) services.CreditsService {
	return &creditsService{
		backend:   backend,
		catalog:   catalog,
		grants:    grants,
		txManager: txManager,
		options:   opts,
		notices:   notices,
		cfg:       cfg,
		logger:    logger,
	}
}

// Get returns the shop's credit counters
func (s *creditsService) Get(ctx context.Context, shop string) (*store.Credits, error) {
	credits, err := s.backend.Credits(ctx, shop)
	if err != nil {
		notify.ShowError(ctx, s.notices.For(shop), err)
		return nil, err
	}
	return credits, nil
}

// Grants lists the charges credited to the shop
func (s *creditsService) Grants(ctx context.Context, shop string) ([]store.CreditGrant, error) {
	return s.grants.ListByShop(ctx, shop)
}

// Purchase starts a one-time charge for a credit package. The merchant
// approves it at the returned confirmation URL.
func (s *creditsService) Purchase(ctx context.Context, shop, packageID, returnURL string) (*store.Charge, error) {
	pkg, err := s.options.Package(packageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if returnURL == "" {
		returnURL = strings.TrimSuffix(s.cfg.AppURL, "/") + "/credits?package=" + pkg.ID
	}

	charge, err := s.catalog.CreateCharge(ctx, shop, services.ChargeRequest{
		Name:      fmt.Sprintf("%s: %d credits", pkg.DisplayName, pkg.Tokens),
		Amount:    pkg.Price,
		Currency:  pkg.Currency,
		ReturnURL: returnURL,
		Test:      s.cfg.TestCharges,
	})
	if err != nil {
		notify.ShowError(ctx, s.notices.For(shop), err)
		return nil, err
	}

	s.logger.Info("charge created",
		"shop", shop,
		"charge_id", charge.ID,
		"package_id", pkg.ID,
		"test", s.cfg.TestCharges,
	)
	return charge, nil
}

// Confirm credits the package tokens once the charge is approved. Each
// charge is credited at most once.
func (s *creditsService) Confirm(ctx context.Context, shop, packageID, chargeID string) (*store.Credits, error) {
	notifier := s.notices.For(shop)

	pkg, err := s.options.Package(packageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if chargeID == "" {
		return nil, fmt.Errorf("%w: charge_id is required", domain.ErrValidation)
	}

	charge, err := s.catalog.Charge(ctx, shop, chargeID)
	if err != nil {
		notify.ShowError(ctx, notifier, err)
		return nil, err
	}
	if charge.Status != store.ChargeStatusActive {
		notifier.Show(ctx, notify.LevelWarning, msgNotApproved)
		return nil, fmt.Errorf("%w: charge %s is %s", domain.ErrValidation, chargeID, charge.Status)
	}

	var credits *store.Credits
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		grant := &store.CreditGrant{
			Shop:      shop,
			ChargeID:  chargeID,
			PackageID: pkg.ID,
			Tokens:    pkg.Tokens,
		}
		if err := s.grants.Create(txCtx, grant); err != nil {
			return err
		}
		// The grant rolls back if the backend refuses the top-up
		credits, err = s.backend.AddCredits(txCtx, shop, pkg.Tokens)
		return err
	})

	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		s.logger.Info("charge already credited", "shop", shop, "charge_id", chargeID)
		notifier.Show(ctx, notify.LevelInfo, msgAlreadyCredited)
		return s.Get(ctx, shop)
	case err != nil:
		s.logger.Error("failed to credit charge", "shop", shop, "charge_id", chargeID, "error", err)
		notify.ShowError(ctx, notifier, err)
		return nil, err
	}

	s.logger.Info("credits added",
		"shop", shop,
		"charge_id", chargeID,
		"tokens", pkg.Tokens,
	)
	notifier.Show(ctx, notify.LevelSuccess, fmt.Sprintf("%d credits added", pkg.Tokens))
	return credits, nil
}
