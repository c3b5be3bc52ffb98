package credits

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copydesk/internal/domain"
	"copydesk/internal/domain/models/store"
	"copydesk/internal/domain/services"
	"copydesk/internal/notify"
	"copydesk/internal/options"
	"copydesk/internal/service/servicetest"
)

const shop = "demo.myshopify.com"

type fixture struct {
	svc     services.CreditsService
	backend *servicetest.Backend
	catalog *servicetest.Catalog
	grants  *servicetest.Grants
	notices *notify.Queue
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts, err := options.NewRegistry()
	require.NoError(t, err)

	f := &fixture{
		backend: &servicetest.Backend{},
		catalog: &servicetest.Catalog{},
		grants:  &servicetest.Grants{},
		notices: notify.NewQueue(logger),
	}
	f.svc = NewService(f.backend, f.catalog, f.grants, &servicetest.TxManager{}, opts, f.notices,
		Config{AppURL: "https://app.test/", TestCharges: true}, logger)
	return f
}

func (f *fixture) levels() []notify.Level {
	var out []notify.Level
	for _, n := range f.notices.Drain(shop) {
		out = append(out, n.Level)
	}
	return out
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	f.backend.CreditsFunc = func() (*store.Credits, error) {
		return &store.Credits{AllToken: 500, UserToken: 120}, nil
	}

	credits, err := f.svc.Get(context.Background(), shop)
	require.NoError(t, err)
	assert.Equal(t, 380, credits.Remaining())
}

func TestPurchase(t *testing.T) {
	f := newFixture(t)
	var req services.ChargeRequest
	f.catalog.CreateChargeFunc = func(r services.ChargeRequest) (*store.Charge, error) {
		req = r
		return &store.Charge{ID: "charge-7", Status: "PENDING", ConfirmationURL: "https://demo.test/confirm"}, nil
	}

	charge, err := f.svc.Purchase(context.Background(), shop, "growth", "")
	require.NoError(t, err)

	assert.Equal(t, "charge-7", charge.ID)
	assert.Equal(t, 19.99, req.Amount)
	assert.Equal(t, "USD", req.Currency)
	assert.Equal(t, "https://app.test/credits?package=growth", req.ReturnURL)
	assert.True(t, req.Test)
	assert.Contains(t, req.Name, "2500")
}

func TestPurchase_UnknownPackage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Purchase(context.Background(), shop, "mega", "")

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, f.catalog.Calls("CreateCharge"))
}

func TestConfirm(t *testing.T) {
	f := newFixture(t)
	f.backend.AddCreditsFunc = func(tokens int) (*store.Credits, error) {
		return &store.Credits{AllToken: 500 + tokens, UserToken: 100}, nil
	}

	credits, err := f.svc.Confirm(context.Background(), shop, "starter", "charge-1")
	require.NoError(t, err)

	assert.Equal(t, 1000, credits.AllToken)
	require.Len(t, f.grants.Grants, 1)
	assert.Equal(t, 500, f.grants.Grants[0].Tokens)
	assert.Equal(t, []notify.Level{notify.LevelSuccess}, f.levels())
}

func TestConfirm_CreditsChargeOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Confirm(ctx, shop, "starter", "charge-1")
	require.NoError(t, err)
	f.notices.Drain(shop)

	_, err = f.svc.Confirm(ctx, shop, "starter", "charge-1")
	require.NoError(t, err)

	assert.Equal(t, 1, f.backend.Calls("AddCredits"))
	grants, err := f.svc.Grants(ctx, shop)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, "charge-1", grants[0].ChargeID)
	assert.Equal(t, []notify.Level{notify.LevelInfo}, f.levels())
}

func TestConfirm_PendingChargeIsRejected(t *testing.T) {
	f := newFixture(t)
	f.catalog.ChargeFunc = func(id string) (*store.Charge, error) {
		return &store.Charge{ID: id, Status: "PENDING"}, nil
	}

	_, err := f.svc.Confirm(context.Background(), shop, "starter", "charge-1")

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, f.backend.Calls("AddCredits"))
	assert.Empty(t, f.grants.Grants)
	assert.Equal(t, []notify.Level{notify.LevelWarning}, f.levels())
}

func TestConfirm_BackendFailure(t *testing.T) {
	f := newFixture(t)
	f.backend.AddCreditsFunc = func(int) (*store.Credits, error) {
		return nil, domain.Upstream("adding credits", errors.New("status 500"))
	}

	_, err := f.svc.Confirm(context.Background(), shop, "starter", "charge-1")

	assert.ErrorIs(t, err, domain.ErrUpstream)
	pending := f.notices.Drain(shop)
	require.Len(t, pending, 1)
	assert.Equal(t, "Error adding credits", pending[0].Message)
}
