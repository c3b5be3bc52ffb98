package batch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	mstream "github.com/haowjy/meridian-stream-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copydesk/internal/domain"
	batchModels "copydesk/internal/domain/models/batch"
	"copydesk/internal/domain/models/store"
	"copydesk/internal/domain/services"
	"copydesk/internal/notify"
	"copydesk/internal/options"
	"copydesk/internal/service/servicetest"
)

const shop = "demo.myshopify.com"

type fixture struct {
	svc      *Service
	backend  *servicetest.Backend
	catalog  *servicetest.Catalog
	notices  *notify.Queue
	registry *mstream.Registry
}

func newFixture(t *testing.T, interval time.Duration) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts, err := options.NewRegistry()
	require.NoError(t, err)

	f := &fixture{
		backend:  &servicetest.Backend{},
		catalog:  &servicetest.Catalog{},
		notices:  notify.NewQueue(logger),
		registry: mstream.NewRegistry(),
	}
	f.svc = NewService(f.backend, f.catalog, opts, f.notices, f.registry,
		PollerConfig{Interval: interval, MaxBackoff: 4 * interval}, logger)
	t.Cleanup(f.svc.Shutdown)
	return f
}

func (f *fixture) messages() []string {
	var out []string
	for _, n := range f.notices.Drain(shop) {
		out = append(out, n.Message)
	}
	return out
}

func TestSubmit_RejectsEmptySelectionWithoutNetworkCall(t *testing.T) {
	f := newFixture(t, time.Hour)

	_, err := f.svc.Submit(context.Background(), shop, batchModels.Settings{TemplateID: "tpl-1"})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, f.backend.Calls("SubmitBatch"))
	assert.Equal(t, []string{msgSelectProduct}, f.messages())

	w := f.svc.workflow(shop)
	assert.Equal(t, batchModels.StateIdle, w.state)
}

func TestSubmit_RejectsMissingTemplateWithoutNetworkCall(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.svc.Select(context.Background(), shop, []string{"p1"}, nil, false)

	_, err := f.svc.Submit(context.Background(), shop, batchModels.Settings{})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, f.backend.Calls("SubmitBatch"))
	assert.Equal(t, []string{msgSelectTemplate}, f.messages())
	assert.Equal(t, []string{"p1"}, f.svc.Select(context.Background(), shop, nil, nil, false))
}

func TestSubmit_RejectsUnknownOptions(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.svc.Select(context.Background(), shop, []string{"p1"}, nil, false)

	_, err := f.svc.Submit(context.Background(), shop, batchModels.Settings{TemplateID: "tpl-1", Tone: "angry"})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, f.backend.Calls("SubmitBatch"))
}

func TestSubmit_AcceptedStartsRunning(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	var gotIDs []string
	var gotSettings batchModels.Settings
	f.backend.SubmitBatchFunc = func(ids []string, s batchModels.Settings) (*batchModels.Job, error) {
		gotIDs, gotSettings = ids, s
		return &batchModels.Job{AllCount: 2, UnfinishedCount: 2, TaskModel: s.Model}, nil
	}

	f.svc.Select(ctx, shop, []string{"p1", "p2", "p1"}, nil, false)
	status, err := f.svc.Submit(ctx, shop, batchModels.Settings{TemplateID: "tpl-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p2"}, gotIDs)
	assert.Equal(t, "gpt-4o-mini", gotSettings.Model, "default model filled in")
	assert.Equal(t, batchModels.StateRunning, status.State)
	assert.Equal(t, batchModels.TaskStatusRunning, status.Job.TaskStatus)
	assert.Empty(t, status.Selected, "selection cleared on accept")
	assert.True(t, status.Progress.Visible)
	assert.True(t, f.svc.poller.Active(shop))
	assert.Equal(t, []string{msgSubmitted}, f.messages())

	_, err = f.svc.Submit(ctx, shop, batchModels.Settings{TemplateID: "tpl-1"})
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestSubmit_BackendRejectRevertsToIdle(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	f.backend.SubmitBatchFunc = func([]string, batchModels.Settings) (*batchModels.Job, error) {
		return nil, domain.Upstream("submitting batch", errors.New("status 500"))
	}

	f.svc.Select(ctx, shop, []string{"p1"}, nil, false)
	_, err := f.svc.Submit(ctx, shop, batchModels.Settings{TemplateID: "tpl-1"})

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, []string{"Error submitting batch"}, f.messages())

	w := f.svc.workflow(shop)
	assert.Equal(t, batchModels.StateIdle, w.state)
	assert.Equal(t, []string{"p1"}, w.selected, "selection kept for a retry")
}

func TestStop_ForcesIdleWithoutWaitingForPoll(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	// The backend would still report the job as running on the next poll.
	f.backend.ProgressFunc = func() (*batchModels.Job, error) {
		return &batchModels.Job{AllCount: 3, UnfinishedCount: 2, TaskStatus: batchModels.TaskStatusRunning}, nil
	}

	f.svc.Select(ctx, shop, []string{"p1"}, nil, false)
	_, err := f.svc.Submit(ctx, shop, batchModels.Settings{TemplateID: "tpl-1"})
	require.NoError(t, err)

	status, err := f.svc.Stop(ctx, shop)
	require.NoError(t, err)

	assert.Equal(t, 1, f.backend.Calls("StopBatch"))
	assert.Equal(t, 0, f.backend.Calls("Progress"))
	assert.Equal(t, batchModels.StateIdle, status.State)
	assert.Equal(t, batchModels.TaskStatusIdle, status.Job.TaskStatus)
	assert.False(t, status.Progress.Visible)
	assert.False(t, f.svc.poller.Active(shop))
}

func TestStop_RequiresRunningJob(t *testing.T) {
	f := newFixture(t, time.Hour)

	_, err := f.svc.Stop(context.Background(), shop)

	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, 0, f.backend.Calls("StopBatch"))
}

func TestStatus_PollsUntilJobIsIdle(t *testing.T) {
	f := newFixture(t, time.Millisecond)

	var mu sync.Mutex
	remaining := 3
	f.backend.ProgressFunc = func() (*batchModels.Job, error) {
		mu.Lock()
		defer mu.Unlock()
		if remaining == 0 {
			return &batchModels.Job{AllCount: 3, TaskStatus: batchModels.TaskStatusIdle}, nil
		}
		remaining--
		return &batchModels.Job{AllCount: 3, UnfinishedCount: remaining + 1, TaskStatus: batchModels.TaskStatusRunning}, nil
	}

	status, err := f.svc.Status(context.Background(), shop)
	require.NoError(t, err)
	assert.Equal(t, batchModels.StateRunning, status.State)

	require.Eventually(t, func() bool {
		return !f.svc.poller.Active(shop)
	}, 2*time.Second, 5*time.Millisecond)

	status, err = f.svc.Status(context.Background(), shop)
	require.NoError(t, err)
	assert.Equal(t, batchModels.StateIdle, status.State)
	assert.False(t, status.Polling)
	assert.Equal(t, 4, f.backend.Calls("Progress"))
}

func TestStatus_KeepsPollingUntilFirstSnapshot(t *testing.T) {
	f := newFixture(t, time.Millisecond)

	var mu sync.Mutex
	failures := 2
	f.backend.ProgressFunc = func() (*batchModels.Job, error) {
		mu.Lock()
		defer mu.Unlock()
		if failures > 0 {
			failures--
			return nil, domain.Upstream("getting progress", errors.New("timeout"))
		}
		return &batchModels.Job{}, nil
	}

	_, err := f.svc.Status(context.Background(), shop)
	assert.ErrorIs(t, err, domain.ErrUpstream)

	require.Eventually(t, func() bool {
		return f.backend.Calls("Progress") == 3 && !f.svc.poller.Active(shop)
	}, 2*time.Second, 5*time.Millisecond)

	status, err := f.svc.Status(context.Background(), shop)
	require.NoError(t, err)
	assert.Equal(t, batchModels.StateIdle, status.State)
}

func TestStatus_UnreachableBackendIsPolledAtLoopCadence(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.backend.ProgressFunc = func() (*batchModels.Job, error) {
		return nil, domain.Upstream("getting progress", errors.New("connection refused"))
	}
	ctx := context.Background()

	_, err := f.svc.Status(ctx, shop)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, []string{"Error getting progress"}, f.messages())

	for i := 0; i < 9; i++ {
		status, err := f.svc.Status(ctx, shop)
		require.NoError(t, err)
		assert.Equal(t, batchModels.StateIdle, status.State)
		assert.True(t, status.Polling)
	}

	assert.Equal(t, 1, f.backend.Calls("Progress"))
	assert.Empty(t, f.messages())
}

func TestStop_UnregistersPollStream(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.backend.ProgressFunc = func() (*batchModels.Job, error) {
		return &batchModels.Job{AllCount: 1, UnfinishedCount: 1, TaskStatus: batchModels.TaskStatusRunning}, nil
	}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f.svc.Select(ctx, shop, []string{"p1"}, nil, false)
		_, err := f.svc.Submit(ctx, shop, batchModels.Settings{TemplateID: "tpl-1"})
		require.NoError(t, err)
		assert.Equal(t, 1, f.registry.Count())

		_, err = f.svc.Stop(ctx, shop)
		require.NoError(t, err)
		assert.Equal(t, 0, f.registry.Count())
	}
}

func TestPoller_FinishedLoopLeavesRegistry(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	f.backend.ProgressFunc = func() (*batchModels.Job, error) {
		return &batchModels.Job{TaskStatus: batchModels.TaskStatusIdle}, nil
	}

	f.svc.poller.Ensure(shop)

	require.Eventually(t, func() bool {
		return !f.svc.poller.Active(shop) && f.registry.Count() == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestProducts_MergesGenerationRecords(t *testing.T) {
	f := newFixture(t, time.Hour)

	var gotReq store.PageRequest
	f.catalog.ProductsFunc = func(req store.PageRequest) (*store.Page[store.Product], error) {
		gotReq = req
		return &store.Page[store.Product]{
			Items:    []store.Product{{ID: "p1", Title: "Shirt"}, {ID: "p2", Title: "Hat"}},
			PageInfo: store.PageInfo{HasNextPage: true, EndCursor: "c2"},
		}, nil
	}
	f.backend.ProductRecordsFunc = func(ids []string) ([]store.ProductRecord, error) {
		return []store.ProductRecord{{ProductID: "p1", UpdateTime: "2024-05-01 10:00", GenerateContent: "<p>Soft</p>"}}, nil
	}

	view, err := f.svc.Products(context.Background(), shop, services.ListingQuery{Tab: store.TabActive, Query: "shirt"})
	require.NoError(t, err)

	assert.Equal(t, "status:ACTIVE shirt", gotReq.Query)
	assert.Equal(t, 50, gotReq.First)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, "2024-05-01 10:00", view.Rows[0].GeneratedAt)
	assert.Equal(t, "<p>Soft</p>", view.Rows[0].GenerateContent)
	assert.Equal(t, store.MissingTimestamp, view.Rows[1].GeneratedAt)
	assert.Equal(t, "c2", view.PageInfo.EndCursor)
	assert.False(t, view.Stale)
}

func TestProducts_RecordLookupFailureStillServesRows(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.catalog.ProductsFunc = func(store.PageRequest) (*store.Page[store.Product], error) {
		return &store.Page[store.Product]{Items: []store.Product{{ID: "p1"}}}, nil
	}
	f.backend.ProductRecordsFunc = func([]string) ([]store.ProductRecord, error) {
		return nil, domain.Upstream("getting products", errors.New("down"))
	}

	view, err := f.svc.Products(context.Background(), shop, services.ListingQuery{})
	require.NoError(t, err)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, store.MissingTimestamp, view.Rows[0].GeneratedAt)
}

func TestProducts_CatalogFailureShowsNotice(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.catalog.ProductsFunc = func(store.PageRequest) (*store.Page[store.Product], error) {
		return nil, domain.Upstream("listing products", errors.New("throttled"))
	}

	_, err := f.svc.Products(context.Background(), shop, services.ListingQuery{})
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, []string{"Error listing products"}, f.messages())
}

func TestSelect_SurvivesFilterChange(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	f.svc.Select(ctx, shop, []string{"p1", "p2"}, nil, false)
	_, err := f.svc.Products(ctx, shop, services.ListingQuery{Tab: store.TabDraft})
	require.NoError(t, err)

	assert.Equal(t, []string{"p2", "p3"}, f.svc.Select(ctx, shop, []string{"p3"}, []string{"p1"}, false))
	assert.Equal(t, []string{}, f.svc.Select(ctx, shop, nil, nil, true))
}
