package batch

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	mstream "github.com/haowjy/meridian-stream-go"

	batchModels "copydesk/internal/domain/models/batch"
)

// PollFunc fetches and records the job snapshot of shop. It reports whether
// polling should go on.
type PollFunc func(ctx context.Context, shop string) (job *batchModels.Job, keep bool, err error)

// PollerConfig sets the poll cadence.
type PollerConfig struct {
	Interval   time.Duration
	MaxBackoff time.Duration
	Jitter     float64 // fraction of the delay, e.g. 0.1 for +/-10%
}

// Poller owns at most one progress loop per shop. Each loop is an mstream
// Stream registered under a fresh ID, so a restarted loop never collides
// with one that is still shutting down.
type Poller struct {
	registry *mstream.Registry
	poll     PollFunc
	cfg      PollerConfig
	logger   *slog.Logger

	mu    sync.Mutex
	loops map[string]*pollLoop // shop -> active loop
}

type pollLoop struct {
	poller *Poller
	shop   string
	stream *mstream.Stream
	again  bool // Ensure was called while the loop was running; guarded by Poller.mu

	mu   sync.Mutex
	last []byte // latest snapshot, replayed to late subscribers
}

// NewPoller creates a poller. poll runs on the loop goroutine and must not
// call Ensure or Cancel.
func NewPoller(registry *mstream.Registry, poll PollFunc, cfg PollerConfig, logger *slog.Logger) *Poller {
	return &Poller{
		registry: registry,
		poll:     poll,
		cfg:      cfg,
		logger:   logger,
		loops:    make(map[string]*pollLoop),
	}
}

// Ensure starts the loop for shop unless one is already active. An active
// loop that is about to finish keeps going instead.
// It reports whether a new loop was started.
func (p *Poller) Ensure(shop string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if loop, ok := p.loops[shop]; ok {
		loop.again = true
		return false
	}

	streamID := "batch-progress:" + shop + ":" + uuid.NewString()
	loop := &pollLoop{poller: p, shop: shop}
	loop.stream = mstream.NewStream(
		streamID,
		loop.work,
		mstream.WithCatchup(loop.catchup),
	)
	p.loops[shop] = loop
	p.registry.Register(loop.stream)
	loop.stream.Start()

	p.logger.Debug("progress polling started", "shop", shop, "stream_id", streamID)
	return true
}

// Cancel stops the loop of shop, if any.
func (p *Poller) Cancel(shop string) {
	p.mu.Lock()
	loop, ok := p.loops[shop]
	delete(p.loops, shop)
	p.mu.Unlock()

	if ok {
		loop.stream.Cancel()
		p.registry.Remove(loop.stream.ID())
		p.logger.Debug("progress polling cancelled", "shop", shop)
	}
}

// Active reports whether shop has a running loop.
func (p *Poller) Active(shop string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.loops[shop]
	return ok
}

// Shutdown cancels every loop.
func (p *Poller) Shutdown() {
	p.mu.Lock()
	loops := p.loops
	p.loops = make(map[string]*pollLoop)
	p.mu.Unlock()

	for _, loop := range loops {
		loop.stream.Cancel()
		p.registry.Remove(loop.stream.ID())
	}
}

// release forgets loop if it is still the active one for its shop and no
// restart was requested. It reports whether the loop was released.
func (p *Poller) release(loop *pollLoop) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if loop.again {
		loop.again = false
		return false
	}
	if p.loops[loop.shop] == loop {
		delete(p.loops, loop.shop)
	}
	return true
}

// drop forgets loop unconditionally and unregisters its stream. Cancelled
// streams fire no completion hook, so the registry never removes them itself.
func (p *Poller) drop(loop *pollLoop) {
	p.mu.Lock()
	if p.loops[loop.shop] == loop {
		delete(p.loops, loop.shop)
	}
	p.mu.Unlock()

	p.registry.Remove(loop.stream.ID())
}

// delay returns the wait before the next poll after failures consecutive
// failed polls.
func (p *Poller) delay(failures int) time.Duration {
	d := p.cfg.Interval
	for i := 0; i < failures && d < p.cfg.MaxBackoff; i++ {
		d *= 2
	}
	if p.cfg.MaxBackoff > 0 && d > p.cfg.MaxBackoff {
		d = p.cfg.MaxBackoff
	}
	if p.cfg.Jitter > 0 {
		d = time.Duration(float64(d) * (1 + p.cfg.Jitter*(2*rand.Float64()-1)))
	}
	return d
}

// work waits, polls and repeats until the job is no longer running or the
// stream is cancelled. Each delay starts after the previous response, so
// polls never overlap.
func (l *pollLoop) work(ctx context.Context, send func(mstream.Event)) error {
	p := l.poller
	defer p.drop(l)

	failures := 0
	timer := time.NewTimer(p.delay(0))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		job, keep, err := p.poll(ctx, l.shop)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			failures++
			p.logger.Warn("progress poll failed", "shop", l.shop, "failures", failures, "error", err)
		} else {
			failures = 0
			l.publish(send, job)
		}

		if !keep && p.release(l) {
			p.logger.Debug("progress polling finished", "shop", l.shop)
			return nil
		}
		timer.Reset(p.delay(failures))
	}
}

func (l *pollLoop) publish(send func(mstream.Event), job *batchModels.Job) {
	data, err := json.Marshal(struct {
		Job      *batchModels.Job     `json:"job"`
		Progress batchModels.Progress `json:"progress"`
	}{job, ComputeProgress(job)})
	if err != nil {
		l.poller.logger.Error("failed to marshal progress event", "shop", l.shop, "error", err)
		return
	}

	err = l.stream.PersistAndClear(func([]mstream.Event) error {
		l.mu.Lock()
		l.last = data
		l.mu.Unlock()
		return nil
	})
	if err != nil {
		l.poller.logger.Warn("failed to store progress snapshot", "shop", l.shop, "error", err)
	}

	send(mstream.NewEvent(data).WithType("progress"))
}

func (l *pollLoop) catchup(_ string, _ string) ([]mstream.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last == nil {
		return nil, nil
	}
	return []mstream.Event{mstream.NewEvent(l.last).WithType("progress")}, nil
}
