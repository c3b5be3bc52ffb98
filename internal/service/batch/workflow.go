package batch

import (
	"slices"
	"sync"
	"time"

	batchModels "copydesk/internal/domain/models/batch"
	"copydesk/internal/domain/models/store"
)

// workflow is the batch state of one shop. Fields are guarded by mu.
type workflow struct {
	mu sync.Mutex

	state    batchModels.State
	job      *batchModels.Job
	snapshot bool   // a progress snapshot has been received
	epoch    uint64 // bumped by every local transition; polls started earlier are discarded

	selected []string // ordered product IDs; survives paging and filter changes

	products    listing[store.Product]
	collections listing[store.Collection]

	updatedAt time.Time
}

func newWorkflow(now time.Time) *workflow {
	return &workflow{state: batchModels.StateIdle, updatedAt: now}
}

// transition moves to state and invalidates in-flight polls.
func (w *workflow) transition(state batchModels.State, now time.Time) {
	w.state = state
	w.epoch++
	w.updatedAt = now
}

// observe records a job snapshot. Transient states belong to the request
// that entered them and are left alone.
func (w *workflow) observe(job *batchModels.Job, now time.Time) {
	w.job = job
	w.snapshot = true
	w.updatedAt = now

	switch w.state {
	case batchModels.StateSubmitting, batchModels.StateStopping:
		return
	}
	if job.Running() {
		w.state = batchModels.StateRunning
	} else {
		w.state = batchModels.StateIdle
	}
}

// forceIdle records a confirmed stop without waiting for the next poll.
func (w *workflow) forceIdle(now time.Time) {
	if w.job != nil {
		job := *w.job
		job.TaskStatus = batchModels.TaskStatusIdle
		w.job = &job
	}
	w.transition(batchModels.StateIdle, now)
}

// needsPolling reports whether the progress endpoint should be polled.
func (w *workflow) needsPolling() bool {
	return w.state == batchModels.StateRunning || !w.snapshot
}

// selectIDs removes then adds IDs, keeping first-selection order.
func (w *workflow) selectIDs(add, remove []string, clear bool) {
	if clear {
		w.selected = nil
	}
	if len(remove) > 0 {
		w.selected = slices.DeleteFunc(w.selected, func(id string) bool {
			return slices.Contains(remove, id)
		})
	}
	for _, id := range add {
		if id != "" && !slices.Contains(w.selected, id) {
			w.selected = append(w.selected, id)
		}
	}
}

func (w *workflow) status(polling bool) *batchModels.Status {
	selected := slices.Clone(w.selected)
	if selected == nil {
		selected = []string{}
	}

	var job *batchModels.Job
	if w.job != nil {
		j := *w.job
		job = &j
	}

	progress := ComputeProgress(job)
	if !job.Running() {
		progress.Visible = false
	}

	return &batchModels.Status{
		State:     w.state,
		Job:       job,
		Progress:  progress,
		Selected:  selected,
		Polling:   polling,
		UpdatedAt: w.updatedAt,
	}
}
