package batch

import "time"

// TaskStatus is the backend-reported status code of a batch job.
// Only idle (0) and running (2) are interpreted; other values are reserved.
type TaskStatus int

const (
	TaskStatusIdle    TaskStatus = 0
	TaskStatusRunning TaskStatus = 2
)

// Job is the server-authoritative snapshot of the shop's batch generation run.
type Job struct {
	AllCount        int        `json:"allCount"`
	UnfinishedCount int        `json:"unfinishedCount"`
	TaskModel       string     `json:"taskModel"`
	TaskStatus      TaskStatus `json:"taskStatus"`
	Stage           int        `json:"status"` // per-item stage offset, opaque
	TaskTime        string     `json:"taskTime"`
}

// Running reports whether the job is still generating.
func (j *Job) Running() bool {
	return j != nil && j.TaskStatus == TaskStatusRunning
}

// State is the client-side batch workflow state.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateRunning    State = "running"
	StateStopping   State = "stopping"
)

// Progress is the derived progress indicator for a job.
type Progress struct {
	Percent float64 `json:"percent"`
	Visible bool    `json:"visible"`
}

// Status is the workflow view returned to the UI.
type Status struct {
	State     State     `json:"state"`
	Job       *Job      `json:"job,omitempty"`
	Progress  Progress  `json:"progress"`
	Selected  []string  `json:"selected"`
	Polling   bool      `json:"polling"`
	UpdatedAt time.Time `json:"updated_at"`
}
