package app

import "time"

// Run records one CLI invocation. Its ID tags every log line written
// during the invocation.
type Run struct {
	ID        string
	Command   string
	StartedAt time.Time
	Status    string // "success" or "error"
	Err       error
}

// NewRun starts a run of command at now.
func NewRun(command string, now time.Time) *Run {
	return &Run{
		ID:        now.UTC().Format("20060102T150405Z"),
		Command:   command,
		StartedAt: now,
		Status:    "success",
	}
}

// Fail marks the run as failed. A nil err is ignored.
func (r *Run) Fail(err error) {
	if err == nil {
		return
	}
	r.Status = "error"
	r.Err = err
}

// Elapsed returns the time since the run started.
func (r *Run) Elapsed(now time.Time) time.Duration {
	return now.Sub(r.StartedAt)
}
