package apigraph

import (
	"context"
	"time"
)

// Stage identifies a pipeline stage transition in a progress event.
type Stage string

// Progress stages, in the order a successful scan emits them.
const (
	StageScrapeStarted      Stage = "scrape_started"
	StageScrapeComplete     Stage = "scrape_complete"
	StageProcessingStarted  Stage = "processing_started"
	StageBatch              Stage = "batch"
	StageURL                Stage = "url"
	StageProcessingComplete Stage = "processing_complete"
	StageLinkingStarted     Stage = "linking_started"
	StageLinkingComplete    Stage = "linking_complete"
	StageError              Stage = "error"
)

// ProgressEvent reports a stage transition during a scan. Percent is
// monotonically non-decreasing within one scan and ends at 100.
// Delivery is best-effort and fire-and-forget: emission never blocks or
// fails the pipeline, and slow or panicking subscribers are isolated.
type ProgressEvent struct {
	Stage     Stage     `json:"stage"`
	URL       string    `json:"url,omitempty"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	Percent   float64   `json:"percent"`
	Err       string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// TaskStatus is the lifecycle state of a scan task.
type TaskStatus string

// Task statuses.
const (
	TaskRunning  TaskStatus = "running"
	TaskComplete TaskStatus = "complete"
)

// Task tracks one in-flight or recently finished scan for callers that
// stream progress. Task IDs are generated independently of the root URL
// so concurrent scans of the same URL never collide.
type Task struct {
	ID        string          `json:"id"`
	RootURL   string          `json:"rootUrl"`
	Status    TaskStatus      `json:"status"`
	Updates   []ProgressEvent `json:"updates"`
	Report    *Report         `json:"report,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// TaskStore registers scan tasks and their progress streams. Task
// lifetime is bounded by an explicit expiry policy; expired tasks behave
// as if they never existed.
type TaskStore interface {
	// Create registers a new task for the root URL and returns it with a
	// freshly generated ID.
	Create(ctx context.Context, rootURL string) (*Task, error)

	// Get returns the task by ID.
	// Returns ENOTFOUND if the task does not exist or has expired.
	Get(ctx context.Context, id string) (*Task, error)

	// AppendUpdate appends a progress event to the task's update stream.
	// Returns ENOTFOUND if the task does not exist or has expired.
	AppendUpdate(ctx context.Context, id string, event ProgressEvent) error

	// Complete marks the task finished and attaches its report.
	// Returns ENOTFOUND if the task does not exist or has expired.
	Complete(ctx context.Context, id string, report *Report) error
}
