// Package inmem provides in-memory service implementations. Nothing in a
// scan outlives the request that produced it, so the task registry keeps
// no durable state.
package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/apigraph"
	"github.com/google/uuid"
)

// DefaultTaskTTL bounds how long a finished or abandoned task remains
// visible. Expiry is a policy of the store, not a timer per task.
const DefaultTaskTTL = 30 * time.Minute

// Ensure TaskStore implements apigraph.TaskStore at compile time.
var _ apigraph.TaskStore = (*TaskStore)(nil)

// TaskStore is an in-memory apigraph.TaskStore keyed by generated task
// id, never by URL, so concurrent scans of the same root never collide.
// It is safe for concurrent use.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[string]*apigraph.Task
	ttl   time.Duration
	now   func() time.Time
}

// Option configures a TaskStore.
type Option func(*TaskStore)

// WithTTL overrides the task expiry policy.
func WithTTL(ttl time.Duration) Option {
	return func(s *TaskStore) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *TaskStore) {
		s.now = now
	}
}

// NewTaskStore creates a TaskStore with the default TTL.
func NewTaskStore(opts ...Option) *TaskStore {
	s := &TaskStore{
		tasks: make(map[string]*apigraph.Task),
		ttl:   DefaultTaskTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new running task for the root URL.
func (s *TaskStore) Create(_ context.Context, rootURL string) (*apigraph.Task, error) {
	if rootURL == "" {
		return nil, apigraph.Errorf(apigraph.EINVALID, "root URL required")
	}

	now := s.now()
	task := &apigraph.Task{
		ID:        uuid.NewString(),
		RootURL:   rootURL,
		Status:    apigraph.TaskRunning,
		Updates:   []apigraph.ProgressEvent{},
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpired(now)
	s.tasks[task.ID] = task

	return cloneTask(task), nil
}

// Get returns the task by id.
// Returns ENOTFOUND if the task does not exist or has expired.
func (s *TaskStore) Get(_ context.Context, id string) (*apigraph.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return cloneTask(task), nil
}

// AppendUpdate appends a progress event to the task's update stream.
func (s *TaskStore) AppendUpdate(_ context.Context, id string, event apigraph.ProgressEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.find(id)
	if err != nil {
		return err
	}
	task.Updates = append(task.Updates, event)
	return nil
}

// Complete marks the task finished and attaches its report.
func (s *TaskStore) Complete(_ context.Context, id string, report *apigraph.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.find(id)
	if err != nil {
		return err
	}
	task.Status = apigraph.TaskComplete
	task.Report = report
	return nil
}

// find looks a live task up by id. Callers hold the mutex.
func (s *TaskStore) find(id string) (*apigraph.Task, error) {
	now := s.now()
	s.purgeExpired(now)

	task, ok := s.tasks[id]
	if !ok {
		return nil, apigraph.Errorf(apigraph.ENOTFOUND, "task %q not found", id)
	}
	return task, nil
}

// purgeExpired removes every task past its expiry. Callers hold the
// mutex.
func (s *TaskStore) purgeExpired(now time.Time) {
	for id, task := range s.tasks {
		if now.After(task.ExpiresAt) {
			delete(s.tasks, id)
		}
	}
}

// cloneTask copies a task so callers cannot mutate store state.
func cloneTask(t *apigraph.Task) *apigraph.Task {
	clone := *t
	clone.Updates = append([]apigraph.ProgressEvent(nil), t.Updates...)
	return &clone
}
