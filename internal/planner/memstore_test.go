package planner

import (
	"context"
	"sync"
	"time"

	"taskplanner/internal/model"
)

// memDocStore is an in-memory DocumentStore for planner tests. It
// counts scans and can be told to fail or stall them, and applies
// Transaction bodies all-or-nothing via a working copy.
type memDocStore struct {
	mu        sync.Mutex
	tasks     map[string]model.Task
	recurring map[string]model.RecurringTask

	scanErr   error
	scanDelay time.Duration
	scans     int
}

func newMemDocStore() *memDocStore {
	return &memDocStore{
		tasks:     make(map[string]model.Task),
		recurring: make(map[string]model.RecurringTask),
	}
}

func (m *memDocStore) InsertTask(_ context.Context, task model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = task
	return nil
}

func (m *memDocStore) UpdateTaskFields(_ context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil
	}
	if v, ok := fields["text"]; ok {
		task.Text = v.(string)
	}
	if v, ok := fields["day"]; ok {
		task.Day = v.(string)
	}
	if v, ok := fields["completed"]; ok {
		task.Completed = v.(bool)
	}
	m.tasks[id] = task
	return nil
}

func (m *memDocStore) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	return nil
}

func (m *memDocStore) BulkDeleteTasks(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.tasks, id)
	}
	return nil
}

func (m *memDocStore) ScanTasks(ctx context.Context) ([]model.Task, error) {
	if err := m.scanGate(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (m *memDocStore) InsertRecurring(_ context.Context, def model.RecurringTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recurring[def.ID] = def
	return nil
}

func (m *memDocStore) UpdateRecurringFields(_ context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	def, ok := m.recurring[id]
	if !ok {
		return nil
	}
	if v, ok := fields["text"]; ok {
		def.Text = v.(string)
	}
	if v, ok := fields["days"]; ok {
		def.Days = v.([]int)
	}
	if v, ok := fields["at"]; ok {
		def.At = v.(string)
	}
	if v, ok := fields["end_date"]; ok {
		def.EndDate = v.(string)
	}
	if v, ok := fields["active"]; ok {
		def.Active = v.(bool)
	}
	m.recurring[id] = def
	return nil
}

func (m *memDocStore) DeleteRecurring(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recurring, id)
	return nil
}

func (m *memDocStore) ScanRecurring(_ context.Context) ([]model.RecurringTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.RecurringTask, 0, len(m.recurring))
	for _, def := range m.recurring {
		out = append(out, def)
	}
	return out, nil
}

func (m *memDocStore) Transaction(ctx context.Context, fn func(DocumentStore) error) error {
	work := newMemDocStore()
	m.mu.Lock()
	for id, t := range m.tasks {
		work.tasks[id] = t
	}
	for id, def := range m.recurring {
		work.recurring[id] = def
	}
	m.mu.Unlock()

	if err := fn(work); err != nil {
		return err
	}

	m.mu.Lock()
	m.tasks = work.tasks
	m.recurring = work.recurring
	m.mu.Unlock()
	return nil
}

// scanGate applies the configured scan failure or delay and counts the
// call.
func (m *memDocStore) scanGate(ctx context.Context) error {
	m.mu.Lock()
	m.scans++
	err := m.scanErr
	delay := m.scanDelay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *memDocStore) taskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *memDocStore) recurringCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recurring)
}

func (m *memDocStore) scanCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scans
}

func (m *memDocStore) setScanErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanErr = err
}

// testClock hands out strictly increasing instants so creation-order
// sorts are deterministic.
type testClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newTestClock() *testClock {
	return &testClock{
		now:  time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		step: time.Second,
	}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

func newTestStore() (*Store, *memDocStore) {
	durable := newMemDocStore()
	store := NewStore(durable)
	store.now = newTestClock().Now
	return store, durable
}
