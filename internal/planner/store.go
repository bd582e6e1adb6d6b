package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskplanner/internal/model"
)

var (
	// ErrNotFound is returned by mutations referencing an id absent
	// from the in-memory collections. Callers are expected to treat it
	// as a no-op rather than an error dialog.
	ErrNotFound = errors.New("planner: record not found")

	// ErrEmptyText rejects task or definition text that is empty after
	// trimming.
	ErrEmptyText = errors.New("planner: text must not be empty")

	// ErrInvalidSchedule rejects weekday numbers outside 0-6, a
	// malformed advisory time, or a malformed end date.
	ErrInvalidSchedule = errors.New("planner: invalid schedule")
)

// writeTimeout bounds each background durable write.
const writeTimeout = 10 * time.Second

// DocumentStore is the durable side of the planner: an asynchronous
// document store holding the task and recurring-definition
// collections. Implementations must apply the body of Transaction
// all-or-nothing.
type DocumentStore interface {
	InsertTask(ctx context.Context, task model.Task) error
	UpdateTaskFields(ctx context.Context, id string, fields map[string]any) error
	DeleteTask(ctx context.Context, id string) error
	BulkDeleteTasks(ctx context.Context, ids []string) error
	ScanTasks(ctx context.Context) ([]model.Task, error)

	InsertRecurring(ctx context.Context, def model.RecurringTask) error
	UpdateRecurringFields(ctx context.Context, id string, fields map[string]any) error
	DeleteRecurring(ctx context.Context, id string) error
	ScanRecurring(ctx context.Context) ([]model.RecurringTask, error)

	Transaction(ctx context.Context, fn func(DocumentStore) error) error
}

// Schedule is the weekly schedule of a recurring definition. Days uses
// the 0 = Sunday numbering from this package; At is an advisory HH:MM
// string; EndDate, when non-empty, is the last day instances generate.
type Schedule struct {
	Days    []int
	At      string
	EndDate string
}

// RecurringUpdate carries a partial update for a recurring definition.
// Nil fields are left untouched.
type RecurringUpdate struct {
	Text    *string
	Days    *[]int
	At      *string
	EndDate *string
	Active  *bool
}

// Store is the single source of truth for both collections during the
// process lifetime. Every mutation updates memory synchronously and
// issues a fire-and-forget write to the durable store; write failures
// are logged, never surfaced.
type Store struct {
	durable DocumentStore
	now     func() time.Time

	mu        sync.RWMutex
	tasks     []model.Task
	recurring []model.RecurringTask

	writes sync.WaitGroup
}

// NewStore builds an empty store backed by the given durable store.
// It holds no data until ReplaceAll (normally via hydration) or the
// first mutation.
func NewStore(durable DocumentStore) *Store {
	return &Store{durable: durable, now: time.Now}
}

// AddTask creates a new task for the given day. recurringID is nil for
// manually created tasks and carries the owning definition id for
// generated instances.
func (s *Store) AddTask(text, day string, recurringID *string) (model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, ErrEmptyText
	}

	task := model.Task{
		ID:          uuid.NewString(),
		Text:        text,
		Day:         day,
		RecurringID: recurringID,
		CreatedAt:   s.now(),
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	s.persist("insert task", func(ctx context.Context) error {
		return s.durable.InsertTask(ctx, task)
	})
	return task, nil
}

// ToggleCompleted flips the completed flag of a task.
func (s *Store) ToggleCompleted(id string) (model.Task, error) {
	s.mu.Lock()
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Task{}, ErrNotFound
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	task := s.tasks[i]
	s.mu.Unlock()

	s.persist("toggle task", func(ctx context.Context) error {
		return s.durable.UpdateTaskFields(ctx, id, map[string]any{"completed": task.Completed})
	})
	return task, nil
}

// EditText replaces a task's text. Like AddTask, text that is empty
// after trimming is rejected.
func (s *Store) EditText(id, text string) (model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, ErrEmptyText
	}

	s.mu.Lock()
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Task{}, ErrNotFound
	}
	s.tasks[i].Text = text
	task := s.tasks[i]
	s.mu.Unlock()

	s.persist("edit task", func(ctx context.Context) error {
		return s.durable.UpdateTaskFields(ctx, id, map[string]any{"text": text})
	})
	return task, nil
}

// Postpone moves a task to another day. The new day is not validated
// against today; that is the caller's call.
func (s *Store) Postpone(id, day string) (model.Task, error) {
	s.mu.Lock()
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Task{}, ErrNotFound
	}
	s.tasks[i].Day = day
	task := s.tasks[i]
	s.mu.Unlock()

	s.persist("postpone task", func(ctx context.Context) error {
		return s.durable.UpdateTaskFields(ctx, id, map[string]any{"day": day})
	})
	return task, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.mu.Unlock()

	s.persist("delete task", func(ctx context.Context) error {
		return s.durable.DeleteTask(ctx, id)
	})
	return nil
}

// AddRecurringTask creates an active recurring definition.
func (s *Store) AddRecurringTask(text string, sched Schedule) (model.RecurringTask, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.RecurringTask{}, ErrEmptyText
	}
	if err := validateSchedule(sched); err != nil {
		return model.RecurringTask{}, err
	}

	def := model.RecurringTask{
		ID:        uuid.NewString(),
		Text:      text,
		Days:      append([]int(nil), sched.Days...),
		At:        sched.At,
		EndDate:   sched.EndDate,
		Active:    true,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.recurring = append(s.recurring, def)
	s.mu.Unlock()

	s.persist("insert recurring", func(ctx context.Context) error {
		return s.durable.InsertRecurring(ctx, def)
	})
	return def, nil
}

// UpdateRecurringTask merges the provided fields into a definition.
// Existing generated instances are untouched.
func (s *Store) UpdateRecurringTask(id string, upd RecurringUpdate) (model.RecurringTask, error) {
	fields := make(map[string]any)

	s.mu.Lock()
	i := s.recurringIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return model.RecurringTask{}, ErrNotFound
	}
	if upd.Text != nil {
		text := strings.TrimSpace(*upd.Text)
		if text == "" {
			s.mu.Unlock()
			return model.RecurringTask{}, ErrEmptyText
		}
		s.recurring[i].Text = text
		fields["text"] = text
	}
	if upd.Days != nil {
		days := append([]int(nil), (*upd.Days)...)
		if err := validateSchedule(Schedule{Days: days}); err != nil {
			s.mu.Unlock()
			return model.RecurringTask{}, err
		}
		s.recurring[i].Days = days
		fields["days"] = days
	}
	if upd.At != nil {
		if err := validateSchedule(Schedule{At: *upd.At}); err != nil {
			s.mu.Unlock()
			return model.RecurringTask{}, err
		}
		s.recurring[i].At = *upd.At
		fields["at"] = *upd.At
	}
	if upd.EndDate != nil {
		if err := validateSchedule(Schedule{EndDate: *upd.EndDate}); err != nil {
			s.mu.Unlock()
			return model.RecurringTask{}, err
		}
		s.recurring[i].EndDate = *upd.EndDate
		fields["end_date"] = *upd.EndDate
	}
	if upd.Active != nil {
		s.recurring[i].Active = *upd.Active
		fields["active"] = *upd.Active
	}
	def := s.recurring[i]
	s.mu.Unlock()

	if len(fields) == 0 {
		return def, nil
	}
	s.persist("update recurring", func(ctx context.Context) error {
		return s.durable.UpdateRecurringFields(ctx, id, fields)
	})
	return def, nil
}

// ToggleRecurringActive flips the active flag of a definition.
func (s *Store) ToggleRecurringActive(id string) (model.RecurringTask, error) {
	s.mu.Lock()
	i := s.recurringIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return model.RecurringTask{}, ErrNotFound
	}
	s.recurring[i].Active = !s.recurring[i].Active
	def := s.recurring[i]
	s.mu.Unlock()

	s.persist("toggle recurring", func(ctx context.Context) error {
		return s.durable.UpdateRecurringFields(ctx, id, map[string]any{"active": def.Active})
	})
	return def, nil
}

// DeleteRecurringTask removes a definition. With cascade, every
// instance generated from it is removed too; the definition delete and
// the instance bulk delete go to the durable store as one transaction.
// The in-memory removal is applied optimistically before the durable
// write resolves.
func (s *Store) DeleteRecurringTask(id string, cascade bool) error {
	s.mu.Lock()
	i := s.recurringIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.recurring = append(s.recurring[:i], s.recurring[i+1:]...)

	var instanceIDs []string
	if cascade {
		kept := s.tasks[:0]
		for _, t := range s.tasks {
			if t.RecurringID != nil && *t.RecurringID == id {
				instanceIDs = append(instanceIDs, t.ID)
				continue
			}
			kept = append(kept, t)
		}
		s.tasks = kept
	}
	s.mu.Unlock()

	if !cascade {
		s.persist("delete recurring", func(ctx context.Context) error {
			return s.durable.DeleteRecurring(ctx, id)
		})
		return nil
	}

	s.persist("cascade delete recurring", func(ctx context.Context) error {
		return s.durable.Transaction(ctx, func(tx DocumentStore) error {
			if err := tx.DeleteRecurring(ctx, id); err != nil {
				return err
			}
			return tx.BulkDeleteTasks(ctx, instanceIDs)
		})
	})
	return nil
}

// ReplaceAll overwrites both in-memory collections wholesale. Used by
// hydration only; it issues no durable writes.
func (s *Store) ReplaceAll(tasks []model.Task, recurring []model.RecurringTask) {
	s.mu.Lock()
	s.tasks = append([]model.Task(nil), tasks...)
	s.recurring = append([]model.RecurringTask(nil), recurring...)
	s.mu.Unlock()
}

// Tasks returns a copy of the task collection.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Task(nil), s.tasks...)
}

// RecurringTasks returns a copy of the definition collection.
func (s *Store) RecurringTasks() []model.RecurringTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.RecurringTask(nil), s.recurring...)
}

// Task looks up a task by id.
func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.taskIndex(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

// RecurringTask looks up a definition by id.
func (s *Store) RecurringTask(id string) (model.RecurringTask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.recurringIndex(id); i >= 0 {
		return s.recurring[i], true
	}
	return model.RecurringTask{}, false
}

// HasInstance reports whether a task generated from the given
// definition already exists on the given day. Evaluated against live
// state, never a snapshot.
func (s *Store) HasInstance(recurringID, day string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.Day == day && t.RecurringID != nil && *t.RecurringID == recurringID {
			return true
		}
	}
	return false
}

// Flush blocks until all fire-and-forget durable writes issued so far
// have settled. Call before process exit and in tests that inspect the
// durable store.
func (s *Store) Flush() {
	s.writes.Wait()
}

// taskIndex and recurringIndex assume s.mu is held.
func (s *Store) taskIndex(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) recurringIndex(id string) int {
	for i := range s.recurring {
		if s.recurring[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(op string, fn func(context.Context) error) {
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("durable write (%s): %v", op, err)
		}
	}()
}

// validateSchedule checks field formats. An empty day set is legal (it
// simply never matches); out-of-range weekdays and malformed times or
// end dates are not.
func validateSchedule(sched Schedule) error {
	for _, d := range sched.Days {
		if d < Sunday || d > Saturday {
			return fmt.Errorf("%w: weekday %d out of range 0-6", ErrInvalidSchedule, d)
		}
	}
	if sched.At != "" {
		if err := validateClock(sched.At); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
	}
	if sched.EndDate != "" {
		if _, err := ParseDay(sched.EndDate); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
	}
	return nil
}

func validateClock(at string) error {
	parts := strings.Split(at, ":")
	if len(parts) != 2 {
		return fmt.Errorf("invalid time %q, expected HH:MM", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return fmt.Errorf("invalid hour in %q", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid minute in %q", at)
	}
	return nil
}
