package planner

import (
	"sort"

	"taskplanner/internal/model"
)

// Engine materializes task instances from recurring definitions. It
// only reads the store and delegates creation back through
// Store.AddTask, so the store stays the single writer.
type Engine struct {
	store *Store
}

func NewEngine(store *Store) *Engine {
	return &Engine{store: store}
}

// ShouldGenerateOnDate decides whether the definition is due on the
// given day: the definition must be active, the day's weekday must be
// in the schedule, and the day must not be past the end date. An empty
// day set never matches.
func (e *Engine) ShouldGenerateOnDate(def model.RecurringTask, day string) bool {
	if !def.Active {
		return false
	}
	weekday, err := WeekdayOf(day)
	if err != nil {
		return false
	}
	matched := false
	for _, d := range def.Days {
		if d == weekday {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	if def.EndDate != "" && day > def.EndDate {
		return false
	}
	return true
}

// HasInstance reports whether an instance for (recurringID, day)
// already exists. This is the idempotency check; it consults live
// store state so repeated generation runs never double-create.
func (e *Engine) HasInstance(recurringID, day string) bool {
	return e.store.HasInstance(recurringID, day)
}

// GenerateForDate creates every due-but-missing instance for the day
// and returns the newly created tasks. Definitions are visited in
// creation order (id as tiebreak) so runs are deterministic.
func (e *Engine) GenerateForDate(day string) ([]model.Task, error) {
	defs := e.store.RecurringTasks()
	sort.SliceStable(defs, func(i, j int) bool {
		if !defs[i].CreatedAt.Equal(defs[j].CreatedAt) {
			return defs[i].CreatedAt.Before(defs[j].CreatedAt)
		}
		return defs[i].ID < defs[j].ID
	})

	var created []model.Task
	for _, def := range defs {
		if !e.ShouldGenerateOnDate(def, day) {
			continue
		}
		if e.HasInstance(def.ID, day) {
			continue
		}
		recurringID := def.ID
		task, err := e.store.AddTask(def.Text, day, &recurringID)
		if err != nil {
			return created, err
		}
		created = append(created, task)
	}
	return created, nil
}
