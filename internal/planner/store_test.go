package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskplanner/internal/model"
)

func TestAddTaskTrimsAndPersists(t *testing.T) {
	store, durable := newTestStore()

	task, err := store.AddTask("  Pay rent  ", "2026-02-10", nil)
	require.NoError(t, err)
	assert.Equal(t, "Pay rent", task.Text)
	assert.Equal(t, "2026-02-10", task.Day)
	assert.False(t, task.Completed)
	assert.NotEmpty(t, task.ID)
	assert.False(t, task.FromRecurring())

	store.Flush()
	assert.Equal(t, 1, durable.taskCount())
}

func TestAddTaskRejectsEmptyText(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.AddTask("   ", "2026-02-10", nil)
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Empty(t, store.Tasks())
}

func TestToggleCompletedTwiceRestoresOriginal(t *testing.T) {
	store, durable := newTestStore()
	task, err := store.AddTask("Water plants", "2026-02-10", nil)
	require.NoError(t, err)

	toggled, err := store.ToggleCompleted(task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled, err = store.ToggleCompleted(task.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)

	assert.Len(t, store.Tasks(), 1)
	store.Flush()
	assert.Equal(t, 1, durable.taskCount())
}

func TestMutationsOnMissingIDReturnNotFound(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.ToggleCompleted("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.EditText("missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Postpone("missing", "2026-02-10")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteTask("missing"), ErrNotFound)
	_, err = store.UpdateRecurringTask("missing", RecurringUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.ToggleRecurringActive("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteRecurringTask("missing", true), ErrNotFound)
}

func TestEditAndPostpone(t *testing.T) {
	store, _ := newTestStore()
	task, err := store.AddTask("Call plumber", "2026-02-10", nil)
	require.NoError(t, err)

	edited, err := store.EditText(task.ID, "  Call electrician ")
	require.NoError(t, err)
	assert.Equal(t, "Call electrician", edited.Text)

	moved, err := store.Postpone(task.ID, "2026-02-14")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-14", moved.Day)

	got, ok := store.Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, "Call electrician", got.Text)
	assert.Equal(t, "2026-02-14", got.Day)
}

func TestEditTextRejectsEmpty(t *testing.T) {
	store, _ := newTestStore()
	task, err := store.AddTask("Call plumber", "2026-02-10", nil)
	require.NoError(t, err)

	_, err = store.EditText(task.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyText)

	got, ok := store.Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, "Call plumber", got.Text)
}

func TestDeleteTask(t *testing.T) {
	store, durable := newTestStore()
	task, err := store.AddTask("Trash", "2026-02-10", nil)
	require.NoError(t, err)

	require.NoError(t, store.DeleteTask(task.ID))
	assert.Empty(t, store.Tasks())

	store.Flush()
	assert.Equal(t, 0, durable.taskCount())
}

func TestAddRecurringTaskValidatesSchedule(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.AddRecurringTask("Run", Schedule{Days: []int{7}})
	assert.ErrorIs(t, err, ErrInvalidSchedule)
	_, err = store.AddRecurringTask("Run", Schedule{Days: []int{1}, At: "25:00"})
	assert.ErrorIs(t, err, ErrInvalidSchedule)
	_, err = store.AddRecurringTask("Run", Schedule{Days: []int{1}, EndDate: "not-a-day"})
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	def, err := store.AddRecurringTask("Run", Schedule{Days: []int{1, 3, 5}, At: "07:30"})
	require.NoError(t, err)
	assert.True(t, def.Active)
	assert.Equal(t, []int{1, 3, 5}, def.Days)
}

func TestUpdateRecurringTaskMergesOnlyProvidedFields(t *testing.T) {
	store, durable := newTestStore()
	def, err := store.AddRecurringTask("Run", Schedule{Days: []int{1, 3, 5}, At: "07:30"})
	require.NoError(t, err)

	text := "Morning run"
	updated, err := store.UpdateRecurringTask(def.ID, RecurringUpdate{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, "Morning run", updated.Text)
	assert.Equal(t, []int{1, 3, 5}, updated.Days)
	assert.Equal(t, "07:30", updated.At)
	assert.True(t, updated.Active)

	store.Flush()
	assert.Equal(t, 1, durable.recurringCount())
}

func TestToggleRecurringActive(t *testing.T) {
	store, _ := newTestStore()
	def, err := store.AddRecurringTask("Run", Schedule{Days: []int{1}})
	require.NoError(t, err)

	toggled, err := store.ToggleRecurringActive(def.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	toggled, err = store.ToggleRecurringActive(def.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Active)
}

func TestDeleteRecurringCascadeRemovesInstances(t *testing.T) {
	store, durable := newTestStore()
	def, err := store.AddRecurringTask("Run", Schedule{Days: []int{1, 3, 5}})
	require.NoError(t, err)

	rid := def.ID
	_, err = store.AddTask("Run", "2026-02-09", &rid)
	require.NoError(t, err)
	_, err = store.AddTask("Run", "2026-02-11", &rid)
	require.NoError(t, err)
	other, err := store.AddTask("Unrelated", "2026-02-11", nil)
	require.NoError(t, err)

	require.NoError(t, store.DeleteRecurringTask(def.ID, true))

	for _, task := range store.Tasks() {
		if task.RecurringID != nil {
			assert.NotEqual(t, def.ID, *task.RecurringID)
		}
	}
	assert.Len(t, store.Tasks(), 1)
	_, ok := store.Task(other.ID)
	assert.True(t, ok)
	assert.Empty(t, store.RecurringTasks())

	store.Flush()
	assert.Equal(t, 1, durable.taskCount())
	assert.Equal(t, 0, durable.recurringCount())
}

func TestDeleteRecurringWithoutCascadeKeepsInstances(t *testing.T) {
	store, durable := newTestStore()
	def, err := store.AddRecurringTask("Run", Schedule{Days: []int{1}})
	require.NoError(t, err)

	rid := def.ID
	instance, err := store.AddTask("Run", "2026-02-09", &rid)
	require.NoError(t, err)

	require.NoError(t, store.DeleteRecurringTask(def.ID, false))

	got, ok := store.Task(instance.ID)
	require.True(t, ok)
	assert.Equal(t, instance, got)
	assert.Empty(t, store.RecurringTasks())

	store.Flush()
	assert.Equal(t, 1, durable.taskCount())
	assert.Equal(t, 0, durable.recurringCount())
}

func TestReplaceAllOverwritesWholesale(t *testing.T) {
	store, durable := newTestStore()
	_, err := store.AddTask("Old", "2026-02-10", nil)
	require.NoError(t, err)
	store.Flush()

	tasks := []model.Task{{ID: "t1", Text: "New", Day: "2026-02-11"}}
	defs := []model.RecurringTask{{ID: "r1", Text: "Run", Days: []int{1}, Active: true}}
	store.ReplaceAll(tasks, defs)

	assert.Equal(t, tasks, store.Tasks())
	assert.Equal(t, defs, store.RecurringTasks())

	// ReplaceAll is a bulk assignment, not a mutation: no durable write.
	store.Flush()
	assert.Equal(t, 1, durable.taskCount())
}

func TestHasInstanceMatchesExactPair(t *testing.T) {
	store, _ := newTestStore()
	rid := "r1"
	_, err := store.AddTask("Run", "2026-02-11", &rid)
	require.NoError(t, err)

	assert.True(t, store.HasInstance("r1", "2026-02-11"))
	assert.False(t, store.HasInstance("r1", "2026-02-12"))
	assert.False(t, store.HasInstance("r2", "2026-02-11"))
}
