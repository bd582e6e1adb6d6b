package planner

import (
	"sort"

	"taskplanner/internal/model"
)

// The projection layer. Every view is recomputed from the current
// store content on each call; nothing here memoizes.

// TaskGroup is one day's worth of tasks with a display label.
type TaskGroup struct {
	Day   string
	Label string
	Tasks []model.Task
}

// TodayView splits today's tasks for display: open items first,
// finished ones last.
type TodayView struct {
	Incomplete []model.Task
	Completed  []model.Task
}

// Counts is a one-pass summary over the whole collection.
type Counts struct {
	TodayIncomplete int
	Overdue         int
	Upcoming        int
	CompletedTotal  int
}

// TasksOn returns all tasks assigned to the given day,
// newest-created-first.
func (s *Store) TasksOn(day string) []model.Task {
	var out []model.Task
	for _, t := range s.Tasks() {
		if t.Day == day {
			out = append(out, t)
		}
	}
	sortNewestFirst(out)
	return out
}

// Today returns the day's tasks split into incomplete and completed.
func (s *Store) Today(today string) TodayView {
	var view TodayView
	for _, t := range s.TasksOn(today) {
		if t.Completed {
			view.Completed = append(view.Completed, t)
		} else {
			view.Incomplete = append(view.Incomplete, t)
		}
	}
	return view
}

// Overdue returns incomplete tasks dated before today, oldest day
// first.
func (s *Store) Overdue(today string) []model.Task {
	var out []model.Task
	for _, t := range s.Tasks() {
		if t.Day < today && !t.Completed {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// OverdueGroups returns the overdue view pre-grouped by day.
func (s *Store) OverdueGroups(today string) []TaskGroup {
	return GroupByDate(s.Overdue(today), today)
}

// Upcoming returns all tasks dated after today, ascending by day.
func (s *Store) Upcoming(today string) []model.Task {
	var out []model.Task
	for _, t := range s.Tasks() {
		if t.Day > today {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// UpcomingGroups returns the upcoming view pre-grouped by day.
func (s *Store) UpcomingGroups(today string) []TaskGroup {
	return GroupByDate(s.Upcoming(today), today)
}

// Counts produces the summary counters in a single pass.
func (s *Store) Counts(today string) Counts {
	var c Counts
	for _, t := range s.Tasks() {
		if t.Completed {
			c.CompletedTotal++
		}
		switch {
		case t.Day == today && !t.Completed:
			c.TodayIncomplete++
		case t.Day < today && !t.Completed:
			c.Overdue++
		case t.Day > today:
			c.Upcoming++
		}
	}
	return c
}

// GroupByDate partitions tasks into day groups ordered ascending by
// day, each labeled relative to today and internally sorted
// newest-created-first.
func GroupByDate(tasks []model.Task, today string) []TaskGroup {
	byDay := make(map[string][]model.Task)
	var days []string
	for _, t := range tasks {
		if _, ok := byDay[t.Day]; !ok {
			days = append(days, t.Day)
		}
		byDay[t.Day] = append(byDay[t.Day], t)
	}
	sort.Strings(days)

	groups := make([]TaskGroup, 0, len(days))
	for _, day := range days {
		group := TaskGroup{Day: day, Label: DayLabel(day, today), Tasks: byDay[day]}
		sortNewestFirst(group.Tasks)
		groups = append(groups, group)
	}
	return groups
}

func sortNewestFirst(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}
