package model

import "time"

// Task is a single dated, completable item in the planner.
//
// Day is a calendar date in YYYY-MM-DD form with no time component;
// lexicographic order on Day equals chronological order. RecurringID is
// set only on instances materialized from a RecurringTask.
type Task struct {
	ID          string `gorm:"primaryKey"`
	Text        string
	Day         string  `gorm:"index"`
	Completed   bool    `gorm:"default:false"`
	RecurringID *string `gorm:"index"`
	CreatedAt   time.Time
}

// FromRecurring reports whether the task was generated from a
// recurring definition.
func (t Task) FromRecurring() bool {
	return t.RecurringID != nil && *t.RecurringID != ""
}
