package model

import "time"

// RecurringTask is a template plus a weekly schedule that produces
// Task instances.
//
// Days holds weekday numbers 0-6 where 0 is Sunday, matching
// time.Weekday. At is an advisory HH:MM time and is never enforced by
// the generator. EndDate, when non-empty, is the last day (inclusive,
// YYYY-MM-DD) on which instances may generate.
type RecurringTask struct {
	ID        string `gorm:"primaryKey"`
	Text      string
	Days      []int  `gorm:"serializer:json"`
	At        string
	EndDate   string
	Active    bool `gorm:"default:true"`
	CreatedAt time.Time
}
