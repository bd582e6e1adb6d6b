package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"taskplanner/internal/model"
	"taskplanner/internal/planner"
)

// Adapter implements planner.DocumentStore on top of GORM. An adapter
// built inside Transaction is bound to the transaction handle, so the
// body commits all-or-nothing.
type Adapter struct {
	db *gorm.DB
}

var _ planner.DocumentStore = (*Adapter)(nil)

func NewAdapter(db *gorm.DB) *Adapter {
	return &Adapter{db: db}
}

func (a *Adapter) InsertTask(ctx context.Context, task model.Task) error {
	if err := a.db.WithContext(ctx).Create(&task).Error; err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (a *Adapter) UpdateTaskFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	err := a.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (a *Adapter) DeleteTask(ctx context.Context, id string) error {
	if err := a.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (a *Adapter) BulkDeleteTasks(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := a.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("bulk delete tasks: %w", err)
	}
	return nil
}

func (a *Adapter) ScanTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := a.db.WithContext(ctx).Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("scan tasks: %w", err)
	}
	return tasks, nil
}

func (a *Adapter) InsertRecurring(ctx context.Context, def model.RecurringTask) error {
	if err := a.db.WithContext(ctx).Create(&def).Error; err != nil {
		return fmt.Errorf("insert recurring task: %w", err)
	}
	return nil
}

func (a *Adapter) UpdateRecurringFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	// GORM's json serializer does not fire for map-based updates, so
	// the day set must be encoded here or SQLite sees a row value.
	if days, ok := fields["days"].([]int); ok {
		raw, err := json.Marshal(days)
		if err != nil {
			return fmt.Errorf("encode day set: %w", err)
		}
		clone := make(map[string]any, len(fields))
		for k, v := range fields {
			clone[k] = v
		}
		clone["days"] = string(raw)
		fields = clone
	}
	err := a.db.WithContext(ctx).Model(&model.RecurringTask{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return fmt.Errorf("update recurring task: %w", err)
	}
	return nil
}

func (a *Adapter) DeleteRecurring(ctx context.Context, id string) error {
	if err := a.db.WithContext(ctx).Where("id = ?", id).Delete(&model.RecurringTask{}).Error; err != nil {
		return fmt.Errorf("delete recurring task: %w", err)
	}
	return nil
}

func (a *Adapter) ScanRecurring(ctx context.Context) ([]model.RecurringTask, error) {
	var defs []model.RecurringTask
	if err := a.db.WithContext(ctx).Order("created_at ASC").Find(&defs).Error; err != nil {
		return nil, fmt.Errorf("scan recurring tasks: %w", err)
	}
	return defs, nil
}

func (a *Adapter) Transaction(ctx context.Context, fn func(planner.DocumentStore) error) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewAdapter(tx))
	})
}
