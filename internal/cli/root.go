package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"taskplanner/internal/config"
	"taskplanner/internal/planner"
	"taskplanner/internal/storage"
)

// app carries the wired subsystem shared by all commands: config →
// database → adapter → store → engine → hydrator.
type app struct {
	cfg      config.Config
	db       *gorm.DB
	store    *planner.Store
	engine   *planner.Engine
	hydrator *planner.Hydrator
	loc      *time.Location
}

// NewRootCmd builds the taskplanner command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "taskplanner",
		Short:         "Personal task planner with weekly recurring tasks",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			a.close()
			return nil
		},
	}

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newDoneCmd(a),
		newEditCmd(a),
		newPostponeCmd(a),
		newRemoveCmd(a),
		newRecurringCmd(a),
		newGenerateCmd(a),
		newSummaryCmd(a),
		newWatchCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	a.loc = loc

	db, err := storage.NewDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	a.db = db

	adapter := storage.NewAdapter(db)
	a.store = planner.NewStore(adapter)
	a.engine = planner.NewEngine(a.store)
	a.hydrator = planner.NewHydrator(a.store, a.engine, adapter, a.today)

	if err := a.hydrator.Load(cmd.Context()); err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Flush()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func (a *app) today() string {
	return planner.Day(time.Now().In(a.loc))
}

// resolveTask accepts a full task id or a unique prefix.
func (a *app) resolveTask(ref string) (string, error) {
	if _, ok := a.store.Task(ref); ok {
		return ref, nil
	}
	var matches []string
	for _, t := range a.store.Tasks() {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", planner.ErrNotFound
	default:
		return "", fmt.Errorf("task id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolveRecurring accepts a full definition id or a unique prefix.
func (a *app) resolveRecurring(ref string) (string, error) {
	if _, ok := a.store.RecurringTask(ref); ok {
		return ref, nil
	}
	var matches []string
	for _, def := range a.store.RecurringTasks() {
		if strings.HasPrefix(def.ID, ref) {
			matches = append(matches, def.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", planner.ErrNotFound
	default:
		return "", fmt.Errorf("recurring id %q is ambiguous (%d matches)", ref, len(matches))
	}
}
