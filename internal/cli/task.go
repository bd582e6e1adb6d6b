package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskplanner/internal/model"
	"taskplanner/internal/planner"
)

func newAddCmd(a *app) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a one-off task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := day
			if target == "" {
				target = a.today()
			} else if _, err := planner.ParseDay(target); err != nil {
				return err
			}
			task, err := a.store.AddTask(joinArgs(args), target, nil)
			if err != nil {
				return err
			}
			fmt.Printf("added %s — %s (%s)\n", shortID(task.ID), task.Text, task.Day)
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "on", "", "day in YYYY-MM-DD form (default today)")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var (
		overdue  bool
		upcoming bool
		all      bool
		day      string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (today by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today := a.today()
			switch {
			case day != "":
				if _, err := planner.ParseDay(day); err != nil {
					return err
				}
				printTasks(a.store.TasksOn(day))
			case overdue:
				printGroups(a.store.OverdueGroups(today))
			case upcoming:
				printGroups(a.store.UpcomingGroups(today))
			case all:
				printGroups(a.store.OverdueGroups(today))
				view := a.store.Today(today)
				fmt.Printf("Today (%s)\n", today)
				printTasks(append(view.Incomplete, view.Completed...))
				printGroups(a.store.UpcomingGroups(today))
			default:
				view := a.store.Today(today)
				if len(view.Incomplete) == 0 && len(view.Completed) == 0 {
					fmt.Println("nothing planned for today")
					return nil
				}
				printTasks(append(view.Incomplete, view.Completed...))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&overdue, "overdue", false, "show overdue tasks grouped by day")
	cmd.Flags().BoolVar(&upcoming, "upcoming", false, "show upcoming tasks grouped by day")
	cmd.Flags().BoolVar(&all, "all", false, "show overdue, today and upcoming")
	cmd.Flags().StringVar(&day, "on", "", "show tasks for one day")
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolveTask(args[0])
			if err != nil {
				return notFoundAsNoop(err, "task")
			}
			task, err := a.store.ToggleCompleted(id)
			if err != nil {
				return notFoundAsNoop(err, "task")
			}
			state := "open"
			if task.Completed {
				state = "done"
			}
			fmt.Printf("%s — %s is now %s\n", shortID(task.ID), task.Text, state)
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text>",
		Short: "Replace a task's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolveTask(args[0])
			if err != nil {
				return notFoundAsNoop(err, "task")
			}
			task, err := a.store.EditText(id, joinArgs(args[1:]))
			if err != nil {
				return notFoundAsNoop(err, "task")
			}
			fmt.Printf("%s — %s\n", shortID(task.ID), task.Text)
			return nil
		},
	}
}

func newPostponeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "postpone <id> <day>",
		Short: "Move a task to another day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := planner.ParseDay(args[1]); err != nil {
				return err
			}
			id, err := a.resolveTask(args[0])
			if err != nil {
				return notFoundAsNoop(err, "task")
			}
			task, err := a.store.Postpone(id, args[1])
			if err != nil {
				return notFoundAsNoop(err, "task")
			}
			fmt.Printf("%s — %s moved to %s\n", shortID(task.ID), task.Text, task.Day)
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolveTask(args[0])
			if err != nil {
				return notFoundAsNoop(err, "task")
			}
			if err := a.store.DeleteTask(id); err != nil {
				return notFoundAsNoop(err, "task")
			}
			fmt.Printf("deleted %s\n", shortID(id))
			return nil
		},
	}
}

func printGroups(groups []planner.TaskGroup) {
	for _, group := range groups {
		fmt.Printf("%s (%s)\n", group.Label, group.Day)
		printTasks(group.Tasks)
	}
}

func printTasks(tasks []model.Task) {
	for _, t := range tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		marker := ""
		if t.FromRecurring() {
			marker = " ↻"
		}
		fmt.Printf("  %s %s  %s%s\n", box, shortID(t.ID), t.Text, marker)
	}
}

// notFoundAsNoop keeps the permissive calling convention: a missing id
// is reported, not treated as a command failure.
func notFoundAsNoop(err error, kind string) error {
	if errors.Is(err, planner.ErrNotFound) {
		fmt.Printf("%s not found, nothing to do\n", kind)
		return nil
	}
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
