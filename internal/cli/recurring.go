package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"taskplanner/internal/model"
	"taskplanner/internal/planner"
)

func newRecurringCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recurring",
		Aliases: []string{"rec"},
		Short:   "Manage recurring task definitions",
	}
	cmd.AddCommand(
		newRecurringAddCmd(a),
		newRecurringListCmd(a),
		newRecurringUpdateCmd(a),
		newRecurringRemoveCmd(a),
		newRecurringToggleCmd(a),
	)
	return cmd
}

func newRecurringAddCmd(a *app) *cobra.Command {
	var (
		days    string
		at      string
		endDate string
	)
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a weekly recurring definition",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekdays, err := parseDays(days)
			if err != nil {
				return err
			}
			def, err := a.store.AddRecurringTask(joinArgs(args), planner.Schedule{
				Days:    weekdays,
				At:      at,
				EndDate: endDate,
			})
			if err != nil {
				return err
			}
			fmt.Printf("added %s — %s on %s\n", shortID(def.ID), def.Text, formatDays(def.Days))
			return nil
		},
	}
	cmd.Flags().StringVar(&days, "days", "", "weekdays 0-6 (0=Sunday), comma separated, e.g. 1,3,5")
	cmd.Flags().StringVar(&at, "at", "", "advisory HH:MM time")
	cmd.Flags().StringVar(&endDate, "until", "", "last day instances generate (YYYY-MM-DD, inclusive)")
	cmd.MarkFlagRequired("days")
	return cmd
}

func newRecurringListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recurring definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs := a.store.RecurringTasks()
			if len(defs) == 0 {
				fmt.Println("no recurring definitions")
				return nil
			}
			for _, def := range defs {
				printRecurring(def)
			}
			return nil
		},
	}
}

func newRecurringUpdateCmd(a *app) *cobra.Command {
	var (
		text    string
		days    string
		at      string
		endDate string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a recurring definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolveRecurring(args[0])
			if err != nil {
				return notFoundAsNoop(err, "recurring definition")
			}

			var upd planner.RecurringUpdate
			if cmd.Flags().Changed("text") {
				upd.Text = &text
			}
			if cmd.Flags().Changed("days") {
				weekdays, err := parseDays(days)
				if err != nil {
					return err
				}
				upd.Days = &weekdays
			}
			if cmd.Flags().Changed("at") {
				upd.At = &at
			}
			if cmd.Flags().Changed("until") {
				upd.EndDate = &endDate
			}

			def, err := a.store.UpdateRecurringTask(id, upd)
			if err != nil {
				return notFoundAsNoop(err, "recurring definition")
			}
			printRecurring(def)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "new template text")
	cmd.Flags().StringVar(&days, "days", "", "new weekday set, comma separated")
	cmd.Flags().StringVar(&at, "at", "", "new advisory HH:MM time")
	cmd.Flags().StringVar(&endDate, "until", "", "new end date (YYYY-MM-DD)")
	return cmd
}

func newRecurringRemoveCmd(a *app) *cobra.Command {
	var cascade bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a recurring definition",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolveRecurring(args[0])
			if err != nil {
				return notFoundAsNoop(err, "recurring definition")
			}
			if err := a.store.DeleteRecurringTask(id, cascade); err != nil {
				return notFoundAsNoop(err, "recurring definition")
			}
			if cascade {
				fmt.Printf("deleted %s and its instances\n", shortID(id))
			} else {
				fmt.Printf("deleted %s (instances kept)\n", shortID(id))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&cascade, "cascade", false, "also delete every generated instance")
	return cmd
}

func newRecurringToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a definition's active flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolveRecurring(args[0])
			if err != nil {
				return notFoundAsNoop(err, "recurring definition")
			}
			def, err := a.store.ToggleRecurringActive(id)
			if err != nil {
				return notFoundAsNoop(err, "recurring definition")
			}
			state := "paused"
			if def.Active {
				state = "active"
			}
			fmt.Printf("%s — %s is now %s\n", shortID(def.ID), def.Text, state)
			return nil
		},
	}
}

func printRecurring(def model.RecurringTask) {
	state := "active"
	if !def.Active {
		state = "paused"
	}
	line := fmt.Sprintf("  %s  %s — %s (%s)", shortID(def.ID), def.Text, formatDays(def.Days), state)
	if def.At != "" {
		line += " at " + def.At
	}
	if def.EndDate != "" {
		line += " until " + def.EndDate
	}
	fmt.Println(line)
}

func parseDays(raw string) ([]int, error) {
	var days []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		days = append(days, d)
	}
	sort.Ints(days)
	return days, nil
}

var weekdayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func formatDays(days []int) string {
	if len(days) == 0 {
		return "no days"
	}
	names := make([]string, 0, len(days))
	for _, d := range days {
		if d >= 0 && d < len(weekdayNames) {
			names = append(names, weekdayNames[d])
		}
	}
	return strings.Join(names, ",")
}
