package report

import (
	"fmt"
	"strings"

	"taskplanner/internal/model"
	"taskplanner/internal/planner"
)

// DailySummary renders a plain-text overview of the planner for the
// given day: overdue items first, then today's list, then upcoming
// days, closed by the counters.
func DailySummary(store *planner.Store, today string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily plan — %s\n", today)

	overdue := store.OverdueGroups(today)
	if len(overdue) > 0 {
		b.WriteString("\nOverdue\n")
		for _, group := range overdue {
			fmt.Fprintf(&b, "  %s (%s)\n", group.Label, group.Day)
			for _, t := range group.Tasks {
				b.WriteString(formatLine(t, "    "))
			}
		}
	}

	b.WriteString("\nToday\n")
	day := store.Today(today)
	if len(day.Incomplete) == 0 && len(day.Completed) == 0 {
		b.WriteString("  — nothing planned\n")
	}
	for _, t := range day.Incomplete {
		b.WriteString(formatLine(t, "  "))
	}
	for _, t := range day.Completed {
		b.WriteString(formatLine(t, "  "))
	}

	upcoming := store.UpcomingGroups(today)
	if len(upcoming) > 0 {
		b.WriteString("\nUpcoming\n")
		for _, group := range upcoming {
			fmt.Fprintf(&b, "  %s (%s)\n", group.Label, group.Day)
			for _, t := range group.Tasks {
				b.WriteString(formatLine(t, "    "))
			}
		}
	}

	c := store.Counts(today)
	fmt.Fprintf(&b, "\n%d open today · %d overdue · %d upcoming · %d done\n",
		c.TodayIncomplete, c.Overdue, c.Upcoming, c.CompletedTotal)

	return b.String()
}

func formatLine(t model.Task, indent string) string {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	marker := ""
	if t.FromRecurring() {
		marker = " ↻"
	}
	return fmt.Sprintf("%s%s %s%s\n", indent, box, t.Text, marker)
}
