package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"taskplanner/internal/planner"
	"taskplanner/internal/report"
)

func newGenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [day]",
		Short: "Materialize missing recurring instances for a day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := a.today()
			if len(args) == 1 {
				if _, err := planner.ParseDay(args[0]); err != nil {
					return err
				}
				day = args[0]
			}
			created, err := a.engine.GenerateForDate(day)
			if err != nil {
				return err
			}
			if len(created) == 0 {
				fmt.Printf("nothing to generate for %s\n", day)
				return nil
			}
			for _, t := range created {
				fmt.Printf("  %s  %s (%s)\n", shortID(t.ID), t.Text, t.Day)
			}
			return nil
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the daily summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(report.DailySummary(a.store, a.today()))
			return nil
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep running and log the summary on the configured schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.SummaryTime == "" && a.cfg.SummaryInterval <= 0 {
				return fmt.Errorf("no summary schedule configured (set summary_time or summary_interval_hours)")
			}

			scheduler := report.NewScheduler(a.loc)
			job := func() {
				log.Printf("[info] summary\n%s", report.DailySummary(a.store, a.today()))
			}
			if a.cfg.SummaryTime != "" {
				if _, err := scheduler.ScheduleDaily(a.cfg.SummaryTime, job); err != nil {
					return fmt.Errorf("schedule daily summary: %w", err)
				}
			}
			if a.cfg.SummaryInterval > 0 {
				if _, err := scheduler.ScheduleInterval(a.cfg.SummaryInterval, job); err != nil {
					return fmt.Errorf("schedule summary interval: %w", err)
				}
			}

			scheduler.Start()
			defer scheduler.Stop()

			log.Println("[info] watching; press Ctrl+C to stop")
			<-cmd.Context().Done()
			return nil
		},
	}
}
