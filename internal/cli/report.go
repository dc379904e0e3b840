package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/pomoclock/internal/analytics"
	"github.com/sadopc/pomoclock/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print productivity reports",
}

var reportDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Today's sessions, focus time and moods",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printReport(cmd, func(recs []store.SessionRecord, now time.Time) string {
			return analytics.RenderDaily(analytics.DailySummary(recs, now))
		})
	},
}

var reportWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "This week's completion rate, best day and mood score",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printReport(cmd, func(recs []store.SessionRecord, now time.Time) string {
			return analytics.RenderWeekly(analytics.WeeklySummary(recs, now))
		})
	},
}

var reportTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Time spent per task",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := periodFlag(cmd)
		if err != nil {
			return err
		}
		return printReport(cmd, func(recs []store.SessionRecord, now time.Time) string {
			return analytics.RenderTaskBreakdown(analytics.TaskTotals(analytics.InPeriod(recs, p, now)))
		})
	},
}

var reportMoodCmd = &cobra.Command{
	Use:   "mood",
	Short: "Mood distribution and insights",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := periodFlag(cmd)
		if err != nil {
			return err
		}
		return printReport(cmd, func(recs []store.SessionRecord, now time.Time) string {
			return analytics.RenderMoods(analytics.Moods(analytics.InPeriod(recs, p, now)), p, now)
		})
	},
}

func init() {
	reportCmd.AddCommand(reportDailyCmd)
	reportCmd.AddCommand(reportWeeklyCmd)
	reportCmd.AddCommand(reportTasksCmd)
	reportCmd.AddCommand(reportMoodCmd)

	reportTasksCmd.Flags().String("period", "week", "Period: day, week, month or all")
	reportMoodCmd.Flags().String("period", "week", "Period: day, week, month or all")
}

func periodFlag(cmd *cobra.Command) (analytics.Period, error) {
	s, _ := cmd.Flags().GetString("period")
	return analytics.ParsePeriod(s)
}

func printReport(cmd *cobra.Command, render func([]store.SessionRecord, time.Time) string) error {
	e, err := openEnv(false)
	if err != nil {
		return err
	}
	defer e.close()

	recs, err := e.store.AllSessions()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), render(recs, time.Now()))
	return nil
}
