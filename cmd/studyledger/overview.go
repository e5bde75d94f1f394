package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mshibata/studyledger/internal/analytics"
	"github.com/mshibata/studyledger/internal/goal"
	"github.com/mshibata/studyledger/internal/rollup"
	"github.com/mshibata/studyledger/internal/session"
)

func newOverviewCommand() *cobra.Command {
	var userID string
	var rangeName string

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Print an analytics overview for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}

			db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			aggregator := analytics.NewAggregator(
				rollup.NewDBRepository(db),
				goal.NewDBRepository(db),
				session.NewDBRepository(db),
			)

			timeRange := analytics.ParseTimeRange(rangeName)
			report, err := aggregator.GetReport(cmd.Context(), userID, timeRange)
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}

			printReport(report)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID to report on")
	cmd.Flags().StringVar(&rangeName, "range", "week", "Time range: week, month, quarter or year")

	return cmd
}

func printReport(report *analytics.Report) {
	heading := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgWhite)
	value := color.New(color.FgGreen, color.Bold)

	overview := report.Overview
	heading.Printf("Overview (%s)\n", overview.TimeRange)
	label.Printf("  Study time:      ")
	value.Printf("%dm", overview.TotalStudyTime)
	fmt.Printf(" (%s vs previous)\n", formatChange(overview.StudyTimeChange))
	label.Printf("  Tasks completed: ")
	value.Printf("%d\n", overview.TasksCompleted)
	label.Printf("  Best streak:     ")
	value.Printf("%d days\n", overview.BestStreak)
	label.Printf("  Avg efficiency:  ")
	value.Printf("%d%%\n", overview.AverageEfficiency)
	label.Printf("  Goals:           ")
	value.Printf("%d/%d completed\n", overview.CompletedGoals, overview.TotalGoals)

	if len(report.SubjectStats) > 0 {
		fmt.Println()
		heading.Println("Top subjects")
		for _, subject := range report.SubjectStats {
			fmt.Printf("  %-20s %dm\n", subject.Subject, subject.TimeSpent)
		}
	}

	if len(report.GoalProgress) > 0 {
		fmt.Println()
		heading.Println("Goals")
		for _, g := range report.GoalProgress {
			status := color.YellowString(string(g.Status))
			if g.Status == "completed" {
				status = color.GreenString(string(g.Status))
			}
			fmt.Printf("  %-30s %3d%% [%s]\n", g.Title, g.Progress, status)
		}
	}

	if len(report.ProductivityTrends) > 0 {
		fmt.Println()
		heading.Println("Productivity")
		for _, point := range report.ProductivityTrends {
			fmt.Printf("  %s  score %3d  (completion %d, efficiency %d, volume %d)\n",
				point.Date, point.Score,
				point.Factors.Completion, point.Factors.Efficiency, point.Factors.Volume)
		}
	}
}

func formatChange(change int) string {
	if change > 0 {
		return color.GreenString("+%d%%", change)
	}
	if change < 0 {
		return color.RedString("%d%%", change)
	}
	return "0%"
}
