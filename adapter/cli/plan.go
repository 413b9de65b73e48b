package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/studyflowhq/studyflow/internal/app"
	"github.com/studyflowhq/studyflow/internal/planner/application/commands"
	"github.com/studyflowhq/studyflow/internal/planner/application/queries"
	"github.com/studyflowhq/studyflow/internal/planner/application/services"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

var (
	planHistoryLimit int
	planExportPath   string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Work with study plans",
}

var planRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Regenerate the study plan from current tasks, habits and slots",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := app.NewContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer container.Close()

		plan, err := container.RebuildPlan.Handle(cmd.Context(), commands.RebuildPlanCommand{
			OwnerID: container.Owner,
		})
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s plan v%d: %d sessions, %d unscheduled\n",
			green("✓"), plan.PlanVersion, len(plan.Sessions), len(plan.UnscheduledTasks))
		for _, s := range plan.Suggestions {
			fmt.Printf("  hint (%s): %s\n", s.Type, s.Message)
		}
		return nil
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the latest plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := app.NewContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer container.Close()

		plan, err := container.GetPlan.Latest(cmd.Context(), container.Owner)
		if err != nil {
			return err
		}

		renderPlan(plan)
		return nil
	},
}

var planHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored plan versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := app.NewContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer container.Close()

		plans, err := container.GetPlan.History(cmd.Context(), container.Owner, planHistoryLimit)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Version", "Generated", "Sessions", "Unscheduled"})
		for _, p := range plans {
			table.Append([]string{
				fmt.Sprintf("v%d", p.PlanVersion),
				p.GeneratedAt.String(),
				fmt.Sprintf("%d", len(p.Sessions)),
				fmt.Sprintf("%d", len(p.UnscheduledTasks)),
			})
		}
		table.Render()
		return nil
	},
}

var planExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the latest plan as an iCalendar file",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := app.NewContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer container.Close()

		calendar, err := container.ExportICS.Handle(cmd.Context(), container.Owner)
		if err != nil {
			return err
		}

		if planExportPath == "" || planExportPath == "-" {
			fmt.Print(calendar)
			return nil
		}
		if err := os.WriteFile(planExportPath, []byte(calendar), 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", planExportPath)
		return nil
	},
}

func renderPlan(plan *domain.PlanRecord) {
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Printf("Plan %s (generated %s)\n\n", cyan(fmt.Sprintf("v%d", plan.PlanVersion)), plan.GeneratedAt.String())

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Start", "End", "Subject", "Title", "Min", "Status"})
	for _, s := range plan.Sessions {
		table.Append([]string{
			s.PlannedStart.Time().Format(time.RFC3339),
			s.PlannedEnd.Time().Format("15:04:05"),
			s.Subject,
			s.Title,
			fmt.Sprintf("%d", s.Minutes),
			string(s.Status),
		})
	}
	table.Render()

	if len(plan.UnscheduledTasks) > 0 {
		fmt.Printf("\n%s unscheduled:\n", yellow("!"))
		for _, u := range plan.UnscheduledTasks {
			fmt.Printf("  %s · %s (short %d min, due %s)\n", u.Subject, u.Title, u.ShortfallMinutes, u.Deadline.String())
		}
	}
	for _, s := range plan.Suggestions {
		fmt.Printf("  hint (%s): %s\n", s.Type, s.Message)
	}
}

var planMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show completion and feasibility for the current week",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := app.NewContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer container.Close()

		metrics, err := container.PlanMetrics.Handle(cmd.Context(), queries.PlanMetricsQuery{
			OwnerID:  container.Owner,
			RangeKey: services.RangeWeek,
		})
		if err != nil {
			return err
		}

		fmt.Printf("range:       %s (%s .. %s)\n", metrics.Range, metrics.RangeStart, metrics.RangeEnd)
		fmt.Printf("sessions:    %d done / %d total (%.1f%%)\n", metrics.DoneSessions, metrics.TotalSessions, metrics.CompletionRate)
		fmt.Printf("feasibility: %d/100\n", metrics.FeasibilityScore)
		for _, reason := range metrics.FeasibilityReasons {
			fmt.Printf("  - %s\n", reason)
		}
		return nil
	},
}

func init() {
	planHistoryCmd.Flags().IntVar(&planHistoryLimit, "limit", 5, "number of versions to list")
	planExportCmd.Flags().StringVarP(&planExportPath, "out", "o", "", "output file (default stdout)")

	planCmd.AddCommand(planRebuildCmd)
	planCmd.AddCommand(planShowCmd)
	planCmd.AddCommand(planHistoryCmd)
	planCmd.AddCommand(planExportCmd)
	planCmd.AddCommand(planMetricsCmd)
}
