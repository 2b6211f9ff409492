package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reeltrack/internal/analytics"
	"reeltrack/internal/api"
	"reeltrack/internal/config"
	"reeltrack/internal/production"
)

func newAnalyticsCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOut    bool
		windowDays int
	)

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Report on archived projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *production.Store) error {
				window := time.Duration(windowDays) * 24 * time.Hour
				overview, err := api.BuildOverview(cmd.Context(), store, cfg, time.Now(), window)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, overview)
				}

				out := cmd.OutOrStdout()
				if overview.Summary.Archives == 0 {
					fmt.Fprintln(out, "No archived projects yet.")
					return nil
				}

				fmt.Fprintf(out, "Archived projects:  %d\n", overview.Summary.Archives)
				fmt.Fprintf(out, "Average duration:   %.1f days\n", overview.Summary.AvgDays)
				fmt.Fprintf(out, "Average effort:     %s\n", formatHours(overview.Summary.AvgHours))
				fmt.Fprintf(out, "Average efficiency: %s\n", formatOptionalFloat(overview.Summary.AvgEfficiency, 2))
				fmt.Fprintf(out, "Average quality:    %s\n", formatOptionalFloat(overview.Summary.AvgQuality, 1))
				if overview.Summary.CompletionRate != nil {
					fmt.Fprintf(out, "Completion rate:    %.0f%%\n", *overview.Summary.CompletionRate*100)
				}
				fmt.Fprintln(out)

				fmt.Fprintln(out, renderTable(
					[]string{"Content Type", "Archives", "Avg Days", "Avg Hours"},
					groupRows(overview.ByContentType),
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
				))
				fmt.Fprintln(out, renderTable(
					[]string{"Tier", "Archives", "Avg Days", "Avg Hours"},
					groupRows(overview.ByTier),
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
				))

				if len(overview.Bottlenecks) > 0 {
					rows := make([][]string, 0, len(overview.Bottlenecks))
					for _, tally := range overview.Bottlenecks {
						rows = append(rows, []string{displayStatus(tally.Stage), strconv.Itoa(tally.Count)})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Bottleneck Stage", "Projects"},
						rows,
						[]columnAlignment{alignLeft, alignRight},
					))
				}

				fmt.Fprintf(out, "Last %d days: %d archived (previous %d days: %d)\n",
					windowDays, overview.Trend.Current.Archives, windowDays, overview.Trend.Previous.Archives)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	cmd.Flags().IntVar(&windowDays, "window", 30, "Trend window in days")
	return cmd
}

func groupRows(groups []analytics.GroupSummary) [][]string {
	rows := make([][]string, 0, len(groups))
	for _, group := range groups {
		rows = append(rows, []string{
			group.Key,
			strconv.Itoa(group.Archives),
			strconv.FormatFloat(group.AvgDays, 'f', 1, 64),
			strconv.FormatFloat(group.AvgHours, 'f', 1, 64),
		})
	}
	return rows
}
