package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reeltrack/internal/api"
	"reeltrack/internal/config"
	"reeltrack/internal/production"
)

func newBoardCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the production board",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *production.Store) error {
				rows, err := api.BuildBoard(cmd.Context(), store)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, rows)
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No active projects.")
					return nil
				}

				tableRows := make([][]string, 0, len(rows))
				for _, row := range rows {
					marker := ""
					if row.Pinned {
						marker = "*"
					}
					tableRows = append(tableRows, []string{
						marker,
						strconv.FormatInt(row.ProjectID, 10),
						row.Title,
						string(row.ContentType),
						row.StageName,
						displayStatus(row.Status),
						formatPercent(row.Progress),
						fmt.Sprintf("%d/%d", row.TasksDone, row.TasksTotal),
						strconv.Itoa(row.TasksBlocked),
						strconv.Itoa(row.ReviewsPending + row.MonitoringPending),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"", "ID", "Title", "Type", "Stage", "Status", "Progress", "Done", "Blocked", "Sign-offs"},
					tableRows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}
