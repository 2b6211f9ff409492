package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reeltrack/internal/config"
	"reeltrack/internal/production"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect the tracking database",
	}

	dbCmd.AddCommand(newDBHealthCommand(ctx))
	return dbCmd
}

func newDBHealthCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check database integrity and row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *production.Store) error {
				health := store.Health(cmd.Context())
				if jsonOut {
					return writeJSON(cmd, health)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database:   %s\n", health.DBPath)
				fmt.Fprintf(out, "Exists:     %s\n", yesNo(health.DatabaseExists))
				fmt.Fprintf(out, "Readable:   %s\n", yesNo(health.DatabaseReadable))
				fmt.Fprintf(out, "Schema:     %s\n", health.SchemaVersion)
				fmt.Fprintf(out, "Integrity:  %s\n", healthMark(health.IntegrityCheck, stdoutIsTerminal()))
				fmt.Fprintf(out, "Assets:     %d\n", health.Assets)
				fmt.Fprintf(out, "Credits:    %d\n", health.Credits)
				fmt.Fprintf(out, "Templates:  %d\n", health.Templates)
				fmt.Fprintf(out, "Projects:   %d\n", health.Projects)
				fmt.Fprintf(out, "Tasks:      %d\n", health.Tasks)
				fmt.Fprintf(out, "Archives:   %d\n", health.Archives)
				if health.Error != "" {
					fmt.Fprintf(out, "Error:      %s\n", health.Error)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

func healthMark(ok, colorize bool) string {
	if ok {
		if colorize {
			return ansiGreen + "ok" + ansiReset
		}
		return "ok"
	}
	if colorize {
		return ansiRed + "failed" + ansiReset
	}
	return "failed"
}
