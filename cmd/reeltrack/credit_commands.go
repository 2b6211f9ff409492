package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reeltrack/internal/config"
	"reeltrack/internal/production"
	"reeltrack/internal/workflow"
)

func newCreditCommand(ctx *commandContext) *cobra.Command {
	creditCmd := &cobra.Command{
		Use:   "credit",
		Short: "Manage asset credits",
	}

	creditCmd.AddCommand(newCreditAddCommand(ctx))
	creditCmd.AddCommand(newCreditListCommand(ctx))
	creditCmd.AddCommand(newCreditRemoveCommand(ctx))

	return creditCmd
}

func newCreditAddCommand(ctx *commandContext) *cobra.Command {
	var (
		role    string
		primary bool
		seq     int
	)

	cmd := &cobra.Command{
		Use:   "add <asset-id> <person-kind> <person-id> <name>",
		Short: "Credit a person on an asset",
		Long:  "Credit a person on an asset. Person kinds: scriptwriter, voice_artist, sl_interpreter, staff. Adding credits may auto-create a project.",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			kind, ok := production.ParsePersonKind(args[1])
			if !ok {
				return fmt.Errorf("unknown person kind %q", args[1])
			}
			personID, err := parseID(args[2])
			if err != nil {
				return err
			}
			return ctx.withManager(func(cfg *config.Config, store *production.Store, manager *workflow.Manager) error {
				credit, err := store.AddCredit(cmd.Context(), assetID,
					production.PersonRef{Kind: kind, ID: personID}, args[3], role, primary, seq)
				if err != nil {
					return err
				}
				project, err := manager.OnCreditChanged(cmd.Context(), assetID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Credit %d added: %s as %s\n", credit.ID, credit.PersonName, credit.RoleLabel)
				if project != nil {
					fmt.Fprintf(out, "Project %d auto-created (%s)\n", project.ID, project.TriggerReason)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Role label, e.g. \"narrator\" or \"QC reviewer\"")
	cmd.Flags().BoolVar(&primary, "primary", false, "Mark as the primary credit for this role")
	cmd.Flags().IntVar(&seq, "seq", 0, "Billing order")
	return cmd
}

func newCreditListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list <asset-id>",
		Short: "List the credits on an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *production.Store) error {
				credits, err := store.ListCreditsByAsset(cmd.Context(), assetID)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, credits)
				}

				rows := make([][]string, 0, len(credits))
				for _, credit := range credits {
					rows = append(rows, []string{
						strconv.FormatInt(credit.ID, 10),
						credit.PersonName,
						displayStatus(credit.Person.Kind),
						credit.RoleLabel,
						yesNo(credit.Primary),
						strconv.Itoa(credit.Seq),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Kind", "Role", "Primary", "Seq"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

func newCreditRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <credit-id>",
		Short: "Soft-delete a credit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creditID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(cfg *config.Config, store *production.Store, manager *workflow.Manager) error {
				credit, err := store.GetCreditByID(cmd.Context(), creditID)
				if err != nil {
					return err
				}
				if credit == nil {
					return fmt.Errorf("credit %d not found", creditID)
				}
				if err := store.SoftDeleteCredit(cmd.Context(), creditID); err != nil {
					return err
				}
				if _, err := manager.OnCreditChanged(cmd.Context(), credit.AssetID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Credit %d removed\n", creditID)
				return nil
			})
		},
	}
}
