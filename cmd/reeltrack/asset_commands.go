package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reeltrack/internal/config"
	"reeltrack/internal/production"
	"reeltrack/internal/workflow"
)

func newAssetCommand(ctx *commandContext) *cobra.Command {
	assetCmd := &cobra.Command{
		Use:   "asset",
		Short: "Manage content assets",
	}

	assetCmd.AddCommand(newAssetAddCommand(ctx))
	assetCmd.AddCommand(newAssetListCommand(ctx))
	assetCmd.AddCommand(newAssetSetStatusCommand(ctx))
	assetCmd.AddCommand(newAssetRemoveCommand(ctx))

	return assetCmd
}

func newAssetAddCommand(ctx *commandContext) *cobra.Command {
	var trackName string

	cmd := &cobra.Command{
		Use:   "add <title> <content-type>",
		Short: "Register a content asset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contentType, err := parseContentTypeArg(args[1])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *production.Store) error {
				asset, err := store.CreateAsset(cmd.Context(), args[0], contentType, trackName)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created asset %d (%s, %s)\n", asset.ID, asset.Title, asset.ContentType)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&trackName, "track", "", "Track name, e.g. \"English AD\"")
	return cmd
}

func newAssetListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *production.Store) error {
				assets, err := store.ListAssets(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, assets)
				}

				rows := make([][]string, 0, len(assets))
				for _, asset := range assets {
					rows = append(rows, []string{
						strconv.FormatInt(asset.ID, 10),
						asset.Title,
						string(asset.ContentType),
						asset.TrackName,
						displayStatus(asset.Status),
						formatDate(asset.CreatedAt),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Type", "Track", "Status", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

func newAssetSetStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <asset-id> <status>",
		Short: "Change an asset's production status",
		Long:  "Change an asset's production status. Moving to in_progress may auto-create a project when enough people are credited.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, ok := production.ParseAssetStatus(args[1])
			if !ok {
				return fmt.Errorf("unknown asset status %q", args[1])
			}
			return ctx.withManager(func(cfg *config.Config, store *production.Store, manager *workflow.Manager) error {
				if err := store.UpdateAssetStatus(cmd.Context(), assetID, status); err != nil {
					return err
				}
				project, err := manager.OnAssetStatusChanged(cmd.Context(), assetID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Asset %d is now %s\n", assetID, displayStatus(status))
				if project != nil {
					fmt.Fprintf(out, "Project %d auto-created (%s)\n", project.ID, project.TriggerReason)
				}
				return nil
			})
		},
	}
}

func newAssetRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <asset-id>",
		Short: "Soft-delete a content asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(cfg *config.Config, store *production.Store, manager *workflow.Manager) error {
				if err := store.SoftDeleteAsset(cmd.Context(), assetID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Asset %d removed\n", assetID)
				return nil
			})
		},
	}
}
