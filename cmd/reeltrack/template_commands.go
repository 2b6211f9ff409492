package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"reeltrack/internal/catalog"
	"reeltrack/internal/config"
	"reeltrack/internal/production"
	"reeltrack/internal/workflow"
)

func newTemplateCommand(ctx *commandContext) *cobra.Command {
	templateCmd := &cobra.Command{
		Use:   "template",
		Short: "Manage task templates",
	}

	templateCmd.AddCommand(newTemplateLoadCommand(ctx))
	templateCmd.AddCommand(newTemplateListCommand(ctx))

	return templateCmd
}

// templateFile is the TOML document `template load` consumes. Tier B hours
// are required; missing A and C columns are derived from the configured
// multipliers.
type templateFile struct {
	ContentType string             `toml:"content_type"`
	Templates   []templateFileItem `toml:"template"`
}

type templateFileItem struct {
	Stage int    `toml:"stage"`
	Order int    `toml:"order"`
	Name  string `toml:"name"`

	HoursA float64 `toml:"hours_a"`
	HoursB float64 `toml:"hours_b"`
	HoursC float64 `toml:"hours_c"`

	RequiresReview bool    `toml:"requires_review"`
	ReviewHoursA   float64 `toml:"review_hours_a"`
	ReviewHoursB   float64 `toml:"review_hours_b"`
	ReviewHoursC   float64 `toml:"review_hours_c"`

	RequiresMonitoring bool    `toml:"requires_monitoring"`
	MonitoringHoursA   float64 `toml:"monitoring_hours_a"`
	MonitoringHoursB   float64 `toml:"monitoring_hours_b"`
	MonitoringHoursC   float64 `toml:"monitoring_hours_c"`

	Required      bool     `toml:"required"`
	Parallel      bool     `toml:"parallel"`
	Prerequisites []string `toml:"prerequisites"`
	Checklist     []string `toml:"checklist"`
}

func newTemplateLoadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file.toml>",
		Short: "Replace a content type's template set from a TOML file",
		Long: "Replace a content type's template set from a TOML file. Existing templates with " +
			"matching (stage, order) keys are updated in place, new keys are inserted, and " +
			"active templates missing from the file are deactivated. Projects created earlier " +
			"keep their tasks. The whole batch applies atomically or not at all.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read template file: %w", err)
			}
			var file templateFile
			if err := toml.Unmarshal(data, &file); err != nil {
				return fmt.Errorf("parse template file: %w", err)
			}
			contentType, err := parseContentTypeArg(file.ContentType)
			if err != nil {
				return err
			}

			return ctx.withManager(func(cfg *config.Config, store *production.Store, manager *workflow.Manager) error {
				incoming := make([]production.Template, 0, len(file.Templates))
				for _, item := range file.Templates {
					tpl := production.Template{
						ContentType: contentType,
						Stage:       item.Stage,
						TaskOrder:   item.Order,
						TaskName:    item.Name,

						HoursA: item.HoursA,
						HoursB: item.HoursB,
						HoursC: item.HoursC,

						RequiresReview: item.RequiresReview,
						ReviewHoursA:   item.ReviewHoursA,
						ReviewHoursB:   item.ReviewHoursB,
						ReviewHoursC:   item.ReviewHoursC,

						RequiresMonitoring: item.RequiresMonitoring,
						MonitoringHoursA:   item.MonitoringHoursA,
						MonitoringHoursB:   item.MonitoringHoursB,
						MonitoringHoursC:   item.MonitoringHoursC,

						Required:      item.Required,
						Parallel:      item.Parallel,
						Prerequisites: item.Prerequisites,
						Checklist:     item.Checklist,
					}
					catalog.FillMissingTiers(&tpl, cfg.Workflow.TierMultiplierA, cfg.Workflow.TierMultiplierC)
					incoming = append(incoming, tpl)
				}

				existing, err := store.ListTemplates(cmd.Context(), contentType, true)
				if err != nil {
					return err
				}
				plan, err := catalog.PlanReplace(contentType, existing, incoming)
				if err != nil {
					return err
				}
				if err := store.ApplyTemplateReplace(cmd.Context(), plan); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Templates for %s: %d updated, %d inserted, %d deactivated\n",
					contentType, len(plan.Updates), len(plan.Inserts), len(plan.DeactivateIDs))
				return nil
			})
		},
	}
}

func newTemplateListCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOut bool
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "list <content-type>",
		Short: "List the templates of a content type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contentType, err := parseContentTypeArg(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *production.Store) error {
				templates, err := store.ListTemplates(cmd.Context(), contentType, !all)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, templates)
				}

				rows := make([][]string, 0, len(templates))
				for _, tpl := range templates {
					rows = append(rows, []string{
						strconv.Itoa(tpl.Stage),
						strconv.Itoa(tpl.TaskOrder),
						tpl.TaskName,
						formatHours(tpl.HoursA),
						formatHours(tpl.HoursB),
						formatHours(tpl.HoursC),
						yesNo(tpl.RequiresReview),
						yesNo(tpl.RequiresMonitoring),
						yesNo(tpl.Active),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Stage", "Order", "Task", "A", "B", "C", "Review", "Monitoring", "Active"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	cmd.Flags().BoolVar(&all, "all", false, "Include deactivated templates")
	return cmd
}
