package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reeltrack/internal/config"
	"reeltrack/internal/production"
	"reeltrack/internal/workflow"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Manage production projects",
	}

	projectCmd.AddCommand(newProjectListCommand(ctx))
	projectCmd.AddCommand(newProjectShowCommand(ctx))
	projectCmd.AddCommand(newProjectStageCommand(ctx))
	projectCmd.AddCommand(newProjectProgressCommand(ctx))
	projectCmd.AddCommand(newProjectSimpleCommand(ctx, "pause", "Pause an active project",
		func(m *workflow.Manager) projectMutation { return m.Pause }))
	projectCmd.AddCommand(newProjectSimpleCommand(ctx, "resume", "Resume a paused project",
		func(m *workflow.Manager) projectMutation { return m.Resume }))
	projectCmd.AddCommand(newProjectSimpleCommand(ctx, "cancel", "Cancel a project",
		func(m *workflow.Manager) projectMutation { return m.Cancel }))
	projectCmd.AddCommand(newProjectSimpleCommand(ctx, "complete", "Mark a stage-four project completed",
		func(m *workflow.Manager) projectMutation { return m.MarkCompleted }))
	projectCmd.AddCommand(newProjectArchiveCommand(ctx))
	projectCmd.AddCommand(newProjectPriorityCommand(ctx))
	projectCmd.AddCommand(newProjectPinCommand(ctx))

	return projectCmd
}

type projectMutation func(ctx context.Context, projectID int64) (*production.Project, error)

func newProjectSimpleCommand(ctx *commandContext, use, short string, pick func(*workflow.Manager) projectMutation) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <project-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(cfg *config.Config, store *production.Store, manager *workflow.Manager) error {
				project, err := pick(manager)(cmd.Context(), projectID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Project %d is now %s\n", project.ID, displayStatus(project.Status))
				return nil
			})
		},
	}
}

func newProjectListCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOut  bool
		statuses []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filters []production.ProjectStatus
			for _, raw := range statuses {
				status, ok := production.ParseProjectStatus(raw)
				if !ok {
					return fmt.Errorf("unknown project status %q", raw)
				}
				filters = append(filters, status)
			}
			return ctx.withStore(func(cfg *config.Config, store *production.Store) error {
				projects, err := store.ListProjects(cmd.Context(), filters...)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, projects)
				}

				rows := make([][]string, 0, len(projects))
				for _, project := range projects {
					rows = append(rows, []string{
						strconv.FormatInt(project.ID, 10),
						strconv.FormatInt(project.AssetID, 10),
						production.StageName(project.Stage),
						displayStatus(project.Status),
						formatPercent(project.Progress),
						string(project.Tier),
						formatDate(project.StartedAt),
						formatDatePtr(project.EstimatedCompletion),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Asset", "Stage", "Status", "Progress", "Tier", "Started", "Estimate"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (repeatable)")
	return cmd
}

func newProjectShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *production.Store) error {
				project, err := store.GetProjectByID(cmd.Context(), projectID)
				if err != nil {
					return err
				}
				if project == nil {
					return fmt.Errorf("project %d not found", projectID)
				}
				tasks, err := store.ListTasksByProject(cmd.Context(), projectID)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, struct {
						Project *production.Project `json:"project"`
						Tasks   []production.Task   `json:"tasks"`
					}{project, tasks})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Project %d (%s)\n", project.ID, project.Key)
				fmt.Fprintf(out, "  Stage:    %s\n", production.StageName(project.Stage))
				fmt.Fprintf(out, "  Status:   %s\n", displayStatus(project.Status))
				fmt.Fprintf(out, "  Progress: %s\n", formatPercent(project.Progress))
				fmt.Fprintf(out, "  Tier:     %s\n", project.Tier)
				fmt.Fprintf(out, "  Started:  %s  Estimate: %s  Completed: %s\n",
					formatDate(project.StartedAt),
					formatDatePtr(project.EstimatedCompletion),
					formatDatePtr(project.CompletedAt))
				if project.AutoCreated {
					fmt.Fprintf(out, "  Created automatically: %s\n", project.TriggerReason)
				}

				rows := make([][]string, 0, len(tasks))
				for _, task := range tasks {
					extras := ""
					if task.ReviewRequired {
						extras += "review:" + yesNo(task.ReviewDone) + " "
					}
					if task.MonitoringRequired {
						extras += "monitoring:" + yesNo(task.MonitoringDone)
					}
					rows = append(rows, []string{
						strconv.FormatInt(task.ID, 10),
						strconv.Itoa(task.Stage),
						task.TaskName,
						displayStatus(task.Status),
						formatHours(task.PlannedHours),
						formatHours(task.ActualHours),
						extras,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Task", "Stage", "Name", "Status", "Planned", "Actual", "Tracks"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

func newProjectStageCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stage <project-id> <1-4>",
		Short: "Move a project to a pipeline stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			target, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid stage %q", args[1])
			}
			return ctx.withManager(func(cfg *config.Config, store *production.Store, manager *workflow.Manager) error {
				project, err := manager.AdvanceStage(cmd.Context(), projectID, target)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Project %d moved to %s (progress %s)\n",
					project.ID, production.StageName(project.Stage), formatPercent(project.Progress))
				return nil
			})
		},
	}
}

func newProjectProgressCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-progress <project-id> <percent>",
		Short: "Override a project's progress percentage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			percent, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid percentage %q", args[1])
			}
			return ctx.withManager(func(cfg *config.Config, store *production.Store, manager *workflow.Manager) error {
				project, err := manager.SetProgress(cmd.Context(), projectID, percent)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Project %d at %s (%s, %s)\n",
					project.ID, formatPercent(project.Progress),
					production.StageName(project.Stage), displayStatus(project.Status))
				return nil
			})
		},
	}
}

func newProjectArchiveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <project-id>",
		Short: "Archive a completed project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(cfg *config.Config, store *production.Store, manager *workflow.Manager) error {
				record, err := manager.ArchiveProject(cmd.Context(), projectID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Archived %q: %d days, %s total\n",
					record.AssetTitle, record.TotalDays, formatHours(record.TotalHours))
				return nil
			})
		},
	}
}

func newProjectPriorityCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "priority <project-id> <value>",
		Short: "Set a project's board priority",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			priority, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid priority %q", args[1])
			}
			return ctx.withManager(func(cfg *config.Config, store *production.Store, manager *workflow.Manager) error {
				if _, err := manager.SetPriority(cmd.Context(), projectID, priority); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Project %d priority set to %d\n", projectID, priority)
				return nil
			})
		},
	}
}

func newProjectPinCommand(ctx *commandContext) *cobra.Command {
	var unpin bool

	cmd := &cobra.Command{
		Use:   "pin <project-id>",
		Short: "Pin a project to the top of the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(cfg *config.Config, store *production.Store, manager *workflow.Manager) error {
				if _, err := manager.SetPinned(cmd.Context(), projectID, !unpin); err != nil {
					return err
				}
				if unpin {
					fmt.Fprintf(cmd.OutOrStdout(), "Project %d unpinned\n", projectID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Project %d pinned\n", projectID)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&unpin, "unpin", false, "Remove the pin instead")
	return cmd
}
