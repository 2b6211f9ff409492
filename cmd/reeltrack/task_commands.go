package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reeltrack/internal/config"
	"reeltrack/internal/production"
	"reeltrack/internal/workflow"
)

func newTaskCommand(ctx *commandContext) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Work on project tasks",
	}

	taskCmd.AddCommand(newTaskEventCommand(ctx, "start", "Start a pending task", workflow.EventStart))
	taskCmd.AddCommand(newTaskCompleteCommand(ctx))
	taskCmd.AddCommand(newTaskEventCommand(ctx, "block", "Mark a task blocked", workflow.EventBlock))
	taskCmd.AddCommand(newTaskEventCommand(ctx, "unblock", "Unblock a task", workflow.EventUnblock))
	taskCmd.AddCommand(newTaskSignOffCommand(ctx, "review-done", "Sign off the review track", workflow.EventReviewDone))
	taskCmd.AddCommand(newTaskSignOffCommand(ctx, "monitoring-done", "Sign off the monitoring track", workflow.EventMonitoringDone))
	taskCmd.AddCommand(newTaskEventCommand(ctx, "rework", "Send a completed task back for rework", workflow.EventRework))
	taskCmd.AddCommand(newTaskCheckCommand(ctx))

	return taskCmd
}

func applyAndReport(cmd *cobra.Command, ctx *commandContext, taskID int64, event workflow.TaskEvent) error {
	return ctx.withManager(func(cfg *config.Config, store *production.Store, manager *workflow.Manager) error {
		task, err := manager.ApplyTaskEvent(cmd.Context(), taskID, event)
		if err != nil {
			return err
		}
		project, err := store.GetProjectByID(cmd.Context(), task.ProjectID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Task %d (%s) is now %s\n", task.ID, task.TaskName, displayStatus(task.Status))
		if project != nil {
			fmt.Fprintf(out, "Project %d: %s, %s\n", project.ID,
				formatPercent(project.Progress), displayStatus(project.Status))
		}
		return nil
	})
}

func newTaskEventCommand(ctx *commandContext, use, short string, kind workflow.TaskEventKind) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return applyAndReport(cmd, ctx, taskID, workflow.TaskEvent{Kind: kind})
		},
	}
}

func newTaskCompleteCommand(ctx *commandContext) *cobra.Command {
	var (
		hours   float64
		quality int
	)

	cmd := &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Complete an in-progress task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			event := workflow.TaskEvent{Kind: workflow.EventComplete, Hours: hours}
			if cmd.Flags().Changed("quality") {
				event.QualityScore = &quality
			}
			return applyAndReport(cmd, ctx, taskID, event)
		},
	}

	cmd.Flags().Float64Var(&hours, "hours", 0, "Actual hours spent on the main work")
	cmd.Flags().IntVar(&quality, "quality", 0, "Quality score 1-5")
	return cmd
}

func newTaskSignOffCommand(ctx *commandContext, use, short string, kind workflow.TaskEventKind) *cobra.Command {
	var hours float64

	cmd := &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return applyAndReport(cmd, ctx, taskID, workflow.TaskEvent{Kind: kind, Hours: hours})
		},
	}

	cmd.Flags().Float64Var(&hours, "hours", 0, "Actual hours spent on this track")
	return cmd
}

func newTaskCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <task-id> <checklist-item>",
		Short: "Tick a checklist item on a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return applyAndReport(cmd, ctx, taskID, workflow.TaskEvent{
				Kind:          workflow.EventCheckItem,
				ChecklistItem: args[1],
			})
		},
	}
}
