package workflow_test

import (
	"context"
	"errors"
	"testing"

	"reeltrack/internal/config"
	"reeltrack/internal/logging"
	"reeltrack/internal/production"
	"reeltrack/internal/services"
	"reeltrack/internal/testsupport"
	"reeltrack/internal/workflow"
)

func newManager(t *testing.T, opts ...testsupport.ConfigOption) (*workflow.Manager, *production.Store, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	manager, err := workflow.NewManager(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return manager, store, cfg
}

// seedEligibleAsset creates an in-progress asset with two credits and a
// small AD template set.
func seedEligibleAsset(t *testing.T, store *production.Store) *production.ContentAsset {
	t.Helper()
	ctx := context.Background()

	asset := testsupport.NewAsset(t, store, "Night Harbor", production.ContentTypeAudioDescription)
	if err := store.UpdateAssetStatus(ctx, asset.ID, production.AssetStatusInProgress); err != nil {
		t.Fatalf("UpdateAssetStatus: %v", err)
	}
	testsupport.AddCredit(t, store, asset.ID, production.PersonScriptwriter, "M. Leclerc", "describer", true, 1)
	testsupport.AddCredit(t, store, asset.ID, production.PersonVoiceArtist, "R. Okafor", "narrator", true, 2)

	testsupport.SeedTemplate(t, store, production.ContentTypeAudioDescription, 1, 1, "source materials", 1.0)
	testsupport.SeedTemplate(t, store, production.ContentTypeAudioDescription, 2, 1, "write description script", 2.0)
	testsupport.SeedTemplate(t, store, production.ContentTypeAudioDescription, 3, 1, "record narration", 4.0)
	testsupport.SeedTemplate(t, store, production.ContentTypeAudioDescription, 4, 1, "package deliverables", 1.0)
	return asset
}

func TestAutoCreateOnStatusChange(t *testing.T) {
	manager, store, _ := newManager(t)
	ctx := context.Background()
	asset := seedEligibleAsset(t, store)

	project, err := manager.OnAssetStatusChanged(ctx, asset.ID)
	if err != nil {
		t.Fatalf("OnAssetStatusChanged: %v", err)
	}
	if project == nil {
		t.Fatal("expected auto-created project")
	}
	if !project.AutoCreated || project.TriggerReason == "" {
		t.Fatalf("audit fields missing: %+v", project)
	}
	if project.Tier != production.TierNormal {
		t.Fatalf("tier = %s, want config default B", project.Tier)
	}
	if project.EstimatedCompletion == nil {
		t.Fatal("estimated completion not set")
	}

	tasks, err := store.ListTasksByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListTasksByProject: %v", err)
	}
	if len(tasks) != 4 {
		t.Fatalf("tasks = %d, want 4", len(tasks))
	}
	if tasks[0].Status != production.TaskInProgress {
		t.Fatalf("first task status = %s, want in_progress", tasks[0].Status)
	}
	// assignment routed the scripting task to the scriptwriter credit
	if tasks[1].AssignedCreditID == nil {
		t.Fatal("scripting task unassigned")
	}
}

func TestAutoCreateExactlyOnce(t *testing.T) {
	manager, store, _ := newManager(t)
	ctx := context.Background()
	asset := seedEligibleAsset(t, store)

	first, err := manager.OnAssetStatusChanged(ctx, asset.ID)
	if err != nil || first == nil {
		t.Fatalf("first trigger: %v, %v", first, err)
	}
	second, err := manager.OnCreditChanged(ctx, asset.ID)
	if err != nil {
		t.Fatalf("second trigger: %v", err)
	}
	if second != nil {
		t.Fatalf("second trigger created project %d", second.ID)
	}

	projects, err := store.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("projects = %d, want exactly one", len(projects))
	}
}

func TestNoCreateBelowCreditThreshold(t *testing.T) {
	manager, store, _ := newManager(t)
	ctx := context.Background()

	asset := testsupport.NewAsset(t, store, "Night Harbor", production.ContentTypeAudioDescription)
	if err := store.UpdateAssetStatus(ctx, asset.ID, production.AssetStatusInProgress); err != nil {
		t.Fatalf("UpdateAssetStatus: %v", err)
	}
	testsupport.AddCredit(t, store, asset.ID, production.PersonScriptwriter, "M. Leclerc", "describer", true, 1)

	project, err := manager.OnCreditChanged(ctx, asset.ID)
	if err != nil {
		t.Fatalf("OnCreditChanged: %v", err)
	}
	if project != nil {
		t.Fatal("project created below credit threshold")
	}
}

func TestCreditChangeFillsAssignmentGaps(t *testing.T) {
	manager, store, _ := newManager(t)
	ctx := context.Background()

	asset := testsupport.NewAsset(t, store, "Night Harbor", production.ContentTypeAudioDescription)
	if err := store.UpdateAssetStatus(ctx, asset.ID, production.AssetStatusInProgress); err != nil {
		t.Fatalf("UpdateAssetStatus: %v", err)
	}
	testsupport.AddCredit(t, store, asset.ID, production.PersonScriptwriter, "M. Leclerc", "describer", true, 1)
	testsupport.AddCredit(t, store, asset.ID, production.PersonStaff, "J. Park", "producer", true, 2)
	testsupport.SeedTemplate(t, store, production.ContentTypeAudioDescription, 3, 1, "record narration", 4.0)

	project, err := manager.OnCreditChanged(ctx, asset.ID)
	if err != nil || project == nil {
		t.Fatalf("creation trigger: %v, %v", project, err)
	}
	tasks, err := store.ListTasksByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListTasksByProject: %v", err)
	}
	if tasks[0].AssignedCreditID != nil {
		t.Fatal("narration task assigned without a performer")
	}

	// a narrator joins later; the gap fills on the next credit trigger
	testsupport.AddCredit(t, store, asset.ID, production.PersonVoiceArtist, "R. Okafor", "narrator", true, 3)
	if _, err := manager.OnCreditChanged(ctx, asset.ID); err != nil {
		t.Fatalf("OnCreditChanged: %v", err)
	}
	tasks, err = store.ListTasksByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListTasksByProject: %v", err)
	}
	if tasks[0].AssignedCreditID == nil {
		t.Fatal("narration task still unassigned after narrator joined")
	}
}

func completeAll(t *testing.T, manager *workflow.Manager, store *production.Store, projectID int64) {
	t.Helper()
	ctx := context.Background()
	tasks, err := store.ListTasksByProject(ctx, projectID)
	if err != nil {
		t.Fatalf("ListTasksByProject: %v", err)
	}
	score := 5
	for _, task := range tasks {
		if task.Status == production.TaskCompleted {
			continue
		}
		if task.Status == production.TaskPending {
			if _, err := manager.ApplyTaskEvent(ctx, task.ID, workflow.TaskEvent{Kind: workflow.EventStart}); err != nil {
				t.Fatalf("start task %d: %v", task.ID, err)
			}
		}
		if _, err := manager.ApplyTaskEvent(ctx, task.ID, workflow.TaskEvent{
			Kind: workflow.EventComplete, Hours: 1, QualityScore: &score,
		}); err != nil {
			t.Fatalf("complete task %d: %v", task.ID, err)
		}
	}
}

func TestTaskEventsDriveProgressAndCompletion(t *testing.T) {
	manager, store, _ := newManager(t)
	ctx := context.Background()
	asset := seedEligibleAsset(t, store)

	project, err := manager.OnAssetStatusChanged(ctx, asset.ID)
	if err != nil || project == nil {
		t.Fatalf("creation: %v, %v", project, err)
	}

	tasks, err := store.ListTasksByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListTasksByProject: %v", err)
	}
	// finish the prep task only: progress should land at the prep weight
	if _, err := manager.ApplyTaskEvent(ctx, tasks[0].ID, workflow.TaskEvent{Kind: workflow.EventComplete, Hours: 1}); err != nil {
		t.Fatalf("complete prep: %v", err)
	}
	refreshed, err := store.GetProjectByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetProjectByID: %v", err)
	}
	if refreshed.Progress != 10 || refreshed.Stage != production.StageScripting {
		t.Fatalf("progress = %v stage = %d, want 10 and stage 2", refreshed.Progress, refreshed.Stage)
	}

	completeAll(t, manager, store, project.ID)
	final, err := store.GetProjectByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetProjectByID: %v", err)
	}
	if final.Progress != 100 || final.Status != production.ProjectCompleted {
		t.Fatalf("final = %v/%s, want 100/completed", final.Progress, final.Status)
	}
	if final.CompletedAt == nil {
		t.Fatal("completion date not stamped")
	}
}

func TestProgressMonotonicUnderCompletion(t *testing.T) {
	manager, store, _ := newManager(t)
	ctx := context.Background()
	asset := seedEligibleAsset(t, store)

	project, err := manager.OnAssetStatusChanged(ctx, asset.ID)
	if err != nil || project == nil {
		t.Fatalf("creation: %v, %v", project, err)
	}
	tasks, err := store.ListTasksByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListTasksByProject: %v", err)
	}

	last := -1.0
	for _, task := range tasks {
		if task.Status == production.TaskPending {
			if _, err := manager.ApplyTaskEvent(ctx, task.ID, workflow.TaskEvent{Kind: workflow.EventStart}); err != nil {
				t.Fatalf("start: %v", err)
			}
		}
		if _, err := manager.ApplyTaskEvent(ctx, task.ID, workflow.TaskEvent{Kind: workflow.EventComplete, Hours: 1}); err != nil {
			t.Fatalf("complete: %v", err)
		}
		current, err := store.GetProjectByID(ctx, project.ID)
		if err != nil {
			t.Fatalf("GetProjectByID: %v", err)
		}
		if current.Progress < last {
			t.Fatalf("progress regressed from %v to %v", last, current.Progress)
		}
		last = current.Progress
	}
}

func TestTaskEventValidation(t *testing.T) {
	manager, store, _ := newManager(t)
	ctx := context.Background()
	asset := seedEligibleAsset(t, store)

	project, err := manager.OnAssetStatusChanged(ctx, asset.ID)
	if err != nil || project == nil {
		t.Fatalf("creation: %v, %v", project, err)
	}
	tasks, err := store.ListTasksByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListTasksByProject: %v", err)
	}
	pending := tasks[1]

	// completing a pending task skips the start transition
	if _, err := manager.ApplyTaskEvent(ctx, pending.ID, workflow.TaskEvent{Kind: workflow.EventComplete}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}

	// bad quality score
	if _, err := manager.ApplyTaskEvent(ctx, tasks[0].ID, workflow.TaskEvent{Kind: workflow.EventComplete, QualityScore: intPtr(7)}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation for score 7", err)
	}

	// block and unblock round trip
	if _, err := manager.ApplyTaskEvent(ctx, pending.ID, workflow.TaskEvent{Kind: workflow.EventBlock}); err != nil {
		t.Fatalf("block: %v", err)
	}
	if _, err := manager.ApplyTaskEvent(ctx, pending.ID, workflow.TaskEvent{Kind: workflow.EventUnblock}); err != nil {
		t.Fatalf("unblock: %v", err)
	}

	// rework sends a completed task back and counts it
	if _, err := manager.ApplyTaskEvent(ctx, pending.ID, workflow.TaskEvent{Kind: workflow.EventComplete, Hours: 2}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	reworked, err := manager.ApplyTaskEvent(ctx, pending.ID, workflow.TaskEvent{Kind: workflow.EventRework})
	if err != nil {
		t.Fatalf("rework: %v", err)
	}
	if reworked.Status != production.TaskInProgress || reworked.ReworkCount != 1 {
		t.Fatalf("reworked = %+v", reworked)
	}
}

func TestTaskEventsRejectedWhilePaused(t *testing.T) {
	manager, store, _ := newManager(t)
	ctx := context.Background()
	asset := seedEligibleAsset(t, store)

	project, err := manager.OnAssetStatusChanged(ctx, asset.ID)
	if err != nil || project == nil {
		t.Fatalf("creation: %v, %v", project, err)
	}
	if _, err := manager.Pause(ctx, project.ID); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	tasks, err := store.ListTasksByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListTasksByProject: %v", err)
	}
	if _, err := manager.ApplyTaskEvent(ctx, tasks[0].ID, workflow.TaskEvent{Kind: workflow.EventComplete}); !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("err = %v, want precondition on paused project", err)
	}

	if _, err := manager.Resume(ctx, project.ID); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if _, err := manager.ApplyTaskEvent(ctx, tasks[0].ID, workflow.TaskEvent{Kind: workflow.EventComplete, Hours: 1}); err != nil {
		t.Fatalf("event after resume: %v", err)
	}
}

func TestManualLifecycleWrappers(t *testing.T) {
	manager, store, _ := newManager(t)
	ctx := context.Background()
	asset := seedEligibleAsset(t, store)

	project, err := manager.OnAssetStatusChanged(ctx, asset.ID)
	if err != nil || project == nil {
		t.Fatalf("creation: %v, %v", project, err)
	}

	moved, err := manager.AdvanceStage(ctx, project.ID, 3)
	if err != nil {
		t.Fatalf("AdvanceStage: %v", err)
	}
	if moved.Stage != 3 || moved.Progress != 60 {
		t.Fatalf("moved = %+v", moved)
	}

	if _, err := manager.SetProgress(ctx, project.ID, 90); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	updated, err := manager.MarkCompleted(ctx, project.ID)
	if err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if updated.Status != production.ProjectCompleted {
		t.Fatalf("status = %s", updated.Status)
	}

	if _, err := manager.Cancel(ctx, project.ID); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("cancel of completed: err = %v, want validation", err)
	}
}

func TestArchiveProjectEndToEnd(t *testing.T) {
	manager, store, _ := newManager(t)
	ctx := context.Background()
	asset := seedEligibleAsset(t, store)

	project, err := manager.OnAssetStatusChanged(ctx, asset.ID)
	if err != nil || project == nil {
		t.Fatalf("creation: %v, %v", project, err)
	}

	// archiving before completion fails and leaves no record
	if _, err := manager.ArchiveProject(ctx, project.ID); !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("early archive err = %v, want precondition", err)
	}

	completeAll(t, manager, store, project.ID)
	record, err := manager.ArchiveProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ArchiveProject: %v", err)
	}
	if record.AssetTitle != "Night Harbor" || record.TotalHours == 0 {
		t.Fatalf("record = %+v", record)
	}
	if len(record.Participants) != 2 {
		t.Fatalf("participants = %+v", record.Participants)
	}
	if record.AverageQuality == nil || *record.AverageQuality != 5 {
		t.Fatalf("quality = %v", record.AverageQuality)
	}

	archived, err := store.GetProjectByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetProjectByID: %v", err)
	}
	if archived.Status != production.ProjectArchived {
		t.Fatalf("status = %s, want archived", archived.Status)
	}

	// archiving twice conflicts
	if _, err := manager.ArchiveProject(ctx, project.ID); !errors.Is(err, services.ErrPrecondition) && !errors.Is(err, services.ErrConflict) {
		t.Fatalf("second archive err = %v", err)
	}
}

func intPtr(v int) *int { return &v }
