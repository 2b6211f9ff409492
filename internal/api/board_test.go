package api_test

import (
	"context"
	"testing"
	"time"

	"reeltrack/internal/api"
	"reeltrack/internal/production"
	"reeltrack/internal/testsupport"
)

func seedProject(t *testing.T, store *production.Store, title string, priority int, pinned bool) *production.Project {
	t.Helper()
	ctx := context.Background()

	asset := testsupport.NewAsset(t, store, title, production.ContentTypeAudioDescription)
	project, _, err := store.CreateProjectWithTasks(ctx, asset.ID, func(snap production.CreationSnapshot) (*production.Project, []production.Task, error) {
		p := &production.Project{
			AssetID:  snap.Asset.ID,
			Stage:    production.StagePrep,
			Status:   production.ProjectActive,
			Tier:     production.TierNormal,
			Priority: priority,
			Pinned:   pinned,
		}
		tasks := []production.Task{
			{Stage: 1, TaskName: "source materials", TaskOrder: 1, Status: production.TaskCompleted},
			{Stage: 2, TaskName: "write script", TaskOrder: 1, Status: production.TaskBlocked, ReviewRequired: true},
		}
		return p, tasks, nil
	})
	if err != nil {
		t.Fatalf("create project for %s: %v", title, err)
	}
	return project
}

func TestBuildBoardRollup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	seedProject(t, store, "Night Harbor", 0, false)
	rows, err := api.BuildBoard(context.Background(), store)
	if err != nil {
		t.Fatalf("BuildBoard: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}

	row := rows[0]
	if row.Title != "Night Harbor" || row.ContentType != production.ContentTypeAudioDescription {
		t.Fatalf("row = %+v", row)
	}
	if row.StageName != "prep" {
		t.Fatalf("stage name = %q", row.StageName)
	}
	if row.TasksTotal != 2 || row.TasksDone != 1 || row.TasksBlocked != 1 {
		t.Fatalf("rollup = %d/%d/%d", row.TasksDone, row.TasksTotal, row.TasksBlocked)
	}
	if row.ReviewsPending != 1 {
		t.Fatalf("reviews pending = %d, want 1", row.ReviewsPending)
	}
}

func TestBuildBoardSorting(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	seedProject(t, store, "Oldest Plain", 0, false)
	time.Sleep(5 * time.Millisecond)
	seedProject(t, store, "High Priority", 9, false)
	time.Sleep(5 * time.Millisecond)
	seedProject(t, store, "Pinned Late", 0, true)

	rows, err := api.BuildBoard(ctx, store)
	if err != nil {
		t.Fatalf("BuildBoard: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Title != "Pinned Late" {
		t.Fatalf("first row = %q, want pinned project", rows[0].Title)
	}
	if rows[1].Title != "High Priority" {
		t.Fatalf("second row = %q, want priority project", rows[1].Title)
	}
	if rows[2].Title != "Oldest Plain" {
		t.Fatalf("third row = %q", rows[2].Title)
	}
}

func TestBuildBoardFiltersTerminalStatuses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	project := seedProject(t, store, "Done Deal", 0, false)
	project.Status = production.ProjectCancelled
	if err := store.UpdateProject(ctx, project); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}

	rows, err := api.BuildBoard(ctx, store)
	if err != nil {
		t.Fatalf("BuildBoard: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %d, want 0 (cancelled hidden by default)", len(rows))
	}

	rows, err = api.BuildBoard(ctx, store, production.ProjectCancelled)
	if err != nil {
		t.Fatalf("BuildBoard cancelled: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 with explicit status", len(rows))
	}
}
