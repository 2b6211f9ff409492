package production_test

import (
	"context"
	"errors"
	"testing"

	"reeltrack/internal/production"
	"reeltrack/internal/services"
	"reeltrack/internal/testsupport"
)

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	asset, err := store.CreateAsset(ctx, "Night Harbor", production.ContentTypeAudioDescription, "English AD")
	if err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}
	if asset.ID == 0 || asset.Key == "" {
		t.Fatalf("asset not fully populated: %+v", asset)
	}
	if asset.Status != production.AssetStatusPlanned {
		t.Fatalf("new asset status = %s, want planned", asset.Status)
	}

	fetched, err := store.GetAssetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetAssetByID failed: %v", err)
	}
	if fetched == nil || fetched.Title != "Night Harbor" {
		t.Fatalf("fetched = %+v", fetched)
	}

	byKey, err := store.GetAssetByKey(ctx, asset.Key)
	if err != nil {
		t.Fatalf("GetAssetByKey failed: %v", err)
	}
	if byKey == nil || byKey.ID != asset.ID {
		t.Fatalf("byKey = %+v", byKey)
	}

	health := store.Health(ctx)
	if !health.DatabaseReadable || health.SchemaVersion == "" {
		t.Fatalf("health = %+v", health)
	}
	if health.Assets != 1 {
		t.Fatalf("health.Assets = %d, want 1", health.Assets)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewAsset(t, store, "First", production.ContentTypeClosedCaptions)
	store.Close()

	reopened := testsupport.MustOpenStore(t, cfg)
	assets, err := reopened.ListAssets(context.Background())
	if err != nil {
		t.Fatalf("ListAssets after reopen: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("got %d assets after reopen, want 1", len(assets))
	}
}

func TestMissingRowsReturnNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if asset, err := store.GetAssetByID(ctx, 999); err != nil || asset != nil {
		t.Fatalf("GetAssetByID = %+v, %v; want nil, nil", asset, err)
	}
	if project, err := store.GetProjectByAssetID(ctx, 999); err != nil || project != nil {
		t.Fatalf("GetProjectByAssetID = %+v, %v; want nil, nil", project, err)
	}
	if archive, err := store.GetArchiveByProjectID(ctx, 999); err != nil || archive != nil {
		t.Fatalf("GetArchiveByProjectID = %+v, %v; want nil, nil", archive, err)
	}
}

func TestSoftDeleteHidesAssetAndCredits(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	asset := testsupport.NewAsset(t, store, "Night Harbor", production.ContentTypeAudioDescription)
	credit := testsupport.AddCredit(t, store, asset.ID, production.PersonVoiceArtist, "R. Okafor", "narrator", true, 1)

	if err := store.SoftDeleteCredit(ctx, credit.ID); err != nil {
		t.Fatalf("SoftDeleteCredit: %v", err)
	}
	count, err := store.CountActiveCredits(ctx, asset.ID)
	if err != nil {
		t.Fatalf("CountActiveCredits: %v", err)
	}
	if count != 0 {
		t.Fatalf("active credits = %d, want 0 after soft delete", count)
	}

	if err := store.SoftDeleteAsset(ctx, asset.ID); err != nil {
		t.Fatalf("SoftDeleteAsset: %v", err)
	}
	if fetched, err := store.GetAssetByID(ctx, asset.ID); err != nil || fetched != nil {
		t.Fatalf("soft-deleted asset still visible: %+v, %v", fetched, err)
	}
}

func TestUpdateAssetStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	asset := testsupport.NewAsset(t, store, "Night Harbor", production.ContentTypeSDH)
	if err := store.UpdateAssetStatus(ctx, asset.ID, production.AssetStatusInProgress); err != nil {
		t.Fatalf("UpdateAssetStatus: %v", err)
	}
	fetched, err := store.GetAssetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetAssetByID: %v", err)
	}
	if fetched.Status != production.AssetStatusInProgress {
		t.Fatalf("status = %s, want in_progress", fetched.Status)
	}
}

func buildSimpleProject(tier production.SpeedTier) production.ProjectBuilder {
	return func(snap production.CreationSnapshot) (*production.Project, []production.Task, error) {
		project := &production.Project{
			AssetID: snap.Asset.ID,
			Stage:   production.StagePrep,
			Status:  production.ProjectActive,
			Tier:    tier,
		}
		tasks := []production.Task{
			{Stage: 1, TaskName: "source materials", TaskOrder: 1, Status: production.TaskInProgress, PlannedHours: 1},
			{Stage: 2, TaskName: "write script", TaskOrder: 1, Status: production.TaskPending, PlannedHours: 2},
		}
		return project, tasks, nil
	}
}

func TestCreateProjectWithTasks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	asset := testsupport.NewAsset(t, store, "Night Harbor", production.ContentTypeAudioDescription)
	project, tasks, err := store.CreateProjectWithTasks(ctx, asset.ID, buildSimpleProject(production.TierNormal))
	if err != nil {
		t.Fatalf("CreateProjectWithTasks: %v", err)
	}
	if project == nil || project.ID == 0 || project.Key == "" {
		t.Fatalf("project not populated: %+v", project)
	}
	if len(tasks) != 2 || tasks[0].ProjectID != project.ID {
		t.Fatalf("tasks = %+v", tasks)
	}

	stored, err := store.ListTasksByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListTasksByProject: %v", err)
	}
	if len(stored) != 2 || stored[0].TaskName != "source materials" {
		t.Fatalf("stored tasks = %+v", stored)
	}
}

func TestCreateProjectSecondAttemptConflicts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	asset := testsupport.NewAsset(t, store, "Night Harbor", production.ContentTypeAudioDescription)
	if _, _, err := store.CreateProjectWithTasks(ctx, asset.ID, buildSimpleProject(production.TierNormal)); err != nil {
		t.Fatalf("first creation: %v", err)
	}
	_, _, err := store.CreateProjectWithTasks(ctx, asset.ID, buildSimpleProject(production.TierNormal))
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("second creation err = %v, want conflict", err)
	}
}

func TestCreateProjectBuilderSkip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	asset := testsupport.NewAsset(t, store, "Night Harbor", production.ContentTypeAudioDescription)
	project, tasks, err := store.CreateProjectWithTasks(ctx, asset.ID, func(snap production.CreationSnapshot) (*production.Project, []production.Task, error) {
		if snap.HasProject {
			t.Fatal("snapshot claims a project exists")
		}
		return nil, nil, nil
	})
	if err != nil {
		t.Fatalf("builder skip: %v", err)
	}
	if project != nil || tasks != nil {
		t.Fatalf("skip returned %+v, %+v", project, tasks)
	}
	if got, err := store.GetProjectByAssetID(ctx, asset.ID); err != nil || got != nil {
		t.Fatalf("project persisted despite skip: %+v, %v", got, err)
	}
}

func TestCreateProjectBuilderErrorRollsBack(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	asset := testsupport.NewAsset(t, store, "Night Harbor", production.ContentTypeAudioDescription)
	boom := errors.New("builder failure")
	_, _, err := store.CreateProjectWithTasks(ctx, asset.ID, func(production.CreationSnapshot) (*production.Project, []production.Task, error) {
		return nil, nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want builder failure", err)
	}
	if got, _ := store.GetProjectByAssetID(ctx, asset.ID); got != nil {
		t.Fatalf("project persisted despite builder error: %+v", got)
	}
}

func TestCreateProjectSnapshotContents(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	asset := testsupport.NewAsset(t, store, "Night Harbor", production.ContentTypeAudioDescription)
	testsupport.AddCredit(t, store, asset.ID, production.PersonScriptwriter, "M. Leclerc", "describer", true, 1)
	testsupport.SeedTemplate(t, store, production.ContentTypeAudioDescription, 1, 1, "source materials", 1.0)
	testsupport.SeedTemplate(t, store, production.ContentTypeClosedCaptions, 1, 1, "other type", 1.0)

	_, _, err := store.CreateProjectWithTasks(ctx, asset.ID, func(snap production.CreationSnapshot) (*production.Project, []production.Task, error) {
		if len(snap.Credits) != 1 || snap.Credits[0].PersonName != "M. Leclerc" {
			t.Fatalf("snapshot credits = %+v", snap.Credits)
		}
		if len(snap.Templates) != 1 || snap.Templates[0].TaskName != "source materials" {
			t.Fatalf("snapshot templates = %+v (must be filtered by content type)", snap.Templates)
		}
		return nil, nil, nil
	})
	if err != nil {
		t.Fatalf("CreateProjectWithTasks: %v", err)
	}
}

func TestUpdateProjectAndTaskRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	asset := testsupport.NewAsset(t, store, "Night Harbor", production.ContentTypeAudioDescription)
	project, tasks, err := store.CreateProjectWithTasks(ctx, asset.ID, buildSimpleProject(production.TierFast))
	if err != nil {
		t.Fatalf("CreateProjectWithTasks: %v", err)
	}

	project.Stage = 2
	project.Progress = 35
	project.Priority = 5
	project.Pinned = true
	if err := store.UpdateProject(ctx, project); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	fetched, err := store.GetProjectByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetProjectByID: %v", err)
	}
	if fetched.Stage != 2 || fetched.Progress != 35 || !fetched.Pinned || fetched.Priority != 5 {
		t.Fatalf("fetched = %+v", fetched)
	}

	task := tasks[0]
	task.Status = production.TaskCompleted
	task.ActualHours = 1.25
	score := 5
	task.QualityScore = &score
	task.ChecklistProgress = map[string]bool{"video received": true}
	if err := store.UpdateTask(ctx, &task); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	stored, err := store.GetTaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID: %v", err)
	}
	if stored.Status != production.TaskCompleted || stored.ActualHours != 1.25 {
		t.Fatalf("stored = %+v", stored)
	}
	if stored.QualityScore == nil || *stored.QualityScore != 5 {
		t.Fatalf("quality = %v", stored.QualityScore)
	}
	if !stored.ChecklistProgress["video received"] {
		t.Fatalf("checklist = %+v", stored.ChecklistProgress)
	}
}

func TestListProjectsByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewAsset(t, store, "One", production.ContentTypeAudioDescription)
	second := testsupport.NewAsset(t, store, "Two", production.ContentTypeClosedCaptions)
	p1, _, err := store.CreateProjectWithTasks(ctx, first.ID, buildSimpleProject(production.TierNormal))
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, _, err := store.CreateProjectWithTasks(ctx, second.ID, buildSimpleProject(production.TierNormal)); err != nil {
		t.Fatalf("create second: %v", err)
	}

	p1.Status = production.ProjectPaused
	if err := store.UpdateProject(ctx, p1); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}

	active, err := store.ListProjects(ctx, production.ProjectActive)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("active projects = %d, want 1", len(active))
	}
	all, err := store.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all projects = %d, want 2", len(all))
	}
}
