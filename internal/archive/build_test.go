package archive

import (
	"errors"
	"math"
	"testing"
	"time"

	"reeltrack/internal/production"
	"reeltrack/internal/services"
)

func completedProject() (*production.Project, *production.ContentAsset) {
	started := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	completed := time.Date(2026, 1, 12, 17, 0, 0, 0, time.UTC)
	project := &production.Project{
		ID:          7,
		AssetID:     3,
		Stage:       production.StageDistribution,
		Status:      production.ProjectCompleted,
		Progress:    100,
		Tier:        production.TierNormal,
		StartedAt:   started,
		CompletedAt: &completed,
	}
	asset := &production.ContentAsset{
		ID:          3,
		Title:       "Night Harbor",
		ContentType: production.ContentTypeAudioDescription,
		TrackName:   "English AD",
	}
	return project, asset
}

func TestBuildSnapshotsProject(t *testing.T) {
	project, asset := completedProject()
	score := 4
	tasks := []production.Task{
		{
			Stage: 1, Status: production.TaskCompleted,
			PlannedHours: 2, ActualHours: 1.5,
		},
		{
			Stage: 2, Status: production.TaskCompleted,
			PlannedHours: 4, ActualHours: 5,
			ReviewRequired: true, PlannedReviewHours: 1, ActualReviewHours: 1,
			QualityScore: &score,
		},
		{
			Stage: 3, Status: production.TaskCompleted,
			PlannedHours: 3, // no actual logged, planned is the fallback
		},
	}
	credits := []production.Credit{
		{
			ID:         21,
			Person:     production.PersonRef{Kind: production.PersonVoiceArtist, ID: 8},
			PersonName: "R. Okafor",
			RoleLabel:  "narrator",
			Primary:    true,
		},
	}

	record, err := Build(project, asset, credits, tasks)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if record.ProjectID != 7 || record.AssetTitle != "Night Harbor" || record.Tier != production.TierNormal {
		t.Fatalf("header fields wrong: %+v", record)
	}
	if record.TotalDays != 8 {
		t.Fatalf("TotalDays = %d, want 8", record.TotalDays)
	}
	// 1.5 + (5+1) + 3 planned fallback
	if record.TotalHours != 10.5 {
		t.Fatalf("TotalHours = %v, want 10.5", record.TotalHours)
	}
	if len(record.StageHours) != 4 {
		t.Fatalf("all four stages must be present, got %v", record.StageHours)
	}
	if record.StageHours[2] != 6 || record.StageHours[3] != 3 || record.StageHours[4] != 0 {
		t.Fatalf("stage hours = %v", record.StageHours)
	}
	if record.Efficiency == nil {
		t.Fatal("efficiency missing")
	}
	// planned 10, actual 7.5
	if want := 10.0 / 7.5; math.Abs(*record.Efficiency-want) > 1e-9 {
		t.Fatalf("efficiency = %v, want %v", *record.Efficiency, want)
	}
	if record.AverageQuality == nil || *record.AverageQuality != 4 {
		t.Fatalf("average quality = %v, want 4", record.AverageQuality)
	}
	if len(record.Participants) != 1 || record.Participants[0].Name != "R. Okafor" {
		t.Fatalf("participants = %+v", record.Participants)
	}
}

func TestBuildNilQualityWhenUnrated(t *testing.T) {
	project, asset := completedProject()
	record, err := Build(project, asset, nil, []production.Task{
		{Stage: 1, Status: production.TaskCompleted, PlannedHours: 1},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if record.AverageQuality != nil {
		t.Fatalf("average quality = %v, want nil with no ratings", record.AverageQuality)
	}
	if record.Efficiency != nil {
		t.Fatalf("efficiency = %v, want nil with no actual hours", record.Efficiency)
	}
}

func TestBuildRequiresCompletedStatus(t *testing.T) {
	project, asset := completedProject()
	project.Status = production.ProjectActive
	if _, err := Build(project, asset, nil, nil); !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("err = %v, want precondition", err)
	}
}

func TestBuildRequiresDates(t *testing.T) {
	project, asset := completedProject()
	project.CompletedAt = nil
	if _, err := Build(project, asset, nil, nil); !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("missing completion date: err = %v, want precondition", err)
	}

	project, asset = completedProject()
	project.StartedAt = time.Time{}
	if _, err := Build(project, asset, nil, nil); !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("missing start date: err = %v, want precondition", err)
	}
}

func TestBuildExcludesDeletedCredits(t *testing.T) {
	project, asset := completedProject()
	deleted := time.Now()
	credits := []production.Credit{
		{ID: 1, PersonName: "Kept"},
		{ID: 2, PersonName: "Gone", DeletedAt: &deleted},
	}
	record, err := Build(project, asset, credits, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(record.Participants) != 1 || record.Participants[0].Name != "Kept" {
		t.Fatalf("participants = %+v", record.Participants)
	}
}

func TestBuildSameDayCountsOneDay(t *testing.T) {
	project, asset := completedProject()
	completed := project.StartedAt.Add(3 * time.Hour)
	project.CompletedAt = &completed
	record, err := Build(project, asset, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if record.TotalDays != 1 {
		t.Fatalf("TotalDays = %d, want 1", record.TotalDays)
	}
}
