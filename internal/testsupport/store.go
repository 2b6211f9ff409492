package testsupport

import (
	"context"
	"testing"

	"reeltrack/internal/config"
	"reeltrack/internal/production"
)

// MustOpenStore opens a production.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *production.Store {
	t.Helper()

	store, err := production.Open(cfg)
	if err != nil {
		t.Fatalf("production.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewAsset creates a content asset for tests using the provided store.
func NewAsset(t testing.TB, store *production.Store, title string, contentType production.ContentType) *production.ContentAsset {
	t.Helper()

	asset, err := store.CreateAsset(context.Background(), title, contentType, "")
	if err != nil {
		t.Fatalf("store.CreateAsset: %v", err)
	}
	return asset
}

// AddCredit attaches a credit to an asset for tests.
func AddCredit(t testing.TB, store *production.Store, assetID int64, kind production.PersonKind, name, role string, primary bool, seq int) *production.Credit {
	t.Helper()

	credit, err := store.AddCredit(context.Background(), assetID, production.PersonRef{Kind: kind, ID: int64(seq)}, name, role, primary, seq)
	if err != nil {
		t.Fatalf("store.AddCredit: %v", err)
	}
	return credit
}

// SeedTemplate inserts a minimal active template for tests.
func SeedTemplate(t testing.TB, store *production.Store, contentType production.ContentType, stage, order int, name string, hoursB float64) *production.Template {
	t.Helper()

	tpl := &production.Template{
		ContentType: contentType,
		Stage:       stage,
		TaskOrder:   order,
		TaskName:    name,
		HoursA:      hoursB * 0.75,
		HoursB:      hoursB,
		HoursC:      hoursB * 1.25,
		Required:    true,
		Active:      true,
	}
	inserted, err := store.InsertTemplate(context.Background(), tpl)
	if err != nil {
		t.Fatalf("store.InsertTemplate: %v", err)
	}
	return inserted
}
