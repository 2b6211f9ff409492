package services_test

import (
	"errors"
	"fmt"
	"testing"

	"reeltrack/internal/services"
)

func TestWrapPreservesMarker(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrValidation, "catalog", "bulk replace", "duplicate key", base)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
}

func TestWrapNilMarkerLeavesUnclassified(t *testing.T) {
	base := errors.New("disk I/O error")
	err := services.Wrap(nil, "store", "update project", "", base)
	if services.IsRecoverable(err) {
		t.Fatalf("persistence failure should not classify as recoverable: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected base error preserved, got %v", err)
	}
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{services.Wrap(services.ErrValidation, "lifecycle", "advance", "bad stage", nil), "validation"},
		{services.Wrap(services.ErrNotFound, "store", "get", "", nil), "not_found"},
		{services.Wrap(services.ErrPrecondition, "archive", "build", "", nil), "precondition"},
		{services.Wrap(services.ErrConflict, "workflow", "create project", "", nil), "conflict"},
		{fmt.Errorf("plain: %w", errors.New("x")), "internal"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
