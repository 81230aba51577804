package memory

import (
	"context"
	"testing"
	"time"
)

func TestStoreSeedsInitialAdministrator(t *testing.T) {
	store := NewStore("tz1admin")

	record, err := store.GetAdministration(context.Background())
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if record.Administrator != "tz1admin" {
		t.Fatalf("expected tz1admin, got %s", record.Administrator)
	}
	if record.Paused {
		t.Fatalf("expected new record unpaused")
	}
	if record.ProposedAdministrator != "" {
		t.Fatalf("expected no pending proposal, got %s", record.ProposedAdministrator)
	}
}

func TestStoreSaveRoundTrip(t *testing.T) {
	store := NewStore("tz1admin")
	ctx := context.Background()

	record, err := store.GetAdministration(ctx)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if err := record.Propose("tz1next", time.Now()); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if err := store.SaveAdministration(ctx, record); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.GetAdministration(ctx)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if loaded.ProposedAdministrator != "tz1next" {
		t.Fatalf("expected pending proposal tz1next, got %s", loaded.ProposedAdministrator)
	}
}
