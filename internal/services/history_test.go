package services

import (
	"context"
	"testing"

	"babykicks-backend/internal/models"
	"babykicks-backend/internal/storage"
)

func TestHistoryService_LoadAbsentAndCorrupt(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewHistoryService(store)
	ctx := context.Background()

	if got := svc.Load(ctx, "acct-1"); len(got) != 0 {
		t.Fatalf("absent history = %v, want empty", got)
	}

	// A corrupt blob reads as empty instead of erroring.
	if err := store.Set(ctx, "history:acct-1", []byte("{not json")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := svc.Load(ctx, "acct-1"); len(got) != 0 {
		t.Fatalf("corrupt history = %v, want empty", got)
	}
}

func TestHistoryService_GuestKeySentinel(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewHistoryService(store)
	ctx := context.Background()

	session := models.KickSession{ID: "s-1", Count: 5}
	if err := svc.Append(ctx, models.GuestAccountID, session); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Empty account id resolves to the same guest bucket.
	if got := svc.Load(ctx, ""); len(got) != 1 || got[0].ID != "s-1" {
		t.Fatalf("guest history via empty id = %v, want [s-1]", got)
	}
	if raw, _ := store.Get(ctx, "history:guest"); raw == nil {
		t.Fatal("guest history not stored under the guest sentinel key")
	}
}

func TestHistoryService_AppendIdempotentByID(t *testing.T) {
	svc := NewHistoryService(storage.NewMemoryStore())
	ctx := context.Background()

	session := models.KickSession{ID: "s-1", Count: 5}
	for i := 0; i < 3; i++ {
		if err := svc.Append(ctx, "acct-1", session); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if got := svc.Load(ctx, "acct-1"); len(got) != 1 {
		t.Fatalf("history after repeated append = %d entries, want 1", len(got))
	}
}

func TestHistoryService_PatchAnalysis(t *testing.T) {
	svc := NewHistoryService(storage.NewMemoryStore())
	ctx := context.Background()

	if err := svc.Append(ctx, "acct-1", models.KickSession{ID: "s-1", AnomalyStatus: models.SeverityNone}); err != nil {
		t.Fatalf("append: %v", err)
	}

	analysis := models.AnomalyAnalysis{Severity: models.SeverityMedium, Message: "low movement"}
	found, err := svc.PatchAnalysis(ctx, "acct-1", "s-1", analysis)
	if err != nil || !found {
		t.Fatalf("patch = (%v, %v), want (true, nil)", found, err)
	}

	got := svc.Load(ctx, "acct-1")
	if got[0].AnomalyStatus != models.SeverityMedium || got[0].AnomalyReason != "low movement" {
		t.Errorf("patched session = %+v", got[0])
	}

	// Reapplying the identical result is a no-op, still reported found.
	found, err = svc.PatchAnalysis(ctx, "acct-1", "s-1", analysis)
	if err != nil || !found {
		t.Errorf("idempotent patch = (%v, %v), want (true, nil)", found, err)
	}

	// Unknown id: not found, not an error.
	found, err = svc.PatchAnalysis(ctx, "acct-1", "nope", analysis)
	if err != nil || found {
		t.Errorf("patch of missing session = (%v, %v), want (false, nil)", found, err)
	}
}

func TestHistoryService_MergeIsSetUnionByID(t *testing.T) {
	svc := NewHistoryService(storage.NewMemoryStore())
	ctx := context.Background()

	a := models.KickSession{ID: "a", Count: 3}
	b := models.KickSession{ID: "b", Count: 7}
	if err := svc.Save(ctx, []models.KickSession{a}, "acct-1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	merged, err := svc.Merge(ctx, []models.KickSession{a, b}, "acct-1")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("merged size = %d, want 2", len(merged))
	}

	ids := map[string]bool{}
	for _, s := range merged {
		if ids[s.ID] {
			t.Fatalf("duplicate id %q after merge", s.ID)
		}
		ids[s.ID] = true
	}
	if !ids["a"] || !ids["b"] {
		t.Fatalf("merged ids = %v, want a and b", ids)
	}

	// Merge is idempotent: rerunning with the same local list changes nothing.
	again, err := svc.Merge(ctx, []models.KickSession{a, b}, "acct-1")
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	if len(again) != 2 {
		t.Fatalf("merged size after rerun = %d, want 2", len(again))
	}

	// The merged list is persisted under the target account.
	if got := svc.Load(ctx, "acct-1"); len(got) != 2 {
		t.Fatalf("persisted history = %d entries, want 2", len(got))
	}
}
