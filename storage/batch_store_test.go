package storage

import (
	"context"
	"testing"
	"time"

	"github.com/elinasafina23/EBR/batch"
	"github.com/elinasafina23/EBR/errors"
	ebrtest "github.com/elinasafina23/EBR/internal/testing"
)

func TestBatchStore_UpsertGet(t *testing.T) {
	db := ebrtest.CreateTestDB(t)
	store := NewBatchStore(db)
	ctx := context.Background()

	record := &batch.Record{
		BatchID:  "B1",
		RecipeID: "R7",
		Status:   batch.StatusPlanned,
		Data: batch.Data{
			"temp":     batch.Number(72),
			"operator": batch.String("jsmith"),
		},
		Equipment: []string{"E1", "E2", "E1"},
	}

	if err := store.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	retrieved, err := store.Get(ctx, "B1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if retrieved.BatchID != "B1" {
		t.Errorf("BatchID mismatch: got %s, want B1", retrieved.BatchID)
	}
	if retrieved.RecipeID != "R7" {
		t.Errorf("RecipeID mismatch: got %s, want R7", retrieved.RecipeID)
	}
	if retrieved.Status != batch.StatusPlanned {
		t.Errorf("Status mismatch: got %s, want planned", retrieved.Status)
	}
	if retrieved.StartedAt != nil || retrieved.CompletedAt != nil {
		t.Errorf("timestamps should be nil on a planned record")
	}
	if len(retrieved.Equipment) != 3 || retrieved.Equipment[0] != "E1" || retrieved.Equipment[1] != "E2" || retrieved.Equipment[2] != "E1" {
		t.Errorf("Equipment order/duplicates not preserved: got %v", retrieved.Equipment)
	}
	if !retrieved.Data["temp"].Equal(batch.Number(72)) {
		t.Errorf("Data temp mismatch: got %v", retrieved.Data["temp"])
	}
	if !retrieved.Data["operator"].Equal(batch.String("jsmith")) {
		t.Errorf("Data operator mismatch: got %v", retrieved.Data["operator"])
	}
}

func TestBatchStore_UpsertReplaces(t *testing.T) {
	db := ebrtest.CreateTestDB(t)
	store := NewBatchStore(db)
	ctx := context.Background()

	record := &batch.Record{BatchID: "B1", RecipeID: "R1", Status: batch.StatusPlanned, Data: batch.Data{}, Equipment: []string{"E1"}}
	if err := store.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert (create) failed: %v", err)
	}

	record.RecipeID = "R2"
	record.Equipment = []string{"E9"}
	if err := store.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert (replace) failed: %v", err)
	}

	retrieved, err := store.Get(ctx, "B1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if retrieved.RecipeID != "R2" {
		t.Errorf("RecipeID not replaced: got %s, want R2", retrieved.RecipeID)
	}
	if len(retrieved.Equipment) != 1 || retrieved.Equipment[0] != "E9" {
		t.Errorf("Equipment not replaced: got %v", retrieved.Equipment)
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("upsert with existing id must not create a second row: got %d rows", len(records))
	}
}

func TestBatchStore_GetNotFound(t *testing.T) {
	db := ebrtest.CreateTestDB(t)
	store := NewBatchStore(db)

	_, err := store.Get(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for missing record")
	}
	if !errors.IsNotFound(err) {
		t.Errorf("expected not-found error, got: %v", err)
	}
}

func TestBatchStore_List(t *testing.T) {
	db := ebrtest.CreateTestDB(t)
	store := NewBatchStore(db)
	ctx := context.Background()

	for _, id := range []string{"B1", "B2", "B3"} {
		record := &batch.Record{BatchID: id, RecipeID: "R1", Status: batch.StatusPlanned, Data: batch.Data{}, Equipment: []string{}}
		if err := store.Upsert(ctx, record); err != nil {
			t.Fatalf("Upsert %s failed: %v", id, err)
		}
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []string{"B1", "B2", "B3"} {
		if records[i].BatchID != want {
			t.Errorf("record %d: got %s, want %s", i, records[i].BatchID, want)
		}
	}
}

func TestBatchStore_UpdateStatusTimestamps(t *testing.T) {
	db := ebrtest.CreateTestDB(t)
	store := NewBatchStore(db)
	ctx := context.Background()

	record := &batch.Record{BatchID: "B1", RecipeID: "R1", Status: batch.StatusPlanned, Data: batch.Data{}, Equipment: []string{}}
	if err := store.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	before := time.Now().UTC().Add(-time.Second)

	started, err := store.UpdateStatus(ctx, "B1", batch.StatusInProgress, time.Now().UTC())
	if err != nil {
		t.Fatalf("UpdateStatus(in_progress) failed: %v", err)
	}
	if started.StartedAt == nil {
		t.Fatal("started_at not set on in_progress transition")
	}
	if started.StartedAt.Before(before) {
		t.Errorf("started_at predates the call: %v", started.StartedAt)
	}
	if started.CompletedAt != nil {
		t.Errorf("completed_at must stay nil on in_progress transition")
	}

	completed, err := store.UpdateStatus(ctx, "B1", batch.StatusCompleted, time.Now().UTC())
	if err != nil {
		t.Fatalf("UpdateStatus(completed) failed: %v", err)
	}
	if completed.CompletedAt == nil {
		t.Fatal("completed_at not set on completed transition")
	}
	if completed.StartedAt == nil || !completed.StartedAt.Equal(*started.StartedAt) {
		t.Errorf("started_at changed by completed transition: got %v, want %v", completed.StartedAt, started.StartedAt)
	}
	if completed.Status != batch.StatusCompleted {
		t.Errorf("Status mismatch: got %s, want completed", completed.Status)
	}
}

func TestBatchStore_UpdateStatusHaltedSetsCompletedAt(t *testing.T) {
	db := ebrtest.CreateTestDB(t)
	store := NewBatchStore(db)
	ctx := context.Background()

	record := &batch.Record{BatchID: "B1", RecipeID: "R1", Status: batch.StatusInProgress, Data: batch.Data{}, Equipment: []string{}}
	if err := store.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	halted, err := store.UpdateStatus(ctx, "B1", batch.StatusHalted, time.Now().UTC())
	if err != nil {
		t.Fatalf("UpdateStatus(halted) failed: %v", err)
	}
	if halted.CompletedAt == nil {
		t.Error("completed_at not set on halted transition")
	}
}

func TestBatchStore_UpdateStatusNotFound(t *testing.T) {
	db := ebrtest.CreateTestDB(t)
	store := NewBatchStore(db)
	ctx := context.Background()

	_, err := store.UpdateStatus(ctx, "missing", batch.StatusCompleted, time.Now().UTC())
	if err == nil {
		t.Fatal("expected error for missing record")
	}
	if !errors.IsNotFound(err) {
		t.Errorf("expected not-found error, got: %v", err)
	}

	// No row must have been created
	records, listErr := store.List(ctx)
	if listErr != nil {
		t.Fatalf("List failed: %v", listErr)
	}
	if len(records) != 0 {
		t.Errorf("UpdateStatus on missing id must not mutate the store, found %d rows", len(records))
	}
}
