package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/greener/waterdesk/internal/model"
	"github.com/greener/waterdesk/internal/store"
	"github.com/greener/waterdesk/tests/testutil"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	watered := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	snap := &model.ChecklistSnapshot{
		Checklist: []model.ChecklistItem{
			{
				ID:            "plant-1",
				Name:          "Monstera",
				NeedsWatering: true,
				DaysRemaining: 0,
				Location:      &model.Location{Section: "A", Aisle: "3", ShelfNumber: "2"},
			},
			{
				ID:            "plant-2",
				Name:          "Ficus",
				DaysRemaining: 4,
				LastWatered:   &watered,
				Completed:     true,
			},
		},
		TotalCount:         2,
		NeedsWateringCount: 1,
		CompletedCount:     1,
		FetchedAt:          time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC),
	}

	if err := s.SaveSnapshot(ctx, "biz-1", snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	got, err := s.GetSnapshot(ctx, "biz-1")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if got == nil {
		t.Fatal("GetSnapshot returned nil for a cached snapshot")
	}

	if got.TotalCount != 2 || got.NeedsWateringCount != 1 || got.CompletedCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1",
			got.TotalCount, got.NeedsWateringCount, got.CompletedCount)
	}
	if !got.FetchedAt.Equal(snap.FetchedAt) {
		t.Errorf("FetchedAt = %v, want %v", got.FetchedAt, snap.FetchedAt)
	}
	if len(got.Checklist) != 2 {
		t.Fatalf("checklist length = %d, want 2", len(got.Checklist))
	}

	first := got.Checklist[0]
	if first.ID != "plant-1" || !first.NeedsWatering {
		t.Errorf("first item = %+v, want plant-1 needing watering", first)
	}
	if first.Location == nil || first.Location.Section != "A" {
		t.Errorf("first item location = %+v, want section A", first.Location)
	}

	second := got.Checklist[1]
	if second.LastWatered == nil || !second.LastWatered.Equal(watered) {
		t.Errorf("second item LastWatered = %v, want %v", second.LastWatered, watered)
	}
	if !second.Completed {
		t.Error("second item should be completed")
	}
}

func TestSnapshotOverwrite(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	old := &model.ChecklistSnapshot{
		Checklist:  []model.ChecklistItem{{ID: "plant-1"}},
		TotalCount: 1,
		FetchedAt:  time.Now().Add(-time.Hour).UTC(),
	}
	if err := s.SaveSnapshot(ctx, "biz-1", old); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	fresh := &model.ChecklistSnapshot{
		Checklist:  []model.ChecklistItem{{ID: "plant-1"}, {ID: "plant-2"}},
		TotalCount: 2,
		FetchedAt:  time.Now().UTC(),
	}
	if err := s.SaveSnapshot(ctx, "biz-1", fresh); err != nil {
		t.Fatalf("SaveSnapshot overwrite: %v", err)
	}

	got, err := s.GetSnapshot(ctx, "biz-1")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if got.TotalCount != 2 || len(got.Checklist) != 2 {
		t.Errorf("overwrite not applied, got %d items", len(got.Checklist))
	}
}

func TestGetSnapshotAbsent(t *testing.T) {
	s := testutil.NewTestStore(t)

	got, err := s.GetSnapshot(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("GetSnapshot on empty cache: %v", err)
	}
	if got != nil {
		t.Errorf("expected (nil, nil) for an uncached business, got %+v", got)
	}
}

func TestSnapshotsPerBusiness(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, biz := range []string{"biz-1", "biz-2"} {
		snap := &model.ChecklistSnapshot{
			Checklist: []model.ChecklistItem{{ID: biz + "-plant"}},
			FetchedAt: time.Now().UTC(),
		}
		if err := s.SaveSnapshot(ctx, biz, snap); err != nil {
			t.Fatalf("SaveSnapshot(%s): %v", biz, err)
		}
	}

	got, err := s.GetSnapshot(ctx, "biz-2")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if len(got.Checklist) != 1 || got.Checklist[0].ID != "biz-2-plant" {
		t.Errorf("got wrong business's snapshot: %+v", got.Checklist)
	}
}

func TestSettings(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	got, err := s.GetSetting(ctx, store.SettingBusinessID)
	if err != nil {
		t.Fatalf("GetSetting on empty table: %v", err)
	}
	if got != "" {
		t.Errorf("unset setting = %q, want empty", got)
	}

	if err := s.SetSetting(ctx, store.SettingBusinessID, "biz-1"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := s.SetSetting(ctx, store.SettingBusinessID, "biz-2"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}

	got, err = s.GetSetting(ctx, store.SettingBusinessID)
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got != "biz-2" {
		t.Errorf("setting = %q, want biz-2 after overwrite", got)
	}
}

func TestSearchHistoryDedupe(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, term := range []string{"monstera", "ficus", "monstera"} {
		if err := s.AddSearchTerm(ctx, term); err != nil {
			t.Fatalf("AddSearchTerm(%s): %v", term, err)
		}
		// Distinct timestamps so recency ordering is deterministic.
		time.Sleep(2 * time.Millisecond)
	}

	terms, err := s.GetSearchHistory(ctx, 10)
	if err != nil {
		t.Fatalf("GetSearchHistory: %v", err)
	}
	if len(terms) != 2 {
		t.Fatalf("history length = %d, want 2 after dedupe", len(terms))
	}
	if terms[0] != "monstera" || terms[1] != "ficus" {
		t.Errorf("history = %v, want re-searched term first", terms)
	}
}

func TestSearchHistoryCap(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		if err := s.AddSearchTerm(ctx, fmt.Sprintf("term-%02d", i)); err != nil {
			t.Fatalf("AddSearchTerm: %v", err)
		}
	}

	terms, err := s.GetSearchHistory(ctx, 0)
	if err != nil {
		t.Fatalf("GetSearchHistory: %v", err)
	}
	if len(terms) > 50 {
		t.Errorf("history length = %d, want at most 50", len(terms))
	}
}

func TestScanLog(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	rec := store.ScanRecord{
		PlantID: "plant-1",
		RawCode: "PLT-plant-1",
		Method:  string(model.MethodBarcode),
	}
	if err := s.LogScan(ctx, rec); err != nil {
		t.Fatalf("LogScan: %v", err)
	}

	scans, err := s.GetRecentScans(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecentScans: %v", err)
	}
	if len(scans) != 1 {
		t.Fatalf("scan count = %d, want 1", len(scans))
	}
	got := scans[0]
	if got.ID == "" {
		t.Error("LogScan should fill in a missing ID")
	}
	if got.ScannedAt.IsZero() {
		t.Error("LogScan should fill in a missing timestamp")
	}
	if got.PlantID != "plant-1" || got.RawCode != "PLT-plant-1" {
		t.Errorf("scan = %+v, want plant-1 / PLT-plant-1", got)
	}
}
