package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Leganyst/scrutineering-core/internal/model"
)

func openChecklistDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	schema := []string{
		`CREATE TABLE checklist_template_items (
			id TEXT PRIMARY KEY,
			inspection_type_id TEXT NOT NULL,
			section TEXT NOT NULL,
			description TEXT NOT NULL,
			order_index INTEGER NOT NULL DEFAULT 0,
			required INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE checklist_progress_entries (
			booking_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT '',
			comment TEXT,
			user_id TEXT NOT NULL,
			checked_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME,
			PRIMARY KEY (booking_id, item_id)
		);`,
		`CREATE TABLE inspection_results (
			id TEXT PRIMARY KEY,
			booking_id TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			completed_at DATETIME,
			inspector_ids TEXT,
			notes TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func TestUpsertEntry_LastWriteWins(t *testing.T) {
	db := openChecklistDB(t)
	repo := NewGormChecklistRepository(db)

	bookingID, itemID := uuid.New(), uuid.New()
	firstAuthor, secondAuthor := uuid.New(), uuid.New()
	checked := time.Date(2026, 5, 14, 10, 15, 0, 0, time.UTC)

	err := repo.UpsertEntry(context.Background(), &model.ChecklistProgressEntry{
		BookingID: bookingID,
		ItemID:    itemID,
		Status:    model.ItemStatusFail,
		Comment:   "loose bolt",
		UserID:    firstAuthor,
		CheckedAt: &checked,
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	recheck := checked.Add(10 * time.Minute)
	err = repo.UpsertEntry(context.Background(), &model.ChecklistProgressEntry{
		BookingID: bookingID,
		ItemID:    itemID,
		Status:    model.ItemStatusPass,
		Comment:   "fixed on the spot",
		UserID:    secondAuthor,
		CheckedAt: &recheck,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	stored, err := repo.GetEntry(context.Background(), bookingID.String(), itemID.String())
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if stored.Status != model.ItemStatusPass {
		t.Fatalf("status = %q, want pass", stored.Status)
	}
	if stored.UserID != secondAuthor {
		t.Fatalf("user_id = %s, want %s", stored.UserID, secondAuthor)
	}
	if stored.CheckedAt == nil || !stored.CheckedAt.Equal(recheck) {
		t.Fatalf("checked_at = %v, want %v", stored.CheckedAt, recheck)
	}

	// Exactly one row per (booking, item).
	entries, err := repo.ListEntries(context.Background(), bookingID.String())
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
}

func TestGetEntry_NotFound(t *testing.T) {
	db := openChecklistDB(t)
	repo := NewGormChecklistRepository(db)

	_, err := repo.GetEntry(context.Background(), uuid.NewString(), uuid.NewString())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestListTemplateItems_SectionOrder(t *testing.T) {
	db := openChecklistDB(t)
	repo := NewGormChecklistRepository(db)
	typeID := uuid.New()

	seed := []model.ChecklistTemplateItem{
		{ID: uuid.New(), InspectionTypeID: typeID, Section: "Electrical", Description: "Master switch", OrderIndex: 1},
		{ID: uuid.New(), InspectionTypeID: typeID, Section: "Chassis", Description: "Harness mounts", OrderIndex: 2},
		{ID: uuid.New(), InspectionTypeID: typeID, Section: "Chassis", Description: "Roll hoop padding", OrderIndex: 1},
	}
	for i := range seed {
		if err := repo.CreateTemplateItem(context.Background(), &seed[i]); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}

	items, err := repo.ListTemplateItems(context.Background(), typeID.String())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	want := []string{"Roll hoop padding", "Harness mounts", "Master switch"}
	for i, w := range want {
		if items[i].Description != w {
			t.Fatalf("items[%d] = %q, want %q", i, items[i].Description, w)
		}
	}
}

func TestResultUpsert_OneRowPerBooking(t *testing.T) {
	db := openChecklistDB(t)
	repo := NewGormResultRepository(db)

	bookingID := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)

	err := repo.Upsert(context.Background(), &model.InspectionResult{
		ID:          uuid.New(),
		BookingID:   bookingID,
		Status:      model.ResultStatusProvisional,
		CompletedAt: &now,
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	err = repo.Upsert(context.Background(), &model.InspectionResult{
		ID:          uuid.New(),
		BookingID:   bookingID,
		Status:      model.ResultStatusPassed,
		CompletedAt: &now,
		Notes:       "confirmed",
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("results = %d, want 1", count)
	}

	stored, err := repo.GetByBookingID(context.Background(), bookingID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != model.ResultStatusPassed {
		t.Fatalf("status = %q, want passed", stored.Status)
	}
	if stored.Notes != "confirmed" {
		t.Fatalf("notes = %q, want confirmed", stored.Notes)
	}
}
