package alert

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/lnflash/flash-admin-console/internal/domain"
)

// setupTestDB creates an in-memory SQLite database with the Alert table.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Alert{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRepository_CreateAndListRecent(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	alert := &domain.Alert{
		Title:    "Scheduled maintenance",
		Message:  "The service will be down tonight from 2-3am",
		Severity: domain.AlertSeverityWarning,
		SentBy:   "admin1",
	}
	if err := repo.Create(ctx, alert); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if alert.ID == 0 {
		t.Fatal("expected non-zero ID after Create")
	}

	got, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Scheduled maintenance" {
		t.Errorf("got %+v; want the created alert", got)
	}
}

func TestRepository_ListRecent_NewestFirstAndLimited(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		alert := &domain.Alert{
			Title:    fmt.Sprintf("alert %d", i),
			Message:  "m",
			Severity: domain.AlertSeverityInfo,
		}
		if err := repo.Create(ctx, alert); err != nil {
			t.Fatalf("Create: %v", err)
		}
		// Space out created_at so ordering is deterministic.
		db.Model(alert).Update("created_at", base.Add(time.Duration(i)*time.Minute))
	}

	got, err := repo.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len=%d; want 3", len(got))
	}
	if got[0].Title != "alert 4" || got[2].Title != "alert 2" {
		t.Errorf("order=%q,%q,%q; want newest first", got[0].Title, got[1].Title, got[2].Title)
	}
}

func TestRepository_ListRecent_DefaultLimit(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if err := repo.Create(ctx, &domain.Alert{
			Title:    fmt.Sprintf("alert %d", i),
			Message:  "m",
			Severity: domain.AlertSeverityInfo,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != defaultRecentLimit {
		t.Errorf("len=%d; want default limit %d", len(got), defaultRecentLimit)
	}
}
