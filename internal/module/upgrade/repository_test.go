package upgrade

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/lnflash/flash-admin-console/internal/domain"
)

// setupTestDB creates an in-memory SQLite database with the UpgradeRequest table.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.UpgradeRequest{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedRequest(t *testing.T, repo domain.UpgradeRepository, req domain.UpgradeRequest) *domain.UpgradeRequest {
	t.Helper()
	if req.AccountID == "" {
		req.AccountID = "acct-1"
	}
	if req.Status == "" {
		req.Status = domain.UpgradeStatusPending
	}
	if err := repo.Create(context.Background(), &req); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &req
}

func TestRepository_CreateAndGetByID(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	req := &domain.UpgradeRequest{
		AccountID:      "acct-42",
		PhoneNumber:    "+18765551234",
		Username:       "satoshi",
		CurrentLevel:   domain.LevelOne,
		RequestedLevel: domain.LevelTwo,
		Status:         domain.UpgradeStatusPending,
	}
	if err := repo.Create(ctx, req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if req.ID == 0 {
		t.Fatal("expected non-zero ID after Create")
	}

	got, err := repo.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Username != "satoshi" || got.RequestedLevel != domain.LevelTwo {
		t.Errorf("got %+v; want Username=satoshi, RequestedLevel=TWO", got)
	}
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), 999)
	if !domain.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_List_Pagination(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	for i := 0; i < 25; i++ {
		seedRequest(t, repo, domain.UpgradeRequest{
			Username:       fmt.Sprintf("user%02d", i),
			RequestedLevel: domain.LevelOne,
		})
	}

	result, err := repo.List(context.Background(), domain.PageRequest{Page: 2, PageSize: 10, Sort: "id:asc"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 25 {
		t.Errorf("Total=%d; want 25", result.Total)
	}
	if result.TotalPages != 3 {
		t.Errorf("TotalPages=%d; want 3", result.TotalPages)
	}
	if len(result.Items) != 10 {
		t.Errorf("len(Items)=%d; want 10", len(result.Items))
	}
	if result.Items[0].Username != "user10" {
		t.Errorf("first item on page 2 = %q; want user10", result.Items[0].Username)
	}
}

func TestRepository_List_ClampsOutOfRangePage(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	for i := 0; i < 25; i++ {
		seedRequest(t, repo, domain.UpgradeRequest{Username: fmt.Sprintf("user%02d", i)})
	}

	result, err := repo.List(context.Background(), domain.PageRequest{Page: 9, PageSize: 10, Sort: "id:asc"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Page != 3 {
		t.Errorf("Page=%d; want clamped to 3", result.Page)
	}
	if len(result.Items) != 5 {
		t.Errorf("len(Items)=%d; want 5 on the last page", len(result.Items))
	}
}

func TestRepository_List_FilterByStatus(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	seedRequest(t, repo, domain.UpgradeRequest{Username: "a", Status: domain.UpgradeStatusPending})
	seedRequest(t, repo, domain.UpgradeRequest{Username: "b", Status: domain.UpgradeStatusApproved})
	seedRequest(t, repo, domain.UpgradeRequest{Username: "c", Status: domain.UpgradeStatusPending})

	result, err := repo.List(context.Background(), domain.PageRequest{
		Page: 1, PageSize: 10,
		Filter: map[string]string{"status": domain.UpgradeStatusPending},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("Total=%d; want 2 pending", result.Total)
	}
}

func TestRepository_SearchByPhone(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	seedRequest(t, repo, domain.UpgradeRequest{Username: "a", PhoneNumber: "+18765551234"})
	seedRequest(t, repo, domain.UpgradeRequest{Username: "b", PhoneNumber: "+18765559999"})

	items, err := repo.SearchByPhone(context.Background(), "8765551234")
	if err != nil {
		t.Fatalf("SearchByPhone: %v", err)
	}
	if len(items) != 1 || items[0].Username != "a" {
		t.Errorf("got %+v; want single match for user a", items)
	}
}

func TestRepository_SearchByUsername(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	seedRequest(t, repo, domain.UpgradeRequest{Username: "satoshi"})
	seedRequest(t, repo, domain.UpgradeRequest{Username: "satoko"})
	seedRequest(t, repo, domain.UpgradeRequest{Username: "hal"})

	items, err := repo.SearchByUsername(context.Background(), "sato")
	if err != nil {
		t.Fatalf("SearchByUsername: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len(items)=%d; want 2", len(items))
	}
}

func TestRepository_SearchByUsername_NoMatch(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	seedRequest(t, repo, domain.UpgradeRequest{Username: "satoshi"})

	items, err := repo.SearchByUsername(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("SearchByUsername: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len(items)=%d; want 0", len(items))
	}
}

func TestRepository_Update(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	req := seedRequest(t, repo, domain.UpgradeRequest{Username: "satoshi"})

	req.Status = domain.UpgradeStatusApproved
	req.ReviewedBy = "reviewer1"
	if err := repo.Update(ctx, req); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := repo.GetByID(ctx, req.ID)
	if got.Status != domain.UpgradeStatusApproved || got.ReviewedBy != "reviewer1" {
		t.Errorf("got Status=%q ReviewedBy=%q; want Approved/reviewer1", got.Status, got.ReviewedBy)
	}
}

func TestRepository_Update_ConflictWhenAlreadyReviewed(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	req := seedRequest(t, repo, domain.UpgradeRequest{Username: "satoshi", Status: domain.UpgradeStatusPending})

	req.Status = domain.UpgradeStatusApproved
	req.ReviewedBy = "reviewer1"
	if err := repo.Update(ctx, req); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// A second reviewer raced the first and tries to write a different outcome.
	stale := *req
	stale.Status = domain.UpgradeStatusRejected
	stale.ReviewedBy = "reviewer2"
	err := repo.Update(ctx, &stale)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	got, _ := repo.GetByID(ctx, req.ID)
	if got.Status != domain.UpgradeStatusApproved || got.ReviewedBy != "reviewer1" {
		t.Errorf("first review was overwritten: Status=%q ReviewedBy=%q", got.Status, got.ReviewedBy)
	}
}
