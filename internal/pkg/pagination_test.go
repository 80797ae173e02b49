package pkg

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	dbtest "gorm.io/gorm/utils/tests"

	"github.com/lnflash/flash-admin-console/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(queryParams url.Values) *gin.Context {
	req := httptest.NewRequest(http.MethodGet, "/?"+queryParams.Encode(), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

func TestParsePageRequest_Defaults(t *testing.T) {
	c := newTestContext(url.Values{})
	pr := ParsePageRequest(c)

	if pr.Page != 1 {
		t.Errorf("expected Page=1, got %d", pr.Page)
	}
	if pr.PageSize != 10 {
		t.Errorf("expected PageSize=10, got %d", pr.PageSize)
	}
	if pr.Sort != "created_at:desc" {
		t.Errorf("expected Sort=created_at:desc, got %s", pr.Sort)
	}
	if len(pr.Filter) != 0 {
		t.Errorf("expected empty Filter, got %v", pr.Filter)
	}
}

func TestParsePageRequest_CustomValues(t *testing.T) {
	c := newTestContext(url.Values{
		"page":               {"3"},
		"page_size":          {"50"},
		"sort":               {"username:asc"},
		"status":             {"PENDING"},
		"phone_number__like": {"1876"},
	})
	pr := ParsePageRequest(c)

	if pr.Page != 3 {
		t.Errorf("expected Page=3, got %d", pr.Page)
	}
	if pr.PageSize != 50 {
		t.Errorf("expected PageSize=50, got %d", pr.PageSize)
	}
	if pr.Sort != "username:asc" {
		t.Errorf("expected Sort=username:asc, got %s", pr.Sort)
	}
	if pr.Filter["status"] != "PENDING" {
		t.Errorf("expected Filter[status]=PENDING, got %s", pr.Filter["status"])
	}
	if pr.Filter["phone_number__like"] != "1876" {
		t.Errorf("expected Filter[phone_number__like]=1876, got %s", pr.Filter["phone_number__like"])
	}
}

func TestParsePageRequest_Clamping(t *testing.T) {
	t.Run("page below minimum", func(t *testing.T) {
		c := newTestContext(url.Values{"page": {"0"}})
		pr := ParsePageRequest(c)
		if pr.Page != 1 {
			t.Errorf("expected Page=1, got %d", pr.Page)
		}
	})

	t.Run("negative page", func(t *testing.T) {
		c := newTestContext(url.Values{"page": {"-5"}})
		pr := ParsePageRequest(c)
		if pr.Page != 1 {
			t.Errorf("expected Page=1, got %d", pr.Page)
		}
	})

	t.Run("page_size below minimum", func(t *testing.T) {
		c := newTestContext(url.Values{"page_size": {"0"}})
		pr := ParsePageRequest(c)
		if pr.PageSize != 10 {
			t.Errorf("expected PageSize=10, got %d", pr.PageSize)
		}
	})

	t.Run("page_size above maximum", func(t *testing.T) {
		c := newTestContext(url.Values{"page_size": {"500"}})
		pr := ParsePageRequest(c)
		if pr.PageSize != 100 {
			t.Errorf("expected PageSize=100, got %d", pr.PageSize)
		}
	})

	t.Run("invalid page_size defaults", func(t *testing.T) {
		c := newTestContext(url.Values{"page_size": {"abc"}})
		pr := ParsePageRequest(c)
		if pr.PageSize != 10 {
			t.Errorf("expected PageSize=10, got %d", pr.PageSize)
		}
	})
}

func TestParsePageRequest_EmptyFilterValuesIgnored(t *testing.T) {
	c := newTestContext(url.Values{
		"status":   {""},
		"username": {"maria"},
	})
	pr := ParsePageRequest(c)

	if _, ok := pr.Filter["status"]; ok {
		t.Error("expected empty filter value to be excluded")
	}
	if pr.Filter["username"] != "maria" {
		t.Errorf("expected Filter[username]=maria, got %s", pr.Filter["username"])
	}
}

func TestIsAllowed(t *testing.T) {
	allowed := []string{"status", "username", "requested_level"}

	if !isAllowed("status", allowed) {
		t.Error("expected 'status' to be allowed")
	}
	if isAllowed("confirmation_code", allowed) {
		t.Error("expected 'confirmation_code' to not be allowed")
	}
	if isAllowed("", allowed) {
		t.Error("expected empty string to not be allowed")
	}
}

func TestValidFieldName(t *testing.T) {
	valid := []string{"id", "status", "created_at", "phone_number", "_private"}
	invalid := []string{"", "1field", "status;DROP", "field name", "a.b", "a-b"}

	for _, f := range valid {
		if !validFieldName.MatchString(f) {
			t.Errorf("expected %q to be valid", f)
		}
	}
	for _, f := range invalid {
		if validFieldName.MatchString(f) {
			t.Errorf("expected %q to be invalid", f)
		}
	}
}

func newScopeTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(dbtest.DummyDialector{}, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return db
}

func TestSort(t *testing.T) {
	tests := []struct {
		name    string
		sort    string
		allowed []string
		applied bool
	}{
		{"valid field asc", "username:asc", []string{"username", "status"}, true},
		{"valid field desc", "created_at:desc", []string{"created_at", "status"}, true},
		{"field not in allowed list", "confirmation_code:asc", []string{"status"}, false},
		{"malformed no colon", "status", []string{"status"}, false},
		{"empty direction", "status:", []string{"status"}, false},
		{"invalid direction", "status:up", []string{"status"}, false},
		{"sql injection in field", "status;DROP TABLE cashout_requests--:asc", []string{"status"}, false},
		{"empty field", ":asc", []string{"status"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.PageRequest{Sort: tt.sort}
			scope := Sort(req, tt.allowed)
			db := newScopeTestDB(t)
			result := scope(db)
			_, hasOrder := result.Statement.Clauses["ORDER BY"]
			if hasOrder != tt.applied {
				t.Errorf("Order clause applied=%v, want %v", hasOrder, tt.applied)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		filter  map[string]string
		allowed []string
		applied bool
	}{
		{"valid exact match", map[string]string{"status": "PENDING"}, []string{"status", "currency"}, true},
		{"valid like match", map[string]string{"phone_number__like": "1876"}, []string{"phone_number"}, true},
		{"field not in allowed", map[string]string{"confirmation_code": "1234"}, []string{"status"}, false},
		{"like field not in allowed", map[string]string{"confirmation_code__like": "12"}, []string{"status"}, false},
		{"sql injection in key", map[string]string{"status;DROP TABLE--": "x"}, []string{"status"}, false},
		{"empty filter map", map[string]string{}, []string{"status"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.PageRequest{Filter: tt.filter}
			scope := Filter(req, tt.allowed)
			db := newScopeTestDB(t)
			result := scope(db)
			_, hasWhere := result.Statement.Clauses["WHERE"]
			if hasWhere != tt.applied {
				t.Errorf("Where clause applied=%v, want %v", hasWhere, tt.applied)
			}
		})
	}
}

func TestFilter_MixedValidAndInvalid(t *testing.T) {
	req := domain.PageRequest{
		Filter: map[string]string{
			"status":            "PENDING",
			"confirmation_code": "1234",
		},
	}
	scope := Filter(req, []string{"status", "currency"})
	db := newScopeTestDB(t)
	result := scope(db)
	_, hasWhere := result.Statement.Clauses["WHERE"]
	if !hasWhere {
		t.Error("expected Where clause for the valid filter field")
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
	}{
		{"first page", 1, 10},
		{"third page", 3, 10},
		{"large page number", 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.PageRequest{Page: tt.page, PageSize: tt.pageSize}
			scope := Paginate(req)
			db := newScopeTestDB(t)
			result := scope(db)
			_, hasLimit := result.Statement.Clauses["LIMIT"]
			if !hasLimit {
				t.Error("expected LIMIT clause to be applied")
			}
		})
	}
}
