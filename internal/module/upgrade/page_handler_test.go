package upgrade

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lnflash/flash-admin-console/internal/domain"
	"github.com/lnflash/flash-admin-console/internal/middleware"
)

// setupPageRouter creates a gin engine with stub templates for page handler
// testing. Template rendering is not verified here; we focus on status codes,
// headers, and error paths.
func setupPageRouter(h *PageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Actor())

	tmpl := template.Must(template.New("").Parse(
		`{{define "upgrade/list.html"}}list:{{len .Requests}}{{if .Error}}:{{.Error}}{{end}}{{end}}` +
			`{{define "upgrade/detail.html"}}detail:{{.Request.Username}}{{end}}` +
			`{{define "errors/400.html"}}400{{end}}` +
			`{{define "errors/404.html"}}404{{end}}` +
			`{{define "errors/500.html"}}500{{end}}`,
	))
	r.SetHTMLTemplate(tmpl)

	r.GET("/upgrade-requests", h.ListPage)
	r.GET("/upgrade-requests/:id", h.DetailPage)
	r.POST("/upgrade-requests/:id/approve", h.ApproveHTMX)
	r.POST("/upgrade-requests/:id/reject", h.RejectHTMX)

	return r
}

// parseToast decodes the HX-Trigger header and returns the showToast payload.
func parseToast(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	trigger := w.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("expected HX-Trigger header to be set")
	}
	var data map[string]map[string]string
	if err := json.Unmarshal([]byte(trigger), &data); err != nil {
		t.Fatalf("parse HX-Trigger: %v", err)
	}
	toast, ok := data["showToast"]
	if !ok {
		t.Fatal("expected showToast in HX-Trigger")
	}
	return toast
}

func TestListPage(t *testing.T) {
	svc := newMockService()
	svc.add(domain.UpgradeRequest{Username: "satoshi"})
	svc.add(domain.UpgradeRequest{Username: "hal"})
	r := setupPageRouter(NewPageHandler(svc))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/upgrade-requests", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d; want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "list:2") {
		t.Errorf("body=%q; want both requests rendered", w.Body.String())
	}
}

func TestListPage_Search(t *testing.T) {
	svc := newMockService()
	svc.add(domain.UpgradeRequest{Username: "satoshi"})
	svc.add(domain.UpgradeRequest{Username: "hal"})
	r := setupPageRouter(NewPageHandler(svc))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/upgrade-requests?q=satoshi", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d; want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "list:1") {
		t.Errorf("body=%q; want single search match rendered", w.Body.String())
	}
}

func TestListPage_SearchNoMatch(t *testing.T) {
	svc := newMockService()
	r := setupPageRouter(NewPageHandler(svc))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/upgrade-requests?q=nobody", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d; want 200 with empty results", w.Code)
	}
	if !strings.Contains(w.Body.String(), "list:0") {
		t.Errorf("body=%q; want empty list with message", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "no upgrade requests match the search") {
		t.Errorf("body=%q; want the not-found message rendered", w.Body.String())
	}
}

func TestListPage_ServiceError(t *testing.T) {
	svc := newMockService()
	svc.listErr = domain.ErrInternal
	r := setupPageRouter(NewPageHandler(svc))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/upgrade-requests", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d; want 500", w.Code)
	}
}

func TestDetailPage(t *testing.T) {
	svc := newMockService()
	svc.add(domain.UpgradeRequest{Username: "satoshi"})
	r := setupPageRouter(NewPageHandler(svc))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/upgrade-requests/1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d; want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "detail:satoshi") {
		t.Errorf("body=%q; want request detail rendered", w.Body.String())
	}
}

func TestDetailPage_NotFound(t *testing.T) {
	r := setupPageRouter(NewPageHandler(newMockService()))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/upgrade-requests/99", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d; want 404", w.Code)
	}
}

func TestDetailPage_InvalidID(t *testing.T) {
	r := setupPageRouter(NewPageHandler(newMockService()))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/upgrade-requests/abc", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d; want 400", w.Code)
	}
}

func TestApproveHTMX_Success(t *testing.T) {
	svc := newMockService()
	svc.add(domain.UpgradeRequest{Username: "satoshi"})
	r := setupPageRouter(NewPageHandler(svc))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upgrade-requests/1/approve", nil)
	req.Header.Set("X-Admin-User", "reviewer1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d; want 200", w.Code)
	}
	if got := w.Header().Get("HX-Redirect"); got != "/upgrade-requests" {
		t.Errorf("HX-Redirect=%q; want /upgrade-requests", got)
	}
	toast := parseToast(t, w)
	if toast["type"] != "success" {
		t.Errorf("toast type=%q; want success", toast["type"])
	}
	if svc.lastReviewer != "reviewer1" {
		t.Errorf("reviewer=%q; want reviewer1", svc.lastReviewer)
	}
}

func TestApproveHTMX_Conflict(t *testing.T) {
	svc := newMockService()
	svc.add(domain.UpgradeRequest{Username: "satoshi"})
	svc.approveErr = domain.NewAppError(domain.CodeConflict, "request already reviewed", nil)
	r := setupPageRouter(NewPageHandler(svc))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upgrade-requests/1/approve", nil)
	r.ServeHTTP(w, req)

	if got := w.Header().Get("HX-Redirect"); got != "" {
		t.Errorf("HX-Redirect=%q; want none on error", got)
	}
	if got := w.Header().Get("HX-Reswap"); got != "none" {
		t.Errorf("HX-Reswap=%q; want none", got)
	}
	toast := parseToast(t, w)
	if toast["type"] != "error" {
		t.Errorf("toast type=%q; want error", toast["type"])
	}
	if toast["message"] != "request already reviewed" {
		t.Errorf("toast message=%q; want the conflict message", toast["message"])
	}
}

func TestApproveHTMX_UpstreamUnavailable(t *testing.T) {
	svc := newMockService()
	svc.add(domain.UpgradeRequest{Username: "satoshi"})
	svc.approveErr = domain.NewAppError(domain.CodeUnavailable, "upstream request failed", nil)
	r := setupPageRouter(NewPageHandler(svc))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upgrade-requests/1/approve", nil)
	r.ServeHTTP(w, req)

	toast := parseToast(t, w)
	if toast["message"] != "Approval failed, please try again" {
		t.Errorf("toast message=%q; unavailable details must not leak to the page", toast["message"])
	}
}

func TestRejectHTMX_Success(t *testing.T) {
	svc := newMockService()
	svc.add(domain.UpgradeRequest{Username: "satoshi"})
	r := setupPageRouter(NewPageHandler(svc))

	form := url.Values{}
	form.Set("reason", "incomplete documents")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upgrade-requests/1/reject", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Admin-User", "reviewer2")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d; want 200", w.Code)
	}
	if got := w.Header().Get("HX-Redirect"); got != "/upgrade-requests" {
		t.Errorf("HX-Redirect=%q; want /upgrade-requests", got)
	}
	if svc.lastReason != "incomplete documents" {
		t.Errorf("reason=%q; want incomplete documents", svc.lastReason)
	}
}

func TestRejectHTMX_MissingReason(t *testing.T) {
	svc := newMockService()
	svc.add(domain.UpgradeRequest{Username: "satoshi"})
	r := setupPageRouter(NewPageHandler(svc))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upgrade-requests/1/reject", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("HX-Redirect"); got != "" {
		t.Errorf("HX-Redirect=%q; want none when reason missing", got)
	}
	toast := parseToast(t, w)
	if toast["type"] != "error" {
		t.Errorf("toast type=%q; want error", toast["type"])
	}
	if svc.lastReason != "" {
		t.Error("service must not be called without a reason")
	}
}

func TestApproveHTMX_InvalidID(t *testing.T) {
	r := setupPageRouter(NewPageHandler(newMockService()))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upgrade-requests/abc/approve", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d; want 200 with toast", w.Code)
	}
	toast := parseToast(t, w)
	if toast["type"] != "error" {
		t.Errorf("toast type=%q; want error", toast["type"])
	}
}

func Test_safePageErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{"not found", domain.NewAppError(domain.CodeNotFound, "request not found", nil), "fallback", "request not found"},
		{"conflict", domain.NewAppError(domain.CodeConflict, "already reviewed", nil), "fallback", "already reviewed"},
		{"validation", domain.NewAppError(domain.CodeValidation, "reason required", nil), "fallback", "reason required"},
		{"internal hides details", domain.NewAppError(domain.CodeInternal, "db connection lost", nil), "fallback", "fallback"},
		{"unavailable hides details", domain.NewAppError(domain.CodeUnavailable, "dial tcp: refused", nil), "fallback", "fallback"},
		{"plain error", errors.New("boom"), "fallback", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := safePageErrorMessage(tt.err, tt.fallback); got != tt.want {
				t.Errorf("got %q; want %q", got, tt.want)
			}
		})
	}
}
