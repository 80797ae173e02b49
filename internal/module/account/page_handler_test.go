package account

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lnflash/flash-admin-console/internal/domain"
)

// setupPageRouter creates a gin engine with stub templates for page handler
// testing.
func setupPageRouter(h *PageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	tmpl := template.Must(template.New("").Parse(
		`{{define "account/lookup.html"}}lookup{{if .Account}}:{{.Account.Username}}{{end}}{{if .Error}}:{{.Error}}{{end}}{{end}}` +
			`{{define "account/detail.html"}}detail:{{.Account.Username}}{{end}}` +
			`{{define "errors/404.html"}}404{{end}}` +
			`{{define "errors/500.html"}}500{{end}}`,
	))
	r.SetHTMLTemplate(tmpl)

	r.GET("/accounts", h.LookupPage)
	r.GET("/accounts/:id", h.DetailPage)
	r.POST("/accounts/:id/level", h.UpdateLevelHTMX)

	return r
}

func TestLookupPage_NoQuery(t *testing.T) {
	r := setupPageRouter(NewPageHandler(newMockService()))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/accounts", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d; want 200", w.Code)
	}
	if w.Body.String() != "lookup" {
		t.Errorf("body=%q; want bare lookup form", w.Body.String())
	}
}

func TestLookupPage_Found(t *testing.T) {
	svc := newMockService()
	svc.add(domain.Account{
		ID:       "acct-1",
		Username: "satoshi",
		Owner:    domain.AccountOwner{Phone: "+18765551234"},
	})
	r := setupPageRouter(NewPageHandler(svc))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/accounts?phone=%2B18765551234", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d; want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "lookup:satoshi") {
		t.Errorf("body=%q; want the account rendered", w.Body.String())
	}
}

func TestLookupPage_NotFoundShowsMessage(t *testing.T) {
	r := setupPageRouter(NewPageHandler(newMockService()))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/accounts?phone=%2B18765550000", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d; want 200 with inline message", w.Code)
	}
	if !strings.Contains(w.Body.String(), "account not found") {
		t.Errorf("body=%q; want the not-found message", w.Body.String())
	}
}

func TestLookupPage_UnavailableHidesDetails(t *testing.T) {
	svc := newMockService()
	svc.getErr = domain.NewAppError(domain.CodeUnavailable, "dial tcp: refused", nil)
	r := setupPageRouter(NewPageHandler(svc))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/accounts?phone=%2B18765551234", nil)
	r.ServeHTTP(w, req)

	if strings.Contains(w.Body.String(), "dial tcp") {
		t.Errorf("body=%q; transport details must not leak to the page", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Account lookup failed") {
		t.Errorf("body=%q; want the fallback message", w.Body.String())
	}
}

func TestDetailPage(t *testing.T) {
	svc := newMockService()
	svc.add(domain.Account{ID: "acct-1", Username: "satoshi"})
	r := setupPageRouter(NewPageHandler(svc))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/accounts/acct-1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d; want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "detail:satoshi") {
		t.Errorf("body=%q; want account detail", w.Body.String())
	}
}

func TestDetailPage_NotFound(t *testing.T) {
	r := setupPageRouter(NewPageHandler(newMockService()))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/accounts/missing", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d; want 404", w.Code)
	}
}

func TestUpdateLevelHTMX_Success(t *testing.T) {
	svc := newMockService()
	svc.add(domain.Account{ID: "acct-1", Level: domain.LevelOne})
	r := setupPageRouter(NewPageHandler(svc))

	form := url.Values{}
	form.Set("level", "TWO")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/accounts/acct-1/level", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d; want 200", w.Code)
	}
	if got := w.Header().Get("HX-Redirect"); got != "/accounts/acct-1" {
		t.Errorf("HX-Redirect=%q; want /accounts/acct-1", got)
	}

	var data map[string]map[string]string
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &data); err != nil {
		t.Fatalf("parse HX-Trigger: %v", err)
	}
	if data["showToast"]["type"] != "success" {
		t.Errorf("toast=%v; want success", data["showToast"])
	}
}

func TestUpdateLevelHTMX_InvalidLevel(t *testing.T) {
	svc := newMockService()
	svc.add(domain.Account{ID: "acct-1"})
	r := setupPageRouter(NewPageHandler(svc))

	form := url.Values{}
	form.Set("level", "NINE")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/accounts/acct-1/level", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("HX-Redirect"); got != "" {
		t.Errorf("HX-Redirect=%q; want none on error", got)
	}
	if got := w.Header().Get("HX-Reswap"); got != "none" {
		t.Errorf("HX-Reswap=%q; want none", got)
	}
	if svc.lastLevel != "" {
		t.Error("service must not be called with an invalid level")
	}
}
