package upgrade

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestModuleRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	pages := r.Group("/")

	mod := NewModule(&Handler{}, &PageHandler{})
	mod.RegisterRoutes(api, pages)

	expected := []struct {
		method string
		path   string
	}{
		// API routes
		{http.MethodGet, "/api/v1/upgrade-requests"},
		{http.MethodGet, "/api/v1/upgrade-requests/search"},
		{http.MethodGet, "/api/v1/upgrade-requests/:id"},
		{http.MethodPost, "/api/v1/upgrade-requests/:id/approve"},
		{http.MethodPost, "/api/v1/upgrade-requests/:id/reject"},
		// Page routes
		{http.MethodGet, "/upgrade-requests"},
		{http.MethodGet, "/upgrade-requests/:id"},
		{http.MethodPost, "/upgrade-requests/:id/approve"},
		{http.MethodPost, "/upgrade-requests/:id/reject"},
	}

	registered := make(map[string]bool)
	for _, ri := range r.Routes() {
		registered[ri.Method+":"+ri.Path] = true
	}

	for _, exp := range expected {
		if !registered[exp.method+":"+exp.path] {
			t.Errorf("expected route %s %s to be registered", exp.method, exp.path)
		}
	}
}

func TestNewModule_PanicsOnNilHandler(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewModule() expected panic for nil handler, got none")
		}
	}()

	_ = NewModule(nil, &PageHandler{})
}

func TestNewModule_PanicsOnNilPageHandler(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewModule() expected panic for nil page handler, got none")
		}
	}()

	_ = NewModule(&Handler{}, nil)
}
