package account

import "github.com/gin-gonic/gin"

// Module implements the app.Module interface for account lookup.
type Module struct {
	handler     *Handler
	pageHandler *PageHandler
}

// NewModule creates the account module with the given handlers.
// Panics if h or ph is nil.
func NewModule(h *Handler, ph *PageHandler) *Module {
	if h == nil {
		panic("account.NewModule: handler must not be nil")
	}
	if ph == nil {
		panic("account.NewModule: pageHandler must not be nil")
	}
	return &Module{handler: h, pageHandler: ph}
}

// RegisterRoutes registers account API and page routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	// API routes
	api.GET("/accounts/lookup", m.handler.Lookup)
	api.GET("/accounts/:id", m.handler.Get)
	api.PUT("/accounts/:id/level", m.handler.UpdateLevel)

	// Page routes
	pages.GET("/accounts", m.pageHandler.LookupPage)
	pages.GET("/accounts/:id", m.pageHandler.DetailPage)
	pages.POST("/accounts/:id/level", m.pageHandler.UpdateLevelHTMX)
}
