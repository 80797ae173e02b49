package alert

import "github.com/gin-gonic/gin"

// Module implements the app.Module interface for broadcast alerts.
type Module struct {
	handler     *Handler
	pageHandler *PageHandler
}

// NewModule creates the alert module with the given handlers.
// Panics if h or ph is nil.
func NewModule(h *Handler, ph *PageHandler) *Module {
	if h == nil {
		panic("alert.NewModule: handler must not be nil")
	}
	if ph == nil {
		panic("alert.NewModule: pageHandler must not be nil")
	}
	return &Module{handler: h, pageHandler: ph}
}

// RegisterRoutes registers alert API and page routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	// API routes
	api.POST("/alerts", m.handler.Send)
	api.GET("/alerts", m.handler.ListRecent)

	// Page routes
	pages.GET("/alerts", m.pageHandler.ComposePage)
	pages.POST("/alerts", m.pageHandler.SendHTMX)
}
