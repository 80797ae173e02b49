package upgrade

import "github.com/gin-gonic/gin"

// Module implements the app.Module interface for upgrade request review.
type Module struct {
	handler     *Handler
	pageHandler *PageHandler
}

// NewModule creates the upgrade module with the given handlers.
// Panics if h or ph is nil.
func NewModule(h *Handler, ph *PageHandler) *Module {
	if h == nil {
		panic("upgrade.NewModule: handler must not be nil")
	}
	if ph == nil {
		panic("upgrade.NewModule: pageHandler must not be nil")
	}
	return &Module{handler: h, pageHandler: ph}
}

// RegisterRoutes registers upgrade review API and page routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	// API routes
	api.GET("/upgrade-requests", m.handler.List)
	api.GET("/upgrade-requests/search", m.handler.Search)
	api.GET("/upgrade-requests/:id", m.handler.Get)
	api.POST("/upgrade-requests/:id/approve", m.handler.Approve)
	api.POST("/upgrade-requests/:id/reject", m.handler.Reject)

	// Page routes
	pages.GET("/upgrade-requests", m.pageHandler.ListPage)
	pages.GET("/upgrade-requests/:id", m.pageHandler.DetailPage)
	pages.POST("/upgrade-requests/:id/approve", m.pageHandler.ApproveHTMX)
	pages.POST("/upgrade-requests/:id/reject", m.pageHandler.RejectHTMX)
}
