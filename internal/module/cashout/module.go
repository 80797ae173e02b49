package cashout

import "github.com/gin-gonic/gin"

// Module implements the app.Module interface for cashout review.
type Module struct {
	handler     *Handler
	pageHandler *PageHandler
}

// NewModule creates the cashout module with the given handlers.
// Panics if h or ph is nil.
func NewModule(h *Handler, ph *PageHandler) *Module {
	if h == nil {
		panic("cashout.NewModule: handler must not be nil")
	}
	if ph == nil {
		panic("cashout.NewModule: pageHandler must not be nil")
	}
	return &Module{handler: h, pageHandler: ph}
}

// RegisterRoutes registers cashout review API and page routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	// API routes
	api.GET("/cashout-requests", m.handler.List)
	api.GET("/cashout-requests/search", m.handler.Search)
	api.GET("/cashout-requests/:id", m.handler.Get)
	api.POST("/cashout-requests/:id/confirm", m.handler.Confirm)
	api.GET("/cashout-requests/:id/document", m.handler.Document)

	// Page routes
	pages.GET("/cashout-requests", m.pageHandler.ListPage)
	pages.GET("/cashout-requests/:id", m.pageHandler.DetailPage)
	pages.POST("/cashout-requests/:id/confirm", m.pageHandler.ConfirmHTMX)
	pages.GET("/cashout-requests/:id/document", m.pageHandler.DocumentRedirect)
}
