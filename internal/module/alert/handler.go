package alert

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lnflash/flash-admin-console/internal/domain"
	"github.com/lnflash/flash-admin-console/internal/middleware"
	"github.com/lnflash/flash-admin-console/internal/pkg"
)

// Handler handles REST API requests for broadcast alerts.
type Handler struct {
	svc domain.AlertService
}

// NewHandler creates a Handler with the given service.
func NewHandler(svc domain.AlertService) *Handler {
	return &Handler{svc: svc}
}

// Send handles POST /api/v1/alerts.
func (h *Handler) Send(c *gin.Context) {
	var body SendAlertRequest
	if !pkg.BindAndValidate(c, &body) {
		return
	}

	alert, err := h.svc.Send(c.Request.Context(), body.Title, body.Message, body.Severity, middleware.GetActor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, alert)
}

// ListRecent handles GET /api/v1/alerts?limit=.
func (h *Handler) ListRecent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	alerts, err := h.svc.ListRecent(c.Request.Context(), limit)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, alerts)
}
