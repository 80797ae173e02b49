package alert

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lnflash/flash-admin-console/internal/domain"
	"github.com/lnflash/flash-admin-console/internal/middleware"
)

// PageHandler handles page rendering and htmx endpoints for the broadcast
// composer.
type PageHandler struct {
	svc domain.AlertService
}

// NewPageHandler creates a PageHandler with the given service.
func NewPageHandler(svc domain.AlertService) *PageHandler {
	return &PageHandler{svc: svc}
}

// ComposePage renders the broadcast composer with the recent send history.
// GET /alerts
func (h *PageHandler) ComposePage(c *gin.Context) {
	recent, err := h.svc.ListRecent(c.Request.Context(), 0)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "errors/500.html", gin.H{})
		return
	}

	c.HTML(http.StatusOK, "alert/compose.html", gin.H{
		"Recent":    recent,
		"CSRFToken": middleware.GetCSRFToken(c),
	})
}

// SendHTMX broadcasts an alert via htmx form submission.
// POST /alerts
func (h *PageHandler) SendHTMX(c *gin.Context) {
	var body SendAlertRequest
	if err := c.ShouldBind(&body); err != nil {
		slog.Debug("send alert: bind error", "error", err)
		c.Header("HX-Reswap", "none")
		setShowToastHeader(c, "Title, message, and severity are required", "error")
		c.Status(http.StatusOK)
		return
	}

	if _, err := h.svc.Send(c.Request.Context(), body.Title, body.Message, body.Severity, middleware.GetActor(c)); err != nil {
		c.Header("HX-Reswap", "none")
		setShowToastHeader(c, safePageErrorMessage(err, "Broadcast failed, please try again"), "error")
		c.Status(http.StatusOK)
		return
	}

	setShowToastHeader(c, "Alert broadcast to all users", "success")
	c.Header("HX-Redirect", "/alerts")
	c.Status(http.StatusOK)
}

// setShowToastHeader sets the HX-Trigger response header with a showToast event.
func setShowToastHeader(c *gin.Context, message, toastType string) {
	trigger, _ := json.Marshal(map[string]any{
		"showToast": map[string]string{
			"message": message,
			"type":    toastType,
		},
	})
	c.Header("HX-Trigger", string(trigger))
}

// safePageErrorMessage extracts a user-safe error message from an AppError.
func safePageErrorMessage(err error, fallback string) string {
	var appErr *domain.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		switch appErr.Code {
		case domain.CodeNotFound, domain.CodeAlreadyExists, domain.CodeValidation, domain.CodeConflict:
			return appErr.Message
		}
	}
	return fallback
}
