package upgrade

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lnflash/flash-admin-console/internal/domain"
	"github.com/lnflash/flash-admin-console/internal/middleware"
	"github.com/lnflash/flash-admin-console/internal/pkg"
)

// PageHandler handles page rendering and htmx endpoints for upgrade review.
type PageHandler struct {
	svc domain.UpgradeService
}

// NewPageHandler creates a PageHandler with the given service.
func NewPageHandler(svc domain.UpgradeService) *PageHandler {
	return &PageHandler{svc: svc}
}

// ListPage renders the upgrade request list with pagination. When a search
// query is present it renders the matching requests instead.
// GET /upgrade-requests
func (h *PageHandler) ListPage(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query != "" {
		h.searchPage(c, query)
		return
	}

	req := pkg.ParsePageRequest(c)

	result, err := h.svc.ListRequests(c.Request.Context(), req)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "errors/500.html", gin.H{})
		return
	}

	c.HTML(http.StatusOK, "upgrade/list.html", gin.H{
		"Requests":   result.Items,
		"Pagination": result,
		"BaseURL":    "/upgrade-requests",
		"CSRFToken":  middleware.GetCSRFToken(c),
	})
}

// searchPage renders search results in the list layout without pagination.
func (h *PageHandler) searchPage(c *gin.Context, query string) {
	items, err := h.svc.SearchRequests(c.Request.Context(), query)
	if err != nil {
		if domain.IsNotFound(err) || domain.IsValidation(err) {
			c.HTML(http.StatusOK, "upgrade/list.html", gin.H{
				"Requests":  []domain.UpgradeRequest{},
				"Query":     query,
				"BaseURL":   "/upgrade-requests",
				"Error":     safePageErrorMessage(err, "Search failed, please try again"),
				"CSRFToken": middleware.GetCSRFToken(c),
			})
			return
		}
		c.HTML(http.StatusInternalServerError, "errors/500.html", gin.H{})
		return
	}

	c.HTML(http.StatusOK, "upgrade/list.html", gin.H{
		"Requests":  items,
		"Query":     query,
		"BaseURL":   "/upgrade-requests",
		"CSRFToken": middleware.GetCSRFToken(c),
	})
}

// DetailPage renders a single upgrade request for review.
// GET /upgrade-requests/:id
func (h *PageHandler) DetailPage(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.HTML(http.StatusBadRequest, "errors/400.html", gin.H{})
		return
	}

	req, err := h.svc.GetRequest(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			c.HTML(http.StatusNotFound, "errors/404.html", gin.H{})
			return
		}
		c.HTML(http.StatusInternalServerError, "errors/500.html", gin.H{})
		return
	}

	c.HTML(http.StatusOK, "upgrade/detail.html", gin.H{
		"Request":   req,
		"CSRFToken": middleware.GetCSRFToken(c),
	})
}

// ApproveHTMX approves a request via htmx and redirects back to the list.
// POST /upgrade-requests/:id/approve
func (h *PageHandler) ApproveHTMX(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.Header("HX-Reswap", "none")
		setShowToastHeader(c, "Invalid request ID", "error")
		c.Status(http.StatusOK)
		return
	}

	if _, err := h.svc.Approve(c.Request.Context(), id, middleware.GetActor(c)); err != nil {
		c.Header("HX-Reswap", "none")
		setShowToastHeader(c, safePageErrorMessage(err, "Approval failed, please try again"), "error")
		c.Status(http.StatusOK)
		return
	}

	setShowToastHeader(c, "Upgrade request approved", "success")
	c.Header("HX-Redirect", "/upgrade-requests")
	c.Status(http.StatusOK)
}

// RejectHTMX rejects a request via htmx form submission.
// POST /upgrade-requests/:id/reject
func (h *PageHandler) RejectHTMX(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.Header("HX-Reswap", "none")
		setShowToastHeader(c, "Invalid request ID", "error")
		c.Status(http.StatusOK)
		return
	}

	var body RejectRequest
	if err := c.ShouldBind(&body); err != nil {
		slog.Debug("reject upgrade request: bind error", "error", err, "id", id)
		c.Header("HX-Reswap", "none")
		setShowToastHeader(c, "A rejection reason is required", "error")
		c.Status(http.StatusOK)
		return
	}

	if _, err := h.svc.Reject(c.Request.Context(), id, body.Reason, middleware.GetActor(c)); err != nil {
		c.Header("HX-Reswap", "none")
		setShowToastHeader(c, safePageErrorMessage(err, "Rejection failed, please try again"), "error")
		c.Status(http.StatusOK)
		return
	}

	setShowToastHeader(c, "Upgrade request rejected", "success")
	c.Header("HX-Redirect", "/upgrade-requests")
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
// Only messages from user-facing error codes are returned; anything else
// falls back to a generic message so technical details never reach the page.
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
