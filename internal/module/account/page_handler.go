package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lnflash/flash-admin-console/internal/domain"
	"github.com/lnflash/flash-admin-console/internal/middleware"
)

// PageHandler handles page rendering and htmx endpoints for account lookup.
type PageHandler struct {
	svc domain.AccountService
}

// NewPageHandler creates a PageHandler with the given service.
func NewPageHandler(svc domain.AccountService) *PageHandler {
	return &PageHandler{svc: svc}
}

// LookupPage renders the account lookup form and, when a phone number is
// given, the matching account.
// GET /accounts
func (h *PageHandler) LookupPage(c *gin.Context) {
	phone := strings.TrimSpace(c.Query("phone"))

	data := gin.H{
		"Phone":     phone,
		"CSRFToken": middleware.GetCSRFToken(c),
	}

	if phone != "" {
		acct, err := h.svc.GetByPhone(c.Request.Context(), phone)
		if err != nil {
			data["Error"] = safePageErrorMessage(err, "Account lookup failed, please try again")
		} else {
			data["Account"] = acct
		}
	}

	c.HTML(http.StatusOK, "account/lookup.html", data)
}

// DetailPage renders one account fetched by its upstream ID.
// GET /accounts/:id
func (h *PageHandler) DetailPage(c *gin.Context) {
	acct, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if domain.IsNotFound(err) {
			c.HTML(http.StatusNotFound, "errors/404.html", gin.H{})
			return
		}
		c.HTML(http.StatusInternalServerError, "errors/500.html", gin.H{})
		return
	}

	c.HTML(http.StatusOK, "account/detail.html", gin.H{
		"Account":   acct,
		"CSRFToken": middleware.GetCSRFToken(c),
	})
}

// UpdateLevelHTMX changes an account's level via htmx form submission.
// POST /accounts/:id/level
func (h *PageHandler) UpdateLevelHTMX(c *gin.Context) {
	var body UpdateLevelRequest
	if err := c.ShouldBind(&body); err != nil {
		c.Header("HX-Reswap", "none")
		setShowToastHeader(c, "Select a valid account level", "error")
		c.Status(http.StatusOK)
		return
	}

	acct, err := h.svc.UpdateLevel(c.Request.Context(), c.Param("id"), body.Level)
	if err != nil {
		c.Header("HX-Reswap", "none")
		setShowToastHeader(c, safePageErrorMessage(err, "Level update failed, please try again"), "error")
		c.Status(http.StatusOK)
		return
	}

	setShowToastHeader(c, "Account level updated to "+acct.Level, "success")
	c.Header("HX-Redirect", "/accounts/"+acct.ID)
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
