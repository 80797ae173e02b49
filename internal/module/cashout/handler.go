package cashout

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lnflash/flash-admin-console/internal/domain"
	"github.com/lnflash/flash-admin-console/internal/middleware"
	"github.com/lnflash/flash-admin-console/internal/pkg"
)

// Handler handles REST API requests for cashout review.
type Handler struct {
	svc domain.CashoutService
}

// NewHandler creates a Handler with the given service.
func NewHandler(svc domain.CashoutService) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/v1/cashout-requests.
func (h *Handler) List(c *gin.Context) {
	req := pkg.ParsePageRequest(c)

	result, err := h.svc.ListRequests(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Search handles GET /api/v1/cashout-requests/search?q=.
func (h *Handler) Search(c *gin.Context) {
	items, err := h.svc.SearchRequests(c.Request.Context(), c.Query("q"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, items)
}

// Get handles GET /api/v1/cashout-requests/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	req, err := h.svc.GetRequest(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, req)
}

// Confirm handles POST /api/v1/cashout-requests/:id/confirm.
func (h *Handler) Confirm(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	var body ConfirmRequest
	if !pkg.BindAndValidate(c, &body) {
		return
	}

	req, err := h.svc.ConfirmPayment(c.Request.Context(), id, body.Code, middleware.GetActor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, req)
}

// Document handles GET /api/v1/cashout-requests/:id/document.
func (h *Handler) Document(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	url, err := h.svc.DocumentURL(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, gin.H{"url": url})
}

// parseID parses the :id route parameter as a positive integer.
func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
