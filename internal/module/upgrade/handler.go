package upgrade

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lnflash/flash-admin-console/internal/domain"
	"github.com/lnflash/flash-admin-console/internal/middleware"
	"github.com/lnflash/flash-admin-console/internal/pkg"
)

// Handler handles REST API requests for upgrade request review.
type Handler struct {
	svc domain.UpgradeService
}

// NewHandler creates a Handler with the given service.
func NewHandler(svc domain.UpgradeService) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/v1/upgrade-requests.
func (h *Handler) List(c *gin.Context) {
	req := pkg.ParsePageRequest(c)

	result, err := h.svc.ListRequests(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Search handles GET /api/v1/upgrade-requests/search?q=.
func (h *Handler) Search(c *gin.Context) {
	items, err := h.svc.SearchRequests(c.Request.Context(), c.Query("q"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, items)
}

// Get handles GET /api/v1/upgrade-requests/:id.
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

// Approve handles POST /api/v1/upgrade-requests/:id/approve.
func (h *Handler) Approve(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	req, err := h.svc.Approve(c.Request.Context(), id, middleware.GetActor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, req)
}

// Reject handles POST /api/v1/upgrade-requests/:id/reject.
func (h *Handler) Reject(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	var body RejectRequest
	if !pkg.BindAndValidate(c, &body) {
		return
	}

	req, err := h.svc.Reject(c.Request.Context(), id, body.Reason, middleware.GetActor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, req)
}

// parseID parses the :id route parameter as a positive integer.
func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
