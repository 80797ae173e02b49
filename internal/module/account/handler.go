package account

import (
	"github.com/gin-gonic/gin"

	"github.com/lnflash/flash-admin-console/internal/domain"
	"github.com/lnflash/flash-admin-console/internal/pkg"
)

// Handler handles REST API requests for account lookup and level management.
type Handler struct {
	svc domain.AccountService
}

// NewHandler creates a Handler with the given service.
func NewHandler(svc domain.AccountService) *Handler {
	return &Handler{svc: svc}
}

// Lookup handles GET /api/v1/accounts/lookup?phone=.
func (h *Handler) Lookup(c *gin.Context) {
	acct, err := h.svc.GetByPhone(c.Request.Context(), c.Query("phone"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, acct)
}

// Get handles GET /api/v1/accounts/:id.
func (h *Handler) Get(c *gin.Context) {
	acct, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, acct)
}

// UpdateLevel handles PUT /api/v1/accounts/:id/level.
func (h *Handler) UpdateLevel(c *gin.Context) {
	var body UpdateLevelRequest
	if !pkg.BindAndValidate(c, &body) {
		return
	}

	acct, err := h.svc.UpdateLevel(c.Request.Context(), c.Param("id"), body.Level)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, acct)
}
