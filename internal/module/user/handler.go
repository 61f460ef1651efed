package user

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/crudbase/internal/notification"
	"github.com/simp-lee/crudbase/internal/pkg"
)

// Handler exposes the user service over REST. Every handler creates a fresh
// notification manager, runs the operation, and lets Respond turn the
// accumulated notices into exactly one response.
type Handler struct {
	svc *Service
}

// NewHandler creates a Handler with the given service.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register handles POST /api/v1/users.
func (h *Handler) Register(c *gin.Context) {
	nm := notification.NewManager()

	var req RegisterRequest
	if !pkg.BindAndNotify(c, nm, &req) {
		pkg.Respond(c, nm, nil, nil)
		return
	}

	result := h.svc.Register(c.Request.Context(), nm, req)
	pkg.Respond(c, nm, result, nil)
}

// Authenticate handles POST /api/v1/users/auth.
func (h *Handler) Authenticate(c *gin.Context) {
	nm := notification.NewManager()

	var req AuthByEmailRequest
	if !pkg.BindAndNotify(c, nm, &req) {
		pkg.Respond(c, nm, nil, nil)
		return
	}

	result := h.svc.AuthenticateByEmail(c.Request.Context(), nm, req.Email, req.Password)
	pkg.Respond(c, nm, result, nil)
}

// Refresh handles POST /api/v1/users/auth/refresh.
func (h *Handler) Refresh(c *gin.Context) {
	nm := notification.NewManager()

	var req AuthByRefreshTokenRequest
	if !pkg.BindAndNotify(c, nm, &req) {
		pkg.Respond(c, nm, nil, nil)
		return
	}

	result := h.svc.AuthenticateByRefreshToken(c.Request.Context(), nm, req.Email, req.RefreshToken)
	pkg.Respond(c, nm, result, nil)
}

// Get handles GET /api/v1/users/by-email.
func (h *Handler) Get(c *gin.Context) {
	nm := notification.NewManager()
	result := h.svc.GetByEmail(c.Request.Context(), nm, c.Query("email"))
	pkg.Respond(c, nm, result, nil)
}

// List handles GET /api/v1/users.
func (h *Handler) List(c *gin.Context) {
	nm := notification.NewManager()
	result := h.svc.List(c.Request.Context(), nm, pkg.ParsePageRequest(c))
	pkg.Respond(c, nm, result, nil)
}

// Deactivate handles POST /api/v1/users/deactivate.
func (h *Handler) Deactivate(c *gin.Context) {
	h.bulk(c, h.svc.Deactivate)
}

// Activate handles POST /api/v1/users/activate.
func (h *Handler) Activate(c *gin.Context) {
	h.bulk(c, h.svc.Activate)
}

// Delete handles DELETE /api/v1/users.
func (h *Handler) Delete(c *gin.Context) {
	h.bulk(c, h.svc.Delete)
}

// Ping handles GET /api/v1/users/ping. Reaching it at all proves the bearer
// token was accepted; the body carries liveness figures.
func (h *Handler) Ping(c *gin.Context) {
	nm := notification.NewManager()
	result := h.svc.Status(c.Request.Context(), nm)
	pkg.Respond(c, nm, result, nil)
}

func (h *Handler) bulk(c *gin.Context, op func(ctx context.Context, m *notification.Manager, ids []uuid.UUID)) {
	nm := notification.NewManager()

	var req IDListRequest
	if !pkg.BindAndNotify(c, nm, &req) {
		pkg.Respond(c, nm, nil, nil)
		return
	}

	op(c.Request.Context(), nm, req.IDs)
	pkg.Respond(c, nm, nil, nil)
}
