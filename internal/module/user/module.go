package user

import "github.com/gin-gonic/gin"

// Module implements the app.Module interface for the user domain.
type Module struct {
	handler *Handler
}

// NewModule creates the user module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("user.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the user routes. The registration and both
// authentication endpoints are public; everything else requires a bearer
// token.
func (m *Module) RegisterRoutes(public *gin.RouterGroup, authed *gin.RouterGroup) {
	public.POST("/users", m.handler.Register)
	public.POST("/users/auth", m.handler.Authenticate)
	public.POST("/users/auth/refresh", m.handler.Refresh)

	authed.GET("/users/ping", m.handler.Ping)
	authed.GET("/users", m.handler.List)
	authed.GET("/users/by-email", m.handler.Get)
	authed.POST("/users/deactivate", m.handler.Deactivate)
	authed.POST("/users/activate", m.handler.Activate)
	authed.DELETE("/users", m.handler.Delete)
}
