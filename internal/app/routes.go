package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/crudbase/internal/middleware"
	"github.com/simp-lee/crudbase/internal/notification"
	"github.com/simp-lee/crudbase/internal/token"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules []Module
	DB      *gorm.DB
	Tokens  *token.Manager
}

// RegisterRoutes registers all application routes on the given gin.Engine.
//
// Under /api/v1 every module gets two route groups: a public one carrying
// only the audit middleware, and an authenticated one where a bearer token
// is required before audit info is captured.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}
	if deps.Tokens == nil {
		return errors.New("token manager is required")
	}

	r.GET("/health", healthHandler(deps.DB))

	api := r.Group("/api/v1")

	public := api.Group("")
	public.Use(middleware.Audit())

	authed := api.Group("")
	authed.Use(middleware.Auth(deps.Tokens), middleware.Audit())

	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(public, authed)
	}

	r.NoRoute(noRouteHandler())

	return nil
}

// healthHandler returns a handler that pings the database and reports status.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		status := "ok"
		code := http.StatusOK

		ping := func() error {
			if db == nil {
				return errors.New("database not configured")
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			defer cancel()
			return sqlDB.PingContext(ctx)
		}

		if err := ping(); err != nil {
			dbStatus = "error"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbStatus,
			},
		})
	}
}

// noRouteHandler returns a 404 in the same notice-list shape as every other
// failure response.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		nm := notification.NewManager()
		nm.AddTyped("not found", notification.NotFound)
		c.JSON(http.StatusNotFound, nm.List())
	}
}
