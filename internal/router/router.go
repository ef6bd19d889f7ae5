// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/avelara/seatsync/internal/config"
	"github.com/avelara/seatsync/internal/handler"
	"github.com/avelara/seatsync/internal/middleware"
)

// Handlers groups everything RegisterRoutes needs.
type Handlers struct {
	Events  *handler.EventHandler
	Guests  *handler.GuestHandler
	Tables  *handler.TableHandler
	Seating *handler.SeatingHandler
}

// RegisterRoutes registers all routes on the provided Echo instance.
// Everything under /v1 requires a gateway-resolved identity.  The
// read-heavy roster endpoints sit behind the Redis response cache;
// the bulk mutation endpoints sit behind the rate limiter.  rdb may
// be nil, in which case both middlewares pass through.
func RegisterRoutes(e *echo.Echo, h Handlers, rdb *redis.Client, cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig) {
	// Health endpoint for load balancers and monitoring; no identity required.
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")
	v1.Use(middleware.Identity())

	cache := middleware.NewRosterCache(cacheCfg, rdb)
	limit := middleware.NewTokenBucket(rlCfg, rdb)

	// Events
	v1.POST("/events", h.Events.Create)
	v1.GET("/events", h.Events.List)
	v1.GET("/events/:id", h.Events.Get)
	v1.DELETE("/events/:id", h.Events.Delete)
	v1.POST("/events/:id/reset", h.Events.Reset)

	// Guests
	v1.POST("/events/:id/guests", h.Guests.Create)
	v1.GET("/events/:id/guests", h.Guests.List, cache)
	v1.PATCH("/guests/:id", h.Guests.Update)
	v1.DELETE("/guests/:id", h.Guests.Delete)
	v1.POST("/guests/bulk-delete", h.Guests.BulkDelete, limit)

	// Tables
	v1.POST("/events/:id/tables", h.Tables.Create)
	v1.GET("/events/:id/tables", h.Tables.List, cache)
	v1.PATCH("/tables/:id", h.Tables.Update)
	v1.DELETE("/tables/:id", h.Tables.Delete)

	// Seating engine
	v1.POST("/events/:id/auto-assign", h.Seating.AutoAssign, limit)
	v1.POST("/events/:id/bulk-save", h.Seating.BulkSave, limit)
	v1.GET("/events/:id/guests/find", h.Seating.FindGuest)
	v1.GET("/events/:id/guests/suggest", h.Seating.Suggest, cache)
}
