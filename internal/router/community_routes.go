package router

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/alumni-connect/internal/config"
	"github.com/iliyamo/alumni-connect/internal/handler"
	"github.com/iliyamo/alumni-connect/internal/middleware"
	"github.com/iliyamo/alumni-connect/internal/model"
)

// RegisterMentorship registers the mentorship request workflow.  Students
// create and list their requests; alumni list and decide the ones
// addressed to them.
func RegisterMentorship(e *echo.Echo, h *handler.MentorshipHandler, opt Options) {
	g := e.Group("/api/mentorship", middleware.JWTAuth(opt.JWTSecret))
	student := middleware.RequireRole(model.RoleStudent)
	alumni := middleware.RequireRole(model.RoleAlumni)

	g.POST("/request", h.Request, student)
	g.GET("/student-requests", h.StudentRequests, student)
	g.GET("/mentor-requests", h.MentorRequests, alumni)
	g.PATCH("/:id/status", h.UpdateStatus, alumni)
}

// workshopCacheTTL bounds how long a cached listing may show a status
// computed for an earlier instant, e.g. upcoming after the start time.
const workshopCacheTTL = 15 * time.Second

// capTTL returns cfg with its TTL lowered to limit.  A zero TTL means the
// middleware default, which is longer than any cap used here.
func capTTL(cfg config.CacheConfig, limit time.Duration) config.CacheConfig {
	if cfg.TTL <= 0 || cfg.TTL > limit {
		cfg.TTL = limit
	}
	return cfg
}

// RegisterWorkshops registers workshop routes.  Reads are public and the
// full listing is cached for at most workshopCacheTTL; writes and
// registrations drop the cache.
func RegisterWorkshops(e *echo.Echo, h *handler.WorkshopHandler, opt Options) {
	auth := middleware.JWTAuth(opt.JWTSecret)
	alumni := middleware.RequireRole(model.RoleAlumni)
	student := middleware.RequireRole(model.RoleStudent)
	invalidate := middleware.InvalidateCache(opt.Cache, opt.Redis, groupWorkshops)

	g := e.Group("/api/workshops")
	g.GET("", h.List, middleware.NewRedisCache(capTTL(opt.Cache, workshopCacheTTL), opt.Redis, groupWorkshops))
	g.POST("", h.Create, auth, alumni, invalidate)
	g.GET("/organizer/:id", h.ListByOrganizer)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update, auth, alumni, invalidate)
	g.DELETE("/:id", h.Delete, auth, alumni, invalidate)
	g.POST("/:id/register", h.Register, auth, student, invalidate)
	g.DELETE("/:id/register", h.CancelRegistration, auth, student, invalidate)
}

// RegisterNotifications registers the caller's notification inbox.
func RegisterNotifications(e *echo.Echo, h *handler.NotificationHandler, opt Options) {
	g := e.Group(
		"/api/notifications",
		middleware.JWTAuth(opt.JWTSecret),
		middleware.RequireRole(model.RoleStudent, model.RoleAlumni),
	)
	g.GET("", h.List)
	g.PATCH("/read-all", h.MarkAllRead)
	g.PATCH("/:id/read", h.MarkRead)
}
