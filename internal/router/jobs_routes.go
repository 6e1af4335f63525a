package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/alumni-connect/internal/handler"
	"github.com/iliyamo/alumni-connect/internal/middleware"
	"github.com/iliyamo/alumni-connect/internal/model"
)

// RegisterJobs registers opportunity routes under /api/jobs and the
// application workflow under /api/job-applications.  The public listing is
// cached; every successful write drops the cached listings.
func RegisterJobs(e *echo.Echo, h *handler.OpportunityHandler, opt Options) {
	auth := middleware.JWTAuth(opt.JWTSecret)
	alumni := middleware.RequireRole(model.RoleAlumni)
	student := middleware.RequireRole(model.RoleStudent)
	invalidate := middleware.InvalidateCache(opt.Cache, opt.Redis, groupJobs)

	jobs := e.Group("/api/jobs")
	jobs.GET("", h.List, middleware.NewRedisCache(opt.Cache, opt.Redis, groupJobs))
	jobs.POST("", h.Create, auth, alumni, invalidate)
	jobs.GET("/alumni", h.ListMine, auth, alumni)
	jobs.GET("/:id", h.Get)
	jobs.DELETE("/:id", h.Delete, auth, alumni, invalidate)
	jobs.POST("/:id/apply", h.Apply, auth, student, invalidate)

	apps := e.Group("/api/job-applications", auth)
	apps.POST("/:id/apply", h.Apply, student, invalidate)
	apps.PUT("/update-status", h.UpdateApplicationStatus, alumni)
	apps.GET("/student", h.StudentApplications, student)
	apps.GET("/alumni", h.AlumniApplications, alumni)
}
