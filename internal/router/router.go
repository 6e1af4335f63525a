package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/alumni-connect/internal/config"
	"github.com/iliyamo/alumni-connect/internal/handler"
	"github.com/iliyamo/alumni-connect/internal/middleware"
	"github.com/iliyamo/alumni-connect/internal/model"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Opportunities *handler.OpportunityHandler
	Mentorship    *handler.MentorshipHandler
	Workshops     *handler.WorkshopHandler
	Notifications *handler.NotificationHandler
}

// Options carries the settings the route table depends on.  A nil Redis
// client disables caching and rate limiting.
type Options struct {
	JWTSecret string
	UploadDir string
	UploadURL string
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	DB        handler.Pinger
}

// Cache groups.  A write to a group drops every cached listing in it.
const (
	groupJobs      = "jobs"
	groupWorkshops = "workshops"
)

// Register mounts the whole API on e.
func Register(e *echo.Echo, h Handlers, opt Options) {
	RegisterRoutes(e, opt)
	RegisterAuth(e, h.Auth, opt)
	RegisterUsers(e, h.Users, opt)
	RegisterJobs(e, h.Opportunities, opt)
	RegisterMentorship(e, h.Mentorship, opt)
	RegisterWorkshops(e, h.Workshops, opt)
	RegisterNotifications(e, h.Notifications, opt)
}

// RegisterRoutes registers routes that do not require authentication and
// do not belong to a domain group: health, metrics and uploaded files.
func RegisterRoutes(e *echo.Echo, opt Options) {
	e.GET("/healthz", handler.Health(opt.DB))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if opt.UploadDir != "" && opt.UploadURL != "" {
		e.Static(opt.UploadURL, opt.UploadDir)
	}
}

// RegisterAuth registers register/login behind the auth rate limiter and
// the protected /me endpoint.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, opt Options) {
	limiter := middleware.NewTokenBucket(opt.RateLimit.ForAuth(), opt.Redis)
	g := e.Group("/api/auth")
	g.POST("/register", a.Register, limiter)
	g.POST("/login", a.Login, limiter)
	g.GET("/me", a.Me, middleware.JWTAuth(opt.JWTSecret))
}

// RegisterUsers registers profile routes.  Every route needs a token; any
// role may call them.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, opt Options) {
	g := e.Group(
		"/api/users",
		middleware.JWTAuth(opt.JWTSecret),
		middleware.RequireRole(model.RoleStudent, model.RoleAlumni),
	)
	g.GET("/me", u.Profile)
	g.GET("/profile", u.Profile)
	g.PUT("/profile", u.UpdateProfile)
	g.POST("/profile/picture", u.UploadPicture)
	g.GET("/alumni", u.ListAlumni)
	g.GET("/:id", u.Get)
}
