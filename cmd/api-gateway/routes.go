package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/Ragul198/Event/internal/handler"
	"github.com/Ragul198/Event/internal/middleware"
	"github.com/Ragul198/Event/internal/service"
	"github.com/Ragul198/Event/pkg/config"
)

type routeDeps struct {
	gate        *service.AuthzService
	limiter     *middleware.RateLimiter
	logger      *zap.Logger
	uploadsDir  string
	auth        *handler.AuthHandler
	events      *handler.EventHandler
	students    *handler.StudentHandler
	adminEvents *handler.AdminEventHandler
	dashboard   *handler.DashboardHandler
	metrics     *handler.MetricsHandler
}

func registerRoutes(r *gin.Engine, cfg *config.Config, d routeDeps) {
	r.GET("/health", d.metrics.Health)
	r.GET("/ready", d.metrics.Ready)
	r.GET("/metrics", d.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if d.uploadsDir != "" {
		r.Static("/uploads", d.uploadsDir)
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/auth/login", d.auth.Login)
	api.GET("/exports/download", d.dashboard.Download)

	user := api.Group("")
	user.Use(middleware.Authenticated(d.gate))
	user.GET("/auth/callback", d.auth.Callback)
	user.POST("/auth/logout", d.auth.Logout)
	user.GET("/auth/events", d.auth.Events)
	user.GET("/me", d.auth.Me)
	user.GET("/events", d.events.List)
	user.GET("/events/:id", d.events.Detail)
	user.GET("/events/:id/registration", d.events.RegistrationStatus)
	user.POST("/events/:id/registration", d.limiter.Handler(), d.events.Register)
	user.GET("/my/events", d.events.MyEvents)
	user.GET("/profile", d.students.Profile)
	user.POST("/profile", d.limiter.Handler(), d.students.Setup)
	user.GET("/profile/options", d.students.Options)

	admin := api.Group("/admin")
	admin.Use(middleware.Admin(d.gate))
	admin.GET("/stats", d.dashboard.Stats)
	admin.GET("/students", d.students.Directory)
	admin.GET("/events", d.adminEvents.List)
	admin.GET("/events/:id/form", d.adminEvents.Form)
	admin.POST("/events", middleware.Audit(d.logger, "event.create"), d.adminEvents.Create)
	admin.PUT("/events/:id", middleware.Audit(d.logger, "event.update"), d.adminEvents.Update)
	admin.DELETE("/events/:id", middleware.Audit(d.logger, "event.delete"), d.adminEvents.Delete)
	admin.GET("/events/:id/registrations", d.dashboard.Roster)
	admin.POST("/events/:id/registrations/export", middleware.Audit(d.logger, "roster.export"), d.dashboard.Export)
	admin.DELETE("/registrations/:id", middleware.Audit(d.logger, "registration.delete"), d.dashboard.RemoveRegistration)
}
