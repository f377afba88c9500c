package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/projecthub/pm-system/internal/api/docs"
	"github.com/projecthub/pm-system/internal/api/handler"
	"github.com/projecthub/pm-system/internal/api/middleware"
	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Auth          ports.AuthService
	Accounts      ports.AccountService
	Projects      ports.ProjectService
	Tasks         ports.TaskService
	Notifications ports.NotificationService
	Activity      ports.ActivityService
	Settings      ports.SettingsService
	Reports       ports.ReportService
	Scheduler     handler.SchedulerControl
	HealthChecks  map[string]handler.Check

	// Metrics receives the HTTP collectors; nil means the default registry.
	Metrics *prometheus.Registry

	JWTSecret string
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Metrics != nil {
		registerer, gatherer = d.Metrics, d.Metrics
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "pm_system",
		Registerer: registerer,
	}))
	e.Use(middleware.Origin())

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(d.Auth)
	accountHandler := handler.NewAccountHandler(d.Accounts)
	projectHandler := handler.NewProjectHandler(d.Projects, d.Tasks)
	taskHandler := handler.NewTaskHandler(d.Tasks)
	notificationHandler := handler.NewNotificationHandler(d.Notifications)
	activityHandler := handler.NewActivityHandler(d.Activity)
	settingsHandler := handler.NewSettingsHandler(d.Settings)
	schedulerHandler := handler.NewSchedulerHandler(d.Scheduler)
	reportHandler := handler.NewReportHandler(d.Reports)

	adminOnly := middleware.RBAC(domain.RoleAdmin)
	staff := middleware.RBAC(domain.RoleAdmin, domain.RoleManager)

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("", middleware.Auth(d.JWTSecret, d.Auth))
	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/me", authHandler.Me)

	users := secured.Group("/users")
	users.GET("", accountHandler.List)
	users.POST("", accountHandler.Create, staff)
	users.GET("/:id", accountHandler.Get)
	users.PUT("/:id", accountHandler.Update)
	users.PUT("/:id/password", accountHandler.ChangePassword)
	users.DELETE("/:id", accountHandler.Deactivate, staff)

	projects := secured.Group("/projects")
	projects.GET("", projectHandler.List)
	projects.POST("", projectHandler.Create, adminOnly)
	projects.GET("/:id", projectHandler.Get)
	projects.PUT("/:id", projectHandler.Update, staff)
	projects.DELETE("/:id", projectHandler.Delete, staff)
	projects.GET("/:id/tasks", projectHandler.Tasks)

	tasks := secured.Group("/tasks")
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create, staff)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete, staff)

	notifications := secured.Group("/notifications")
	notifications.GET("", notificationHandler.List)
	notifications.GET("/unread-count", notificationHandler.UnreadCount)
	notifications.PUT("/read-all", notificationHandler.MarkAllRead)
	notifications.PUT("/:id/read", notificationHandler.MarkRead)
	notifications.DELETE("/:id", notificationHandler.Delete)
	notifications.POST("/test-email", notificationHandler.SendTestEmail, adminOnly)

	activities := secured.Group("/activities")
	activities.GET("", activityHandler.List)
	activities.GET("/stats", activityHandler.Stats, staff)

	secured.GET("/reports", reportHandler.Get, staff)

	settings := secured.Group("/settings")
	settings.GET("/defaults/:kind", settingsHandler.Defaults)
	settings.GET("", settingsHandler.Get, adminOnly)
	settings.PUT("", settingsHandler.Update, adminOnly)
	settings.POST("/reload", settingsHandler.Reload, adminOnly)

	sched := secured.Group("/scheduler", adminOnly)
	sched.GET("", schedulerHandler.Status)
	sched.POST("/:name/run", schedulerHandler.Run)

	return e
}

// requestLogger logs one structured line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
