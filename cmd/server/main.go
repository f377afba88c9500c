// @title           ProjectHub API
// @version         1.0
// @description     Role-based project and task management with notifications and scheduled reminders.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/projecthub/pm-system/internal/api"
	"github.com/projecthub/pm-system/internal/api/handler"
	"github.com/projecthub/pm-system/internal/core/ports"
	"github.com/projecthub/pm-system/internal/core/service"
	"github.com/projecthub/pm-system/internal/infrastructure/db/memory"
	"github.com/projecthub/pm-system/internal/infrastructure/db/mongo"
	"github.com/projecthub/pm-system/internal/infrastructure/db/redis"
	"github.com/projecthub/pm-system/internal/infrastructure/mail"
	"github.com/projecthub/pm-system/internal/pkg/config"
	"github.com/projecthub/pm-system/internal/scheduler"
	"github.com/projecthub/pm-system/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// repositories is the storage backend selected by STORE_DRIVER.
type repositories struct {
	accounts      ports.AccountRepository
	projects      ports.ProjectRepository
	tasks         ports.TaskRepository
	notifications ports.NotificationRepository
	activity      ports.ActivityRepository
	settings      ports.SettingsRepository
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
		File:   cfg.LogFile,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return err
	}

	checks := map[string]handler.Check{}

	repos, closeStore, err := openStore(ctx, cfg, log, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	var dedupCache ports.DedupCache
	if cfg.Redis.Enabled {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			// The store remains authoritative for dedup, so Redis is optional.
			log.Warn().Err(err).Msg("redis unavailable, dedup cache disabled")
		} else {
			defer rdb.Close()
			dedupCache = redis.NewDedupCache(rdb)
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}

	var mailer ports.Mailer = mail.NewLogMailer(log)
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
			Timeout:  cfg.SMTP.Timeout,
		}, log)
	}

	settings := service.NewSettingsService(repos.settings, log)
	activity := service.NewActivityService(repos.activity, repos.accounts, log)
	notifications := service.NewNotificationService(repos.notifications, repos.accounts, settings, mailer,
		service.NewEmailRenderer(cfg.FrontendURL, loc), cfg.SMTP.Timeout, log)
	auth := service.NewAuthService(repos.accounts, settings, activity, cfg.JWTSecret, cfg.TokenTTL, log)
	accounts := service.NewAccountService(repos.accounts, activity, log)
	projects := service.NewProjectService(repos.projects, repos.tasks, repos.accounts, settings, activity, notifications, log)
	tasks := service.NewTaskService(repos.tasks, repos.projects, repos.accounts, settings, activity, notifications, log)
	dedup := service.NewDeduplicator(repos.notifications, dedupCache, loc, log)
	reports := service.NewReportService(repos.projects, repos.tasks, repos.accounts, loc, log)
	sweeps := service.NewSweepService(repos.tasks, repos.projects, repos.accounts, settings, notifications, dedup, loc, log)

	if cfg.Bootstrap.AdminEmail != "" {
		_, created, err := auth.EnsureAdmin(ctx, cfg.Bootstrap.AdminName, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info().Str("email", cfg.Bootstrap.AdminEmail).Msg("bootstrap admin created")
		}
	}

	triggers := scheduler.New(log)
	specs := scheduler.Specs{
		Deadline: cfg.Scheduler.DeadlineSpec,
		Overdue:  cfg.Scheduler.OverdueSpec,
		Weekly:   cfg.Scheduler.WeeklySpec,
	}
	for _, tr := range scheduler.SweepTriggers(sweeps, specs, loc) {
		if err := triggers.Register(tr); err != nil {
			return err
		}
	}
	// Triggers stay registered when disabled so admins can still fire them.
	if cfg.Scheduler.Enabled {
		triggers.Start(ctx)
		defer triggers.StopAll()
	}

	e := api.NewRouter(api.Dependencies{
		Auth:          auth,
		Accounts:      accounts,
		Projects:      projects,
		Tasks:         tasks,
		Notifications: notifications,
		Activity:      activity,
		Settings:      settings,
		Reports:       reports,
		Scheduler:     triggers,
		HealthChecks:  checks,
		JWTSecret:     cfg.JWTSecret,
		Log:           log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger, checks map[string]handler.Check) (*repositories, func(), error) {
	if cfg.StoreDriver == "memory" {
		log.Warn().Msg("using in-memory store, data is lost on restart")
		s := memory.NewStore()
		return &repositories{
			accounts:      s.Accounts(),
			projects:      s.Projects(),
			tasks:         s.Tasks(),
			notifications: s.Notifications(),
			activity:      s.Activity(),
			settings:      s.Settings(),
		}, func() {}, nil
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}

	s := mongo.NewStore(db)
	if err := s.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	checks["mongodb"] = pingMongo(client)

	return &repositories{
		accounts:      s.Accounts,
		projects:      s.Projects,
		tasks:         s.Tasks,
		notifications: s.Notifications,
		activity:      s.Activity,
		settings:      s.Settings,
	}, closeFn, nil
}

func pingMongo(client *mongodriver.Client) handler.Check {
	return func(ctx context.Context) error { return client.Ping(ctx, nil) }
}
