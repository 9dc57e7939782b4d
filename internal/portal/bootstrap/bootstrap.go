// Copyright 2026 Key Portal Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/keyportal/keyportal/internal/pkg/cronrun"
	"github.com/keyportal/keyportal/internal/pkg/crs"
	"github.com/keyportal/keyportal/internal/pkg/notify"
	"github.com/keyportal/keyportal/internal/portal/config"
	"github.com/keyportal/keyportal/internal/portal/jobs"
	"github.com/keyportal/keyportal/internal/portal/model"
	"github.com/keyportal/keyportal/internal/portal/repo"
	"github.com/keyportal/keyportal/internal/portal/router"
	"github.com/keyportal/keyportal/internal/portal/service"
	"github.com/keyportal/keyportal/pkg/cache"
	"github.com/keyportal/keyportal/pkg/database"
	"github.com/keyportal/keyportal/pkg/http/middleware"
	"github.com/keyportal/keyportal/pkg/log"
	"github.com/keyportal/keyportal/pkg/metrics"
	"github.com/keyportal/keyportal/pkg/safe"
	"github.com/keyportal/keyportal/pkg/shutdown"
)

// App bundles every long-lived component of the portal process.
type App struct {
	HttpApp       *fiber.App
	MetricsServer *metrics.Server
	Runner        *cronrun.Runner
	AppConf       *config.AppConfig
	Repos         *repo.Repositories
	ShutdownMgr   *shutdown.Manager
}

// InitApp builds the whole application from a config file.
func InitApp(configFile string) (*App, func(), error) {
	cfg := config.NewConf(configFile)

	if _, err := log.New(&cfg.Log); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	dbManager, err := database.NewManager(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}
	db := database.NewDatabaseAdapter(dbManager)
	if err := migrate(db); err != nil {
		dbManager.Close()
		return nil, nil, fmt.Errorf("migrate schema: %w", err)
	}

	redisClient, err := cache.NewClient(cfg.Redis)
	if err != nil {
		dbManager.Close()
		return nil, nil, fmt.Errorf("init redis: %w", err)
	}

	crsClient := crs.NewClient(cfg.Crs)
	repos := repo.NewRepositories(db)
	sender := notify.NewSender(&cfg.Notify, repos.Notifications)

	collector := service.NewMetricsCollector()
	userService := service.NewUserService(repos.Users, cfg.Http.Auth.SecretKey, cfg.Http.Auth.AccessExpire)
	keyService := service.NewKeyService(crsClient, repos.ApiKeys)
	statsService := service.NewStatsService(crsClient, repos.ApiKeys)
	alertService := service.NewAlertService(repos.AlertRules, repos.AlertRecords, sender)
	expirationService := service.NewExpirationService(repos.Reminders, sender, sender.Channels())
	healthService := service.NewHealthService(
		service.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.Database().WithContext(ctx).DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
		service.PingFunc(redisClient.Ping),
		service.PingFunc(crsClient.Ping),
		repos.HealthChecks,
	)

	metricsServer := metrics.NewServer(cfg.Metrics)
	registry := metricsServer.GetRegistry()
	if err := middleware.RegisterHttpMetrics(registry); err != nil {
		log.Errorw("failed to register http metrics", "error", err)
	}
	if err := metrics.RegisterCronMetrics(registry); err != nil {
		log.Errorw("failed to register cron metrics", "error", err)
	}

	runner := cronrun.NewRunner(repos.CronJobLogs)
	for _, job := range []*cronrun.Job{
		jobs.NewAlertCheckJob(alertService, collector),
		jobs.NewMonitorJob(healthService, collector),
		jobs.NewExpirationCheckJob(repos.ApiKeys, expirationService),
	} {
		if err := runner.Register(job); err != nil {
			dbManager.Close()
			redisClient.Close()
			return nil, nil, fmt.Errorf("register job %s: %w", job.Name, err)
		}
	}

	httpApp := fiber.New(fiber.Config{
		AppName:      "keyportal",
		BodyLimit:    cfg.Http.BodyLimit,
		ReadTimeout:  time.Duration(cfg.Http.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Http.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Http.IdleTimeout) * time.Second,
	})
	rt := router.NewRouter(cfg, userService, keyService, statsService, alertService,
		healthService, runner, repos.CronJobLogs, collector)
	rt.RegisterRoutes(httpApp)

	app := &App{
		HttpApp:       httpApp,
		MetricsServer: metricsServer,
		Runner:        runner,
		AppConf:       cfg,
		Repos:         repos,
		ShutdownMgr:   shutdown.NewManager(),
	}

	cleanup := func() {
		log.Info("Stopping cron runner...")
		runner.StopAll()

		if metricsServer != nil {
			log.Info("Shutting down metrics server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Stop(shutdownCtx); err != nil {
				log.Errorw("Failed to stop metrics server", "error", err)
			}
		}

		if err := redisClient.Close(); err != nil {
			log.Errorw("Failed to close redis client", "error", err)
		}
		if err := dbManager.Close(); err != nil {
			log.Errorw("Failed to close database", "error", err)
		}
	}
	return app, cleanup, nil
}

// migrate keeps the portal-owned tables in sync with the models.
func migrate(db database.IDatabase) error {
	return db.Database().AutoMigrate(
		&model.User{},
		&model.ApiKey{},
		&model.ExpirationReminder{},
		&model.CronJobLog{},
		&model.AlertRule{},
		&model.AlertRecord{},
		&model.SystemHealthCheck{},
		&model.Notification{},
	)
}

// Run starts the servers and blocks until a shutdown signal arrives.
func Run(app *App, cleanup func()) {
	appConf := app.AppConf

	if app.MetricsServer != nil {
		if err := app.MetricsServer.Start(); err != nil {
			log.Errorw("Metrics server failed", "error", err)
		}
	}

	app.Runner.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	safe.Go(func() {
		addr := fmt.Sprintf("%s:%d", appConf.Http.Host, appConf.Http.Port)
		log.Infow("HTTP listener started", "address", addr)
		if err := app.HttpApp.Listen(addr); err != nil {
			log.Errorw("HTTP listener failed", "address", addr, "error", err)
		}
	})

	select {
	case sig := <-quit:
		log.Infow("Received OS signal, shutting down gracefully...", "signal", sig)
		app.ShutdownMgr.Shutdown()
	case <-app.ShutdownMgr.Wait():
		log.Info("Received shutdown request, shutting down gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(appConf.Http.ShutdownTimeout)*time.Second)
	defer shutdownCancel()
	if err := app.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	} else {
		log.Info("HTTP server shut down gracefully")
	}

	cleanup()
	log.Info("Server shutdown complete")
}
