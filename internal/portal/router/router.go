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

package router

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/keyportal/keyportal/internal/pkg/cronrun"
	"github.com/keyportal/keyportal/internal/pkg/crs"
	"github.com/keyportal/keyportal/internal/portal/config"
	"github.com/keyportal/keyportal/internal/portal/repo"
	"github.com/keyportal/keyportal/internal/portal/service"
	"github.com/keyportal/keyportal/pkg/http"
	"github.com/keyportal/keyportal/pkg/http/middleware"
)

// Router wires the portal's HTTP surface onto the services.
type Router struct {
	cfg     *config.AppConfig
	users   service.IUserService
	keys    service.IKeyService
	stats   service.IStatsService
	alerts  service.IAlertService
	health  service.IHealthService
	runner  *cronrun.Runner
	jobLogs repo.ICronJobLogRepository
	metrics service.IMetricsCollector
}

func NewRouter(
	cfg *config.AppConfig,
	users service.IUserService,
	keys service.IKeyService,
	stats service.IStatsService,
	alerts service.IAlertService,
	health service.IHealthService,
	runner *cronrun.Runner,
	jobLogs repo.ICronJobLogRepository,
	metrics service.IMetricsCollector,
) *Router {
	return &Router{
		cfg:     cfg,
		users:   users,
		keys:    keys,
		stats:   stats,
		alerts:  alerts,
		health:  health,
		runner:  runner,
		jobLogs: jobLogs,
		metrics: metrics,
	}
}

// RegisterRoutes mounts all route groups under /api/v1.
func (rt *Router) RegisterRoutes(app *fiber.App) {
	app.Use(middleware.CorsMiddleware())
	app.Use(middleware.AccessLogMiddleware())
	app.Use(middleware.HttpMetricsMiddleware())
	app.Use(rt.observeRequests())

	authMiddleware := middleware.AuthMiddleware(rt.cfg.Http.Auth.SecretKey)

	api := app.Group("/api/v1")
	rt.authRouter(api, authMiddleware)
	rt.keyRouter(api, authMiddleware)
	rt.statsRouter(api, authMiddleware)
	rt.monitorRouter(api, authMiddleware)
	rt.cronRouter(api, authMiddleware)
}

// observeRequests feeds the live metrics window the alert rules evaluate.
func (rt *Router) observeRequests() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		isError := err != nil || c.Response().StatusCode() >= fiber.StatusInternalServerError
		rt.metrics.ObserveRequest(time.Since(start), isError)
		return err
	}
}

func (rt *Router) currentUserId(c *fiber.Ctx) string {
	userId, _ := c.Locals(middleware.UserIdKey).(string)
	return userId
}

// writeErr maps service and relay errors onto the response envelope.
func writeErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrForbidden), crs.IsNotFound(err):
		// Foreign-owned resources are reported as missing, not forbidden.
		return http.WithRepErrMsg(c, http.NotFound.Code, http.NotFound.Msg, c.Path())
	case errors.Is(err, service.ErrNameTaken):
		return http.WithRepErrMsg(c, http.Conflict.Code, err.Error(), c.Path())
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.WithRepErrMsg(c, http.Unauthorized.Code, err.Error(), c.Path())
	case crs.IsUnavailable(err):
		return http.WithRepErrMsg(c, http.UpstreamServiceUnavailable.Code, http.UpstreamServiceUnavailable.Msg, c.Path())
	default:
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
}
