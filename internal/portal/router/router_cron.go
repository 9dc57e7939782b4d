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
	"github.com/gofiber/fiber/v2"
	"github.com/keyportal/keyportal/pkg/http"
)

func (rt *Router) cronRouter(r fiber.Router, authMiddleware fiber.Handler) {
	cron := r.Group("/cron")
	{
		cron.Get("/jobs", authMiddleware, rt.listJobs)
		cron.Get("/jobs/:name/logs", authMiddleware, rt.jobLogList)
		cron.Post("/jobs/:name/run", authMiddleware, rt.runJob)
	}
}

func (rt *Router) listJobs(c *fiber.Ctx) error {
	return http.WithRep(c, rt.runner.RegisteredJobs())
}

func (rt *Router) jobLogList(c *fiber.Ctx) error {
	logs, err := rt.jobLogs.ListRecent(c.Context(), c.Params("name"), rt.cfg.Http.QueryInt(c, "limit"))
	if err != nil {
		return writeErr(c, err)
	}
	return http.WithRep(c, logs)
}

func (rt *Router) runJob(c *fiber.Ctx) error {
	executed, err := rt.runner.RunManually(c.Context(), c.Params("name"))
	if err != nil {
		return http.WithRepErrMsg(c, http.NotFound.Code, err.Error(), c.Path())
	}
	if !executed {
		return http.WithRepMsg(c, "job already running, trigger skipped")
	}
	return http.WithRepMsg(c, "job executed")
}
