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
	"github.com/keyportal/keyportal/internal/portal/model"
	"github.com/keyportal/keyportal/pkg/http"
)

func (rt *Router) monitorRouter(r fiber.Router, authMiddleware fiber.Handler) {
	monitor := r.Group("/monitor")
	{
		monitor.Get("/health", rt.healthNow)
		monitor.Get("/health/history", authMiddleware, rt.healthHistory)
		monitor.Get("/metrics", authMiddleware, rt.liveMetrics)
		monitor.Get("/alerts", authMiddleware, rt.listAlerts)
		monitor.Post("/alerts/:recordId/silence", authMiddleware, rt.silenceAlert)
		monitor.Get("/rules", authMiddleware, rt.listRules)
		monitor.Post("/rules", authMiddleware, rt.createRule)
		monitor.Put("/rules/:ruleId", authMiddleware, rt.updateRule)
		monitor.Delete("/rules/:ruleId", authMiddleware, rt.deleteRule)
	}
}

func (rt *Router) healthNow(c *fiber.Ctx) error {
	return http.WithRep(c, rt.health.CheckAll(c.Context()))
}

func (rt *Router) healthHistory(c *fiber.Ctx) error {
	history, err := rt.health.History(c.Context(), rt.cfg.Http.QueryInt(c, "limit"))
	if err != nil {
		return writeErr(c, err)
	}
	return http.WithRep(c, history)
}

func (rt *Router) liveMetrics(c *fiber.Ctx) error {
	return http.WithRep(c, fiber.Map{
		"responseTime": rt.metrics.AvgResponseTime(),
		"qps":          rt.metrics.QPS(),
		"errorRate":    rt.metrics.ErrorRate(),
		"memoryUsage":  rt.metrics.MemoryUsage(),
	})
}

func (rt *Router) listAlerts(c *fiber.Ctx) error {
	records, err := rt.alerts.ListRecords(c.Context(), c.Query("status"), rt.cfg.Http.QueryInt(c, "limit"))
	if err != nil {
		return writeErr(c, err)
	}
	return http.WithRep(c, records)
}

func (rt *Router) silenceAlert(c *fiber.Ctx) error {
	recordId, err := c.ParamsInt("recordId")
	if err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if err := rt.alerts.SilenceRecord(c.Context(), int64(recordId)); err != nil {
		return writeErr(c, err)
	}
	return http.WithRepMsg(c, "alert silenced")
}

func (rt *Router) listRules(c *fiber.Ctx) error {
	rules, err := rt.alerts.ListRules(c.Context())
	if err != nil {
		return writeErr(c, err)
	}
	return http.WithRep(c, rules)
}

func (rt *Router) createRule(c *fiber.Ctx) error {
	var rule model.AlertRule
	if err := c.BodyParser(&rule); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if err := rt.alerts.CreateRule(c.Context(), &rule); err != nil {
		return writeErr(c, err)
	}
	return http.WithRep(c, rule)
}

func (rt *Router) updateRule(c *fiber.Ctx) error {
	var rule model.AlertRule
	if err := c.BodyParser(&rule); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	rule.RuleId = c.Params("ruleId")
	if err := rt.alerts.UpdateRule(c.Context(), &rule); err != nil {
		return writeErr(c, err)
	}
	return http.WithRep(c, rule)
}

func (rt *Router) deleteRule(c *fiber.Ctx) error {
	if err := rt.alerts.DeleteRule(c.Context(), c.Params("ruleId")); err != nil {
		return writeErr(c, err)
	}
	return http.WithRepMsg(c, "rule deleted")
}
