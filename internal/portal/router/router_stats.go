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
	"github.com/keyportal/keyportal/internal/pkg/crs"
	"github.com/keyportal/keyportal/pkg/http"
)

func (rt *Router) statsRouter(r fiber.Router, authMiddleware fiber.Handler) {
	stats := r.Group("/stats")
	{
		stats.Get("/usage/:keyId", authMiddleware, rt.keyUsage)
		stats.Get("/trend", authMiddleware, rt.usageTrend)
		stats.Get("/dashboard", authMiddleware, rt.dashboard)
		stats.Get("/export", authMiddleware, rt.exportUsage)
	}
}

func (rt *Router) keyUsage(c *fiber.Ctx) error {
	usage, err := rt.stats.GetKeyUsage(c.Context(), rt.currentUserId(c), c.Params("keyId"))
	if err != nil {
		return writeErr(c, err)
	}
	return http.WithRep(c, usage)
}

func (rt *Router) usageTrend(c *fiber.Ctx) error {
	params := crs.TrendParams{
		StartDate:   c.Query("startDate"),
		EndDate:     c.Query("endDate"),
		Granularity: c.Query("granularity"),
	}
	trend, err := rt.stats.GetUsageTrend(c.Context(), rt.currentUserId(c), c.Query("keyId"), params)
	if err != nil {
		return writeErr(c, err)
	}
	return http.WithRep(c, trend)
}

func (rt *Router) dashboard(c *fiber.Ctx) error {
	dashboard, err := rt.stats.GetDashboard(c.Context())
	if err != nil {
		return writeErr(c, err)
	}
	return http.WithRep(c, dashboard)
}

func (rt *Router) exportUsage(c *fiber.Ctx) error {
	data, err := rt.stats.ExportUsageCSV(c.Context(), rt.currentUserId(c))
	if err != nil {
		return writeErr(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="usage.csv"`)
	return c.Send(data)
}
