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

package jobs

import (
	"context"
	"fmt"

	"github.com/keyportal/keyportal/internal/pkg/cronrun"
	"github.com/keyportal/keyportal/internal/portal/service"
	"github.com/keyportal/keyportal/pkg/log"
)

const (
	AlertCheckJobName      = "alert-check"
	MonitorJobName         = "monitor"
	ExpirationCheckJobName = "expiration-check"
)

// NewAlertCheckJob evaluates every enabled rule against its live metric
// once a minute. A single rule's failure never stops the sweep.
func NewAlertCheckJob(alerts service.IAlertService, metrics service.IMetricsCollector) *cronrun.Job {
	return &cronrun.Job{
		Name:        AlertCheckJobName,
		Schedule:    "* * * * *",
		Description: "evaluate alert rules against current metrics",
		Handler: func(ctx context.Context) (map[string]any, error) {
			rules, err := alerts.LoadRules(ctx)
			if err != nil {
				return nil, fmt.Errorf("load rules: %w", err)
			}

			evaluated, triggered, resolved, failed := 0, 0, 0, 0
			for _, rule := range rules {
				value, err := metrics.CurrentValue(rule.Metric)
				if err != nil {
					log.Warnw("skipping rule with unreadable metric", "rule", rule.RuleId, "metric", rule.Metric, "error", err)
					failed++
					continue
				}
				evaluated++

				if alerts.EvaluateRule(rule, value) {
					if err := alerts.TriggerAlert(ctx, rule, value); err != nil {
						log.Errorw("trigger alert failed", "rule", rule.RuleId, "error", err)
						failed++
						continue
					}
					triggered++
				} else {
					if err := alerts.ResolveAlert(ctx, rule, value); err != nil {
						log.Errorw("resolve alert failed", "rule", rule.RuleId, "error", err)
						failed++
						continue
					}
					resolved++
				}
			}

			return map[string]any{
				"rulesEvaluated": evaluated,
				"triggered":      triggered,
				"resolved":       resolved,
				"failed":         failed,
			}, nil
		},
	}
}
