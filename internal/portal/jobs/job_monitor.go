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

	"github.com/keyportal/keyportal/internal/pkg/cronrun"
	"github.com/keyportal/keyportal/internal/portal/service"
)

// NewMonitorJob snapshots system health once a minute.
func NewMonitorJob(health service.IHealthService, metrics service.IMetricsCollector) *cronrun.Job {
	return &cronrun.Job{
		Name:        MonitorJobName,
		Schedule:    "* * * * *",
		Description: "probe backing services and archive a health snapshot",
		Handler: func(ctx context.Context) (map[string]any, error) {
			check := health.CheckAll(ctx)
			return map[string]any{
				"overall":         check.Overall,
				"servicesChecked": 3,
				"memoryUsage":     metrics.MemoryUsage(),
			}, nil
		},
	}
}
