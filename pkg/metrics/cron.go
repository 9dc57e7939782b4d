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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	cronExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cron_job_executions_total",
			Help: "Total number of cron job executions by outcome",
		},
		[]string{"job", "status"},
	)

	cronDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cron_job_duration_seconds",
			Help:    "Cron job execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"job"},
	)

	cronSkips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cron_job_skips_total",
			Help: "Total number of skipped cron job ticks due to an in-flight run",
		},
		[]string{"job"},
	)
)

// RegisterCronMetrics registers cron job metrics on the given registry.
func RegisterCronMetrics(registry *prometheus.Registry) error {
	for _, c := range []prometheus.Collector{cronExecutions, cronDuration, cronSkips} {
		if err := registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveCronExecution records one finished job execution.
func ObserveCronExecution(job, status string, duration time.Duration) {
	cronExecutions.WithLabelValues(job, status).Inc()
	cronDuration.WithLabelValues(job).Observe(duration.Seconds())
}

// ObserveCronSkip records a skipped tick for a busy job.
func ObserveCronSkip(job string) {
	cronSkips.WithLabelValues(job).Inc()
}
