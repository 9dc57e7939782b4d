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

package service

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/keyportal/keyportal/internal/portal/model"
)

const metricsWindow = time.Minute

// IMetricsCollector exposes the live readings the alert rule engine
// evaluates. Request figures are computed over a one-minute sliding window.
type IMetricsCollector interface {
	ObserveRequest(duration time.Duration, isError bool)
	AvgResponseTime() float64 // seconds
	QPS() float64
	ErrorRate() float64    // percent, 0-100
	MemoryUsage() float64  // percent of heap reserved from the OS in use
	CurrentValue(metric string) (float64, error)
}

type requestSample struct {
	at       time.Time
	duration time.Duration
	isError  bool
}

type MetricsCollector struct {
	mu      sync.Mutex
	samples []requestSample
	now     func() time.Time
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{now: time.Now}
}

// ObserveRequest records one handled HTTP request.
func (c *MetricsCollector) ObserveRequest(duration time.Duration, isError bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samples = append(c.samples, requestSample{at: c.now(), duration: duration, isError: isError})
	c.prune()
}

// prune drops samples older than the window. Caller holds the lock.
func (c *MetricsCollector) prune() {
	cutoff := c.now().Add(-metricsWindow)
	kept := c.samples[:0]
	for _, sample := range c.samples {
		if sample.at.After(cutoff) {
			kept = append(kept, sample)
		}
	}
	c.samples = kept
}

func (c *MetricsCollector) window() []requestSample {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune()
	out := make([]requestSample, len(c.samples))
	copy(out, c.samples)
	return out
}

func (c *MetricsCollector) AvgResponseTime() float64 {
	samples := c.window()
	if len(samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, sample := range samples {
		total += sample.duration
	}
	return total.Seconds() / float64(len(samples))
}

func (c *MetricsCollector) QPS() float64 {
	return float64(len(c.window())) / metricsWindow.Seconds()
}

func (c *MetricsCollector) ErrorRate() float64 {
	samples := c.window()
	if len(samples) == 0 {
		return 0
	}
	errors := 0
	for _, sample := range samples {
		if sample.isError {
			errors++
		}
	}
	return float64(errors) / float64(len(samples)) * 100
}

func (c *MetricsCollector) MemoryUsage() float64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	if stats.HeapSys == 0 {
		return 0
	}
	return float64(stats.HeapInuse) / float64(stats.HeapSys) * 100
}

// CurrentValue maps a rule metric name to its live reading.
func (c *MetricsCollector) CurrentValue(metric string) (float64, error) {
	switch metric {
	case model.MetricResponseTime:
		return c.AvgResponseTime(), nil
	case model.MetricQPS:
		return c.QPS(), nil
	case model.MetricErrorRate:
		return c.ErrorRate(), nil
	case model.MetricMemoryUsage:
		return c.MemoryUsage(), nil
	default:
		return 0, fmt.Errorf("unknown metric %q", metric)
	}
}
