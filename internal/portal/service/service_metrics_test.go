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
	"math"
	"testing"
	"time"

	"github.com/keyportal/keyportal/internal/portal/model"
)

func TestMetricsCollectorWindow(t *testing.T) {
	collector := NewMetricsCollector()
	base := time.Now()
	clock := base
	collector.now = func() time.Time { return clock }

	collector.ObserveRequest(100*time.Millisecond, false)
	collector.ObserveRequest(300*time.Millisecond, true)

	if got := collector.AvgResponseTime(); math.Abs(got-0.2) > 1e-9 {
		t.Fatalf("avg response time = %v, want 0.2", got)
	}
	if got := collector.ErrorRate(); math.Abs(got-50) > 1e-9 {
		t.Fatalf("error rate = %v, want 50", got)
	}
	if got := collector.QPS(); math.Abs(got-2.0/60) > 1e-9 {
		t.Fatalf("qps = %v", got)
	}

	// Samples outside the one-minute window are dropped.
	clock = base.Add(2 * time.Minute)
	if got := collector.AvgResponseTime(); got != 0 {
		t.Fatalf("avg response time after window = %v, want 0", got)
	}
	if got := collector.ErrorRate(); got != 0 {
		t.Fatalf("error rate after window = %v, want 0", got)
	}
}

func TestCurrentValueMapping(t *testing.T) {
	collector := NewMetricsCollector()
	collector.ObserveRequest(50*time.Millisecond, false)

	for _, metric := range []string{
		model.MetricResponseTime, model.MetricQPS, model.MetricErrorRate, model.MetricMemoryUsage,
	} {
		if _, err := collector.CurrentValue(metric); err != nil {
			t.Fatalf("CurrentValue(%s): %v", metric, err)
		}
	}
	if _, err := collector.CurrentValue("DISK_IO"); err == nil {
		t.Fatal("expected unknown metric error")
	}
}

func TestMemoryUsageIsPercentage(t *testing.T) {
	collector := NewMetricsCollector()
	usage := collector.MemoryUsage()
	if usage < 0 || usage > 100 {
		t.Fatalf("memory usage = %v, want a percentage", usage)
	}
}
