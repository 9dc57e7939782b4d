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
	"errors"
	"testing"
	"time"

	"github.com/keyportal/keyportal/internal/portal/model"
)

type fakeAlertService struct {
	rules     []*model.AlertRule
	triggered []string
	resolved  []string
}

func (f *fakeAlertService) LoadRules(context.Context) ([]*model.AlertRule, error) {
	return f.rules, nil
}

func (f *fakeAlertService) EvaluateRule(rule *model.AlertRule, value float64) bool {
	return value > rule.Threshold
}

func (f *fakeAlertService) TriggerAlert(_ context.Context, rule *model.AlertRule, _ float64) error {
	f.triggered = append(f.triggered, rule.RuleId)
	return nil
}

func (f *fakeAlertService) ResolveAlert(_ context.Context, rule *model.AlertRule, _ float64) error {
	f.resolved = append(f.resolved, rule.RuleId)
	return nil
}

func (f *fakeAlertService) CreateRule(context.Context, *model.AlertRule) error { return nil }
func (f *fakeAlertService) ListRules(context.Context) ([]*model.AlertRule, error) {
	return f.rules, nil
}
func (f *fakeAlertService) UpdateRule(context.Context, *model.AlertRule) error { return nil }
func (f *fakeAlertService) DeleteRule(context.Context, string) error           { return nil }
func (f *fakeAlertService) ListRecords(context.Context, string, int) ([]*model.AlertRecord, error) {
	return nil, nil
}
func (f *fakeAlertService) SilenceRecord(context.Context, int64) error { return nil }

type fakeMetrics struct {
	values map[string]float64
}

func (f *fakeMetrics) ObserveRequest(time.Duration, bool) {}
func (f *fakeMetrics) AvgResponseTime() float64           { return f.values[model.MetricResponseTime] }
func (f *fakeMetrics) QPS() float64                       { return f.values[model.MetricQPS] }
func (f *fakeMetrics) ErrorRate() float64                 { return f.values[model.MetricErrorRate] }
func (f *fakeMetrics) MemoryUsage() float64               { return f.values[model.MetricMemoryUsage] }

func (f *fakeMetrics) CurrentValue(metric string) (float64, error) {
	value, ok := f.values[metric]
	if !ok {
		return 0, errors.New("unknown metric")
	}
	return value, nil
}

func TestAlertCheckJobEvaluatesEveryRule(t *testing.T) {
	alerts := &fakeAlertService{
		rules: []*model.AlertRule{
			{RuleId: "breached", Metric: model.MetricResponseTime, Threshold: 0.05, Enabled: true},
			{RuleId: "quiet", Metric: model.MetricQPS, Threshold: 1000, Enabled: true},
			{RuleId: "broken", Metric: "DISK_IO", Threshold: 1, Enabled: true},
		},
	}
	metrics := &fakeMetrics{values: map[string]float64{
		model.MetricResponseTime: 0.1,
		model.MetricQPS:          12,
	}}

	job := NewAlertCheckJob(alerts, metrics)
	result, err := job.Handler(context.Background())
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	if result["rulesEvaluated"] != 2 {
		t.Fatalf("rulesEvaluated = %v, want 2", result["rulesEvaluated"])
	}
	if result["failed"] != 1 {
		t.Fatalf("failed = %v, want 1 for the unreadable metric", result["failed"])
	}
	if len(alerts.triggered) != 1 || alerts.triggered[0] != "breached" {
		t.Fatalf("triggered = %v", alerts.triggered)
	}
	if len(alerts.resolved) != 1 || alerts.resolved[0] != "quiet" {
		t.Fatalf("resolved = %v", alerts.resolved)
	}
}

type fakeHealthService struct {
	check *model.SystemHealthCheck
}

func (f *fakeHealthService) CheckDatabase(context.Context) model.ProbeResult { return f.check.Database }
func (f *fakeHealthService) CheckRedis(context.Context) model.ProbeResult    { return f.check.Redis }
func (f *fakeHealthService) CheckCRS(context.Context) model.ProbeResult      { return f.check.Crs }
func (f *fakeHealthService) CheckAll(context.Context) *model.SystemHealthCheck {
	return f.check
}
func (f *fakeHealthService) History(context.Context, int) ([]*model.SystemHealthCheck, error) {
	return nil, nil
}

func TestMonitorJobReportsOverall(t *testing.T) {
	health := &fakeHealthService{check: &model.SystemHealthCheck{Overall: model.HealthStatusDegraded}}
	metrics := &fakeMetrics{values: map[string]float64{model.MetricMemoryUsage: 42.5}}

	job := NewMonitorJob(health, metrics)
	result, err := job.Handler(context.Background())
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result["overall"] != model.HealthStatusDegraded {
		t.Fatalf("overall = %v", result["overall"])
	}
	if result["memoryUsage"] != 42.5 {
		t.Fatalf("memoryUsage = %v", result["memoryUsage"])
	}
}

type fakeKeyLister struct {
	keys []*model.ApiKey
}

func (f *fakeKeyLister) Create(context.Context, *model.ApiKey) error { return nil }
func (f *fakeKeyLister) Get(context.Context, string) (*model.ApiKey, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeKeyLister) ListByUser(context.Context, string) ([]*model.ApiKey, error) {
	return f.keys, nil
}
func (f *fakeKeyLister) ListAll(context.Context) ([]*model.ApiKey, error) { return f.keys, nil }
func (f *fakeKeyLister) ListExpiringBefore(context.Context, time.Time) ([]*model.ApiKey, error) {
	return f.keys, nil
}
func (f *fakeKeyLister) Update(context.Context, *model.ApiKey) error { return nil }
func (f *fakeKeyLister) UpdateTags(context.Context, string, model.StringList) error {
	return nil
}
func (f *fakeKeyLister) Delete(context.Context, string) error { return nil }
func (f *fakeKeyLister) NameExists(context.Context, string, string) (bool, error) {
	return false, nil
}

type fakeExpiration struct {
	failFor map[string]bool
	checked []string
}

func (f *fakeExpiration) CheckKey(_ context.Context, key *model.ApiKey) (bool, error) {
	f.checked = append(f.checked, key.KeyId)
	if f.failFor[key.KeyId] {
		return false, errors.New("reminder store down")
	}
	return true, nil
}

func TestExpirationJobToleratesPartialFailure(t *testing.T) {
	keys := &fakeKeyLister{keys: []*model.ApiKey{
		{KeyId: "k1"}, {KeyId: "k2"}, {KeyId: "k3"},
	}}
	expiration := &fakeExpiration{failFor: map[string]bool{"k2": true}}

	job := NewExpirationCheckJob(keys, expiration)
	result, err := job.Handler(context.Background())
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	if len(expiration.checked) != 3 {
		t.Fatalf("checked keys = %v, the sweep must continue past failures", expiration.checked)
	}
	if result["checked"] != 3 || result["reminded"] != 2 || result["failed"] != 1 {
		t.Fatalf("result = %v", result)
	}
}
