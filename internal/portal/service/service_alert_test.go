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
	"context"
	"testing"

	"github.com/keyportal/keyportal/internal/pkg/notify/channel"
	"github.com/keyportal/keyportal/internal/portal/model"
)

type fakeRuleRepo struct {
	rules []*model.AlertRule
}

func (f *fakeRuleRepo) Create(_ context.Context, rule *model.AlertRule) error {
	f.rules = append(f.rules, rule)
	return nil
}

func (f *fakeRuleRepo) Get(_ context.Context, ruleId string) (*model.AlertRule, error) {
	for _, rule := range f.rules {
		if rule.RuleId == ruleId {
			return rule, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRuleRepo) List(_ context.Context) ([]*model.AlertRule, error) {
	return f.rules, nil
}

func (f *fakeRuleRepo) ListEnabled(_ context.Context) ([]*model.AlertRule, error) {
	var enabled []*model.AlertRule
	for _, rule := range f.rules {
		if rule.Enabled {
			enabled = append(enabled, rule)
		}
	}
	return enabled, nil
}

func (f *fakeRuleRepo) Update(_ context.Context, _ *model.AlertRule) error { return nil }
func (f *fakeRuleRepo) Delete(_ context.Context, _ string) error           { return nil }

type fakeRecordRepo struct {
	records []*model.AlertRecord
	nextId  int64
}

func (f *fakeRecordRepo) Create(_ context.Context, record *model.AlertRecord) error {
	f.nextId++
	record.Id = f.nextId
	cp := *record
	f.records = append(f.records, &cp)
	return nil
}

func (f *fakeRecordRepo) GetFiring(_ context.Context, ruleId string) (*model.AlertRecord, error) {
	for _, record := range f.records {
		if record.RuleId == ruleId && record.Status == model.AlertStatusFiring {
			return record, nil
		}
	}
	return nil, nil
}

func (f *fakeRecordRepo) Update(_ context.Context, record *model.AlertRecord) error {
	for i, existing := range f.records {
		if existing.Id == record.Id {
			cp := *record
			f.records[i] = &cp
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeRecordRepo) List(_ context.Context, status string, _ int) ([]*model.AlertRecord, error) {
	var out []*model.AlertRecord
	for _, record := range f.records {
		if status == "" || record.Status == status {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) UpdateStatus(_ context.Context, recordId int64, status string) error {
	for _, record := range f.records {
		if record.Id == recordId {
			record.Status = status
			return nil
		}
	}
	return ErrNotFound
}

type fakeNotifier struct {
	dispatched []channel.Message
}

func (f *fakeNotifier) Dispatch(_ context.Context, _ string, message channel.Message, _ []string) int {
	f.dispatched = append(f.dispatched, message)
	return 1
}

func responseTimeRule() *model.AlertRule {
	return &model.AlertRule{
		RuleId:    "rule-rt",
		Name:      "slow responses",
		Metric:    model.MetricResponseTime,
		Condition: model.ConditionGreaterThan,
		Threshold: 0.05,
		Severity:  model.SeverityCritical,
		Channels:  model.StringList{"email"},
		Enabled:   true,
	}
}

func TestEvaluateRuleConditions(t *testing.T) {
	svc := &AlertService{}
	cases := []struct {
		name      string
		condition string
		threshold float64
		value     float64
		want      bool
	}{
		{"greater breach", model.ConditionGreaterThan, 0.05, 0.1, true},
		{"greater ok", model.ConditionGreaterThan, 0.05, 0.05, false},
		{"less breach", model.ConditionLessThan, 10, 3, true},
		{"less ok", model.ConditionLessThan, 10, 10, false},
		{"equal breach", model.ConditionEqualTo, 0, 0, true},
		{"equal ok", model.ConditionEqualTo, 0, 0.1, false},
		{"unknown condition", "BETWEEN", 1, 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := &model.AlertRule{Condition: tc.condition, Threshold: tc.threshold}
			if got := svc.EvaluateRule(rule, tc.value); got != tc.want {
				t.Fatalf("EvaluateRule(%s, %v) = %v, want %v", tc.condition, tc.value, got, tc.want)
			}
		})
	}
}

func TestTriggerAlertDeduplicates(t *testing.T) {
	records := &fakeRecordRepo{}
	notifier := &fakeNotifier{}
	svc := NewAlertService(&fakeRuleRepo{}, records, notifier)
	rule := responseTimeRule()

	if err := svc.TriggerAlert(context.Background(), rule, 0.1); err != nil {
		t.Fatalf("first trigger: %v", err)
	}
	if len(records.records) != 1 {
		t.Fatalf("records = %d, want 1", len(records.records))
	}
	if len(notifier.dispatched) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.dispatched))
	}

	// Repeated breaches while FIRING create nothing and notify nobody.
	if err := svc.TriggerAlert(context.Background(), rule, 0.2); err != nil {
		t.Fatalf("second trigger: %v", err)
	}
	if len(records.records) != 1 {
		t.Fatalf("records after repeat = %d, want 1", len(records.records))
	}
	if len(notifier.dispatched) != 1 {
		t.Fatalf("notifications after repeat = %d, want 1", len(notifier.dispatched))
	}
}

func TestResolveAlertRequiresFiringRecord(t *testing.T) {
	records := &fakeRecordRepo{}
	notifier := &fakeNotifier{}
	svc := NewAlertService(&fakeRuleRepo{}, records, notifier)

	if err := svc.ResolveAlert(context.Background(), responseTimeRule(), 0.01); err != nil {
		t.Fatalf("resolve without firing record: %v", err)
	}
	if len(records.records) != 0 {
		t.Fatal("resolve without a firing record must not write")
	}
	if len(notifier.dispatched) != 0 {
		t.Fatal("resolve without a firing record must not notify")
	}
}

func TestAlertLifecycleFiringToResolved(t *testing.T) {
	records := &fakeRecordRepo{}
	notifier := &fakeNotifier{}
	svc := NewAlertService(&fakeRuleRepo{}, records, notifier)
	rule := responseTimeRule()

	if !svc.EvaluateRule(rule, 0.1) {
		t.Fatal("0.1 > 0.05 should evaluate true")
	}
	if err := svc.TriggerAlert(context.Background(), rule, 0.1); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if svc.EvaluateRule(rule, 0.03) {
		t.Fatal("0.03 > 0.05 should evaluate false")
	}
	if err := svc.ResolveAlert(context.Background(), rule, 0.03); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if len(records.records) != 1 {
		t.Fatalf("records = %d, want exactly 1 across the lifecycle", len(records.records))
	}
	record := records.records[0]
	if record.Status != model.AlertStatusResolved {
		t.Fatalf("status = %s, want %s", record.Status, model.AlertStatusResolved)
	}
	if record.ResolvedAt == nil {
		t.Fatal("resolvedAt must be set")
	}
	if len(notifier.dispatched) != 2 {
		t.Fatalf("notifications = %d, want trigger + resolved", len(notifier.dispatched))
	}
	if notifier.dispatched[0].Title != "[CRITICAL] slow responses" {
		t.Fatalf("trigger title = %q", notifier.dispatched[0].Title)
	}
	if notifier.dispatched[1].Title != "[RESOLVED] slow responses" {
		t.Fatalf("resolved title = %q", notifier.dispatched[1].Title)
	}
}

func TestTriggerAlertPersistsWithoutNotifier(t *testing.T) {
	records := &fakeRecordRepo{}
	svc := NewAlertService(&fakeRuleRepo{}, records, nil)

	if err := svc.TriggerAlert(context.Background(), responseTimeRule(), 0.1); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if len(records.records) != 1 {
		t.Fatal("record must persist even with no notifier wired")
	}
}

func TestCreateRuleValidation(t *testing.T) {
	rules := &fakeRuleRepo{}
	svc := NewAlertService(rules, &fakeRecordRepo{}, nil)

	bad := responseTimeRule()
	bad.Metric = "DISK_IO"
	if err := svc.CreateRule(context.Background(), bad); err == nil {
		t.Fatal("expected unknown metric to be rejected")
	}

	good := responseTimeRule()
	good.RuleId = ""
	if err := svc.CreateRule(context.Background(), good); err != nil {
		t.Fatalf("create: %v", err)
	}
	if good.RuleId == "" {
		t.Fatal("ruleId should be assigned")
	}
}
