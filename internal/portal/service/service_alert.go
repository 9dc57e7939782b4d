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
	"fmt"
	"time"

	"github.com/keyportal/keyportal/internal/pkg/notify/channel"
	"github.com/keyportal/keyportal/internal/portal/model"
	"github.com/keyportal/keyportal/internal/portal/repo"
	"github.com/keyportal/keyportal/pkg/id"
	"github.com/keyportal/keyportal/pkg/log"
)

// Notifier fans a message out to named channels. Delivery is best-effort.
type Notifier interface {
	Dispatch(ctx context.Context, notificationType string, message channel.Message, channels []string) int
}

// IAlertService evaluates metric readings against threshold rules and
// manages the FIRING/RESOLVED record lifecycle.
type IAlertService interface {
	LoadRules(ctx context.Context) ([]*model.AlertRule, error)
	EvaluateRule(rule *model.AlertRule, value float64) bool
	TriggerAlert(ctx context.Context, rule *model.AlertRule, value float64) error
	ResolveAlert(ctx context.Context, rule *model.AlertRule, value float64) error

	CreateRule(ctx context.Context, rule *model.AlertRule) error
	ListRules(ctx context.Context) ([]*model.AlertRule, error)
	UpdateRule(ctx context.Context, rule *model.AlertRule) error
	DeleteRule(ctx context.Context, ruleId string) error
	ListRecords(ctx context.Context, status string, limit int) ([]*model.AlertRecord, error)
	SilenceRecord(ctx context.Context, recordId int64) error
}

type AlertService struct {
	rules    repo.IAlertRuleRepository
	records  repo.IAlertRecordRepository
	notifier Notifier
	now      func() time.Time
}

func NewAlertService(rules repo.IAlertRuleRepository, records repo.IAlertRecordRepository, notifier Notifier) IAlertService {
	return &AlertService{
		rules:    rules,
		records:  records,
		notifier: notifier,
		now:      time.Now,
	}
}

// LoadRules returns the rules eligible for evaluation, enabled ones only.
func (s *AlertService) LoadRules(ctx context.Context) ([]*model.AlertRule, error) {
	return s.rules.ListEnabled(ctx)
}

// EvaluateRule is a pure threshold comparison with no side effects.
func (s *AlertService) EvaluateRule(rule *model.AlertRule, value float64) bool {
	switch rule.Condition {
	case model.ConditionGreaterThan:
		return value > rule.Threshold
	case model.ConditionLessThan:
		return value < rule.Threshold
	case model.ConditionEqualTo:
		return value == rule.Threshold
	default:
		log.Warnw("unknown alert condition", "rule", rule.RuleId, "condition", rule.Condition)
		return false
	}
}

// TriggerAlert records a breach. While a FIRING record already exists for
// the rule this is a no-op: repeated breaches must not create duplicate
// records or duplicate notifications.
func (s *AlertService) TriggerAlert(ctx context.Context, rule *model.AlertRule, value float64) error {
	firing, err := s.records.GetFiring(ctx, rule.RuleId)
	if err != nil {
		return fmt.Errorf("query firing record for rule %s: %w", rule.RuleId, err)
	}
	if firing != nil {
		return nil
	}

	record := &model.AlertRecord{
		RuleId:      rule.RuleId,
		Status:      model.AlertStatusFiring,
		Message:     alertMessage(rule, value),
		Value:       value,
		TriggeredAt: s.now(),
	}
	if err := s.records.Create(ctx, record); err != nil {
		return fmt.Errorf("create alert record for rule %s: %w", rule.RuleId, err)
	}
	log.Warnw("alert triggered", "rule", rule.Name, "metric", rule.Metric, "value", value, "threshold", rule.Threshold)

	// Best-effort: the record is already persisted, a delivery failure is
	// logged by the sender and never unwinds the state transition.
	s.dispatch(ctx, model.NotificationTypeAlert, rule, record.Message)
	return nil
}

// ResolveAlert closes the FIRING record for the rule, if one exists.
func (s *AlertService) ResolveAlert(ctx context.Context, rule *model.AlertRule, value float64) error {
	firing, err := s.records.GetFiring(ctx, rule.RuleId)
	if err != nil {
		return fmt.Errorf("query firing record for rule %s: %w", rule.RuleId, err)
	}
	if firing == nil {
		return nil
	}

	resolvedAt := s.now()
	firing.Status = model.AlertStatusResolved
	firing.ResolvedAt = &resolvedAt
	if err := s.records.Update(ctx, firing); err != nil {
		return fmt.Errorf("resolve alert record for rule %s: %w", rule.RuleId, err)
	}
	log.Infow("alert resolved", "rule", rule.Name, "metric", rule.Metric, "value", value)

	body := fmt.Sprintf("%s recovered: %s is %.4f, threshold %.4f", rule.Name, rule.Metric, value, rule.Threshold)
	s.dispatch(ctx, model.NotificationTypeResolved, rule, body)
	return nil
}

func (s *AlertService) dispatch(ctx context.Context, notificationType string, rule *model.AlertRule, body string) {
	if s.notifier == nil {
		return
	}
	title := fmt.Sprintf("[%s] %s", rule.Severity, rule.Name)
	if notificationType == model.NotificationTypeResolved {
		title = fmt.Sprintf("[RESOLVED] %s", rule.Name)
	}
	s.notifier.Dispatch(ctx, notificationType, channel.Message{
		Title:    title,
		Body:     body,
		Severity: rule.Severity,
	}, rule.Channels)
}

func alertMessage(rule *model.AlertRule, value float64) string {
	return fmt.Sprintf("%s: %s %s %.4f, current value %.4f",
		rule.Name, rule.Metric, rule.Condition, rule.Threshold, value)
}

// CreateRule validates and stores a new rule.
func (s *AlertService) CreateRule(ctx context.Context, rule *model.AlertRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if rule.RuleId == "" {
		rule.RuleId = id.GetUUID()
	}
	rule.CreatedAt = s.now()
	rule.UpdatedAt = rule.CreatedAt
	return s.rules.Create(ctx, rule)
}

func (s *AlertService) ListRules(ctx context.Context) ([]*model.AlertRule, error) {
	return s.rules.List(ctx)
}

func (s *AlertService) UpdateRule(ctx context.Context, rule *model.AlertRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if _, err := s.rules.Get(ctx, rule.RuleId); err != nil {
		return err
	}
	rule.UpdatedAt = s.now()
	return s.rules.Update(ctx, rule)
}

func (s *AlertService) DeleteRule(ctx context.Context, ruleId string) error {
	return s.rules.Delete(ctx, ruleId)
}

func (s *AlertService) ListRecords(ctx context.Context, status string, limit int) ([]*model.AlertRecord, error) {
	return s.records.List(ctx, status, limit)
}

// SilenceRecord marks a record SILENCED so it stops appearing as active.
func (s *AlertService) SilenceRecord(ctx context.Context, recordId int64) error {
	return s.records.UpdateStatus(ctx, recordId, model.AlertStatusSilenced)
}

func validateRule(rule *model.AlertRule) error {
	if rule.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	switch rule.Metric {
	case model.MetricResponseTime, model.MetricQPS, model.MetricMemoryUsage, model.MetricErrorRate:
	default:
		return fmt.Errorf("unknown metric %q", rule.Metric)
	}
	switch rule.Condition {
	case model.ConditionGreaterThan, model.ConditionLessThan, model.ConditionEqualTo:
	default:
		return fmt.Errorf("unknown condition %q", rule.Condition)
	}
	switch rule.Severity {
	case model.SeverityInfo, model.SeverityWarning, model.SeverityError, model.SeverityCritical:
	default:
		return fmt.Errorf("unknown severity %q", rule.Severity)
	}
	return nil
}
