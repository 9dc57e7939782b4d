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

package repo

import (
	"context"
	"errors"

	"github.com/keyportal/keyportal/internal/portal/model"
	"github.com/keyportal/keyportal/pkg/database"
	"gorm.io/gorm"
)

// IAlertRuleRepository defines threshold rule persistence.
type IAlertRuleRepository interface {
	Create(ctx context.Context, rule *model.AlertRule) error
	Get(ctx context.Context, ruleId string) (*model.AlertRule, error)
	List(ctx context.Context) ([]*model.AlertRule, error)
	ListEnabled(ctx context.Context) ([]*model.AlertRule, error)
	Update(ctx context.Context, rule *model.AlertRule) error
	Delete(ctx context.Context, ruleId string) error
}

type AlertRuleRepo struct {
	database.IDatabase
}

func NewAlertRuleRepo(db database.IDatabase) IAlertRuleRepository {
	return &AlertRuleRepo{IDatabase: db}
}

// Create creates a new alert rule.
func (r *AlertRuleRepo) Create(ctx context.Context, rule *model.AlertRule) error {
	return r.Database().WithContext(ctx).Table(rule.TableName()).Create(rule).Error
}

// Get returns a rule by ruleId.
func (r *AlertRuleRepo) Get(ctx context.Context, ruleId string) (*model.AlertRule, error) {
	var rule model.AlertRule
	err := r.Database().WithContext(ctx).
		Table(rule.TableName()).
		Where("rule_id = ?", ruleId).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// List lists all rules.
func (r *AlertRuleRepo) List(ctx context.Context) ([]*model.AlertRule, error) {
	var rules []*model.AlertRule
	err := r.Database().WithContext(ctx).
		Table((&model.AlertRule{}).TableName()).
		Find(&rules).Error
	return rules, err
}

// ListEnabled lists only rules with enabled=true.
func (r *AlertRuleRepo) ListEnabled(ctx context.Context) ([]*model.AlertRule, error) {
	var rules []*model.AlertRule
	err := r.Database().WithContext(ctx).
		Table((&model.AlertRule{}).TableName()).
		Where("enabled = ?", true).
		Find(&rules).Error
	return rules, err
}

// Update updates an existing rule.
func (r *AlertRuleRepo) Update(ctx context.Context, rule *model.AlertRule) error {
	return r.Database().WithContext(ctx).
		Table(rule.TableName()).
		Where("rule_id = ?", rule.RuleId).
		Omit("id", "rule_id", "created_at").
		Updates(rule).Error
}

// Delete removes a rule.
func (r *AlertRuleRepo) Delete(ctx context.Context, ruleId string) error {
	return r.Database().WithContext(ctx).
		Table((&model.AlertRule{}).TableName()).
		Where("rule_id = ?", ruleId).
		Delete(&model.AlertRule{}).Error
}

// IAlertRecordRepository defines alert lifecycle record persistence.
type IAlertRecordRepository interface {
	Create(ctx context.Context, record *model.AlertRecord) error
	GetFiring(ctx context.Context, ruleId string) (*model.AlertRecord, error)
	Update(ctx context.Context, record *model.AlertRecord) error
	List(ctx context.Context, status string, limit int) ([]*model.AlertRecord, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type AlertRecordRepo struct {
	database.IDatabase
}

func NewAlertRecordRepo(db database.IDatabase) IAlertRecordRepository {
	return &AlertRecordRepo{IDatabase: db}
}

// Create creates a new alert record.
func (r *AlertRecordRepo) Create(ctx context.Context, record *model.AlertRecord) error {
	return r.Database().WithContext(ctx).Table(record.TableName()).Create(record).Error
}

// GetFiring returns the FIRING record for a rule, or nil when none exists.
func (r *AlertRecordRepo) GetFiring(ctx context.Context, ruleId string) (*model.AlertRecord, error) {
	var record model.AlertRecord
	err := r.Database().WithContext(ctx).
		Table(record.TableName()).
		Where("rule_id = ? AND status = ?", ruleId, model.AlertStatusFiring).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Update updates an existing record.
func (r *AlertRecordRepo) Update(ctx context.Context, record *model.AlertRecord) error {
	return r.Database().WithContext(ctx).
		Table(record.TableName()).
		Where("id = ?", record.Id).
		Select("status", "resolved_at").
		Updates(record).Error
}

// List returns records newest first, optionally filtered by status.
func (r *AlertRecordRepo) List(ctx context.Context, status string, limit int) ([]*model.AlertRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.Database().WithContext(ctx).
		Table((&model.AlertRecord{}).TableName())
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var records []*model.AlertRecord
	err := query.Order("triggered_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// UpdateStatus sets the status of a single record (used for silencing).
func (r *AlertRecordRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.Database().WithContext(ctx).
		Table((&model.AlertRecord{}).TableName()).
		Where("id = ?", id).
		Update("status", status).Error
}
