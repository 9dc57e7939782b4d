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
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/keyportal/keyportal/internal/pkg/crs"
	"github.com/keyportal/keyportal/internal/portal/model"
	"github.com/keyportal/keyportal/internal/portal/repo"
	"github.com/keyportal/keyportal/pkg/log"
)

// IStatsService serves usage figures straight from the relay service.
type IStatsService interface {
	GetKeyUsage(ctx context.Context, userId, keyId string) (*crs.KeyStats, error)
	GetUsageTrend(ctx context.Context, userId, keyId string, params crs.TrendParams) ([]crs.TrendPoint, error)
	GetDashboard(ctx context.Context) (*crs.Dashboard, error)
	ExportUsageCSV(ctx context.Context, userId string) ([]byte, error)
}

type StatsService struct {
	crs  ICrsGateway
	keys repo.IApiKeyRepository
}

func NewStatsService(gateway ICrsGateway, keys repo.IApiKeyRepository) IStatsService {
	return &StatsService{crs: gateway, keys: keys}
}

func (s *StatsService) GetKeyUsage(ctx context.Context, userId, keyId string) (*crs.KeyStats, error) {
	key, err := s.ownedKey(ctx, userId, keyId)
	if err != nil {
		return nil, err
	}
	stats, err := s.crs.GetKeyStats(ctx, key.CrsKeyId)
	if err != nil {
		return nil, fmt.Errorf("fetch key stats: %w", err)
	}
	stats.KeyId = keyId
	return stats, nil
}

func (s *StatsService) GetUsageTrend(ctx context.Context, userId, keyId string, params crs.TrendParams) ([]crs.TrendPoint, error) {
	if keyId != "" {
		key, err := s.ownedKey(ctx, userId, keyId)
		if err != nil {
			return nil, err
		}
		params.KeyId = key.CrsKeyId
	}
	return s.crs.GetUsageTrend(ctx, params)
}

func (s *StatsService) GetDashboard(ctx context.Context) (*crs.Dashboard, error) {
	return s.crs.GetDashboard(ctx)
}

// ExportUsageCSV renders one row per key. A stats fetch failure for a
// single key leaves its usage columns empty instead of failing the export.
func (s *StatsService) ExportUsageCSV(ctx context.Context, userId string) ([]byte, error) {
	keys, err := s.keys.ListByUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	header := []string{"keyId", "name", "status", "totalRequests", "totalTokens", "inputTokens", "outputTokens", "cost"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, key := range keys {
		row := []string{key.KeyId, key.Name, key.Status, "", "", "", "", ""}
		stats, err := s.crs.GetKeyStats(ctx, key.CrsKeyId)
		if err != nil {
			log.Warnw("usage export: stats unavailable for key", "keyId", key.KeyId, "error", err)
		} else {
			row[3] = strconv.FormatInt(stats.TotalRequests, 10)
			row[4] = strconv.FormatInt(stats.TotalTokens, 10)
			row[5] = strconv.FormatInt(stats.InputTokens, 10)
			row[6] = strconv.FormatInt(stats.OutputTokens, 10)
			row[7] = strconv.FormatFloat(stats.Cost, 'f', 4, 64)
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *StatsService) ownedKey(ctx context.Context, userId, keyId string) (*model.ApiKey, error) {
	key, err := s.keys.Get(ctx, keyId)
	if err != nil {
		return nil, ErrNotFound
	}
	if key.UserId != userId {
		return nil, ErrForbidden
	}
	return key, nil
}
