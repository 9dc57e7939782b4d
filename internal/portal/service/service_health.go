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
	"time"

	"github.com/keyportal/keyportal/internal/portal/model"
	"github.com/keyportal/keyportal/internal/portal/repo"
	"github.com/keyportal/keyportal/pkg/log"
)

// Pinger is a connectivity probe to one backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// IHealthService probes the backing services and aggregates an overall
// status.
type IHealthService interface {
	CheckDatabase(ctx context.Context) model.ProbeResult
	CheckRedis(ctx context.Context) model.ProbeResult
	CheckCRS(ctx context.Context) model.ProbeResult
	CheckAll(ctx context.Context) *model.SystemHealthCheck
	History(ctx context.Context, limit int) ([]*model.SystemHealthCheck, error)
}

type HealthService struct {
	database Pinger
	redis    Pinger
	crs      Pinger
	store    repo.IHealthCheckRepository
	now      func() time.Time
}

func NewHealthService(database, redis, crs Pinger, store repo.IHealthCheckRepository) IHealthService {
	return &HealthService{
		database: database,
		redis:    redis,
		crs:      crs,
		store:    store,
		now:      time.Now,
	}
}

func (s *HealthService) CheckDatabase(ctx context.Context) model.ProbeResult {
	return s.probe(ctx, s.database)
}

func (s *HealthService) CheckRedis(ctx context.Context) model.ProbeResult {
	return s.probe(ctx, s.redis)
}

func (s *HealthService) CheckCRS(ctx context.Context) model.ProbeResult {
	return s.probe(ctx, s.crs)
}

// probe times one connectivity check. A failure yields an unhealthy result,
// never an error to the caller.
func (s *HealthService) probe(ctx context.Context, pinger Pinger) model.ProbeResult {
	start := s.now()
	err := pinger.Ping(ctx)
	elapsed := s.now().Sub(start).Milliseconds()
	if err != nil {
		return model.ProbeResult{
			Status:       model.HealthStatusUnhealthy,
			ResponseTime: elapsed,
			Error:        err.Error(),
		}
	}
	return model.ProbeResult{
		Status:       model.HealthStatusHealthy,
		ResponseTime: elapsed,
	}
}

// CheckAll runs every probe and rolls the results up: healthy when all
// probes pass, unhealthy when all fail, degraded in between. The snapshot is
// archived best-effort and always returned to the caller.
func (s *HealthService) CheckAll(ctx context.Context) *model.SystemHealthCheck {
	check := &model.SystemHealthCheck{
		Database:  s.CheckDatabase(ctx),
		Redis:     s.CheckRedis(ctx),
		Crs:       s.CheckCRS(ctx),
		CheckedAt: s.now(),
	}

	unhealthy := 0
	for _, result := range []model.ProbeResult{check.Database, check.Redis, check.Crs} {
		if result.Status == model.HealthStatusUnhealthy {
			unhealthy++
		}
	}
	switch unhealthy {
	case 0:
		check.Overall = model.HealthStatusHealthy
	case 3:
		check.Overall = model.HealthStatusUnhealthy
	default:
		check.Overall = model.HealthStatusDegraded
	}

	if s.store != nil {
		if err := s.store.Create(ctx, check); err != nil {
			log.Errorw("failed to archive health check", "overall", check.Overall, "error", err)
		}
	}
	return check
}

func (s *HealthService) History(ctx context.Context, limit int) ([]*model.SystemHealthCheck, error) {
	return s.store.ListRecent(ctx, limit)
}
