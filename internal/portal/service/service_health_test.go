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
	"errors"
	"testing"

	"github.com/keyportal/keyportal/internal/portal/model"
)

type fakeHealthStore struct {
	rows      []*model.SystemHealthCheck
	createErr error
}

func (f *fakeHealthStore) Create(_ context.Context, check *model.SystemHealthCheck) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.rows = append(f.rows, check)
	return nil
}

func (f *fakeHealthStore) ListRecent(_ context.Context, _ int) ([]*model.SystemHealthCheck, error) {
	return f.rows, nil
}

func healthyPing(context.Context) error   { return nil }
func unhealthyPing(context.Context) error { return errors.New("connection refused") }

func TestCheckAllAggregation(t *testing.T) {
	cases := []struct {
		name     string
		database PingFunc
		redis    PingFunc
		crs      PingFunc
		want     string
	}{
		{"all healthy", healthyPing, healthyPing, healthyPing, model.HealthStatusHealthy},
		{"one down", healthyPing, unhealthyPing, healthyPing, model.HealthStatusDegraded},
		{"two down", unhealthyPing, unhealthyPing, healthyPing, model.HealthStatusDegraded},
		{"all down", unhealthyPing, unhealthyPing, unhealthyPing, model.HealthStatusUnhealthy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeHealthStore{}
			svc := NewHealthService(tc.database, tc.redis, tc.crs, store)

			check := svc.CheckAll(context.Background())
			if check.Overall != tc.want {
				t.Fatalf("overall = %s, want %s", check.Overall, tc.want)
			}
			if len(store.rows) != 1 {
				t.Fatalf("archived rows = %d, want 1", len(store.rows))
			}
		})
	}
}

func TestProbeCapturesErrorInsteadOfFailing(t *testing.T) {
	svc := NewHealthService(PingFunc(unhealthyPing), PingFunc(healthyPing), PingFunc(healthyPing), &fakeHealthStore{})

	result := svc.CheckDatabase(context.Background())
	if result.Status != model.HealthStatusUnhealthy {
		t.Fatalf("status = %s", result.Status)
	}
	if result.Error != "connection refused" {
		t.Fatalf("error = %q", result.Error)
	}
}

func TestCheckAllReturnsSnapshotWhenArchiveFails(t *testing.T) {
	store := &fakeHealthStore{createErr: errors.New("table is full")}
	svc := NewHealthService(PingFunc(healthyPing), PingFunc(healthyPing), PingFunc(healthyPing), store)

	check := svc.CheckAll(context.Background())
	if check == nil {
		t.Fatal("snapshot must still be returned when archival fails")
	}
	if check.Overall != model.HealthStatusHealthy {
		t.Fatalf("overall = %s", check.Overall)
	}
}
