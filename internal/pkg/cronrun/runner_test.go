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

package cronrun

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/keyportal/keyportal/internal/portal/model"
)

type fakeExecutionLog struct {
	mu      sync.Mutex
	created []*model.CronJobLog
	updated []*model.CronJobLog
	failAll bool
}

func (f *fakeExecutionLog) Create(_ context.Context, row *model.CronJobLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("store down")
	}
	cp := *row
	f.created = append(f.created, &cp)
	return nil
}

func (f *fakeExecutionLog) Update(_ context.Context, row *model.CronJobLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("store down")
	}
	cp := *row
	f.updated = append(f.updated, &cp)
	return nil
}

func (f *fakeExecutionLog) lastUpdate() *model.CronJobLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updated) == 0 {
		return nil
	}
	return f.updated[len(f.updated)-1]
}

func TestRegisterValidation(t *testing.T) {
	runner := NewRunner(nil)
	handler := func(context.Context) (map[string]any, error) { return nil, nil }

	if err := runner.Register(&Job{Name: "", Schedule: "* * * * *", Handler: handler}); err == nil {
		t.Fatal("expected error for empty job name")
	}
	if err := runner.Register(&Job{Name: "bad-schedule", Schedule: "not a cron expr", Handler: handler}); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if err := runner.Register(&Job{Name: "no-handler", Schedule: "* * * * *"}); err == nil {
		t.Fatal("expected error for missing handler")
	}

	job := &Job{Name: "nightly", Schedule: "0 2 * * *", Handler: handler}
	if err := runner.Register(job); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := runner.Register(job); err == nil {
		t.Fatal("expected duplicate name to be rejected")
	}

	names := runner.RegisteredJobs()
	if len(names) != 1 || names[0] != "nightly" {
		t.Fatalf("unexpected registered jobs: %v", names)
	}
}

func TestOverlappingExecutionIsSkipped(t *testing.T) {
	store := &fakeExecutionLog{}
	runner := NewRunner(store)

	var calls atomic.Int64
	release := make(chan struct{})
	started := make(chan struct{})
	job := &Job{
		Name:     "slow",
		Schedule: "* * * * *",
		Handler: func(context.Context) (map[string]any, error) {
			calls.Add(1)
			close(started)
			<-release
			return map[string]any{"done": true}, nil
		},
	}
	if err := runner.Register(job); err != nil {
		t.Fatalf("register: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var firstRan bool
	go func() {
		defer wg.Done()
		firstRan = runner.ExecuteJob(context.Background(), job)
	}()

	<-started
	if runner.ExecuteJob(context.Background(), job) {
		t.Fatal("second tick should have been skipped while first is running")
	}

	close(release)
	wg.Wait()
	if !firstRan {
		t.Fatal("first execution should have run")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("handler calls = %d, want 1", got)
	}

	// The skipped tick must leave no history row behind.
	store.mu.Lock()
	created := len(store.created)
	store.mu.Unlock()
	if created != 1 {
		t.Fatalf("created log rows = %d, want 1", created)
	}

	// And after release the same job can run again.
	if !runner.ExecuteJob(context.Background(), job) {
		t.Fatal("job should be runnable again after the first run finished")
	}
}

func TestFailedJobIsRecordedAndIsolated(t *testing.T) {
	store := &fakeExecutionLog{}
	runner := NewRunner(store)

	failing := &Job{
		Name:     "failing",
		Schedule: "* * * * *",
		Handler: func(context.Context) (map[string]any, error) {
			return nil, errors.New("upstream timeout")
		},
	}
	healthy := &Job{
		Name:     "healthy",
		Schedule: "* * * * *",
		Handler: func(context.Context) (map[string]any, error) {
			return map[string]any{"checked": 3}, nil
		},
	}
	for _, job := range []*Job{failing, healthy} {
		if err := runner.Register(job); err != nil {
			t.Fatalf("register %s: %v", job.Name, err)
		}
	}

	if !runner.ExecuteJob(context.Background(), failing) {
		t.Fatal("failing job should still execute")
	}
	row := store.lastUpdate()
	if row == nil {
		t.Fatal("expected a finalized log row")
	}
	if row.Status != model.CronJobStatusFailed {
		t.Fatalf("status = %s, want %s", row.Status, model.CronJobStatusFailed)
	}
	if row.Error != "upstream timeout" {
		t.Fatalf("error = %q", row.Error)
	}
	if row.EndAt == nil {
		t.Fatal("end_at must be set on failure")
	}

	// A failure in one job must not affect another.
	if !runner.ExecuteJob(context.Background(), healthy) {
		t.Fatal("healthy job should execute after another job failed")
	}
	row = store.lastUpdate()
	if row.Status != model.CronJobStatusSuccess {
		t.Fatalf("status = %s, want %s", row.Status, model.CronJobStatusSuccess)
	}
	if row.Result["checked"] != 3 {
		t.Fatalf("result = %v", row.Result)
	}
}

func TestPanicInHandlerIsContained(t *testing.T) {
	store := &fakeExecutionLog{}
	runner := NewRunner(store)

	job := &Job{
		Name:     "panics",
		Schedule: "* * * * *",
		Handler: func(context.Context) (map[string]any, error) {
			panic("boom")
		},
	}
	if err := runner.Register(job); err != nil {
		t.Fatalf("register: %v", err)
	}

	if !runner.ExecuteJob(context.Background(), job) {
		t.Fatal("panicking job counts as an execution")
	}
	row := store.lastUpdate()
	if row == nil || row.Status != model.CronJobStatusFailed {
		t.Fatalf("expected FAILED row, got %+v", row)
	}
}

func TestRunManually(t *testing.T) {
	store := &fakeExecutionLog{}
	runner := NewRunner(store)

	if _, err := runner.RunManually(context.Background(), "unknown"); err == nil {
		t.Fatal("expected error for unregistered job")
	}

	job := &Job{
		Name:     "on-demand",
		Schedule: "0 */6 * * *",
		Handler: func(context.Context) (map[string]any, error) {
			return map[string]any{"ok": true}, nil
		},
	}
	if err := runner.Register(job); err != nil {
		t.Fatalf("register: %v", err)
	}

	executed, err := runner.RunManually(context.Background(), "on-demand")
	if err != nil {
		t.Fatalf("run manually: %v", err)
	}
	if !executed {
		t.Fatal("manual run should have executed")
	}
	row := store.lastUpdate()
	if row == nil || row.Status != model.CronJobStatusSuccess {
		t.Fatalf("expected SUCCESS row, got %+v", row)
	}
}

func TestHistoryFailureDoesNotBlockExecution(t *testing.T) {
	store := &fakeExecutionLog{failAll: true}
	runner := NewRunner(store)

	var ran atomic.Bool
	job := &Job{
		Name:     "resilient",
		Schedule: "* * * * *",
		Handler: func(context.Context) (map[string]any, error) {
			ran.Store(true)
			return nil, nil
		},
	}
	if err := runner.Register(job); err != nil {
		t.Fatalf("register: %v", err)
	}

	if !runner.ExecuteJob(context.Background(), job) {
		t.Fatal("job should execute even when history store is down")
	}
	if !ran.Load() {
		t.Fatal("handler should have run")
	}
}

func TestStopAllClearsRegistrations(t *testing.T) {
	runner := NewRunner(nil)
	job := &Job{
		Name:     "ephemeral",
		Schedule: "* * * * *",
		Handler:  func(context.Context) (map[string]any, error) { return nil, nil },
	}
	if err := runner.Register(job); err != nil {
		t.Fatalf("register: %v", err)
	}
	runner.Start()
	runner.StopAll()
	if len(runner.RegisteredJobs()) != 0 {
		t.Fatal("registrations should be cleared after StopAll")
	}
}
