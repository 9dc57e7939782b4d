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
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/keyportal/keyportal/internal/portal/model"
	"github.com/keyportal/keyportal/pkg/log"
	"github.com/keyportal/keyportal/pkg/metrics"
	"github.com/robfig/cron/v3"
)

// Job is a named recurring task.
type Job struct {
	Name        string
	Schedule    string // standard 5-field cron expression
	Description string
	Handler     func(ctx context.Context) (map[string]any, error)
}

// ExecutionLog persists job execution history. A nil store disables history.
type ExecutionLog interface {
	Create(ctx context.Context, logRow *model.CronJobLog) error
	Update(ctx context.Context, logRow *model.CronJobLog) error
}

// Runner schedules and executes named jobs with per-job-name mutual
// exclusion. Overlapping ticks for the same job are dropped, not queued.
type Runner struct {
	cron *cron.Cron
	logs ExecutionLog
	now  func() time.Time

	mu      sync.Mutex
	jobs    map[string]*Job
	entries map[string]cron.EntryID
	running map[string]struct{}
}

// NewRunner creates a runner. logs may be nil to skip history persistence.
func NewRunner(logs ExecutionLog) *Runner {
	return &Runner{
		cron:    cron.New(),
		logs:    logs,
		now:     time.Now,
		jobs:    map[string]*Job{},
		entries: map[string]cron.EntryID{},
		running: map[string]struct{}{},
	}
}

// Register validates and binds a job to the scheduler.
func (r *Runner) Register(job *Job) error {
	if job == nil || job.Name == "" {
		return fmt.Errorf("job name is required")
	}
	if job.Handler == nil {
		return fmt.Errorf("job %q has no handler", job.Name)
	}
	if _, err := cron.ParseStandard(job.Schedule); err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", job.Schedule, job.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.Name]; exists {
		return fmt.Errorf("job %q is already registered", job.Name)
	}

	entryID, err := r.cron.AddFunc(job.Schedule, func() {
		r.ExecuteJob(context.Background(), job)
	})
	if err != nil {
		return fmt.Errorf("bind job %q: %w", job.Name, err)
	}

	r.jobs[job.Name] = job
	r.entries[job.Name] = entryID
	log.Infow("cron job registered", "job", job.Name, "schedule", job.Schedule)
	return nil
}

// Start begins firing schedules.
func (r *Runner) Start() {
	r.cron.Start()
}

// StopAll stops the scheduler and clears all registrations. In-flight
// executions finish on their own.
func (r *Runner) StopAll() {
	r.cron.Stop()
	r.mu.Lock()
	r.jobs = map[string]*Job{}
	r.entries = map[string]cron.EntryID{}
	r.mu.Unlock()
	log.Info("cron runner stopped")
}

// RegisteredJobs returns registered job names in ascending order.
func (r *Runner) RegisteredJobs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunManually triggers a registered job outside its schedule. The executed
// flag is false when the job was skipped because a run is still in flight.
func (r *Runner) RunManually(ctx context.Context, name string) (executed bool, err error) {
	r.mu.Lock()
	job, ok := r.jobs[name]
	r.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("job %q is not registered", name)
	}
	return r.ExecuteJob(ctx, job), nil
}

// tryAcquire marks the job running unless it already is.
func (r *Runner) tryAcquire(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.running[name]; busy {
		return false
	}
	r.running[name] = struct{}{}
	return true
}

func (r *Runner) release(name string) {
	r.mu.Lock()
	delete(r.running, name)
	r.mu.Unlock()
}

// ExecuteJob runs one job execution under the mutual-exclusion rule.
// Handler errors and panics are recorded, never propagated; a failing job
// cannot crash the scheduler or other jobs.
func (r *Runner) ExecuteJob(ctx context.Context, job *Job) (executed bool) {
	if !r.tryAcquire(job.Name) {
		log.Warnw("cron job still running, tick skipped", "job", job.Name)
		metrics.ObserveCronSkip(job.Name)
		return false
	}
	defer r.release(job.Name)

	startAt := r.now()
	logRow := &model.CronJobLog{
		JobName: job.Name,
		Status:  model.CronJobStatusRunning,
		StartAt: startAt,
	}
	logged := r.createLog(ctx, logRow)

	result, err := r.invoke(ctx, job)

	endAt := r.now()
	duration := endAt.Sub(startAt)
	logRow.EndAt = &endAt
	logRow.Duration = duration.Milliseconds()
	if err != nil {
		logRow.Status = model.CronJobStatusFailed
		logRow.Error = err.Error()
		log.Errorw("cron job failed", "job", job.Name, "duration", duration, "error", err)
	} else {
		logRow.Status = model.CronJobStatusSuccess
		logRow.Result = result
		log.Infow("cron job finished", "job", job.Name, "duration", duration)
	}
	metrics.ObserveCronExecution(job.Name, logRow.Status, duration)

	if logged {
		r.finalizeLog(ctx, logRow)
	}
	return true
}

// invoke runs the handler with panic containment.
func (r *Runner) invoke(ctx context.Context, job *Job) (result map[string]any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job panicked: %v", rec)
		}
	}()
	return job.Handler(ctx)
}

// createLog writes the RUNNING row. A persistence failure is logged and the
// job still runs; history is best-effort and never gates execution.
func (r *Runner) createLog(ctx context.Context, logRow *model.CronJobLog) bool {
	if r.logs == nil {
		return false
	}
	if err := r.logs.Create(ctx, logRow); err != nil {
		log.Errorw("failed to create cron job log", "job", logRow.JobName, "error", err)
		return false
	}
	return true
}

func (r *Runner) finalizeLog(ctx context.Context, logRow *model.CronJobLog) {
	if err := r.logs.Update(ctx, logRow); err != nil {
		log.Errorw("failed to finalize cron job log", "job", logRow.JobName, "error", err)
	}
}
