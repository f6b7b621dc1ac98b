// Package runner is an in-process job subsystem.
//
// Runner runs workflows of data points and the optimizer as local processes,
// up to the number of local jobs at once.
package runner

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/opst/knitsim/pkg/analysis"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
	"golang.org/x/sync/semaphore"
)

var ErrClosed = errors.New("runner is closed")

type Runner struct {
	mu sync.Mutex

	logger   *log.Logger
	coalesce time.Duration

	jobs    map[analysis.JobID]*Job
	queue   []*Job
	running map[analysis.JobID]*Job

	paused   bool
	maxLocal int
	sem      *semaphore.Weighted

	// closed and renewed when a job leaves the queue or finishes.
	changed chan struct{}

	events *eventQueue

	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

var _ driver.JobSubsystem = &Runner{}

type Option func(*Runner) *Runner

func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) *Runner {
		if logger != nil {
			r.logger = logger
		}
		return r
	}
}

// WithCoalesceDelay sets how long output files should be quiet before they are notified.
//
// Default is 200 milliseconds.
func WithCoalesceDelay(d time.Duration) Option {
	return func(r *Runner) *Runner {
		if 0 <= d {
			r.coalesce = d
		}
		return r
	}
}

// New creates a Runner running maxLocalJobs jobs at once.
//
// Call Close to stop it.
func New(maxLocalJobs int, options ...Option) *Runner {
	if maxLocalJobs < 1 {
		maxLocalJobs = 1
	}
	logger := log.New("runner")
	logger.SetLevel(log.WARN)

	ctx, stop := context.WithCancel(context.Background())
	r := &Runner{
		logger:   logger,
		coalesce: 200 * time.Millisecond,
		jobs:     map[analysis.JobID]*Job{},
		running:  map[analysis.JobID]*Job{},
		maxLocal: maxLocalJobs,
		sem:      semaphore.NewWeighted(int64(maxLocalJobs)),
		changed:  make(chan struct{}),
		events:   newEventQueue(),
		ctx:      ctx,
		stop:     stop,
	}
	for _, opt := range options {
		r = opt(r)
	}
	return r
}

// NewJob creates a job. The job does not run until enqueued.
func (r *Runner) NewJob(spec driver.JobSpec) (driver.Job, error) {
	if (spec.Workflow == nil) == (spec.Dakota == nil) {
		return nil, fmt.Errorf("job '%s': either of workflow or optimizer should be given", spec.Name)
	}
	if spec.Directory == "" {
		return nil, fmt.Errorf("job '%s': directory is required", spec.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}

	j := &Job{r: r, id: uuid.New(), spec: spec, status: analysis.JobWaiting}
	if spec.Workflow != nil {
		for i := range spec.Workflow.Steps {
			step := spec.Workflow.Steps[i]
			c := &Job{
				r: r, id: uuid.New(), spec: spec, step: &step,
				parent: j, status: analysis.JobWaiting,
			}
			j.children = append(j.children, c)
			r.jobs[c.id] = c
		}
	}
	r.jobs[j.id] = j
	return j, nil
}

// Enqueue schedules a top level job.
//
// A job already waiting or running is left as it is.
// A finished job is run again only if force is true.
func (r *Runner) Enqueue(job driver.Job, force bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	j, ok := r.jobs[job.ID()]
	if !ok {
		return driver.ErrJobNotFound
	}
	if j.parent != nil {
		return fmt.Errorf("job %s is not a top level job", j.id)
	}
	if _, ok := r.running[j.id]; ok || slices.Contains(r.queue, j) {
		return nil
	}
	if j.status.Finished() {
		if !force {
			r.logger.Debugf("job %s has finished already", j.id)
			return nil
		}
		j.resetLocked()
	}
	r.queue = append(r.queue, j)
	r.dispatchLocked()
	return nil
}

// Remove forgets the job tree. If it is running, it is canceled.
func (r *Runner) Remove(id analysis.JobID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return driver.ErrJobNotFound
	}
	for j.parent != nil {
		j = j.parent
	}
	r.cancelLocked(j)
	delete(r.jobs, j.id)
	for _, c := range j.children {
		delete(r.jobs, c.id)
	}
	return nil
}

func (r *Runner) GetJob(id analysis.JobID) (driver.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, driver.ErrJobNotFound
	}
	return j, nil
}

func (r *Runner) SetPaused(paused bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = paused
	r.dispatchLocked()
}

func (r *Runner) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

func (r *Runner) MaxLocalJobs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxLocal
}

// SetMaxLocalJobs changes the number of jobs run at once.
//
// Running jobs keep running. Those over the new limit are not counted.
func (r *Runner) SetMaxLocalJobs(n int) {
	if n < 1 {
		n = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	sem := semaphore.NewWeighted(int64(n))
	for _, j := range r.running {
		if sem.TryAcquire(1) {
			j.sem = sem
		} else {
			j.sem = nil
		}
	}
	r.sem = sem
	r.maxLocal = n
	r.dispatchLocked()
}

// Events are notifications of jobs. It is closed by Close.
func (r *Runner) Events() <-chan driver.Event {
	return r.events.out
}

// WaitForFinished blocks until no job is waiting or running, or ctx is done.
//
// While paused with waiting jobs, it blocks until ctx is done.
func (r *Runner) WaitForFinished(ctx context.Context) error {
	for {
		r.mu.Lock()
		if len(r.queue) == 0 && len(r.running) == 0 {
			r.mu.Unlock()
			return nil
		}
		changed := r.changed
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

// Close cancels all jobs and waits for them. Events is closed after that.
func (r *Runner) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	for _, j := range slices.Clone(r.queue) {
		r.cancelLocked(j)
	}
	r.mu.Unlock()

	r.stop()
	r.wg.Wait()
	r.events.close()
	return nil
}

func (r *Runner) notifyChangedLocked() {
	close(r.changed)
	r.changed = make(chan struct{})
}

func (r *Runner) setStatusLocked(j *Job, status analysis.JobStatus, errs ...string) {
	j.status = status
	j.errors = append(j.errors, errs...)
	r.events.push(driver.Event{Kind: driver.TreeStateChanged, Job: j.id})
}

func (r *Runner) setStatus(j *Job, status analysis.JobStatus, errs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setStatusLocked(j, status, errs...)
}

// dispatchLocked starts queued jobs as far as slots are available.
func (r *Runner) dispatchLocked() {
	for !r.paused && !r.closed && 0 < len(r.queue) {
		if !r.sem.TryAcquire(1) {
			return
		}
		j := r.queue[0]
		r.queue = r.queue[1:]

		ctx, cancel := context.WithCancel(r.ctx)
		j.cancel = cancel
		j.sem = r.sem
		r.running[j.id] = j
		r.setStatusLocked(j, analysis.JobRunning)

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			defer cancel()
			result := r.execute(ctx, j)
			r.finish(j, result)
		}()
	}
}

func (r *Runner) finish(j *Job, result analysis.JobResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if j.sem != nil {
		j.sem.Release(1)
		j.sem = nil
	}
	j.cancel = nil
	delete(r.running, j.id)

	r.setStatusLocked(j, result.Status, result.Errors...)
	if j.spec.Dakota != nil {
		r.events.push(driver.Event{Kind: driver.Finished, Job: j.id, Errors: slices.Clone(result.Errors)})
	}
	r.logger.Infof("job '%s' (%s) %s", j.spec.Name, j.id, result.Status)

	r.notifyChangedLocked()
	r.dispatchLocked()
}

// cancelLocked cancels the top level job.
func (r *Runner) cancelLocked(j *Job) {
	if i := slices.Index(r.queue, j); 0 <= i {
		r.queue = slices.Delete(r.queue, i, i+1)
		for _, c := range j.children {
			if !c.status.Finished() {
				c.status = analysis.JobCanceled
			}
		}
		r.setStatusLocked(j, analysis.JobCanceled)
		r.notifyChangedLocked()
		return
	}
	if j.cancel != nil {
		j.cancel()
	}
}

// output records a file written by the job, and notifies it.
func (r *Runner) output(j *Job, path string) {
	r.mu.Lock()
	if !slices.Contains(j.outputs, path) {
		j.outputs = append(j.outputs, path)
	}
	r.mu.Unlock()
	r.events.push(driver.Event{Kind: driver.OutputFileChanged, Job: j.id, File: path})
}
