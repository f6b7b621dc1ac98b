// Package analysisdriver runs analyses: it queues a job per data point into a job subsystem,
// ingests results of finished jobs, and iterates with the algorithm until it completes.
//
// The driver does not start goroutines by itself. Notifications from the job subsystem
// are delivered by Dispatch, called from ProcessEvents, Serve or WaitForFinished.
package analysisdriver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/opst/knitsim/pkg/analysis"
	xe "github.com/opst/knitsim/pkg/errors"
	"github.com/opst/knitsim/pkg/loop"
)

var (
	ErrInvalidDataPoints = errors.New("analysis has invalid data points")
	ErrInvalidResults    = errors.New("analysis has invalid results")
)

type handlerKind int

const (
	// top level job of a data point. It waits for tree state changes.
	onTreeStateChanged handlerKind = iota + 1

	// optimizer job. It waits for output files and its finish.
	onDakotaJob
)

type Driver struct {
	mu sync.Mutex

	db       ProjectDatabase
	jobs     JobSubsystem
	logger   *log.Logger
	listener Listener

	pollInterval time.Duration

	running bool
	current []*CurrentAnalysis

	// completion dispatch table
	handlers map[analysis.JobID]handlerKind

	// notifications to be sent after unlock
	outbox []func(Listener)
}

type Option func(*Driver) *Driver

// WithLogger sets the logger. By default, logs are written at WARN level and above.
func WithLogger(logger *log.Logger) Option {
	return func(d *Driver) *Driver {
		if logger != nil {
			d.logger = logger
		}
		return d
	}
}

func WithListener(listeners ...Listener) Option {
	return func(d *Driver) *Driver {
		d.listener = append(d.listener.(Listeners), listeners...)
		return d
	}
}

// WithPollInterval sets the length of slices WaitForFinished waits in. Default is 1 second.
func WithPollInterval(interval time.Duration) Option {
	return func(d *Driver) *Driver {
		if 0 < interval {
			d.pollInterval = interval
		}
		return d
	}
}

func New(db ProjectDatabase, options ...Option) *Driver {
	logger := log.New("analysisdriver")
	logger.SetLevel(log.WARN)
	d := &Driver{
		db:           db,
		jobs:         db.JobSubsystem(),
		logger:       logger,
		listener:     Listeners{},
		pollInterval: time.Second,
		handlers:     map[analysis.JobID]handlerKind{},
	}
	for _, opt := range options {
		d = opt(d)
	}
	return d
}

func (d *Driver) lock() {
	d.mu.Lock()
}

func (d *Driver) unlock() {
	outbox := d.outbox
	d.outbox = nil
	d.mu.Unlock()
	for _, notify := range outbox {
		notify(d.listener)
	}
}

func (d *Driver) emit(notify func(Listener)) {
	d.outbox = append(d.outbox, notify)
}

func (d *Driver) isCurrent(ca *CurrentAnalysis) bool {
	return slices.Contains(d.current, ca)
}

func (d *Driver) summaryOf(ca *CurrentAnalysis) Summary {
	return ca.summary(d.isCurrent(ca))
}

// Run starts running the analysis.
//
// If the analysis is already running, the CurrentAnalysis running it is returned.
func (d *Driver) Run(a *analysis.Analysis, options RunOptions) (*CurrentAnalysis, error) {
	d.lock()
	defer d.unlock()

	if a.DataPointsAreInvalid() {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidDataPoints, a.Name)
	}
	if a.ResultsAreInvalid() {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidResults, a.Name)
	}
	if ca, ok := d.currentByID(a.ID); ok {
		return ca, nil
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	d.cleanOutIncompleteJobs(a)

	// until the analysis becomes current, failures put the driver back as it was.
	wasPaused, wasRunning := d.jobs.Paused(), d.running
	abort := func(err error) (*CurrentAnalysis, error) {
		d.jobs.SetPaused(wasPaused)
		d.running = wasRunning
		return nil, err
	}

	if options.QueuePausing != NoPause {
		d.jobs.SetPaused(true)
	}
	if options.QueuePausing != FullPauseManualUnpause {
		d.running = true
	}

	if err := os.MkdirAll(options.WorkingDirectory, os.FileMode(0o755)); err != nil {
		return abort(xe.Wrap(err))
	}
	if err := d.save(a); err != nil {
		return abort(err)
	}

	if alg, ok := a.OSAlgorithm(); ok {
		n := alg.CreateNextIteration(a)
		d.logger.Infof("algorithm '%s' created %d new data points", alg.Name(), n)
		if err := d.save(a); err != nil {
			return abort(err)
		}
	}

	ca := newCurrentAnalysis(a, options)
	d.current = append(d.current, ca)
	summary := d.summaryOf(ca)
	d.emit(func(l Listener) { l.AnalysisStarted(summary) })

	err := d.queueJobs(ca)

	if alg, ok := a.DakotaAlgorithm(); ok && (!alg.IsComplete() || alg.Failed()) {
		if derr := d.startDakotaJob(ca); derr != nil {
			d.logger.Errorf("analysis '%s': failed to start optimizer: %s", a.Name, derr)
			a.UpdateDakotaAlgorithm(analysis.JobResult{Status: analysis.JobFailed, Errors: []string{derr.Error()}})
			if serr := d.save(a); serr != nil {
				d.logger.Error(serr)
			}
			if d.isCurrent(ca) {
				err = errors.Join(err, d.queueJobs(ca))
			}
			err = errors.Join(err, derr)
		}
	}
	return ca, err
}

// IsRunning tells some analyses are being run.
func (d *Driver) IsRunning() bool {
	d.lock()
	defer d.unlock()
	return d.running
}

// WaitForFinished waits for analyses.
//
// If timeout is positive, it waits for the job subsystem at most timeout, and returns false.
// Otherwise, it waits until no analysis is running, processing notifications, and returns true.
func (d *Driver) WaitForFinished(timeout time.Duration) bool {
	if 0 < timeout {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		d.jobs.WaitForFinished(ctx)
		return false
	}

	loop.Start(
		context.Background(), struct{}{},
		func(ctx context.Context, v struct{}) (struct{}, loop.Next) {
			if !d.IsRunning() {
				return v, loop.Break(nil)
			}
			d.jobs.WaitForFinished(ctx)
			d.processEvents(d.pollInterval, func() bool { return !d.IsRunning() })
			return v, loop.Continue(0)
		},
		loop.WithTimeout(d.pollInterval),
	)
	return true
}

// UnpauseQueue resumes the job subsystem paused by FullPauseManualUnpause.
func (d *Driver) UnpauseQueue() {
	d.lock()
	defer d.unlock()
	d.unpauseQueue()
}

func (d *Driver) unpauseQueue() {
	if 0 < len(d.current) {
		d.running = true
	}
	d.jobs.SetPaused(false)
}

// CurrentAnalyses are analyses being run.
func (d *Driver) CurrentAnalyses() []*CurrentAnalysis {
	d.lock()
	defer d.unlock()
	return slices.Clone(d.current)
}

func (d *Driver) CurrentAnalysis(id uuid.UUID) (*CurrentAnalysis, bool) {
	d.lock()
	defer d.unlock()
	return d.currentByID(id)
}

// Summaries are snapshots of analyses being run.
func (d *Driver) Summaries() []Summary {
	d.lock()
	defer d.unlock()
	ret := make([]Summary, len(d.current))
	for i, ca := range d.current {
		ret[i] = d.summaryOf(ca)
	}
	return ret
}

func (d *Driver) Summary(id uuid.UUID) (Summary, bool) {
	d.lock()
	defer d.unlock()
	ca, ok := d.currentByID(id)
	if !ok {
		return Summary{}, false
	}
	return d.summaryOf(ca), true
}

// DataPoints are copies of data points of the analysis being run.
func (d *Driver) DataPoints(id uuid.UUID) ([]analysis.DataPoint, bool) {
	d.lock()
	defer d.unlock()
	ca, ok := d.currentByID(id)
	if !ok {
		return nil, false
	}
	ret := make([]analysis.DataPoint, len(ca.analysis.DataPoints))
	for i, dp := range ca.analysis.DataPoints {
		ret[i] = *dp
		ret[i].VariableValues = slices.Clone(dp.VariableValues)
		ret[i].Responses = slices.Clone(dp.Responses)
		ret[i].DakotaParametersFiles = slices.Clone(dp.DakotaParametersFiles)
	}
	return ret, true
}

func (d *Driver) currentByID(id uuid.UUID) (*CurrentAnalysis, bool) {
	for _, ca := range d.current {
		if ca.ID() == id {
			return ca, true
		}
	}
	return nil, false
}

func (d *Driver) currentByQueuedJob(job analysis.JobID) (*CurrentAnalysis, bool) {
	for _, ca := range d.current {
		if ca.hasQueuedJob(job) {
			return ca, true
		}
	}
	return nil, false
}

func (d *Driver) currentByDakotaJob(job analysis.JobID) (*CurrentAnalysis, bool) {
	for _, ca := range d.current {
		if id, ok := ca.DakotaJob(); ok && id == job {
			return ca, true
		}
	}
	return nil, false
}

// remove drops the analysis from current ones.
func (d *Driver) remove(ca *CurrentAnalysis) {
	d.current = slices.DeleteFunc(d.current, func(c *CurrentAnalysis) bool { return c == ca })
	if len(d.current) == 0 {
		d.logger.Debug("no more analyses are running")
		d.running = false
	}
}

func (d *Driver) complete(ca *CurrentAnalysis, reason string) {
	d.remove(ca)
	d.logger.Infof("analysis '%s' (%s) is complete. %s", ca.analysis.Name, ca.ID(), reason)
	summary := d.summaryOf(ca)
	d.emit(func(l Listener) { l.AnalysisComplete(summary) })
}

// save persists the analysis in a transaction.
func (d *Driver) save(a *analysis.Analysis) error {
	if err := d.db.StartTransaction(); err != nil {
		return xe.Wrap(err)
	}
	if err := d.db.SaveAnalysis(a); err != nil {
		return xe.Wrap(errors.Join(err, d.db.CommitTransaction()))
	}
	if err := d.db.Save(); err != nil {
		return xe.Wrap(errors.Join(err, d.db.CommitTransaction()))
	}
	return xe.Wrap(d.db.CommitTransaction())
}

// saveOrLog is save for callbacks, which have nobody to return errors to.
func (d *Driver) saveOrLog(a *analysis.Analysis) {
	if err := d.save(a); err != nil {
		d.logger.Errorf("analysis '%s': failed to save: %s", a.Name, err)
	}
}

// cleanOutIncompleteJobs forgets jobs issued by previous runs which did not complete.
func (d *Driver) cleanOutIncompleteJobs(a *analysis.Analysis) {
	for _, dp := range a.DataPointsToQueue() {
		if dp.HasJob() {
			a.ClearResults(dp)
		}
	}

	alg, ok := a.DakotaAlgorithm()
	if !ok || !alg.HasJob() || (alg.IsComplete() && !alg.Failed()) {
		return
	}
	if job, err := d.jobs.GetJob(alg.Job); err == nil {
		job.Cancel()
	} else {
		d.logger.Debugf("optimizer job %s of previous run: %s", alg.Job, err)
	}
	if err := d.jobs.Remove(alg.Job); err != nil {
		d.logger.Debugf("optimizer job %s of previous run: %s", alg.Job, err)
	}
	alg.ClearJob()
}

// queueJobs enqueues jobs for data points to be run, up to the queue size.
//
// If there is nothing to do, the analysis may complete.
func (d *Driver) queueJobs(ca *CurrentAnalysis) error {
	a := ca.analysis
	points := slices.DeleteFunc(a.DataPointsToQueue(), func(dp *analysis.DataPoint) bool {
		return ca.IsQueued(dp.ID)
	})

	if len(points) == 0 {
		done := false
		if alg, ok := a.DakotaAlgorithm(); !ok {
			done = true
		} else {
			if _, running := ca.DakotaJob(); ca.dakotaStarted && !running {
				done = true
			}
			if alg.IsComplete() {
				done = true
			}
		}
		if done {
			d.complete(ca, "there are no more data points to run.")
		}
		return nil
	}

	options := ca.options
	if options.QueuePausing != NoPause {
		d.jobs.SetPaused(true)
	}

	if ca.completedInOSIteration == ca.totalInOSIteration {
		ca.setIterationSize(len(points))
	}

	var queueErr error
	batch := map[analysis.JobID]uuid.UUID{}
	queued := []*analysis.DataPoint{}
	for _, dp := range points {
		if options.QueueSize != nil && *options.QueueSize <= ca.NumQueuedJobs()+len(queued) {
			break
		}

		job, err := d.issue(ca, dp, nil)
		if err != nil {
			queueErr = err
			break
		}
		d.handlers[job.ID()] = onTreeStateChanged
		if err := d.jobs.Enqueue(job, options.Force); err != nil {
			delete(d.handlers, job.ID())
			a.ClearResults(dp)
			queueErr = xe.Wrap(err)
			break
		}
		batch[job.ID()] = dp.ID
		queued = append(queued, dp)
		d.logger.Infof("analysis '%s': queued %s", a.Name, filepath.Base(dp.Directory))

		if options.QueuePausing == PauseForFirstN && len(queued) == options.FirstN {
			d.unpauseQueue()
		}
	}
	ca.addOSBatch(batch)

	if err := d.save(a); err != nil {
		queueErr = errors.Join(queueErr, err)
	}

	if options.QueuePausing != FullPauseManualUnpause {
		d.unpauseQueue()
	}

	summary := d.summaryOf(ca)
	for _, dp := range queued {
		id := dp.ID
		d.emit(func(l Listener) { l.DataPointQueued(summary, id) })
	}
	return queueErr
}

// issue prepares the directory of the data point and creates a job for it.
//
// The data point gets the run information. The job is not enqueued yet.
func (d *Driver) issue(ca *CurrentAnalysis, dp *analysis.DataPoint, paramsFiles []string) (Job, error) {
	a := ca.analysis
	options := ca.options

	workflow, err := a.Problem.CreateWorkflow(dp, a.Seed, a.WeatherFile, options.Simulation)
	xe.Assert(err == nil, "data point %s does not fit to the problem: %v", dp.ID, err)

	recordID, ok := d.db.DataPointRecordID(dp.ID)
	xe.Assert(ok, "data point %s is not saved", dp.ID)

	dir := filepath.Join(options.WorkingDirectory, fmt.Sprintf("dataPoint%d", recordID))
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if _, err := os.Stat(dir); err == nil {
		if err := os.RemoveAll(dir); err != nil {
			d.logger.Warnf(
				"tried to erase old data before re-running data point, but was unable to, because %s. "+
					"You may see multiple similar and conflicting files in %s.",
				err, dir,
			)
		}
	}
	if err := os.MkdirAll(dir, os.FileMode(0o755)); err != nil {
		return nil, xe.Wrap(err)
	}

	job, err := d.jobs.NewJob(JobSpec{
		Name:      filepath.Base(dir),
		Directory: dir,
		Workflow:  &workflow,
		CleanUp:   options.JobCleanUp,
	})
	if err != nil {
		return nil, xe.Wrap(err)
	}
	a.SetDataPointRunInformation(dp, dir, job.ID(), paramsFiles)
	return job, nil
}

// Stop stops the analysis. Its jobs in flight are canceled.
//
// It holds the lock throughout, so no notification is handled in the middle of stopping.
// Handlers of the canceled jobs are removed from the dispatch table before the lock is released,
// and notifications delivered late for them are ignored by Dispatch.
func (d *Driver) Stop(ca *CurrentAnalysis) {
	d.lock()
	defer d.unlock()

	wasPaused := d.jobs.Paused()
	d.jobs.SetPaused(true)
	defer d.jobs.SetPaused(wasPaused)

	if !d.isCurrent(ca) {
		d.logger.Infof("analysis %s is not running", ca.ID())
		return
	}
	id := ca.ID()

	a := ca.analysis
	for _, job := range ca.QueuedJobs() {
		dpID := ca.queuedOS[job]
		if v, ok := ca.queuedDakota[job]; ok {
			dpID = v
		}
		d.cancel(job)
		ca.forget(job)
		if dp, ok := a.DataPointByID(dpID); ok && !dp.IsComplete() {
			dp.Status = analysis.Stopped
		}
	}
	if job, ok := ca.DakotaJob(); ok {
		d.cancel(job)
		ca.dakotaJob = uuid.Nil
	}
	d.saveOrLog(a)

	d.remove(ca)

	d.logger.Infof("analysis '%s' (%s) is stopped", a.Name, id)
	summary := d.summaryOf(ca)
	d.emit(func(l Listener) { l.AnalysisStopped(summary) })
}

// StopDataPoint stops the job for the data point.
//
// If the data point is not being run, it does nothing.
// The stopped data point is skipped when the analysis queues jobs again.
func (d *Driver) StopDataPoint(dp *analysis.DataPoint) {
	d.lock()
	defer d.unlock()

	if !dp.HasJob() {
		return
	}
	ca, ok := d.currentByQueuedJob(dp.TopLevelJob)
	if !ok {
		return
	}

	wasPaused := d.jobs.Paused()
	d.jobs.SetPaused(true)
	defer d.jobs.SetPaused(wasPaused)

	job := dp.TopLevelJob
	_, isDakota := ca.queuedDakota[job]
	d.cancel(job)
	ca.forget(job)
	dp.Status = analysis.Stopped
	dp.Skip = true
	if isDakota {
		// the optimizer waits for results forever otherwise.
		for _, params := range dp.DakotaParametersFiles {
			d.writeDakotaResults(ca, nil, params)
		}
	}
	d.saveOrLog(ca.analysis)

	d.logger.Infof("data point %s is stopped", dp.ID)
	summary := d.summaryOf(ca)
	id := dp.ID
	d.emit(func(l Listener) { l.DataPointStopped(summary, id) })
}

// cancel cancels and removes the job. Lookup failures are ignored.
func (d *Driver) cancel(id analysis.JobID) {
	delete(d.handlers, id)
	if job, err := d.jobs.GetJob(id); err == nil {
		job.Cancel()
	} else {
		d.logger.Debugf("job %s: %s", id, err)
	}
	if err := d.jobs.Remove(id); err != nil {
		d.logger.Debugf("job %s: %s", id, err)
	}
}

// Dispatch delivers the notification to the handler registered for the job.
//
// Notifications for unknown jobs are ignored.
func (d *Driver) Dispatch(ev Event) {
	d.lock()
	defer d.unlock()

	switch ev.Kind {
	case TreeStateChanged:
		d.jobTreeStateChanged(ev.Job)
	case OutputFileChanged:
		if d.handlers[ev.Job] == onDakotaJob {
			d.dakotaJobOutputFileChanged(ev.Job, ev.File)
		}
	case Finished:
		if d.handlers[ev.Job] == onDakotaJob {
			d.dakotaJobComplete(ev.Job, ev.Errors)
		}
	default:
		d.logger.Warnf("unknown event: %s", ev.Kind)
	}
}

// ProcessEvents dispatches notifications from the job subsystem for budget.
//
// It returns the number of notifications dispatched.
func (d *Driver) ProcessEvents(budget time.Duration) int {
	return d.processEvents(budget, func() bool { return false })
}

func (d *Driver) processEvents(budget time.Duration, enough func() bool) int {
	timer := time.NewTimer(budget)
	defer timer.Stop()

	events := d.jobs.Events()
	n := 0
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return n
			}
			d.Dispatch(ev)
			n++
			if enough() {
				return n
			}
		case <-timer.C:
			return n
		}
	}
}

// Serve dispatches notifications until ctx is done, or the job subsystem closes its events.
func (d *Driver) Serve(ctx context.Context) error {
	events := d.jobs.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			d.Dispatch(ev)
		}
	}
}

// topOf climbs to the top level job of the tree.
func topOf(job Job) Job {
	for {
		parent, ok := job.Parent()
		if !ok {
			return job
		}
		job = parent
	}
}

func (d *Driver) jobTreeStateChanged(id analysis.JobID) {
	job, err := d.jobs.GetJob(id)
	if err != nil {
		d.logger.Infof("job %s is no longer relevant: %s", id, err)
		return
	}
	top := topOf(job)
	if !top.TreeStatus().Finished() {
		return
	}
	if d.handlers[top.ID()] != onTreeStateChanged {
		// notified twice, or stopped.
		d.logger.Debugf("job %s is not registered", top.ID())
		return
	}
	delete(d.handlers, top.ID())

	ca, ok := d.currentByQueuedJob(top.ID())
	if !ok {
		d.logger.Debugf("job %s is no longer queued in any analysis", top.ID())
		return
	}
	a := ca.analysis

	dpID, osOK := ca.removeCompletedOSDataPoint(top.ID())
	var dakotaOK bool
	if v, ok := ca.removeCompletedDakotaDataPoint(top.ID()); ok {
		dpID, dakotaOK = v, true
	}
	xe.Assert(osOK || dakotaOK, "job %s is queued without data point", top.ID())
	dp, ok := a.DataPointByID(dpID)
	xe.Assert(ok, "data point %s of job %s is not in analysis '%s'", dpID, top.ID(), a.Name)

	d.logger.Infof(
		"processing %s job tree for %s from analysis '%s'",
		top.TreeStatus(), filepath.Base(dp.Directory), a.Name,
	)
	a.Problem.UpdateDataPoint(dp, top.Result())
	xe.Assert(dp.IsComplete(), "data point %s is not complete after update", dp.ID)

	callQueueJobs := false
	total, queued, completed := ca.totalInOSIteration, len(ca.queuedOS), ca.completedInOSIteration
	if queued+completed < total {
		callQueueJobs = true
	} else if total == completed {
		callQueueJobs = true
		if alg, ok := a.OSAlgorithm(); ok {
			n := alg.CreateNextIteration(a)
			d.logger.Infof("algorithm '%s' created %d new data points", alg.Name(), n)
		}
	}

	d.saveOrLog(a)

	if dakotaOK {
		for _, params := range dp.DakotaParametersFiles {
			d.writeDakotaResults(ca, dp, params)
		}
	}

	summary := d.summaryOf(ca)
	d.emit(func(l Listener) { l.DataPointComplete(summary, dpID) })

	if callQueueJobs && d.isCurrent(ca) {
		if err := d.queueJobs(ca); err != nil {
			d.logger.Errorf("analysis '%s': %s", a.Name, err)
		}
	}
}
