package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/opst/knitsim/pkg/analysis"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
)

type CallLog[T any] []T

func (l CallLog[T]) Times() uint {
	return uint(len(l))
}

type EnqueueArgs struct {
	Job   analysis.JobID
	Force bool
}

// Job is a job which never runs by itself. Tests finish it with JobSubsystem.Finish.
type Job struct {
	Spec driver.JobSpec

	id       analysis.JobID
	parent   *Job
	status   analysis.JobStatus
	result   analysis.JobResult
	outputs  []string
	canceled bool

	mu *sync.Mutex
}

var _ driver.Job = &Job{}

func (j *Job) ID() analysis.JobID { return j.id }

func (j *Job) TreeStatus() analysis.JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (j *Job) Parent() (driver.Job, bool) {
	if j.parent == nil {
		return nil, false
	}
	return j.parent, true
}

func (j *Job) Result() analysis.JobResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

func (j *Job) OutputFiles() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string{}, j.outputs...)
}

func (j *Job) Cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.canceled = true
	if !j.status.Finished() {
		j.status = analysis.JobCanceled
		j.result = analysis.JobResult{Status: analysis.JobCanceled}
	}
}

func (j *Job) Canceled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.canceled
}

// JobSubsystem keeps jobs in memory. Nothing runs until tests say so.
type JobSubsystem struct {
	mu sync.Mutex

	jobs     map[analysis.JobID]*Job
	queued   []analysis.JobID
	paused   bool
	maxLocal int
	events   chan driver.Event

	Impl struct {
		// if set, NewJob and Enqueue return the error.
		NewJob  func(driver.JobSpec) error
		Enqueue func(analysis.JobID) error
	}

	Calls struct {
		NewJob    CallLog[driver.JobSpec]
		Enqueue   CallLog[EnqueueArgs]
		Remove    CallLog[analysis.JobID]
		SetPaused CallLog[bool]
	}
}

var _ driver.JobSubsystem = &JobSubsystem{}

func NewJobSubsystem(maxLocalJobs int) *JobSubsystem {
	return &JobSubsystem{
		jobs:     map[analysis.JobID]*Job{},
		maxLocal: maxLocalJobs,
		events:   make(chan driver.Event, 1024),
	}
}

func (m *JobSubsystem) NewJob(spec driver.JobSpec) (driver.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.NewJob = append(m.Calls.NewJob, spec)
	if m.Impl.NewJob != nil {
		if err := m.Impl.NewJob(spec); err != nil {
			return nil, err
		}
	}
	j := &Job{
		Spec:   spec,
		id:     uuid.New(),
		status: analysis.JobWaiting,
		mu:     &sync.Mutex{},
	}
	m.jobs[j.id] = j
	return j, nil
}

// NewChild adds a job under the parent. Its notifications are about the child.
func (m *JobSubsystem) NewChild(parent analysis.JobID) (*Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.jobs[parent]
	if !ok {
		return nil, false
	}
	j := &Job{id: uuid.New(), parent: p, status: analysis.JobWaiting, mu: p.mu}
	m.jobs[j.id] = j
	return j, true
}

func (m *JobSubsystem) Enqueue(job driver.Job, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Enqueue = append(m.Calls.Enqueue, EnqueueArgs{Job: job.ID(), Force: force})
	if m.Impl.Enqueue != nil {
		if err := m.Impl.Enqueue(job.ID()); err != nil {
			return err
		}
	}
	if _, ok := m.jobs[job.ID()]; !ok {
		return driver.ErrJobNotFound
	}
	m.queued = append(m.queued, job.ID())
	return nil
}

func (m *JobSubsystem) Remove(id analysis.JobID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Remove = append(m.Calls.Remove, id)
	if _, ok := m.jobs[id]; !ok {
		return driver.ErrJobNotFound
	}
	delete(m.jobs, id)
	m.dequeue(id)
	return nil
}

func (m *JobSubsystem) dequeue(id analysis.JobID) {
	for i, q := range m.queued {
		if q == id {
			m.queued = append(m.queued[:i], m.queued[i+1:]...)
			return
		}
	}
}

func (m *JobSubsystem) GetJob(id analysis.JobID) (driver.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, driver.ErrJobNotFound
	}
	return j, nil
}

// Job is GetJob returning the mock.
func (m *JobSubsystem) Job(id analysis.JobID) (*Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	return j, ok
}

func (m *JobSubsystem) SetPaused(paused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.SetPaused = append(m.Calls.SetPaused, paused)
	m.paused = paused
}

func (m *JobSubsystem) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// WaitForFinished returns at once when nothing is queued. Otherwise, it waits ctx.
func (m *JobSubsystem) WaitForFinished(ctx context.Context) error {
	m.mu.Lock()
	n := len(m.queued)
	m.mu.Unlock()
	if n == 0 {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *JobSubsystem) Events() <-chan driver.Event {
	return m.events
}

func (m *JobSubsystem) MaxLocalJobs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxLocal
}

func (m *JobSubsystem) SetMaxLocalJobs(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxLocal = n
}

// Queued lists jobs enqueued and not finished, in order.
func (m *JobSubsystem) Queued() []*Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := make([]*Job, 0, len(m.queued))
	for _, id := range m.queued {
		ret = append(ret, m.jobs[id])
	}
	return ret
}

// Finish finishes the job with the result, and notifies it.
//
// It returns false if the job is unknown.
func (m *JobSubsystem) Finish(id analysis.JobID, result analysis.JobResult) bool {
	m.mu.Lock()
	j, ok := m.jobs[id]
	if ok {
		m.dequeue(id)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}

	j.mu.Lock()
	j.status = result.Status
	j.result = result
	j.mu.Unlock()

	m.events <- driver.Event{Kind: driver.TreeStateChanged, Job: id}
	if j.Spec.Dakota != nil {
		m.events <- driver.Event{Kind: driver.Finished, Job: id, Errors: result.Errors}
	}
	return true
}

// Notify sends the event as it is.
func (m *JobSubsystem) Notify(ev driver.Event) {
	m.events <- ev
}

// WriteOutput records the file as an output of the job, and notifies it.
func (m *JobSubsystem) WriteOutput(id analysis.JobID, path string) error {
	m.mu.Lock()
	j, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return driver.ErrJobNotFound
	}
	j.mu.Lock()
	j.outputs = append(j.outputs, path)
	j.mu.Unlock()
	m.events <- driver.Event{Kind: driver.OutputFileChanged, Job: id, File: path}
	return nil
}

// Close closes events.
func (m *JobSubsystem) Close() {
	close(m.events)
}

// ProjectDatabase keeps analyses in memory.
type ProjectDatabase struct {
	mu sync.Mutex

	jobs    driver.JobSubsystem
	records map[uuid.UUID]int
	nextID  int
	depth   int

	Impl struct {
		// if set, Save returns the error.
		Save func() error
	}

	Calls struct {
		StartTransaction  CallLog[struct{}]
		CommitTransaction CallLog[struct{}]
		Save              CallLog[struct{}]
		SaveAnalysis      CallLog[uuid.UUID]
	}
}

var _ driver.ProjectDatabase = &ProjectDatabase{}

func NewProjectDatabase(jobs driver.JobSubsystem) *ProjectDatabase {
	return &ProjectDatabase{
		jobs:    jobs,
		records: map[uuid.UUID]int{},
		nextID:  1,
	}
}

func (m *ProjectDatabase) StartTransaction() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.StartTransaction = append(m.Calls.StartTransaction, struct{}{})
	m.depth++
	return nil
}

func (m *ProjectDatabase) CommitTransaction() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.CommitTransaction = append(m.Calls.CommitTransaction, struct{}{})
	if m.depth == 0 {
		return errors.New("no transaction")
	}
	m.depth--
	return nil
}

// InTransaction tells a transaction is not committed.
func (m *ProjectDatabase) InTransaction() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return 0 < m.depth
}

func (m *ProjectDatabase) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Save = append(m.Calls.Save, struct{}{})
	if m.Impl.Save != nil {
		return m.Impl.Save()
	}
	return nil
}

func (m *ProjectDatabase) SaveAnalysis(a *analysis.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.SaveAnalysis = append(m.Calls.SaveAnalysis, a.ID)
	for _, dp := range a.DataPoints {
		if _, ok := m.records[dp.ID]; ok {
			continue
		}
		m.records[dp.ID] = m.nextID
		m.nextID++
	}
	return nil
}

func (m *ProjectDatabase) DataPointRecordID(id uuid.UUID) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	return r, ok
}

func (m *ProjectDatabase) JobSubsystem() driver.JobSubsystem {
	return m.jobs
}
