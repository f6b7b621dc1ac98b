package runner

import (
	"slices"

	"github.com/opst/knitsim/pkg/analysis"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
	"golang.org/x/sync/semaphore"
)

// Job is a job of Runner.
//
// A workflow job has a child job per step. An optimizer job has no children.
type Job struct {
	r *Runner

	id   analysis.JobID
	spec driver.JobSpec

	// for step jobs
	step   *analysis.Step
	parent *Job

	children []*Job

	// guarded by r.mu
	status  analysis.JobStatus
	errors  []string
	outputs []string
	cancel  func()
	sem     *semaphore.Weighted
}

var _ driver.Job = &Job{}

func (j *Job) ID() analysis.JobID { return j.id }

// Spec is what the job was created with. For a step job, it is the spec of the parent.
func (j *Job) Spec() driver.JobSpec { return j.spec }

func (j *Job) Parent() (driver.Job, bool) {
	if j.parent == nil {
		return nil, false
	}
	return j.parent, true
}

func (j *Job) Children() []*Job {
	return slices.Clone(j.children)
}

func (j *Job) TreeStatus() analysis.JobStatus {
	j.r.mu.Lock()
	defer j.r.mu.Unlock()
	return j.treeStatusLocked()
}

func (j *Job) treeStatusLocked() analysis.JobStatus {
	if j.status.Finished() || j.status == analysis.JobRunning {
		return j.status
	}
	for _, c := range j.children {
		if c.treeStatusLocked() != analysis.JobWaiting {
			return analysis.JobRunning
		}
	}
	return j.status
}

func (j *Job) Result() analysis.JobResult {
	j.r.mu.Lock()
	defer j.r.mu.Unlock()
	return analysis.JobResult{
		Status: j.treeStatusLocked(),
		Errors: slices.Clone(j.errors),
	}
}

func (j *Job) OutputFiles() []string {
	j.r.mu.Lock()
	defer j.r.mu.Unlock()
	return slices.Clone(j.outputs)
}

// Cancel stops the job tree. A waiting job is dequeued, and a running job is interrupted.
func (j *Job) Cancel() {
	top := j
	for top.parent != nil {
		top = top.parent
	}
	j.r.mu.Lock()
	defer j.r.mu.Unlock()
	j.r.cancelLocked(top)
}

// reset makes the tree waiting again.
func (j *Job) resetLocked() {
	j.status = analysis.JobWaiting
	j.errors = nil
	j.outputs = nil
	for _, c := range j.children {
		c.resetLocked()
	}
}
