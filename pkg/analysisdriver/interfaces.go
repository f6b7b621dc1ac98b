package analysisdriver

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/opst/knitsim/pkg/analysis"
)

// ErrJobNotFound is returned by JobSubsystem when the job is unknown, or removed.
var ErrJobNotFound = errors.New("job not found")

// Job is a unit of work in the job subsystem. Jobs form trees.
type Job interface {
	ID() analysis.JobID

	// TreeStatus is the status aggregated over the job and its descendants.
	TreeStatus() analysis.JobStatus

	// Parent returns the parent job. false for a top level job.
	Parent() (Job, bool)

	// Result is the result of the job tree. It makes sense after the tree has finished.
	Result() analysis.JobResult

	// OutputFiles are files the job has written so far.
	OutputFiles() []string

	// Cancel requests the job tree to stop. It does not wait.
	Cancel()
}

// JobSpec describes a job to be created. One of Workflow or Dakota is set.
type JobSpec struct {
	Name      string
	Directory string

	Workflow *analysis.Workflow
	CleanUp  JobCleanUp

	Dakota *DakotaJobSpec
}

type DakotaJobSpec struct {
	Executable string
	Args       []string
}

type EventKind string

const (
	// Status of a job tree has changed. Job is the job whose status has changed.
	TreeStateChanged EventKind = "tree-state-changed"

	// A job has written a file. File is its path.
	OutputFileChanged EventKind = "output-file-changed"

	// A job has finished. Errors are what the job reported.
	Finished EventKind = "finished"
)

// Event is a notification from the job subsystem.
type Event struct {
	Kind   EventKind
	Job    analysis.JobID
	File   string
	Errors []string
}

// JobSubsystem runs jobs in parallel.
//
// Notifications are delivered through Events, never by calling the driver directly.
type JobSubsystem interface {
	NewJob(spec JobSpec) (Job, error)

	// Enqueue schedules the job. A finished job is run again only if force is true.
	Enqueue(job Job, force bool) error

	// Remove forgets the job. Running job is canceled.
	Remove(id analysis.JobID) error

	// GetJob finds the job. If not found, the error is ErrJobNotFound.
	GetJob(id analysis.JobID) (Job, error)

	// SetPaused holds, or resumes, starting queued jobs. Running jobs are not affected.
	SetPaused(paused bool)
	Paused() bool

	// WaitForFinished blocks until no job is waiting or running, or ctx is done.
	WaitForFinished(ctx context.Context) error

	Events() <-chan Event

	MaxLocalJobs() int
	SetMaxLocalJobs(n int)
}

// ProjectDatabase is where analyses are persisted.
type ProjectDatabase interface {
	StartTransaction() error
	CommitTransaction() error

	Save() error
	SaveAnalysis(a *analysis.Analysis) error

	// DataPointRecordID is the id of the record of the data point saved.
	DataPointRecordID(id uuid.UUID) (int, bool)

	JobSubsystem() JobSubsystem
}
