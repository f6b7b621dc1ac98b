package analysis

import "fmt"

type DataPointStatus string

const (
	// This data point is waiting to be queued.
	ToQueue DataPointStatus = "to-queue"

	// A job for this data point is handed to the job subsystem.
	Queued DataPointStatus = "queued"

	// The job has finished and responses are read.
	Completed DataPointStatus = "completed"

	// The job has finished insuccessfully, or responses could not be read.
	Failed DataPointStatus = "failed"

	// The job was stopped before it finished. It will be queued again.
	Stopped DataPointStatus = "stopped"
)

func (s DataPointStatus) String() string {
	return string(s)
}

func AsDataPointStatus(s string) (DataPointStatus, error) {
	switch s {
	case string(ToQueue):
		return ToQueue, nil
	case string(Queued):
		return Queued, nil
	case string(Completed):
		return Completed, nil
	case string(Failed):
		return Failed, nil
	case string(Stopped):
		return Stopped, nil
	default:
		return "", fmt.Errorf("unknown data point status: %s", s)
	}
}

func (s *DataPointStatus) UnmarshalText(text []byte) error {
	st, err := AsDataPointStatus(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// JobStatus is the status of a job, or the aggregated status of a job tree.
type JobStatus string

const (
	JobWaiting   JobStatus = "waiting"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
	JobCanceled  JobStatus = "canceled"
)

func (s JobStatus) String() string {
	return string(s)
}

// Finished tells the job will not change its status any more.
func (s JobStatus) Finished() bool {
	switch s {
	case JobSucceeded, JobFailed, JobCanceled:
		return true
	default:
		return false
	}
}

// JobResult is what a finished job tree reports.
type JobResult struct {
	Status JobStatus `yaml:"status" json:"status"`
	Errors []string  `yaml:"errors,omitempty" json:"errors,omitempty"`
}

// Succeeded tells the job has finished without errors.
func (r JobResult) Succeeded() bool {
	return r.Status == JobSucceeded && len(r.Errors) == 0
}
