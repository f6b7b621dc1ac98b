package analysisdriver

import (
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/opst/knitsim/pkg/analysis"
)

// CurrentAnalysis is an analysis being run by a Driver.
//
// It remembers which jobs are in flight for which data points. This is not persisted.
//
// Read it through the Driver (e.g. Driver.Summary) while the driver is serving events.
type CurrentAnalysis struct {
	analysis *analysis.Analysis
	options  RunOptions

	// job id -> data point id
	queuedOS     map[analysis.JobID]uuid.UUID
	queuedDakota map[analysis.JobID]uuid.UUID

	dakotaJob     analysis.JobID
	dakotaStarted bool

	totalInOSIteration     int
	completedInOSIteration int

	// parameters files already handled
	seenParams map[string]struct{}
}

func newCurrentAnalysis(a *analysis.Analysis, options RunOptions) *CurrentAnalysis {
	return &CurrentAnalysis{
		analysis:     a,
		options:      options,
		queuedOS:     map[analysis.JobID]uuid.UUID{},
		queuedDakota: map[analysis.JobID]uuid.UUID{},
		seenParams:   map[string]struct{}{},
	}
}

func (ca *CurrentAnalysis) ID() uuid.UUID { return ca.analysis.ID }

func (ca *CurrentAnalysis) Analysis() *analysis.Analysis { return ca.analysis }

func (ca *CurrentAnalysis) Options() RunOptions { return ca.options }

func (ca *CurrentAnalysis) NumQueuedOSJobs() int { return len(ca.queuedOS) }

func (ca *CurrentAnalysis) NumQueuedDakotaJobs() int { return len(ca.queuedDakota) }

// NumQueuedJobs counts jobs in flight. A job queued for both is counted twice.
func (ca *CurrentAnalysis) NumQueuedJobs() int {
	return len(ca.queuedOS) + len(ca.queuedDakota)
}

// QueuedJobs lists jobs in flight, without duplicates.
func (ca *CurrentAnalysis) QueuedJobs() []analysis.JobID {
	set := maps.Clone(ca.queuedOS)
	maps.Copy(set, ca.queuedDakota)
	ret := slices.Collect(maps.Keys(set))
	slices.SortFunc(ret, func(a, b analysis.JobID) int { return slices.Compare(a[:], b[:]) })
	return ret
}

func (ca *CurrentAnalysis) TotalNumJobsInOSIteration() int { return ca.totalInOSIteration }

func (ca *CurrentAnalysis) NumCompletedJobsInOSIteration() int { return ca.completedInOSIteration }

// DakotaJob returns the optimizer job. false if it is not running.
func (ca *CurrentAnalysis) DakotaJob() (analysis.JobID, bool) {
	return ca.dakotaJob, ca.dakotaJob != uuid.Nil
}

// IsQueued tells a job is in flight for the data point.
func (ca *CurrentAnalysis) IsQueued(dataPoint uuid.UUID) bool {
	_, ok := ca.jobOf(dataPoint)
	return ok
}

func (ca *CurrentAnalysis) jobOf(dataPoint uuid.UUID) (analysis.JobID, bool) {
	for _, m := range []map[analysis.JobID]uuid.UUID{ca.queuedOS, ca.queuedDakota} {
		for job, dp := range m {
			if dp == dataPoint {
				return job, true
			}
		}
	}
	return uuid.Nil, false
}

func (ca *CurrentAnalysis) hasQueuedJob(job analysis.JobID) bool {
	_, inOS := ca.queuedOS[job]
	_, inDakota := ca.queuedDakota[job]
	return inOS || inDakota
}

func (ca *CurrentAnalysis) setIterationSize(n int) {
	ca.totalInOSIteration = n
	ca.completedInOSIteration = 0
}

func (ca *CurrentAnalysis) addOSBatch(batch map[analysis.JobID]uuid.UUID) {
	maps.Copy(ca.queuedOS, batch)
}

func (ca *CurrentAnalysis) removeCompletedOSDataPoint(job analysis.JobID) (uuid.UUID, bool) {
	dp, ok := ca.queuedOS[job]
	if ok {
		delete(ca.queuedOS, job)
		ca.completedInOSIteration++
	}
	return dp, ok
}

func (ca *CurrentAnalysis) removeCompletedDakotaDataPoint(job analysis.JobID) (uuid.UUID, bool) {
	dp, ok := ca.queuedDakota[job]
	if ok {
		delete(ca.queuedDakota, job)
	}
	return dp, ok
}

func (ca *CurrentAnalysis) forget(job analysis.JobID) {
	delete(ca.queuedOS, job)
	delete(ca.queuedDakota, job)
}

func (ca *CurrentAnalysis) summary(running bool) Summary {
	s := Summarize(ca.analysis)
	s.Queued = len(ca.QueuedJobs())
	s.Running = running
	s.DakotaRunning = ca.dakotaJob != uuid.Nil
	return s
}

// Summarize counts data points of the analysis. It is not running.
func Summarize(a *analysis.Analysis) Summary {
	s := Summary{
		ID:         a.ID,
		Name:       a.Name,
		DataPoints: len(a.DataPoints),
	}
	if a.Algorithm != nil {
		s.Algorithm = a.Algorithm.Name()
	}
	for _, dp := range a.DataPoints {
		switch dp.Status {
		case analysis.Completed:
			s.Completed++
		case analysis.Failed:
			s.Failed++
		}
	}
	return s
}
