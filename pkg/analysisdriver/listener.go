package analysisdriver

import "github.com/google/uuid"

// Summary is a snapshot of an analysis being run.
type Summary struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Algorithm string    `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`

	DataPoints int `json:"dataPoints" yaml:"dataPoints"`
	Queued     int `json:"queued" yaml:"queued"`
	Completed  int `json:"completed" yaml:"completed"`
	Failed     int `json:"failed" yaml:"failed"`

	// Running is false after the analysis has completed or stopped.
	Running bool `json:"running" yaml:"running"`

	DakotaRunning bool `json:"dakotaRunning" yaml:"dakotaRunning"`
}

// Listener is notified of progress of analyses.
//
// Listeners are called after the driver has released its lock,
// so they can call the driver.
type Listener interface {
	AnalysisStarted(s Summary)
	DataPointQueued(s Summary, dataPoint uuid.UUID)
	DataPointComplete(s Summary, dataPoint uuid.UUID)
	DataPointStopped(s Summary, dataPoint uuid.UUID)
	AnalysisComplete(s Summary)
	AnalysisStopped(s Summary)
}

// Listeners notifies each listener in order.
type Listeners []Listener

var _ Listener = Listeners{}

func (ls Listeners) AnalysisStarted(s Summary) {
	for _, l := range ls {
		l.AnalysisStarted(s)
	}
}

func (ls Listeners) DataPointQueued(s Summary, dp uuid.UUID) {
	for _, l := range ls {
		l.DataPointQueued(s, dp)
	}
}

func (ls Listeners) DataPointComplete(s Summary, dp uuid.UUID) {
	for _, l := range ls {
		l.DataPointComplete(s, dp)
	}
}

func (ls Listeners) DataPointStopped(s Summary, dp uuid.UUID) {
	for _, l := range ls {
		l.DataPointStopped(s, dp)
	}
}

func (ls Listeners) AnalysisComplete(s Summary) {
	for _, l := range ls {
		l.AnalysisComplete(s)
	}
}

func (ls Listeners) AnalysisStopped(s Summary) {
	for _, l := range ls {
		l.AnalysisStopped(s)
	}
}

// Nop does nothing. Embed it to listen to some of notifications.
type Nop struct{}

var _ Listener = Nop{}

func (Nop) AnalysisStarted(Summary)              {}
func (Nop) DataPointQueued(Summary, uuid.UUID)   {}
func (Nop) DataPointComplete(Summary, uuid.UUID) {}
func (Nop) DataPointStopped(Summary, uuid.UUID)  {}
func (Nop) AnalysisComplete(Summary)             {}
func (Nop) AnalysisStopped(Summary)              {}
