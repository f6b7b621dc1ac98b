package analysisdriver_test

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/opst/knitsim/pkg/analysis"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
	"github.com/opst/knitsim/pkg/analysisdriver/mock"
	"github.com/opst/knitsim/pkg/model"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const budget = 20 * time.Millisecond

func ptr[T any](v T) *T { return &v }

type recorder struct {
	driver.Nop
	mu     sync.Mutex
	events []string
	last   driver.Summary
}

func (r *recorder) record(event string, s driver.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.last = s
}

func (r *recorder) AnalysisStarted(s driver.Summary)               { r.record("started", s) }
func (r *recorder) DataPointQueued(s driver.Summary, _ uuid.UUID)   { r.record("queued", s) }
func (r *recorder) DataPointComplete(s driver.Summary, _ uuid.UUID) { r.record("complete", s) }
func (r *recorder) DataPointStopped(s driver.Summary, _ uuid.UUID)  { r.record("dp-stopped", s) }
func (r *recorder) AnalysisComplete(s driver.Summary)               { r.record("analysis-complete", s) }
func (r *recorder) AnalysisStopped(s driver.Summary)                { r.record("analysis-stopped", s) }

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.events...)
}

func (r *recorder) Count(event string) int {
	n := 0
	for _, e := range r.Events() {
		if e == event {
			n++
		}
	}
	return n
}

func problem() analysis.Problem {
	return analysis.Problem{
		Variables: []analysis.Variable{
			{Name: "t", Kind: model.KindMaterial, Object: "Brick", Attribute: "thickness", Values: []float64{0.1, 0.2}},
			{Name: "c", Kind: model.KindMaterial, Object: "Brick", Attribute: "conductivity", Values: []float64{1, 2, 3}},
		},
		Responses: []string{"eui"},
	}
}

func doeAnalysis() *analysis.Analysis {
	a := analysis.New("doe", problem(), "seed.idf")
	a.Algorithm = &analysis.DesignOfExperiments{}
	return a
}

type env struct {
	jobs     *mock.JobSubsystem
	db       *mock.ProjectDatabase
	listener *recorder
	driver   *driver.Driver
}

func setup(t *testing.T) env {
	t.Helper()
	jobs := mock.NewJobSubsystem(4)
	db := mock.NewProjectDatabase(jobs)
	r := &recorder{}
	d := driver.New(db, driver.WithListener(r), driver.WithPollInterval(10*time.Millisecond))
	return env{jobs: jobs, db: db, listener: r, driver: d}
}

func options(t *testing.T) driver.RunOptions {
	return driver.RunOptions{
		WorkingDirectory: t.TempDir(),
		QueuePausing:     driver.NoPause,
		JobCleanUp:       driver.CleanUpNone,
		Simulation:       analysis.Simulation{Executable: "simulate", Args: []string{"$IDF"}},
	}
}

// succeed writes responses of the job, and finishes it successfully.
func succeed(t *testing.T, jobs *mock.JobSubsystem, j *mock.Job, eui float64) {
	t.Helper()
	content := []byte("eui: " + strconv.FormatFloat(eui, 'g', -1, 64) + "\n")
	if err := os.WriteFile(filepath.Join(j.Spec.Directory, analysis.ResponsesFileName), content, 0o644); err != nil {
		t.Error(err)
		return
	}
	jobs.Finish(j.ID(), analysis.JobResult{Status: analysis.JobSucceeded})
}

func workflowJobs(jobs *mock.JobSubsystem) []*mock.Job {
	ret := []*mock.Job{}
	for _, j := range jobs.Queued() {
		if j.Spec.Workflow != nil {
			ret = append(ret, j)
		}
	}
	return ret
}

func TestDriver_Run(t *testing.T) {
	t.Run("When a design of experiments is run, Then all data points are queued and simulated", func(t *testing.T) {
		e := setup(t)
		a := doeAnalysis()
		opts := options(t)

		ca, err := e.driver.Run(a, opts)
		if err != nil {
			t.Fatal(err)
		}
		if len(a.DataPoints) != 6 {
			t.Fatalf("data points: actual=%d, expect=%d", len(a.DataPoints), 6)
		}
		if actual := len(e.jobs.Queued()); actual != 6 {
			t.Errorf("queued jobs: actual=%d, expect=%d", actual, 6)
		}
		if actual := ca.NumQueuedJobs(); actual != 6 {
			t.Errorf("NumQueuedJobs: actual=%d, expect=%d", actual, 6)
		}
		if !e.driver.IsRunning() {
			t.Errorf("driver should be running")
		}
		{
			expect := []string{"started", "queued", "queued", "queued", "queued", "queued", "queued"}
			if actual := e.listener.Events(); !cmp.Equal(actual, expect) {
				t.Errorf("actual=%+v, expect=%+v", actual, expect)
			}
		}
		for _, dp := range a.DataPoints {
			if dp.Status != analysis.Queued {
				t.Errorf("status of %v: actual=%s, expect=%s", dp.VariableValues, dp.Status, analysis.Queued)
			}
			if filepath.Dir(dp.Directory) != opts.WorkingDirectory {
				t.Errorf("directory: actual=%s, expect under %s", dp.Directory, opts.WorkingDirectory)
			}
		}
		for _, j := range e.jobs.Queued() {
			if j.Spec.CleanUp != driver.CleanUpNone {
				t.Errorf("clean up: actual=%s, expect=%s", j.Spec.CleanUp, driver.CleanUpNone)
			}
			steps := j.Spec.Workflow.Steps
			if len(steps) != 2 || steps[0].Kind != analysis.StepTranslate || steps[1].Kind != analysis.StepExec {
				t.Errorf("unexpected workflow: %+v", steps)
			}
		}

		for i, j := range workflowJobs(e.jobs) {
			succeed(t, e.jobs, j, float64(i))
		}
		e.driver.ProcessEvents(budget)

		if e.driver.IsRunning() {
			t.Errorf("driver should not be running")
		}
		if actual := e.listener.Count("complete"); actual != 6 {
			t.Errorf("complete: actual=%d, expect=%d", actual, 6)
		}
		if actual := e.listener.Count("analysis-complete"); actual != 1 {
			t.Errorf("analysis-complete: actual=%d, expect=%d", actual, 1)
		}
		for _, dp := range a.DataPoints {
			if dp.Status != analysis.Completed || len(dp.Responses) != 1 {
				t.Errorf("unexpected data point: %+v", dp)
			}
		}
		if 0 < len(e.driver.CurrentAnalyses()) {
			t.Errorf("current analyses should be empty")
		}
		if e.db.InTransaction() {
			t.Errorf("transaction is left open")
		}
	})

	t.Run("When an analysis is run twice, Then the second run returns the running one", func(t *testing.T) {
		e := setup(t)
		a := doeAnalysis()
		opts := options(t)

		first, err := e.driver.Run(a, opts)
		if err != nil {
			t.Fatal(err)
		}
		second, err := e.driver.Run(a, opts)
		if err != nil {
			t.Fatal(err)
		}
		if first != second {
			t.Errorf("second run should return the current analysis")
		}
		if actual := e.jobs.Calls.NewJob.Times(); actual != 6 {
			t.Errorf("NewJob: actual=%d, expect=%d", actual, 6)
		}
		if actual := len(e.driver.CurrentAnalyses()); actual != 1 {
			t.Errorf("current analyses: actual=%d, expect=%d", actual, 1)
		}
		e.driver.Stop(first)
	})

	t.Run("When a queue size is set, Then jobs in flight are capped", func(t *testing.T) {
		e := setup(t)
		a := doeAnalysis()
		opts := options(t)
		opts.QueueSize = ptr(2)

		ca, err := e.driver.Run(a, opts)
		if err != nil {
			t.Fatal(err)
		}
		if actual := len(e.jobs.Queued()); actual != 2 {
			t.Fatalf("queued jobs: actual=%d, expect=%d", actual, 2)
		}
		if actual := ca.TotalNumJobsInOSIteration(); actual != 6 {
			t.Errorf("total in iteration: actual=%d, expect=%d", actual, 6)
		}

		for round := 0; round < 10; round++ {
			queued := workflowJobs(e.jobs)
			if len(queued) == 0 {
				break
			}
			succeed(t, e.jobs, queued[0], 1)
			e.driver.ProcessEvents(budget)
			if actual := len(e.jobs.Queued()); 2 < actual {
				t.Errorf("queued jobs exceeded the cap: %d", actual)
			}
		}

		if actual := e.jobs.Calls.NewJob.Times(); actual != 6 {
			t.Errorf("NewJob: actual=%d, expect=%d", actual, 6)
		}
		if actual := len(a.CompleteDataPoints()); actual != 6 {
			t.Errorf("complete data points: actual=%d, expect=%d", actual, 6)
		}
		if e.driver.IsRunning() {
			t.Errorf("driver should not be running")
		}
	})

	t.Run("When a job fails, Then its data point fails and the analysis still completes", func(t *testing.T) {
		e := setup(t)
		a := analysis.New("one", problem(), "seed.idf")
		dp := analysis.NewDataPoint(0.1, 1)
		a.AddDataPoint(dp)

		if _, err := e.driver.Run(a, options(t)); err != nil {
			t.Fatal(err)
		}
		e.jobs.Finish(dp.TopLevelJob, analysis.JobResult{Status: analysis.JobFailed, Errors: []string{"exit 1"}})
		e.driver.ProcessEvents(budget)

		if !dp.Failed() {
			t.Errorf("status: actual=%s, expect=%s", dp.Status, analysis.Failed)
		}
		if dp.FailureReason == "" {
			t.Errorf("failure reason should be set")
		}
		if actual := e.listener.Count("analysis-complete"); actual != 1 {
			t.Errorf("analysis-complete: actual=%d, expect=%d", actual, 1)
		}
	})

	t.Run("When a child job changes, Then only the finish of the top level job completes the data point", func(t *testing.T) {
		e := setup(t)
		a := analysis.New("one", problem(), "seed.idf")
		dp := analysis.NewDataPoint(0.1, 1)
		a.AddDataPoint(dp)

		if _, err := e.driver.Run(a, options(t)); err != nil {
			t.Fatal(err)
		}
		child, ok := e.jobs.NewChild(dp.TopLevelJob)
		if !ok {
			t.Fatal("parent is not found")
		}
		e.jobs.Notify(driver.Event{Kind: driver.TreeStateChanged, Job: child.ID()})
		e.driver.ProcessEvents(budget)
		if dp.Status != analysis.Queued {
			t.Errorf("status: actual=%s, expect=%s", dp.Status, analysis.Queued)
		}

		top, _ := e.jobs.Job(dp.TopLevelJob)
		succeed(t, e.jobs, top, 3)
		// the tree is notified also through the child.
		e.jobs.Notify(driver.Event{Kind: driver.TreeStateChanged, Job: child.ID()})
		e.driver.ProcessEvents(budget)

		if dp.Status != analysis.Completed {
			t.Errorf("status: actual=%s, expect=%s", dp.Status, analysis.Completed)
		}
		if actual := e.listener.Count("complete"); actual != 1 {
			t.Errorf("complete: actual=%d, expect=%d", actual, 1)
		}
	})

	t.Run("When data points are invalid, Then it is an error", func(t *testing.T) {
		e := setup(t)
		a := analysis.New("bad", problem(), "seed.idf")
		dp := analysis.NewDataPoint(0.1, 1)
		a.DataPoints = append(a.DataPoints, dp, dp)

		_, err := e.driver.Run(a, options(t))
		if !errors.Is(err, driver.ErrInvalidDataPoints) {
			t.Errorf("actual=%+v, expect=%+v", err, driver.ErrInvalidDataPoints)
		}
		if e.driver.IsRunning() {
			t.Errorf("driver should not be running")
		}
	})

	t.Run("When results are invalid, Then it is an error", func(t *testing.T) {
		e := setup(t)
		a := analysis.New("bad", problem(), "seed.idf")
		dp := analysis.NewDataPoint(0.1, 1)
		dp.Status = analysis.Completed
		dp.Responses = []float64{1, 2}
		a.AddDataPoint(dp)

		_, err := e.driver.Run(a, options(t))
		if !errors.Is(err, driver.ErrInvalidResults) {
			t.Errorf("actual=%+v, expect=%+v", err, driver.ErrInvalidResults)
		}
	})

	for name, when := range map[string]func(t *testing.T, e env, opts *driver.RunOptions){
		"the working directory cannot be made": func(t *testing.T, _ env, opts *driver.RunOptions) {
			file := filepath.Join(t.TempDir(), "file")
			if err := os.WriteFile(file, []byte("not a directory"), 0o644); err != nil {
				t.Fatal(err)
			}
			opts.WorkingDirectory = filepath.Join(file, "work")
		},
		"the analysis cannot be saved": func(_ *testing.T, e env, _ *driver.RunOptions) {
			e.db.Impl.Save = func() error { return errors.New("disk full") }
		},
	} {
		t.Run("When "+name+", Then Run fails and the driver is left idle", func(t *testing.T) {
			e := setup(t)
			opts := options(t)
			opts.QueuePausing = driver.PauseForFirstN
			opts.FirstN = 1
			when(t, e, &opts)

			if _, err := e.driver.Run(doeAnalysis(), opts); err == nil {
				t.Fatal("expected error, but not")
			}
			if e.driver.IsRunning() {
				t.Errorf("driver should not be running")
			}
			if n := len(e.driver.CurrentAnalyses()); n != 0 {
				t.Errorf("current analyses: actual=%d, expect=0", n)
			}
			if e.jobs.Paused() {
				t.Errorf("subsystem should not be left paused")
			}

			done := make(chan struct{})
			go func() {
				defer close(done)
				e.driver.WaitForFinished(0)
			}()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("WaitForFinished does not return")
			}
		})
	}

	for name, mutate := range map[string]func(*driver.RunOptions){
		"no working directory": func(o *driver.RunOptions) { o.WorkingDirectory = "" },
		"zero queue size":      func(o *driver.RunOptions) { o.QueueSize = ptr(0) },
		"no first n":           func(o *driver.RunOptions) { o.QueuePausing = driver.PauseForFirstN },
		"unknown pausing":      func(o *driver.RunOptions) { o.QueuePausing = "sometimes" },
	} {
		t.Run("When options have "+name+", Then it is an error", func(t *testing.T) {
			e := setup(t)
			opts := options(t)
			mutate(&opts)
			_, err := e.driver.Run(doeAnalysis(), opts)
			if !errors.Is(err, driver.ErrInvalidOptions) {
				t.Errorf("actual=%+v, expect=%+v", err, driver.ErrInvalidOptions)
			}
			if actual := e.jobs.Calls.NewJob.Times(); actual != 0 {
				t.Errorf("NewJob: actual=%d, expect=0", actual)
			}
		})
	}

	t.Run("When the analysis has jobs of a previous run, Then they are forgotten and queued again", func(t *testing.T) {
		e := setup(t)
		a := analysis.New("resumed", problem(), "seed.idf")
		dp := analysis.NewDataPoint(0.1, 1)
		old := uuid.New()
		a.AddDataPoint(dp)
		a.SetDataPointRunInformation(dp, "/somewhere/old", old, nil)

		if _, err := e.driver.Run(a, options(t)); err != nil {
			t.Fatal(err)
		}
		if dp.TopLevelJob == old || dp.TopLevelJob == uuid.Nil {
			t.Errorf("job should be issued again: %s", dp.TopLevelJob)
		}
		if dp.Directory == "/somewhere/old" {
			t.Errorf("directory should be renewed")
		}
		e.driver.Stop(e.driver.CurrentAnalyses()[0])
	})
}

func TestDriver_QueuePausing(t *testing.T) {
	t.Run("When NoPause, Then the subsystem is never paused", func(t *testing.T) {
		e := setup(t)
		ca, err := e.driver.Run(doeAnalysis(), options(t))
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range e.jobs.Calls.SetPaused {
			if p {
				t.Errorf("subsystem is paused: %+v", e.jobs.Calls.SetPaused)
				break
			}
		}
		e.driver.Stop(ca)
	})

	t.Run("When PauseForFirstN, Then the subsystem is unpaused after first N jobs", func(t *testing.T) {
		e := setup(t)
		opts := options(t)
		opts.QueuePausing = driver.PauseForFirstN
		opts.FirstN = 2

		pausedAtEnqueue := []bool{}
		e.jobs.Impl.Enqueue = func(analysis.JobID) error {
			// called under the lock of the mock.
			pausedAtEnqueue = append(pausedAtEnqueue, e.jobs.Calls.SetPaused[len(e.jobs.Calls.SetPaused)-1])
			return nil
		}

		ca, err := e.driver.Run(doeAnalysis(), opts)
		if err != nil {
			t.Fatal(err)
		}
		expect := []bool{true, true, false, false, false, false}
		if !cmp.Equal(pausedAtEnqueue, expect) {
			t.Errorf("paused at enqueue: actual=%+v, expect=%+v", pausedAtEnqueue, expect)
		}
		if e.jobs.Paused() {
			t.Errorf("subsystem should be unpaused")
		}
		e.driver.Stop(ca)
	})

	t.Run("When FullPauseManualUnpause, Then nothing starts until UnpauseQueue", func(t *testing.T) {
		e := setup(t)
		opts := options(t)
		opts.QueuePausing = driver.FullPauseManualUnpause

		ca, err := e.driver.Run(doeAnalysis(), opts)
		if err != nil {
			t.Fatal(err)
		}
		if !e.jobs.Paused() {
			t.Errorf("subsystem should be paused")
		}
		if e.driver.IsRunning() {
			t.Errorf("driver should not be running before unpause")
		}
		if actual := len(e.jobs.Queued()); actual != 6 {
			t.Errorf("queued jobs: actual=%d, expect=%d", actual, 6)
		}

		e.driver.UnpauseQueue()
		if e.jobs.Paused() {
			t.Errorf("subsystem should be unpaused")
		}
		if !e.driver.IsRunning() {
			t.Errorf("driver should be running after unpause")
		}
		e.driver.Stop(ca)
	})
}

func TestDriver_Stop(t *testing.T) {
	t.Run("When an analysis is stopped, Then its jobs are canceled and late notifications are ignored", func(t *testing.T) {
		e := setup(t)
		a := doeAnalysis()
		ca, err := e.driver.Run(a, options(t))
		if err != nil {
			t.Fatal(err)
		}
		queued := e.jobs.Queued()

		e.driver.Stop(ca)

		for _, j := range queued {
			if !j.Canceled() {
				t.Errorf("job %s should be canceled", j.ID())
			}
		}
		if actual := len(e.jobs.Queued()); actual != 0 {
			t.Errorf("queued jobs: actual=%d, expect=0", actual)
		}
		for _, dp := range a.DataPoints {
			if dp.Status != analysis.Stopped {
				t.Errorf("status: actual=%s, expect=%s", dp.Status, analysis.Stopped)
			}
		}
		if e.driver.IsRunning() {
			t.Errorf("driver should not be running")
		}
		if _, ok := e.driver.CurrentAnalysis(a.ID); ok {
			t.Errorf("analysis should not be current")
		}
		if e.jobs.Paused() {
			t.Errorf("pause state should be restored")
		}

		before := e.listener.Events()
		for _, j := range queued {
			e.jobs.Notify(driver.Event{Kind: driver.TreeStateChanged, Job: j.ID()})
		}
		e.driver.ProcessEvents(budget)
		if actual := e.listener.Events(); !cmp.Equal(actual, before) {
			t.Errorf("late notifications changed something: actual=%+v, expect=%+v", actual, before)
		}
		if actual := e.listener.Count("analysis-stopped"); actual != 1 {
			t.Errorf("analysis-stopped: actual=%d, expect=%d", actual, 1)
		}

		e.driver.Stop(ca)
		if actual := e.listener.Count("analysis-stopped"); actual != 1 {
			t.Errorf("stopping twice should not notify: %d", actual)
		}
	})

	t.Run("When a data point is stopped, Then it is skipped afterwards", func(t *testing.T) {
		e := setup(t)
		a := doeAnalysis()
		ca, err := e.driver.Run(a, options(t))
		if err != nil {
			t.Fatal(err)
		}
		target := a.DataPoints[0]
		job, _ := e.jobs.Job(target.TopLevelJob)

		e.driver.StopDataPoint(target)

		if !job.Canceled() {
			t.Errorf("job should be canceled")
		}
		if target.Status != analysis.Stopped || !target.Skip {
			t.Errorf("unexpected data point: %+v", target)
		}
		if actual := ca.NumQueuedJobs(); actual != 5 {
			t.Errorf("NumQueuedJobs: actual=%d, expect=%d", actual, 5)
		}
		if actual := e.listener.Count("dp-stopped"); actual != 1 {
			t.Errorf("dp-stopped: actual=%d, expect=%d", actual, 1)
		}

		for _, dp := range a.DataPointsToQueue() {
			if dp.ID == target.ID {
				t.Errorf("stopped data point should not be queued")
			}
		}

		e.driver.StopDataPoint(target)
		if actual := e.listener.Count("dp-stopped"); actual != 1 {
			t.Errorf("stopping twice should not notify: %d", actual)
		}
		e.driver.Stop(ca)
	})
}

func TestDriver_WaitForFinished(t *testing.T) {
	t.Run("When jobs finish in background, Then it returns after the analysis completes", func(t *testing.T) {
		e := setup(t)
		a := doeAnalysis()
		if _, err := e.driver.Run(a, options(t)); err != nil {
			t.Fatal(err)
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				queued := workflowJobs(e.jobs)
				if len(queued) == 0 {
					if !e.driver.IsRunning() {
						return
					}
					time.Sleep(5 * time.Millisecond)
					continue
				}
				for _, j := range queued {
					succeed(t, e.jobs, j, 2)
				}
			}
		}()

		if !e.driver.WaitForFinished(0) {
			t.Errorf("it should wait until finished")
		}
		<-done

		if actual := len(a.CompleteDataPoints()); actual != 6 {
			t.Errorf("complete data points: actual=%d, expect=%d", actual, 6)
		}
	})

	t.Run("When timeout is given, Then it returns false", func(t *testing.T) {
		e := setup(t)
		ca, err := e.driver.Run(doeAnalysis(), options(t))
		if err != nil {
			t.Fatal(err)
		}
		if e.driver.WaitForFinished(10 * time.Millisecond) {
			t.Errorf("it should return false")
		}
		e.driver.Stop(ca)
	})
}

func TestDriver_Summary(t *testing.T) {
	e := setup(t)
	a := doeAnalysis()
	opts := options(t)
	opts.QueueSize = ptr(4)
	if _, err := e.driver.Run(a, opts); err != nil {
		t.Fatal(err)
	}
	jobs := workflowJobs(e.jobs)
	succeed(t, e.jobs, jobs[0], 1)
	e.jobs.Finish(jobs[1].ID(), analysis.JobResult{Status: analysis.JobFailed})
	e.driver.ProcessEvents(budget)

	actual, ok := e.driver.Summary(a.ID)
	if !ok {
		t.Fatal("summary is not found")
	}
	expect := driver.Summary{
		ID: a.ID, Name: "doe", Algorithm: "DesignOfExperiments",
		DataPoints: 6, Queued: 4, Completed: 1, Failed: 1, Running: true,
	}
	if !cmp.Equal(actual, expect) {
		t.Errorf("actual=%+v, expect=%+v", actual, expect)
	}
	if summaries := e.driver.Summaries(); !cmp.Equal(summaries, []driver.Summary{expect}) {
		t.Errorf("actual=%+v, expect=%+v", summaries, []driver.Summary{expect})
	}
	if _, ok := e.driver.Summary(uuid.New()); ok {
		t.Errorf("unknown analysis should not be found")
	}

	dps, ok := e.driver.DataPoints(a.ID)
	if !ok || len(dps) != 6 {
		t.Fatalf("data points: actual=%d, %v", len(dps), ok)
	}
	completed := 0
	for _, dp := range dps {
		if dp.Status == analysis.Completed {
			completed++
		}
	}
	if completed != 1 {
		t.Errorf("completed: actual=%d, expect=1", completed)
	}
	dps[0].VariableValues[0] = -1
	if a.DataPoints[0].VariableValues[0] == -1 {
		t.Errorf("data points should be copied")
	}

	e.driver.Stop(e.driver.CurrentAnalyses()[0])

	if actual := driver.Summarize(a); actual.Running || actual.Completed != 1 || actual.Failed != 1 {
		t.Errorf("summarize: actual=%+v", actual)
	}
	if _, ok := e.driver.DataPoints(a.ID); ok {
		t.Errorf("stopped analysis should not be found")
	}
}
