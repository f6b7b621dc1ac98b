package analysisdriver

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/opst/knitsim/pkg/analysis"
	"github.com/opst/knitsim/pkg/dakota"
	xe "github.com/opst/knitsim/pkg/errors"
)

// DakotaDirectoryName is where the optimizer runs, in the working directory.
const DakotaDirectoryName = "dakota"

const defaultDakotaExecutable = "dakota"

// startDakotaJob launches the optimizer for the analysis.
//
// The optimizer job occupies a slot of the job subsystem while it waits for evaluations,
// so the subsystem should run 2 jobs or more at once.
func (d *Driver) startDakotaJob(ca *CurrentAnalysis) error {
	a := ca.analysis
	options := ca.options

	if d.jobs.MaxLocalJobs() < 2 {
		d.jobs.SetMaxLocalJobs(2)
	}
	xe.Assert(1 < d.jobs.MaxLocalJobs(), "optimizer needs 2 or more local jobs")

	alg, ok := a.DakotaAlgorithm()
	xe.Assert(ok, "analysis '%s' has no optimizer", a.Name)

	variables, err := a.Problem.DakotaInFileDescription()
	if err != nil {
		return err
	}

	dir := filepath.Join(options.WorkingDirectory, DakotaDirectoryName)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if err := os.MkdirAll(dir, os.FileMode(0o755)); err != nil {
		return xe.Wrap(err)
	}

	concurrency := 0
	if options.QueueSize != nil {
		concurrency = *options.QueueSize
	}
	if _, _, err := dakota.Prepare(dir, dakota.InFile{
		Title: fmt.Sprintf(
			"Generated by knitsim at %s; for analysis '%s'",
			time.Now().Format(time.RFC3339), a.Name,
		),
		Method:      alg.DakotaInFileDescription(),
		Variables:   variables,
		Concurrency: concurrency,
		FileSave:    options.Dakota.FileSave,
	}); err != nil {
		return err
	}

	args := []string{"-i", dakota.InFileName, "-o", dakota.OutFileName}
	if alg.RestartFile != "" {
		if _, err := os.Stat(alg.RestartFile); err == nil {
			args = append(args, "-read_restart", alg.RestartFile)
		}
	}
	executable := options.Dakota.Executable
	if executable == "" {
		executable = defaultDakotaExecutable
	}

	job, err := d.jobs.NewJob(JobSpec{
		Name:      DakotaDirectoryName,
		Directory: dir,
		Dakota:    &DakotaJobSpec{Executable: executable, Args: args},
	})
	if err != nil {
		return xe.Wrap(err)
	}

	ca.dakotaJob = job.ID()
	ca.dakotaStarted = true
	a.InitializeDakotaAlgorithm(job.ID(), dir)
	d.handlers[job.ID()] = onDakotaJob

	if err := d.save(a); err != nil {
		return err
	}
	if err := d.jobs.Enqueue(job, true); err != nil {
		delete(d.handlers, job.ID())
		return xe.Wrap(err)
	}
	d.logger.Infof("analysis '%s': optimizer is started in %s", a.Name, dir)

	if options.QueuePausing != FullPauseManualUnpause {
		d.unpauseQueue()
	}
	return nil
}

// dakotaJobOutputFileChanged handles a file the optimizer has written.
//
// A parameters file is an evaluation request. It is answered with a results file.
func (d *Driver) dakotaJobOutputFileChanged(job analysis.JobID, path string) {
	if !dakota.IsParamsFile(path) {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	ca, ok := d.currentByDakotaJob(job)
	if !ok {
		return
	}
	if _, ok := ca.seenParams[path]; ok {
		return
	}
	ca.seenParams[path] = struct{}{}

	a := ca.analysis
	params, err := dakota.LoadParams(path)
	if err != nil {
		d.logger.Errorf("analysis '%s': unable to read parameters file %s: %s", a.Name, path, err)
		d.writeDakotaResults(ca, nil, path)
		return
	}

	alg, ok := a.DakotaAlgorithm()
	xe.Assert(ok, "analysis '%s' has no optimizer", a.Name)
	dp, err := alg.CreateNextDataPoint(a, params)
	if err != nil {
		d.logger.Errorf("analysis '%s': parameters file %s does not fit to the problem: %s", a.Name, path, err)
		d.writeDakotaResults(ca, nil, path)
		return
	}
	d.saveOrLog(a)

	if dp.IsComplete() {
		d.writeDakotaResults(ca, dp, path)
		return
	}
	if err := d.queueDakotaJob(ca, dp, path); err != nil {
		d.logger.Errorf("analysis '%s': unable to queue job for %s: %s", a.Name, path, err)
		d.writeDakotaResults(ca, nil, path)
	}
}

// queueDakotaJob runs the data point requested by the optimizer.
func (d *Driver) queueDakotaJob(ca *CurrentAnalysis, dp *analysis.DataPoint, paramsFile string) error {
	a := ca.analysis
	options := ca.options

	if job, ok := ca.jobOf(dp.ID); ok {
		// already running. The results are written to every parameters file when it completes.
		if !slices.Contains(dp.DakotaParametersFiles, paramsFile) {
			dp.DakotaParametersFiles = append(dp.DakotaParametersFiles, paramsFile)
		}
		ca.queuedDakota[job] = dp.ID
		d.saveOrLog(a)
		return nil
	}

	if options.QueuePausing != NoPause {
		d.jobs.SetPaused(true)
	}

	job, err := d.issue(ca, dp, []string{paramsFile})
	if err != nil {
		return err
	}
	ca.queuedDakota[job.ID()] = dp.ID
	d.handlers[job.ID()] = onTreeStateChanged
	if err := d.jobs.Enqueue(job, true); err != nil {
		ca.forget(job.ID())
		delete(d.handlers, job.ID())
		a.ClearResults(dp)
		return xe.Wrap(err)
	}
	d.saveOrLog(a)

	if options.QueuePausing != FullPauseManualUnpause {
		d.unpauseQueue()
	}

	summary := d.summaryOf(ca)
	id := dp.ID
	d.emit(func(l Listener) { l.DataPointQueued(summary, id) })
	return nil
}

// dakotaJobComplete handles the finish of the optimizer.
func (d *Driver) dakotaJobComplete(id analysis.JobID, errs []string) {
	ca, ok := d.currentByDakotaJob(id)
	if !ok {
		return
	}
	delete(d.handlers, id)

	a := ca.analysis
	result := analysis.JobResult{Status: analysis.JobFailed}
	if job, err := d.jobs.GetJob(id); err == nil {
		result = job.Result()
	} else {
		result.Errors = append(result.Errors, err.Error())
	}
	result.Errors = append(result.Errors, errs...)

	a.UpdateDakotaAlgorithm(result)
	alg, ok := a.DakotaAlgorithm()
	xe.Assert(ok && alg.IsComplete(), "optimizer of analysis '%s' is not complete after update", a.Name)
	if alg.Failed() {
		d.logger.Warnf("analysis '%s': optimizer failed: %v", a.Name, result.Errors)
	}
	d.saveOrLog(a)

	ca.dakotaJob = analysis.JobID{}

	// evaluations nobody waits for anymore
	for job, dpID := range ca.queuedDakota {
		if _, alsoOS := ca.queuedOS[job]; alsoOS {
			delete(ca.queuedDakota, job)
			continue
		}
		d.cancel(job)
		ca.forget(job)
		if dp, ok := a.DataPointByID(dpID); ok && !dp.IsComplete() {
			dp.Status = analysis.Stopped
		}
	}

	if ca.NumQueuedJobs() == 0 {
		d.saveOrLog(a)
		d.complete(ca, "the optimizer has finished.")
	}
}

// writeDakotaResults answers the parameters file. If dp is nil, or has no results, it answers FAIL.
func (d *Driver) writeDakotaResults(ca *CurrentAnalysis, dp *analysis.DataPoint, paramsFile string) {
	var values []float64
	if dp != nil {
		if v, ok := ca.analysis.Problem.DakotaResults(dp); ok {
			values = v
		}
	}
	if _, err := dakota.WriteResultsFile(paramsFile, values); err != nil {
		d.logger.Errorf("unable to write results for %s: %s", paramsFile, err)
	}
}
