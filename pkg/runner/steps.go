package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/opst/knitsim/pkg/analysis"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
	xe "github.com/opst/knitsim/pkg/errors"
	"github.com/opst/knitsim/pkg/idf"
	"github.com/opst/knitsim/pkg/translator/forward"
	"github.com/opst/knitsim/pkg/translator/reverse"
)

const (
	StdoutFileName = "stdout.log"
	StderrFileName = "stderr.log"
)

// waitDelay bounds waiting for output of descendants after a process is killed.
const waitDelay = 5 * time.Second

func (r *Runner) execute(ctx context.Context, j *Job) analysis.JobResult {
	if j.spec.Dakota != nil {
		return r.runDakota(ctx, j)
	}
	return r.runWorkflow(ctx, j)
}

func (r *Runner) runWorkflow(ctx context.Context, j *Job) analysis.JobResult {
	for _, c := range j.children {
		if ctx.Err() != nil {
			break
		}
		r.setStatus(c, analysis.JobRunning)

		var err error
		switch c.step.Kind {
		case analysis.StepTranslate:
			err = r.translate(j, *c.step)
		case analysis.StepExec:
			err = r.exec(ctx, j, *c.step)
		default:
			err = fmt.Errorf("unknown step: %s", c.step.Kind)
		}

		if ctx.Err() != nil {
			r.setStatus(c, analysis.JobCanceled)
			break
		}
		if err != nil {
			r.logger.Warnf("job '%s': step %s failed: %s", j.spec.Name, c.step.Kind, err)
			r.setStatus(c, analysis.JobFailed, err.Error())
			return analysis.JobResult{
				Status: analysis.JobFailed,
				Errors: []string{fmt.Sprintf("%s: %s", c.step.Kind, err)},
			}
		}
		r.setStatus(c, analysis.JobSucceeded)
	}

	if ctx.Err() != nil {
		r.mu.Lock()
		for _, c := range j.children {
			if !c.status.Finished() {
				c.status = analysis.JobCanceled
			}
		}
		r.mu.Unlock()
		return analysis.JobResult{Status: analysis.JobCanceled}
	}

	if err := cleanUp(j.spec.Directory, j.spec.CleanUp); err != nil {
		r.logger.Warnf("job '%s': failed to clean up: %s", j.spec.Name, err)
	}
	return analysis.JobResult{Status: analysis.JobSucceeded}
}

// translate applies assignments to the seed model, and writes the simulation input.
func (r *Runner) translate(j *Job, step analysis.Step) error {
	f, err := os.Open(step.Seed)
	if err != nil {
		return xe.Wrap(err)
	}
	defer f.Close()
	ws, err := idf.Read(f)
	if err != nil {
		return err
	}

	rt := reverse.New(r.logger)
	m := rt.TranslateWorkspace(ws)
	for _, msg := range rt.Errors() {
		r.logger.Warnf("job '%s': %s", j.spec.Name, msg)
	}

	errs := []error{}
	for _, a := range step.Assignments {
		if err := a.Apply(m); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	ft := forward.New(r.logger)
	out := ft.TranslateModel(m)
	for _, msg := range ft.Errors() {
		r.logger.Warnf("job '%s': %s", j.spec.Name, msg)
	}

	path := filepath.Join(j.spec.Directory, step.Output)
	w, err := os.Create(path)
	if err != nil {
		return xe.Wrap(err)
	}
	if err := idf.Write(w, out); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return xe.Wrap(err)
	}
	r.output(j, path)
	return nil
}

// exec runs the command in the directory of the job. Outputs go to log files.
func (r *Runner) exec(ctx context.Context, j *Job, step analysis.Step) error {
	if len(step.Command) == 0 {
		return errors.New("command is empty")
	}
	dir := j.spec.Directory

	stdout, err := os.Create(filepath.Join(dir, StdoutFileName))
	if err != nil {
		return xe.Wrap(err)
	}
	defer stdout.Close()
	stderr, err := os.Create(filepath.Join(dir, StderrFileName))
	if err != nil {
		return xe.Wrap(err)
	}
	defer stderr.Close()

	tail := new(tailBuffer)
	cmd := exec.CommandContext(ctx, step.Command[0], step.Command[1:]...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, tail)

	r.logger.Debugf("job '%s': run %v", j.spec.Name, step.Command)
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(tail.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	r.output(j, stdout.Name())
	r.output(j, stderr.Name())
	return nil
}

// runDakota runs the optimizer, notifying files it writes.
func (r *Runner) runDakota(ctx context.Context, j *Job) analysis.JobResult {
	spec := j.spec.Dakota
	dir := j.spec.Directory

	watcher, err := newOutputWatcher(dir, r.coalesce, func(path string) { r.output(j, path) }, r.logger)
	if err != nil {
		return analysis.JobResult{Status: analysis.JobFailed, Errors: []string{err.Error()}}
	}

	tail := new(tailBuffer)
	cmd := exec.CommandContext(ctx, spec.Executable, spec.Args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	cmd.Stderr = tail
	err = cmd.Run()
	watcher.Close()

	if ctx.Err() != nil {
		return analysis.JobResult{Status: analysis.JobCanceled}
	}
	if err != nil {
		errs := []string{err.Error()}
		if msg := strings.TrimSpace(tail.String()); msg != "" {
			errs = append(errs, msg)
		}
		return analysis.JobResult{Status: analysis.JobFailed, Errors: errs}
	}
	return analysis.JobResult{Status: analysis.JobSucceeded}
}

// cleanUp removes files of a succeeded job.
func cleanUp(dir string, policy driver.JobCleanUp) error {
	switch policy {
	case driver.CleanUpStandard:
		if err := os.Remove(filepath.Join(dir, analysis.InputFileName)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return xe.Wrap(err)
		}
		return nil
	case driver.CleanUpMaximum:
		entries, err := os.ReadDir(dir)
		if err != nil {
			return xe.Wrap(err)
		}
		errs := []error{}
		for _, e := range entries {
			if e.Name() == analysis.ResponsesFileName {
				continue
			}
			if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	default:
		return nil
	}
}

// tailBuffer keeps the last bytes written.
type tailBuffer struct {
	buf bytes.Buffer
}

const tailSize = 1024

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	t.buf.Write(p)
	if over := t.buf.Len() - tailSize; 0 < over {
		t.buf.Next(over)
	}
	return n, nil
}

func (t *tailBuffer) String() string {
	return t.buf.String()
}
