package analysisdriver

import (
	"errors"
	"fmt"

	"github.com/opst/knitsim/pkg/analysis"
)

var ErrInvalidOptions = errors.New("invalid run options")

// QueuePausing is how the job subsystem is paused while jobs are being queued.
type QueuePausing string

const (
	// The subsystem is not paused. Jobs start as soon as they are queued.
	NoPause QueuePausing = "no-pause"

	// The subsystem is paused while queuing, and unpaused when first N jobs are queued.
	PauseForFirstN QueuePausing = "pause-for-first-n"

	// The subsystem is paused while queuing, and left paused. Call Driver.UnpauseQueue to start.
	FullPauseManualUnpause QueuePausing = "full-pause-manual-unpause"
)

func AsQueuePausing(s string) (QueuePausing, error) {
	switch s {
	case string(NoPause):
		return NoPause, nil
	case string(PauseForFirstN):
		return PauseForFirstN, nil
	case string(FullPauseManualUnpause):
		return FullPauseManualUnpause, nil
	default:
		return "", fmt.Errorf("unknown queue pausing: %s", s)
	}
}

// JobCleanUp is what is removed from the directory of a data point after the job succeeds.
type JobCleanUp string

const (
	// Nothing is removed.
	CleanUpNone JobCleanUp = "none"

	// The simulation input is removed.
	CleanUpStandard JobCleanUp = "standard"

	// Everything but the responses file is removed.
	CleanUpMaximum JobCleanUp = "maximum"
)

func AsJobCleanUp(s string) (JobCleanUp, error) {
	switch s {
	case string(CleanUpNone):
		return CleanUpNone, nil
	case string(CleanUpStandard):
		return CleanUpStandard, nil
	case string(CleanUpMaximum):
		return CleanUpMaximum, nil
	default:
		return "", fmt.Errorf("unknown job clean up: %s", s)
	}
}

type DakotaOptions struct {
	Executable string

	// FileSave keeps parameters and results files.
	FileSave bool
}

type RunOptions struct {
	// WorkingDirectory is where data point directories and optimizer files are made.
	WorkingDirectory string

	// QueueSize caps the number of jobs in flight. nil means no cap.
	QueueSize *int

	QueuePausing QueuePausing

	// FirstN is used with PauseForFirstN.
	FirstN int

	// Force runs jobs again even if they have finished.
	Force bool

	JobCleanUp JobCleanUp

	Simulation analysis.Simulation
	Dakota     DakotaOptions
}

func (o RunOptions) validate() error {
	if o.WorkingDirectory == "" {
		return fmt.Errorf("%w: working directory is required", ErrInvalidOptions)
	}
	if o.QueueSize != nil && *o.QueueSize < 1 {
		return fmt.Errorf("%w: queue size should be positive: %d", ErrInvalidOptions, *o.QueueSize)
	}
	switch o.QueuePausing {
	case NoPause, FullPauseManualUnpause:
	case PauseForFirstN:
		if o.FirstN < 1 {
			return fmt.Errorf("%w: first N should be positive: %d", ErrInvalidOptions, o.FirstN)
		}
	default:
		return fmt.Errorf("%w: unknown queue pausing: '%s'", ErrInvalidOptions, o.QueuePausing)
	}
	return nil
}
