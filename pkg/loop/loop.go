// Package loop repeats a task until it says enough.
package loop

import (
	"context"
	"fmt"
	"time"
)

// Next tells Start what to do after a round of the task.
//
// The zero value is Continue(0).
type Next struct {
	err      error
	quit     bool
	interval time.Duration
}

func (n Next) String() string {
	switch {
	case n.err != nil:
		return fmt.Sprintf("break: %v", n.err)
	case n.quit:
		return "break"
	default:
		return fmt.Sprintf("continue after %s", n.interval)
	}
}

// Continue runs the task again after interval.
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// Break stops the loop. err is returned from Start as is.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// Task is a round of a loop. It takes the value of the last round, and returns the value for the next.
type Task[T any] func(context.Context, T) (T, Next)

// Start runs task repeatedly, starting from init.
//
// It returns the value of the last round, and the error passed to Break.
// When ctx is done, it returns ctx.Err() with the value of the last completed round.
//
// Polling the driver until nothing runs:
//
//	loop.Start(ctx, struct{}{}, func(ctx context.Context, v struct{}) (struct{}, loop.Next) {
//		if !d.IsRunning() {
//			return v, loop.Break(nil)
//		}
//		d.ProcessEvents(interval)
//		return v, loop.Continue(0)
//	})
func Start[T any](ctx context.Context, init T, task Task[T], options ...Option) (T, error) {
	if err := ctx.Err(); err != nil {
		return init, err
	}

	value := init
	for {
		v, next := round(ctx, value, task, options)
		if next.quit {
			return v, next.err
		}
		value = v

		timer := time.NewTimer(next.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return value, ctx.Err()
		case <-timer.C:
		}
	}
}

func round[T any](ctx context.Context, value T, task Task[T], options []Option) (T, Next) {
	rc := &roundConfig{ctx: ctx}
	for _, opt := range options {
		opt(rc)
	}
	defer func() {
		for _, f := range rc.release {
			f()
		}
	}()
	return task(rc.ctx, value)
}

type roundConfig struct {
	ctx     context.Context
	release []func()
}

type Option func(*roundConfig)

// WithTimeout bounds each round. The context passed to the task is done after d.
func WithTimeout(d time.Duration) Option {
	return func(rc *roundConfig) {
		ctx, cancel := context.WithTimeout(rc.ctx, d)
		rc.ctx = ctx
		rc.release = append(rc.release, cancel)
	}
}
