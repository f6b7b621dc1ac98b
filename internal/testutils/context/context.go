package context

import (
	"context"
	"testing"
	"time"
)

// Margin is left between the deadline of contexts and the deadline of the test.
const Margin = time.Second

// WithTest derives a context from ctx, which is done Margin before the test times out.
//
// It is also done when the test ends.
func WithTest(ctx context.Context, t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(t.Context(), cancel)

	deadline, ok := t.Deadline()
	if !ok {
		return ctx, func() { stop(); cancel() }
	}
	dctx, dcancel := context.WithDeadline(ctx, deadline.Add(-Margin))
	return dctx, func() { stop(); dcancel(); cancel() }
}
