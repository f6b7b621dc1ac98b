package runner

import (
	"sync"

	driver "github.com/opst/knitsim/pkg/analysisdriver"
)

// eventQueue buffers events without bound, and feeds them to out in order.
//
// Pushing never blocks, so jobs are not held by slow readers.
type eventQueue struct {
	mu    sync.Mutex
	items []driver.Event

	wake     chan struct{}
	out      chan driver.Event
	done     chan struct{}
	finished chan struct{}
}

func newEventQueue() *eventQueue {
	q := &eventQueue{
		wake:     make(chan struct{}, 1),
		out:      make(chan driver.Event),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go q.pump()
	return q
}

func (q *eventQueue) push(ev driver.Event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *eventQueue) pump() {
	defer close(q.finished)
	defer close(q.out)

	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()
			select {
			case <-q.wake:
				continue
			case <-q.done:
				return
			}
		}
		ev := q.items[0]
		q.mu.Unlock()

		select {
		case q.out <- ev:
			q.mu.Lock()
			q.items = q.items[1:]
			q.mu.Unlock()
		case <-q.done:
			return
		}
	}
}

// close stops feeding. Events not read yet are dropped, and out is closed.
func (q *eventQueue) close() {
	close(q.done)
	<-q.finished
}
