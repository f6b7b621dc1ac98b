package runner

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/gommon/log"
	xe "github.com/opst/knitsim/pkg/errors"
)

// outputWatcher notifies files created or written in a directory.
//
// Events of a file are coalesced: the file is notified once it has been quiet for delay.
type outputWatcher struct {
	w      *fsnotify.Watcher
	delay  time.Duration
	notify func(path string)
	logger *log.Logger

	stop chan struct{}
	done chan struct{}
}

func newOutputWatcher(dir string, delay time.Duration, notify func(string), logger *log.Logger) (*outputWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, xe.Wrap(err)
	}
	ow := &outputWatcher{
		w:      w,
		delay:  delay,
		notify: notify,
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go ow.loop()
	return ow, nil
}

func (ow *outputWatcher) loop() {
	defer close(ow.done)
	defer ow.w.Close()

	due := map[string]time.Time{}
	timer := time.NewTimer(ow.delay)
	timer.Stop()
	defer timer.Stop()

	fire := func(all bool) {
		now := time.Now()
		var next time.Duration
		for path, at := range due {
			if all || !at.After(now) {
				delete(due, path)
				ow.notify(path)
				continue
			}
			if d := at.Sub(now); next == 0 || d < next {
				next = d
			}
		}
		if 0 < next {
			timer.Reset(next)
		}
	}

	for {
		select {
		case <-ow.stop:
			// files written just before the end
			fire(true)
			return
		case ev, ok := <-ow.w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			due[ev.Name] = time.Now().Add(ow.delay)
			timer.Reset(ow.delay)
		case err, ok := <-ow.w.Errors:
			if !ok {
				return
			}
			ow.logger.Warnf("watching outputs: %s", err)
		case <-timer.C:
			fire(false)
		}
	}
}

// Close stops watching. Files pending are notified before it returns.
func (ow *outputWatcher) Close() {
	close(ow.stop)
	<-ow.done
}
