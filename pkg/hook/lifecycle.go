package hook

import (
	"time"

	"github.com/labstack/gommon/log"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
)

type EventType string

const (
	Started  EventType = "started"
	Complete EventType = "complete"
	Stopped  EventType = "stopped"
)

// Event is a payload of lifecycle hooks.
type Event struct {
	Event    EventType      `json:"event"`
	At       time.Time      `json:"at"`
	Analysis driver.Summary `json:"analysis"`
}

// Lifecycle calls a hook when analyses start and end.
//
// Before is called for a started analysis, After for a completed or stopped one.
// Failures of the hook are logged, and do not affect the analysis.
type Lifecycle struct {
	driver.Nop

	hook   Hook[Event, struct{}]
	logger *log.Logger
	now    func() time.Time
}

var _ driver.Listener = &Lifecycle{}

func NewLifecycle(h Hook[Event, struct{}], logger *log.Logger) *Lifecycle {
	if logger == nil {
		logger = log.New("hook")
	}
	return &Lifecycle{hook: h, logger: logger, now: time.Now}
}

func (l *Lifecycle) event(t EventType, s driver.Summary) Event {
	return Event{Event: t, At: l.now().UTC(), Analysis: s}
}

func (l *Lifecycle) AnalysisStarted(s driver.Summary) {
	if _, err := l.hook.Before(l.event(Started, s)); err != nil {
		l.logger.Warnf("lifecycle hook for analysis '%s' (%s) started: %s", s.Name, s.ID, err)
	}
}

func (l *Lifecycle) AnalysisComplete(s driver.Summary) {
	l.after(Complete, s)
}

func (l *Lifecycle) AnalysisStopped(s driver.Summary) {
	l.after(Stopped, s)
}

func (l *Lifecycle) after(t EventType, s driver.Summary) {
	if err := l.hook.After(l.event(t, s)); err != nil {
		l.logger.Warnf("lifecycle hook for analysis '%s' (%s) %s: %s", s.Name, s.ID, t, err)
	}
}
