package translator

import (
	"fmt"

	"github.com/labstack/gommon/log"
)

type Level string

const (
	Warn  Level = "warn"
	Error Level = "error"
)

// LogMessage is a soft failure reported during a translation pass.
type LogMessage struct {
	Level   Level
	Message string
}

func (m LogMessage) String() string {
	return fmt.Sprintf("[%s] %s", m.Level, m.Message)
}

// Log collects soft failures of one pass and forwards them to a logger.
//
// The zero value is usable; it forwards nowhere.
type Log struct {
	logger   *log.Logger
	messages []LogMessage
}

// NewLog creates Log forwarding to logger. nil logger means a logger with prefix name at WARN level.
func NewLog(name string, logger *log.Logger) *Log {
	if logger == nil {
		logger = log.New(name)
		logger.SetLevel(log.WARN)
	}
	return &Log{logger: logger}
}

// Logger returns the underlying logger. It can be nil for the zero value.
func (l *Log) Logger() *log.Logger {
	return l.logger
}

// Reset drops collected messages.
func (l *Log) Reset() {
	l.messages = nil
}

func (l *Log) Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.messages = append(l.messages, LogMessage{Level: Warn, Message: msg})
	if l.logger != nil {
		l.logger.Warn(msg)
	}
}

func (l *Log) Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.messages = append(l.messages, LogMessage{Level: Error, Message: msg})
	if l.logger != nil {
		l.logger.Error(msg)
	}
}

// Infof is forwarded only. It is not a soft failure.
func (l *Log) Infof(format string, args ...any) {
	if l.logger != nil {
		l.logger.Infof(format, args...)
	}
}

// Append takes messages collected elsewhere. They are not forwarded again.
func (l *Log) Append(msgs ...LogMessage) {
	l.messages = append(l.messages, msgs...)
}

func (l *Log) Messages() []LogMessage {
	return append([]LogMessage{}, l.messages...)
}

func (l *Log) Warnings() []LogMessage {
	return l.filter(Warn)
}

func (l *Log) Errors() []LogMessage {
	return l.filter(Error)
}

func (l *Log) filter(level Level) []LogMessage {
	ret := []LogMessage{}
	for _, m := range l.messages {
		if m.Level == level {
			ret = append(ret, m)
		}
	}
	return ret
}
