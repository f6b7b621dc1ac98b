// Error wrapper remembering where it is created.
//
// Usage:
//
// ```
// wrapped := errors.Wrap(err)
// ```
//
// `wrapped` knows filename, line, and the name of function where itself is created.
// Messages of nested wrappers are joined by " <- ", so reading it as
//
//	s/<-/\n/
//
// gives you "stacks" of where the error has passed.
//
// Assert is for invariants which never be violated unless there is a bug.
// It panics rather than returning error.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

type ErrWithCaller struct {
	file     string
	line     int
	funcname string
	note     string
	err      error
}

func (e *ErrWithCaller) File() string {
	return e.file
}

func (e *ErrWithCaller) Line() int {
	return e.line
}

func (e *ErrWithCaller) Func() string {
	return e.funcname
}

func (e *ErrWithCaller) Error() string {
	if e.note == "" {
		return fmt.Sprintf(`@ %s "%s" l%d <- %s`, e.funcname, e.file, e.line, e.err.Error())
	}
	return fmt.Sprintf(`@ %s "%s" l%d (%s) <- %s`, e.funcname, e.file, e.line, e.note, e.err.Error())
}

func (e *ErrWithCaller) Unwrap() error {
	return e.err
}

func New(text string) error {
	return wrap("", errors.New(text), 1)
}

// Errorf is fmt.Errorf with caller location. %w works as usual.
func Errorf(format string, args ...any) error {
	return wrap("", fmt.Errorf(format, args...), 1)
}

func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return wrap("", err, 1)
}

func WrapWithNote(note string, err error) error {
	if err == nil {
		return nil
	}
	return wrap(note, err, 1)
}

// ErrAssertion is wrapped by every panic value raised from Assert.
var ErrAssertion = errors.New("assertion failed")

// Assert panics when cond is false.
//
// The panic value is an *ErrWithCaller wrapping ErrAssertion,
// located at the caller of Assert.
func Assert(cond bool, format string, args ...any) {
	if cond {
		return
	}
	panic(wrap(
		fmt.Sprintf(format, args...), ErrAssertion, 1,
	))
}

func wrap(note string, err error, depth int) error {
	pc, file, line, ok := runtime.Caller(depth + 1)
	funcname := "(unknown func)"
	if !ok {
		file = "?"
		line = -1
	}
	fn := runtime.FuncForPC(pc)
	if fn != nil {
		funcname = fn.Name()
	}

	return &ErrWithCaller{
		funcname: funcname,
		file:     file,
		line:     line,
		note:     note,
		err:      err,
	}
}
