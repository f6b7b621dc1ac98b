package errors_test

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	xe "github.com/opst/knitsim/pkg/errors"
)

type MyErr struct{}

func (MyErr) Error() string {
	return "error type for test"
}

func createError(message string) error {
	return xe.New(message)
}

func assertPositive(n int) {
	xe.Assert(0 < n, "n should be positive, but %d", n)
}

func TestNewError(t *testing.T) {
	t.Run("it knows location where it is created.", func(t *testing.T) {
		testee := createError("test error")
		errMessage := testee.Error()

		_, thisFile, _, _ := runtime.Caller(0)

		if !strings.Contains(errMessage, "createError") {
			t.Errorf("it does not know function name: %s", errMessage)
		}

		if !strings.Contains(errMessage, thisFile) {
			t.Errorf("it does not know file (%s): %s", thisFile, errMessage)
		}
	})

	t.Run("it supports errors protocol", func(t *testing.T) {
		rootError := MyErr{}

		err := xe.Wrap(
			fmt.Errorf(
				"%w",
				fmt.Errorf("%w", rootError),
			),
		)

		if !errors.Is(err, rootError) {
			t.Error("it does not support unwrapping.")
		}
	})

	t.Run("wrapping nil gives nil", func(t *testing.T) {
		if err := xe.Wrap(nil); err != nil {
			t.Errorf("actual=%+v, expect=nil", err)
		}
		if err := xe.WrapWithNote("note", nil); err != nil {
			t.Errorf("actual=%+v, expect=nil", err)
		}
	})

	t.Run("note is shown in message", func(t *testing.T) {
		err := xe.WrapWithNote("while saving", MyErr{})
		if !strings.Contains(err.Error(), "(while saving)") {
			t.Errorf("note is missing: %s", err.Error())
		}
	})
}

func TestAssert(t *testing.T) {
	t.Run("it does nothing when the condition holds", func(t *testing.T) {
		assertPositive(1)
	})

	t.Run("it panics with ErrAssertion located at the caller", func(t *testing.T) {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("it does not panic")
			}
			err, ok := r.(error)
			if !ok {
				t.Fatalf("panic value is not error: %+v", r)
			}
			if !errors.Is(err, xe.ErrAssertion) {
				t.Errorf("actual=%+v, expect=%+v", err, xe.ErrAssertion)
			}
			if !strings.Contains(err.Error(), "assertPositive") {
				t.Errorf("it does not know function name: %s", err.Error())
			}
			if !strings.Contains(err.Error(), "but -3") {
				t.Errorf("message is not formatted: %s", err.Error())
			}
		}()
		assertPositive(-3)
	})
}
