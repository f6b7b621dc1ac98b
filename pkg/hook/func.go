package hook

import "fmt"

// Func is a hook calling functions. Useful for tests and in-process consumers.
type Func[T any, R any] struct {
	// BeforeFn is called by Before. nil is skipped.
	BeforeFn func(T) (R, error)

	// AfterFn is called by After. nil is skipped.
	AfterFn func(T) error
}

func (f Func[T, R]) Before(value T) (R, error) {
	if f.BeforeFn == nil {
		return *new(R), nil
	}
	ret, err := f.BeforeFn(value)
	if err != nil {
		return ret, fmt.Errorf("%w: %w", ErrHookFailed, err)
	}
	return ret, nil
}

func (f Func[T, R]) After(value T) error {
	if f.AfterFn == nil {
		return nil
	}
	if err := f.AfterFn(value); err != nil {
		return fmt.Errorf("%w: %w", ErrHookFailed, err)
	}
	return nil
}
