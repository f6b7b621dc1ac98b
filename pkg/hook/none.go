package hook

// None is a hook that does nothing.
type None[T any] struct{}

var _ Hook[Event, struct{}] = None[Event]{}

func (None[T]) Before(T) (struct{}, error) {
	return struct{}{}, nil
}

func (None[T]) After(T) error {
	return nil
}
