package my_stack

// MyStack is a mutable LIFO container. Push and Pop change the stack in
// place, so every holder of the pointer sees the change.
// A MyStack is not safe for concurrent use, see ConcurrentStack.
type MyStack[T any] struct {
	container []T
	size      int
}

func (s *MyStack[T]) Push(val T) {
	if s.size < len(s.container) {
		s.container[s.size] = val
		s.size++
	} else {
		s.container = append(s.container, val)
		s.size++
	}
}

// Pop removes and returns the top element. The stack is left untouched
// when it is empty.
func (s *MyStack[T]) Pop() (T, error) {
	var zero T
	if s.size == 0 {
		return zero, ErrEmptyStack
	}
	s.size--
	val := s.container[s.size]
	s.container[s.size] = zero // release the reference
	return val, nil
}

func (s *MyStack[T]) Peek() (T, error) {
	if s.size == 0 {
		var zero T
		return zero, ErrEmptyStack
	}
	return s.container[s.size-1], nil
}

func (s *MyStack[T]) Size() int {
	return s.size
}

// Items returns a copy of the contents, bottom first.
func (s *MyStack[T]) Items() []T {
	out := make([]T, s.size)
	copy(out, s.container[:s.size])
	return out
}

func NewMyStack[T any]() *MyStack[T] {
	return &MyStack[T]{container: make([]T, 10), size: 0}
}

// NewMyStackFrom returns a stack holding items, the last one on top.
func NewMyStackFrom[T any](items []T) *MyStack[T] {
	container := make([]T, len(items), max(len(items), 10))
	copy(container, items)
	return &MyStack[T]{container: container, size: len(items)}
}
