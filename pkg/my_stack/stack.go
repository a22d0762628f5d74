package my_stack

// node is one cell of the persistent list behind Stack. Nodes are never
// modified after creation, so any number of stacks can share a tail.
type node[T any] struct {
	val  T
	next *node[T]
}

// Stack is an immutable LIFO value. Operations never change the receiver;
// they return a new Stack that the caller has to keep:
//
//	s = s.Push(10)
//	v, s, err := s.Pop()
//
// The zero value is an empty stack ready to use. Stacks may be shared
// between goroutines freely.
type Stack[T any] struct {
	top  *node[T]
	size int
}

// FromSlice builds a stack from items, the last one on top.
func FromSlice[T any](items []T) Stack[T] {
	var s Stack[T]
	for _, v := range items {
		s = s.Push(v)
	}
	return s
}

// Push returns s with val on top.
func (s Stack[T]) Push(val T) Stack[T] {
	return Stack[T]{top: &node[T]{val: val, next: s.top}, size: s.size + 1}
}

// Pop returns the top element and s without it. For an empty stack it
// returns ErrEmptyStack and a zero Stack.
func (s Stack[T]) Pop() (T, Stack[T], error) {
	if s.top == nil {
		var zero T
		return zero, Stack[T]{}, ErrEmptyStack
	}
	return s.top.val, Stack[T]{top: s.top.next, size: s.size - 1}, nil
}

func (s Stack[T]) Peek() (T, error) {
	if s.top == nil {
		var zero T
		return zero, ErrEmptyStack
	}
	return s.top.val, nil
}

func (s Stack[T]) Len() int {
	return s.size
}

// Items returns the contents bottom first.
func (s Stack[T]) Items() []T {
	out := make([]T, s.size)
	i := s.size - 1
	for n := s.top; n != nil; n = n.next {
		out[i] = n.val
		i--
	}
	return out
}

// Push, Pop and Len are the free-function forms of the methods above.

func Push[T any](s Stack[T], val T) Stack[T] {
	return s.Push(val)
}

func Pop[T any](s Stack[T]) (T, Stack[T], error) {
	return s.Pop()
}

func Len[T any](s Stack[T]) int {
	return s.Len()
}
