package my_stack

import (
	"sync"
)

// ConcurrentStack guards a MyStack with a mutex held for the duration of
// each operation.
type ConcurrentStack[T any] struct {
	stack MyStack[T]
	mutex sync.Mutex
}

func (c *ConcurrentStack[T]) Push(val T) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.stack.Push(val)
}

func (c *ConcurrentStack[T]) Pop() (T, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.stack.Pop()
}

func (c *ConcurrentStack[T]) Peek() (T, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.stack.Peek()
}

func (c *ConcurrentStack[T]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.stack.Size()
}

func (c *ConcurrentStack[T]) Items() []T {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.stack.Items()
}
