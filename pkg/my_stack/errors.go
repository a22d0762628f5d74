package my_stack

import "github.com/pkg/errors"

// ErrEmptyStack is returned by Pop and Peek when the stack holds no elements.
var ErrEmptyStack = errors.New("my_stack: empty stack")
