package my_stack

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackScenario(t *testing.T) {
	var s Stack[int]
	s1 := Push(s, 10)
	s2 := Push(s1, 20)
	assert.Equal(t, []int{10}, s1.Items())
	assert.Equal(t, []int{10, 20}, s2.Items())

	v, s3, err := Pop(s2)
	require.NoError(t, err)
	assert.Equal(t, 20, v)
	assert.Equal(t, []int{10}, s3.Items())

	// nothing upstream changed
	assert.Equal(t, 0, Len(s))
	assert.Equal(t, []int{10}, s1.Items())
	assert.Equal(t, []int{10, 20}, s2.Items())
}

func TestStackLIFOOrder(t *testing.T) {
	values := []string{"a", "b", "c", "d", "e"}
	s := FromSlice(values)
	require.Equal(t, len(values), s.Len())

	for i := len(values) - 1; i >= 0; i-- {
		var v string
		var err error
		v, s, err = s.Pop()
		require.NoError(t, err)
		assert.Equal(t, values[i], v)
		assert.Equal(t, i, s.Len())
	}
}

func TestStackPushGrowsByOne(t *testing.T) {
	for _, items := range [][]int{nil, {1}, {1, 2, 3}} {
		s := FromSlice(items)
		assert.Equal(t, s.Len()+1, s.Push(42).Len())
	}
}

func TestStackPushPopRoundTrip(t *testing.T) {
	for _, items := range [][]int{nil, {7}, {3, 1, 4, 1, 5}} {
		s := FromSlice(items)
		v, back, err := s.Push(99).Pop()
		require.NoError(t, err)
		assert.Equal(t, 99, v)
		assert.Equal(t, s, back)
		assert.Equal(t, items, nilIfEmpty(back.Items()))
	}
}

func TestStackSharedTails(t *testing.T) {
	base := FromSlice([]int{1, 2})
	left := base.Push(3)
	right := base.Push(4)
	assert.Equal(t, []int{1, 2, 3}, left.Items())
	assert.Equal(t, []int{1, 2, 4}, right.Items())
	assert.Equal(t, []int{1, 2}, base.Items())
}

func TestStackPopEmpty(t *testing.T) {
	var s Stack[int]
	_, next, err := s.Pop()
	require.ErrorIs(t, err, ErrEmptyStack)
	assert.Equal(t, Stack[int]{}, next)

	_, err = s.Peek()
	assert.True(t, errors.Is(err, ErrEmptyStack))
}

func TestStackPeek(t *testing.T) {
	s := FromSlice([]int{1, 2, 3})
	v, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 3, s.Len())
}

func nilIfEmpty(items []int) []int {
	if len(items) == 0 {
		return nil
	}
	return items
}
