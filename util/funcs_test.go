package util

import (
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack(t *testing.T) {
	s := &Stack[int]{}
	_, ok := s.Pop()
	assert.False(t, ok)

	s.Push(1)
	s.Push(2)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []int{1, 2}, s.Items())

	v, _ := s.Pop()
	assert.Equal(t, 2, v)
	assert.Equal(t, []int{1}, s.Items())
}

func TestSliceHelpers(t *testing.T) {
	reversed := slices.Collect(Reverse([]int{1, 2, 3}))
	assert.Equal(t, []int{3, 2, 1}, reversed)
	assert.Empty(t, slices.Collect(Reverse([]int(nil))))

	assert.Equal(t, []string{"1", "2"}, MapSlice([]int{1, 2}, strconv.Itoa))
}
