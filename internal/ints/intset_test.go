package ints

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmpty(t *testing.T) {
	s := NewSet()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.ToSlice())
	assert.False(t, s.Contains(0))
	assert.False(t, s.Contains(-1))
}

func TestContains(t *testing.T) {
	s := NewSet(0, 3, wordBits, 200).Add(-5, 3)

	for _, i := range []int{0, 3, wordBits, 200} {
		assert.True(t, s.Contains(i), i)
	}
	for _, i := range []int{-5, 1, 2, wordBits - 1, wordBits + 1, 199, 201, 1000} {
		assert.False(t, s.Contains(i), i)
	}
	assert.Equal(t, 4, s.Len())
}

func TestToSlice(t *testing.T) {
	s := NewSet(130, 5, 64, 63, 5, 0)
	assert.Equal(t, []int{0, 5, 63, 64, 130}, s.ToSlice())
}

func TestClear(t *testing.T) {
	s := NewSet(1, 100)
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains(100))

	s.Add(7)
	assert.Equal(t, []int{7}, s.ToSlice())
}
