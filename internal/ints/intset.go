// Package ints implements a set of small non-negative integers (lexer state and rule indexes).
package ints

import "math/bits"

const wordBits = bits.UintSize

// Set is a growable bit set. Negative items are never contained.
type Set struct {
	words []uint
}

func NewSet(items ...int) *Set {
	return new(Set).Add(items...)
}

func (s *Set) Add(items ...int) *Set {
	for _, item := range items {
		if item < 0 {
			continue
		}

		i := item / wordBits
		if i >= len(s.words) {
			words := make([]uint, i+1)
			copy(words, s.words)
			s.words = words
		}
		s.words[i] |= 1 << (item % wordBits)
	}
	return s
}

func (s *Set) Contains(item int) bool {
	if item < 0 || item/wordBits >= len(s.words) {
		return false
	}
	return s.words[item/wordBits]&(1<<(item%wordBits)) != 0
}

func (s *Set) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount(w)
	}
	return n
}

// Clear removes all items keeping allocated memory.
func (s *Set) Clear() *Set {
	clear(s.words)
	return s
}

// ToSlice returns items in ascending order.
func (s *Set) ToSlice() []int {
	result := make([]int, 0, s.Len())
	for i, w := range s.words {
		for w != 0 {
			result = append(result, i*wordBits+bits.TrailingZeros(w))
			w &= w - 1
		}
	}
	return result
}
