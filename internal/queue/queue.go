// Package queue implements generic ring queue with indexed access.
package queue

const minCap = 4

// Queue is a growable ring buffer, capacity is always a power of two.
// Items are addressed relative to the head.
type Queue[T any] struct {
	items []T
	head  int
	len   int
}

func New[T any](items ...T) *Queue[T] {
	q := &Queue[T]{items: make([]T, capFor(len(items)))}
	for _, item := range items {
		q.Append(item)
	}
	return q
}

func capFor(n int) int {
	c := minCap
	for c < n {
		c <<= 1
	}
	return c
}

func (q *Queue[T]) Len() int {
	return q.len
}

func (q *Queue[T]) index(i int) int {
	return (q.head + i) & (len(q.items) - 1)
}

// At returns i-th item counting from the head, false if i is not in [0, Len()).
func (q *Queue[T]) At(i int) (item T, ok bool) {
	if i < 0 || i >= q.len {
		return
	}
	return q.items[q.index(i)], true
}

func (q *Queue[T]) Append(item T) *Queue[T] {
	if q.len == len(q.items) {
		q.resize(len(q.items) << 1)
	}

	q.items[q.index(q.len)] = item
	q.len++
	return q
}

// DropFirst removes the head item. The storage shrinks when it is mostly unused.
func (q *Queue[T]) DropFirst() (item T, ok bool) {
	if q.len == 0 {
		return
	}

	var zero T
	item = q.items[q.head]
	q.items[q.head] = zero
	q.head = q.index(1)
	q.len--

	if c := len(q.items); c > minCap && q.len <= c>>2 {
		q.resize(c >> 1)
	}
	return item, true
}

func (q *Queue[T]) resize(c int) {
	items := make([]T, c)
	for i := 0; i < q.len; i++ {
		items[i] = q.items[q.index(i)]
	}
	q.items = items
	q.head = 0
}
