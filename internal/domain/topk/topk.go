// Package topk selects the K largest items of a stream with a fixed-capacity min-heap.
package topk

import (
	"container/heap"
	"slices"
)

// Selector keeps the k largest items pushed so far, ordered by less.
// Push is O(log k); memory is O(k) regardless of stream length.
// A Selector is not safe for concurrent use.
type Selector[T any] struct {
	h minHeap[T]
	k int
}

// New creates a selector of capacity k. less must be a strict weak ordering.
func New[T any](k int, less func(a, b T) bool) *Selector[T] {
	if k < 0 {
		k = 0
	}
	return &Selector[T]{
		h: minHeap[T]{items: make([]T, 0, k+1), less: less},
		k: k,
	}
}

// Push offers an item; once the selector is over capacity the minimum is evicted.
func (s *Selector[T]) Push(item T) {
	if s.k == 0 {
		return
	}
	heap.Push(&s.h, item)
	if s.h.Len() > s.k {
		heap.Pop(&s.h)
	}
}

// Len returns the number of retained items.
func (s *Selector[T]) Len() int { return s.h.Len() }

// Min returns the smallest retained item.
func (s *Selector[T]) Min() (T, bool) {
	if s.h.Len() == 0 {
		var zero T
		return zero, false
	}
	return s.h.items[0], true
}

// Drain empties the selector and returns its items in ascending order.
func (s *Selector[T]) Drain() []T {
	out := s.h.items
	s.h.items = make([]T, 0, s.k+1)
	slices.SortFunc(out, func(a, b T) int {
		switch {
		case s.h.less(a, b):
			return -1
		case s.h.less(b, a):
			return 1
		default:
			return 0
		}
	})
	return out
}

type minHeap[T any] struct {
	items []T
	less  func(a, b T) bool
}

func (h *minHeap[T]) Len() int           { return len(h.items) }
func (h *minHeap[T]) Less(i, j int) bool { return h.less(h.items[i], h.items[j]) }
func (h *minHeap[T]) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *minHeap[T]) Push(x any)         { h.items = append(h.items, x.(T)) }

func (h *minHeap[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	var zero T
	old[n-1] = zero
	h.items = old[:n-1]
	return item
}
