package sim

import "container/heap"

// Heap is a generic min-heap parameterized by a strict-weak ordering
// predicate, matching spec §4.2 (C2). Push/Pop are O(log n); Peek/Len/At
// are O(1). Reheapify is O(n) and is meant to be called after the caller
// mutates scoring keys of elements already in the heap in place (the
// placement policies in placement.go do exactly this).
//
// The heap is stable only in the sense that equal elements (per less) may
// come out in either order — callers that need a deterministic order
// among equals must break ties inside less.
type Heap[T any] struct {
	items []T
	less  func(a, b T) bool
}

// NewHeap creates an empty heap ordered by less.
func NewHeap[T any](less func(a, b T) bool) *Heap[T] {
	return &Heap[T]{less: less}
}

// heapAdapter lets Heap[T] ride container/heap without exposing
// heap.Interface on the public type.
type heapAdapter[T any] struct{ h *Heap[T] }

func (a heapAdapter[T]) Len() int           { return len(a.h.items) }
func (a heapAdapter[T]) Less(i, j int) bool { return a.h.less(a.h.items[i], a.h.items[j]) }
func (a heapAdapter[T]) Swap(i, j int)      { a.h.items[i], a.h.items[j] = a.h.items[j], a.h.items[i] }
func (a heapAdapter[T]) Push(x any)         { a.h.items = append(a.h.items, x.(T)) }
func (a heapAdapter[T]) Pop() any {
	old := a.h.items
	n := len(old)
	item := old[n-1]
	a.h.items = old[:n-1]
	return item
}

// Push inserts item into the heap, O(log n).
func (h *Heap[T]) Push(item T) {
	heap.Push(heapAdapter[T]{h}, item)
}

// Pop removes and returns the minimum element, O(log n). Returns
// ErrInvalidState if the heap is empty.
func (h *Heap[T]) Pop() (T, error) {
	var zero T
	if len(h.items) == 0 {
		return zero, ErrInvalidState
	}
	return heap.Pop(heapAdapter[T]{h}).(T), nil
}

// Peek returns the minimum element without removing it.
func (h *Heap[T]) Peek() (T, error) {
	var zero T
	if len(h.items) == 0 {
		return zero, ErrInvalidState
	}
	return h.items[0], nil
}

// Len returns the number of elements in the heap.
func (h *Heap[T]) Len() int { return len(h.items) }

// IsEmpty reports whether the heap has no elements.
func (h *Heap[T]) IsEmpty() bool { return len(h.items) == 0 }

// Clear empties the heap.
func (h *Heap[T]) Clear() { h.items = h.items[:0] }

// At returns the element at position i without any ordering guarantee
// beyond "this is some element currently in the heap" — used by callers
// that want to rescore every entry in place before calling Reheapify.
func (h *Heap[T]) At(i int) T { return h.items[i] }

// Reheapify restores the heap property in O(n) after the caller has
// mutated scoring keys of elements already in the heap via At.
func (h *Heap[T]) Reheapify() {
	heap.Init(heapAdapter[T]{h})
}
