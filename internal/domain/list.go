package domain

import "iter"

// List is a persistent singly-linked list. The zero value is the empty list.
// A List is never modified after construction; Cons shares the receiver as
// the tail of the new list, so prepending is O(1) and old versions stay valid.
type List[T any] struct {
	node *listNode[T]
}

type listNode[T any] struct {
	head T
	tail *listNode[T]
	size int
}

// ListOf builds a list whose front-to-back order matches vs.
func ListOf[T any](vs ...T) List[T] {
	var l List[T]
	for i := len(vs) - 1; i >= 0; i-- {
		l = l.Cons(vs[i])
	}
	return l
}

// Cons returns a new list with v in front of l.
func (l List[T]) Cons(v T) List[T] {
	return List[T]{node: &listNode[T]{head: v, tail: l.node, size: l.Len() + 1}}
}

// Head returns the first element, or false when the list is empty.
func (l List[T]) Head() (T, bool) {
	if l.node == nil {
		var zero T
		return zero, false
	}
	return l.node.head, true
}

// Tail returns the list without its first element. The tail of the empty
// list is the empty list.
func (l List[T]) Tail() List[T] {
	if l.node == nil {
		return l
	}
	return List[T]{node: l.node.tail}
}

// Len reports the number of elements in O(1).
func (l List[T]) Len() int {
	if l.node == nil {
		return 0
	}
	return l.node.size
}

// IsEmpty reports whether the list has no elements.
func (l List[T]) IsEmpty() bool { return l.node == nil }

// All iterates front to back.
func (l List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.node; n != nil; n = n.tail {
			if !yield(n.head) {
				return
			}
		}
	}
}

// Slice copies the elements front to back into a new slice.
func (l List[T]) Slice() []T {
	out := make([]T, 0, l.Len())
	for v := range l.All() {
		out = append(out, v)
	}
	return out
}

// Reverse returns a new list with the elements in the opposite order.
func (l List[T]) Reverse() List[T] {
	var r List[T]
	for v := range l.All() {
		r = r.Cons(v)
	}
	return r
}

// EqualFunc reports whether both lists have the same length and eq holds
// pairwise. Lists sharing the same node are equal without walking them.
func (l List[T]) EqualFunc(other List[T], eq func(a, b T) bool) bool {
	if l.Len() != other.Len() {
		return false
	}
	a, b := l.node, other.node
	for a != nil {
		if a == b {
			return true
		}
		if !eq(a.head, b.head) {
			return false
		}
		a, b = a.tail, b.tail
	}
	return true
}
