package multiset

import (
	"cmp"
	"iter"
)

// Element is a handle to one distinct key of a Multiset. It stays valid
// until the multiset is next modified.
type Element[K cmp.Ordered] struct {
	ms  *Multiset[K]
	idx int
}

// Key returns the element's key.
func (e Element[K]) Key() K {
	return e.ms.nodes[e.idx].key
}

// Count returns how many occurrences of the key are stored.
func (e Element[K]) Count() int {
	return e.ms.nodes[e.idx].count
}

// Rank returns the number of elements strictly smaller than the key, which
// is also the 0-based position of its first occurrence.
func (e Element[K]) Rank() int {
	ms := e.ms
	i := e.idx
	r := ms.size(ms.nodes[i].left)
	for i != ms.root {
		p := ms.nodes[i].parent
		if i == ms.nodes[p].right {
			r += ms.size(ms.nodes[p].left) + ms.nodes[p].count
		}
		i = p
	}
	return r
}

// Next returns the element with the next larger key.
func (e Element[K]) Next() (Element[K], bool) {
	return e.ms.element(e.ms.successor(e.idx))
}

// Prev returns the element with the next smaller key.
func (e Element[K]) Prev() (Element[K], bool) {
	return e.ms.element(e.ms.predecessor(e.idx))
}

func (ms *Multiset[K]) element(i int) (Element[K], bool) {
	if i == nilIdx {
		return Element[K]{}, false
	}
	return Element[K]{ms: ms, idx: i}, true
}

// Find returns the element holding key.
func (ms *Multiset[K]) Find(key K) (Element[K], bool) {
	return ms.element(ms.find(key))
}

// Select returns the element at 0-based position k in ascending order,
// counting duplicates. It reports false if k is outside [0, Len()).
func (ms *Multiset[K]) Select(k int) (Element[K], bool) {
	if k < 0 || k >= ms.Len() {
		return Element[K]{}, false
	}
	current := ms.root
	remaining := k
	for current != nilIdx {
		n := &ms.nodes[current]
		leftSize := ms.size(n.left)
		if remaining < leftSize {
			current = n.left
			continue
		}
		remaining -= leftSize
		if remaining < n.count {
			return ms.element(current)
		}
		remaining -= n.count
		current = n.right
	}
	return Element[K]{}, false
}

// RankOf returns the number of elements strictly smaller than key. The key
// does not have to be present.
func (ms *Multiset[K]) RankOf(key K) int {
	rank := 0
	current := ms.root
	for current != nilIdx {
		n := &ms.nodes[current]
		c := cmp.Compare(key, n.key)
		switch {
		case c < 0:
			current = n.left
		case c > 0:
			rank += ms.size(n.left) + n.count
			current = n.right
		default:
			return rank + ms.size(n.left)
		}
	}
	return rank
}

// LowerBound returns the element with the smallest key >= key.
func (ms *Multiset[K]) LowerBound(key K) (Element[K], bool) {
	best := nilIdx
	current := ms.root
	for current != nilIdx {
		if cmp.Compare(ms.nodes[current].key, key) >= 0 {
			best = current
			current = ms.nodes[current].left
		} else {
			current = ms.nodes[current].right
		}
	}
	return ms.element(best)
}

// UpperBound returns the element with the smallest key > key.
func (ms *Multiset[K]) UpperBound(key K) (Element[K], bool) {
	best := nilIdx
	current := ms.root
	for current != nilIdx {
		if cmp.Compare(ms.nodes[current].key, key) > 0 {
			best = current
			current = ms.nodes[current].left
		} else {
			current = ms.nodes[current].right
		}
	}
	return ms.element(best)
}

// Min returns the element with the smallest key.
func (ms *Multiset[K]) Min() (Element[K], bool) {
	return ms.element(ms.minimum(ms.root))
}

// Max returns the element with the largest key.
func (ms *Multiset[K]) Max() (Element[K], bool) {
	return ms.element(ms.maximum(ms.root))
}

// All returns an iterator over every element in ascending order, yielding
// each key once per occurrence. The multiset must not be modified while
// iterating.
func (ms *Multiset[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for i := ms.minimum(ms.root); i != nilIdx; i = ms.successor(i) {
			n := &ms.nodes[i]
			for range n.count {
				if !yield(n.key) {
					return
				}
			}
		}
	}
}

// Backward is like All but in descending order.
func (ms *Multiset[K]) Backward() iter.Seq[K] {
	return func(yield func(K) bool) {
		for i := ms.maximum(ms.root); i != nilIdx; i = ms.predecessor(i) {
			n := &ms.nodes[i]
			for range n.count {
				if !yield(n.key) {
					return
				}
			}
		}
	}
}

// Entries returns an iterator over distinct keys and their multiplicities
// in ascending order.
func (ms *Multiset[K]) Entries() iter.Seq2[K, int] {
	return func(yield func(K, int) bool) {
		for i := ms.minimum(ms.root); i != nilIdx; i = ms.successor(i) {
			if !yield(ms.nodes[i].key, ms.nodes[i].count) {
				return
			}
		}
	}
}
