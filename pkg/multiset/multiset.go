// Package multiset implements an ordered multiset backed by a red-black tree
// augmented with subtree sizes. Besides the usual set operations it answers
// rank and select queries in O(log n), counting duplicates.
//
// Nodes live in an arena owned by the Multiset. Child and parent links are
// arena indices, index 0 is the absent-child sentinel and freed slots are
// reused through a free list.
//
// A Multiset is not safe for concurrent use. Queries may run concurrently
// with each other but never with a mutation.
package multiset

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
)

// ErrCapacityExceeded is returned when inserting a new distinct key would
// exceed the limit set with WithMaxNodes. The multiset is left unchanged.
var ErrCapacityExceeded = errors.New("multiset: node capacity exceeded")

const (
	colorRed   = 1
	colorBlack = 0
)

// nilIdx is the arena index standing in for an absent node.
const nilIdx = 0

type node[K cmp.Ordered] struct {
	key                 K
	count               int // multiplicity of key
	size                int // count plus the sizes of both subtrees
	color               int
	left, right, parent int
}

// Multiset is an ordered multiset of keys. The zero value is an empty
// multiset ready to use.
type Multiset[K cmp.Ordered] struct {
	nodes    []node[K] // nodes[0] is the sentinel
	root     int
	free     int // head of the free list, threaded through left
	live     int
	maxNodes int
}

// Option configures a Multiset created with New.
type Option func(*options)

type options struct {
	capacity int
	maxNodes int
}

// WithCapacity preallocates room for n distinct keys.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithMaxNodes limits the number of distinct keys the multiset may hold.
// Zero means unlimited.
func WithMaxNodes(n int) Option {
	return func(o *options) {
		o.maxNodes = n
	}
}

// New creates an empty Multiset.
func New[K cmp.Ordered](opts ...Option) *Multiset[K] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	ms := &Multiset[K]{maxNodes: max(o.maxNodes, 0)}
	if o.capacity > 0 {
		ms.nodes = make([]node[K], 1, o.capacity+1)
	}
	return ms
}

// Len returns the number of elements, counting duplicates.
func (ms *Multiset[K]) Len() int {
	return ms.size(ms.root)
}

// Distinct returns the number of distinct keys.
func (ms *Multiset[K]) Distinct() int {
	return ms.live
}

// Count returns the multiplicity of key, 0 if absent.
func (ms *Multiset[K]) Count(key K) int {
	if i := ms.find(key); i != nilIdx {
		return ms.nodes[i].count
	}
	return 0
}

// Contains reports whether at least one occurrence of key is present.
func (ms *Multiset[K]) Contains(key K) bool {
	return ms.find(key) != nilIdx
}

// Insert adds one occurrence of key.
func (ms *Multiset[K]) Insert(key K) error {
	return ms.InsertN(key, 1)
}

// InsertN adds n occurrences of key. Non-positive n is a no-op.
func (ms *Multiset[K]) InsertN(key K, n int) error {
	if n <= 0 {
		return nil
	}

	parent := nilIdx
	current := ms.root
	c := 0
	for current != nilIdx {
		parent = current
		c = cmp.Compare(key, ms.nodes[current].key)
		if c == 0 {
			ms.nodes[current].count += n
			ms.recomputeSizes(current)
			return nil
		}
		if c < 0 {
			current = ms.nodes[current].left
		} else {
			current = ms.nodes[current].right
		}
	}

	z, err := ms.alloc(key, n, parent)
	if err != nil {
		return err
	}
	switch {
	case parent == nilIdx:
		ms.root = z
	case c < 0:
		ms.nodes[parent].left = z
	default:
		ms.nodes[parent].right = z
	}

	ms.recomputeSizes(parent)
	ms.insertFixup(z)
	return nil
}

// Erase removes one occurrence of key and reports whether one was present.
func (ms *Multiset[K]) Erase(key K) bool {
	z := ms.find(key)
	if z == nilIdx {
		return false
	}

	if ms.nodes[z].count > 1 {
		ms.nodes[z].count--
		ms.recomputeSizes(z)
		return true
	}

	ms.deleteNode(z)
	return true
}

// Clear removes all elements. The arena keeps its capacity.
func (ms *Multiset[K]) Clear() {
	if len(ms.nodes) > 0 {
		clear(ms.nodes)
		ms.nodes = ms.nodes[:1]
	}
	ms.root, ms.free, ms.live = nilIdx, nilIdx, 0
}

// Swap exchanges the contents of ms and other in O(1).
func (ms *Multiset[K]) Swap(other *Multiset[K]) {
	*ms, *other = *other, *ms
}

// Keys returns all keys in ascending order, including duplicates.
func (ms *Multiset[K]) Keys() []K {
	result := make([]K, 0, ms.Len())
	for k := range ms.All() {
		result = append(result, k)
	}
	return result
}

// Merge inserts every element of other into ms. On ErrCapacityExceeded the
// keys merged so far stay in ms. Merging ms into itself does nothing.
func (ms *Multiset[K]) Merge(other *Multiset[K]) error {
	if other == nil || other == ms {
		return nil
	}
	for k, n := range other.Entries() {
		if err := ms.InsertN(k, n); err != nil {
			return err
		}
	}
	return nil
}

func (ms *Multiset[K]) String() string {
	var sb strings.Builder
	for i := ms.minimum(ms.root); i != nilIdx; i = ms.successor(i) {
		n := &ms.nodes[i]
		fmt.Fprintf(&sb, "{Key: %v, Count: %d, Size: %d} ", n.key, n.count, n.size)
	}
	return sb.String()
}

// --- arena ---

// alloc takes a slot for a new red node. It fails before touching any link.
func (ms *Multiset[K]) alloc(key K, count int, parent int) (int, error) {
	if ms.maxNodes > 0 && ms.live >= ms.maxNodes {
		return nilIdx, ErrCapacityExceeded
	}
	if len(ms.nodes) == 0 {
		ms.nodes = make([]node[K], 1)
	}

	n := node[K]{key: key, count: count, size: count, color: colorRed, parent: parent}
	var i int
	if ms.free != nilIdx {
		i = ms.free
		ms.free = ms.nodes[i].left
		ms.nodes[i] = n
	} else {
		i = len(ms.nodes)
		ms.nodes = append(ms.nodes, n)
	}
	ms.live++
	return i, nil
}

func (ms *Multiset[K]) release(i int) {
	ms.nodes[i] = node[K]{left: ms.free}
	ms.free = i
	ms.live--
}

func (ms *Multiset[K]) find(key K) int {
	current := ms.root
	for current != nilIdx {
		c := cmp.Compare(key, ms.nodes[current].key)
		if c == 0 {
			return current
		}
		if c < 0 {
			current = ms.nodes[current].left
		} else {
			current = ms.nodes[current].right
		}
	}
	return nilIdx
}

// --- size maintenance ---

func (ms *Multiset[K]) size(i int) int {
	if i == nilIdx {
		return 0
	}
	return ms.nodes[i].size
}

func (ms *Multiset[K]) updateSize(i int) {
	if i == nilIdx {
		return
	}
	n := &ms.nodes[i]
	n.size = n.count + ms.size(n.left) + ms.size(n.right)
}

func (ms *Multiset[K]) recomputeSizes(i int) {
	for current := i; current != nilIdx; current = ms.nodes[current].parent {
		ms.updateSize(current)
	}
}
