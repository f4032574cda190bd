package multiset

import (
	"cmp"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// verify checks every structural invariant of the tree and the arena.
func (ms *Multiset[K]) verify() error {
	if ms.root == nilIdx {
		if ms.live != 0 {
			return fmt.Errorf("empty tree with %d live nodes", ms.live)
		}
		return nil
	}
	if ms.nodes[ms.root].parent != nilIdx {
		return fmt.Errorf("root %d has parent %d", ms.root, ms.nodes[ms.root].parent)
	}
	if ms.nodes[ms.root].color != colorBlack {
		return fmt.Errorf("root %d is red", ms.root)
	}

	reachable := 0
	var walk func(i int) (int, error)
	walk = func(i int) (int, error) {
		if i == nilIdx {
			return 1, nil
		}
		reachable++
		n := ms.nodes[i]
		if n.count < 1 {
			return 0, fmt.Errorf("node %d has count %d", i, n.count)
		}
		for _, c := range []int{n.left, n.right} {
			if c == nilIdx {
				continue
			}
			if ms.nodes[c].parent != i {
				return 0, fmt.Errorf("node %d has parent %d, want %d", c, ms.nodes[c].parent, i)
			}
			if n.color == colorRed && ms.nodes[c].color == colorRed {
				return 0, fmt.Errorf("red node %d has red child %d", i, c)
			}
		}
		if n.left != nilIdx && cmp.Compare(ms.nodes[n.left].key, n.key) >= 0 {
			return 0, fmt.Errorf("left child of %v has key %v", n.key, ms.nodes[n.left].key)
		}
		if n.right != nilIdx && cmp.Compare(ms.nodes[n.right].key, n.key) <= 0 {
			return 0, fmt.Errorf("right child of %v has key %v", n.key, ms.nodes[n.right].key)
		}
		if want := n.count + ms.size(n.left) + ms.size(n.right); n.size != want {
			return 0, fmt.Errorf("node %v has size %d, want %d", n.key, n.size, want)
		}
		lh, err := walk(n.left)
		if err != nil {
			return 0, err
		}
		rh, err := walk(n.right)
		if err != nil {
			return 0, err
		}
		if lh != rh {
			return 0, fmt.Errorf("node %v has black heights %d and %d", n.key, lh, rh)
		}
		if n.color == colorBlack {
			lh++
		}
		return lh, nil
	}
	if _, err := walk(ms.root); err != nil {
		return err
	}

	// Child checks alone miss a key on the wrong side of a grandparent.
	var prev *K
	var inorder func(i int) error
	inorder = func(i int) error {
		if i == nilIdx {
			return nil
		}
		if err := inorder(ms.nodes[i].left); err != nil {
			return err
		}
		k := ms.nodes[i].key
		if prev != nil && cmp.Compare(*prev, k) >= 0 {
			return fmt.Errorf("key %v follows %v in order", k, *prev)
		}
		prev = &k
		return inorder(ms.nodes[i].right)
	}
	if err := inorder(ms.root); err != nil {
		return err
	}

	if reachable != ms.live {
		return fmt.Errorf("%d reachable nodes, %d live", reachable, ms.live)
	}
	freed := 0
	for i := ms.free; i != nilIdx; i = ms.nodes[i].left {
		freed++
	}
	if freed+ms.live != len(ms.nodes)-1 {
		return fmt.Errorf("%d free + %d live slots in an arena of %d", freed, ms.live, len(ms.nodes)-1)
	}
	return nil
}

func requireValid[K cmp.Ordered](t *testing.T, ms *Multiset[K]) {
	t.Helper()
	require.NoError(t, ms.verify())
}

func collect[K cmp.Ordered](ms *Multiset[K]) []K {
	out := []K{}
	for k := range ms.All() {
		out = append(out, k)
	}
	return out
}

func TestVerify_CatchesMisorderedGrandchild(t *testing.T) {
	ms := New[int]()
	for _, k := range []int{4, 2, 6, 3} {
		require.NoError(t, ms.Insert(k))
	}
	requireValid(t, ms)

	three, two := ms.find(3), ms.find(2)
	require.Equal(t, two, ms.nodes[three].parent)
	require.Equal(t, ms.root, ms.nodes[two].parent)
	require.Equal(t, two, ms.nodes[ms.root].left)

	// 5 is still right of its parent 2 but now sits left of the root 4.
	ms.nodes[three].key = 5
	require.Error(t, ms.verify())
}
