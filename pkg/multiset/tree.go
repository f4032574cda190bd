package multiset

// --- Red-Black Tree rotations and fixups ---

func (ms *Multiset[K]) isRed(i int) bool {
	return i != nilIdx && ms.nodes[i].color == colorRed
}

func (ms *Multiset[K]) isBlack(i int) bool {
	return !ms.isRed(i)
}

// replaceChild points the link that referenced old (in parent, or the root
// slot) at repl.
func (ms *Multiset[K]) replaceChild(parent, old, repl int) {
	switch {
	case parent == nilIdx:
		ms.root = repl
	case ms.nodes[parent].left == old:
		ms.nodes[parent].left = repl
	default:
		ms.nodes[parent].right = repl
	}
}

func (ms *Multiset[K]) leftRotate(x int) {
	y := ms.nodes[x].right
	yl := ms.nodes[y].left

	ms.nodes[x].right = yl
	if yl != nilIdx {
		ms.nodes[yl].parent = x
	}
	xp := ms.nodes[x].parent
	ms.nodes[y].parent = xp
	ms.replaceChild(xp, x, y)
	ms.nodes[y].left = x
	ms.nodes[x].parent = y

	ms.updateSize(x)
	ms.updateSize(y)
}

func (ms *Multiset[K]) rightRotate(y int) {
	x := ms.nodes[y].left
	xr := ms.nodes[x].right

	ms.nodes[y].left = xr
	if xr != nilIdx {
		ms.nodes[xr].parent = y
	}
	yp := ms.nodes[y].parent
	ms.nodes[x].parent = yp
	ms.replaceChild(yp, y, x)
	ms.nodes[x].right = y
	ms.nodes[y].parent = x

	ms.updateSize(y)
	ms.updateSize(x)
}

func (ms *Multiset[K]) insertFixup(z int) {
	for ms.isRed(ms.nodes[z].parent) {
		p := ms.nodes[z].parent
		gp := ms.nodes[p].parent
		if p == ms.nodes[gp].left {
			y := ms.nodes[gp].right // uncle
			if ms.isRed(y) {
				ms.nodes[p].color = colorBlack
				ms.nodes[y].color = colorBlack
				ms.nodes[gp].color = colorRed
				z = gp
				continue
			}
			if z == ms.nodes[p].right {
				z = p
				ms.leftRotate(z)
				p = ms.nodes[z].parent
			}
			ms.nodes[p].color = colorBlack
			ms.nodes[gp].color = colorRed
			ms.rightRotate(gp)
		} else {
			y := ms.nodes[gp].left // uncle
			if ms.isRed(y) {
				ms.nodes[p].color = colorBlack
				ms.nodes[y].color = colorBlack
				ms.nodes[gp].color = colorRed
				z = gp
				continue
			}
			if z == ms.nodes[p].left {
				z = p
				ms.rightRotate(z)
				p = ms.nodes[z].parent
			}
			ms.nodes[p].color = colorBlack
			ms.nodes[gp].color = colorRed
			ms.leftRotate(gp)
		}
	}
	ms.nodes[ms.root].color = colorBlack
}

// transplant puts v (possibly absent) where u was. u's own links are untouched.
func (ms *Multiset[K]) transplant(u, v int) {
	up := ms.nodes[u].parent
	ms.replaceChild(up, u, v)
	if v != nilIdx {
		ms.nodes[v].parent = up
	}
}

// deleteNode unlinks z, which holds the last occurrence of its key.
func (ms *Multiset[K]) deleteNode(z int) {
	zn := ms.nodes[z]
	removedColor := zn.color

	// x takes the vacated position and may be absent, so its parent is
	// tracked separately.
	var x, xParent int
	switch {
	case zn.left == nilIdx:
		x, xParent = zn.right, zn.parent
		ms.transplant(z, zn.right)
	case zn.right == nilIdx:
		x, xParent = zn.left, zn.parent
		ms.transplant(z, zn.left)
	default:
		y := ms.minimum(zn.right)
		removedColor = ms.nodes[y].color
		x = ms.nodes[y].right
		if ms.nodes[y].parent == z {
			xParent = y
		} else {
			xParent = ms.nodes[y].parent
			ms.transplant(y, x)
			ms.nodes[y].right = zn.right
			ms.nodes[zn.right].parent = y
		}
		ms.transplant(z, y)
		ms.nodes[y].left = zn.left
		ms.nodes[zn.left].parent = y
		ms.nodes[y].color = zn.color
	}

	// xParent is at or below every node whose subtree lost z.
	ms.recomputeSizes(xParent)
	ms.release(z)

	if removedColor == colorBlack {
		ms.deleteFixup(x, xParent)
	}
}

func (ms *Multiset[K]) deleteFixup(x, parent int) {
	for x != ms.root && ms.isBlack(x) {
		if x == ms.nodes[parent].left {
			w := ms.nodes[parent].right // sibling
			if ms.isRed(w) {
				ms.nodes[w].color = colorBlack
				ms.nodes[parent].color = colorRed
				ms.leftRotate(parent)
				w = ms.nodes[parent].right
			}
			if ms.isBlack(ms.nodes[w].left) && ms.isBlack(ms.nodes[w].right) {
				ms.nodes[w].color = colorRed
				x = parent
				parent = ms.nodes[x].parent
				continue
			}
			if ms.isBlack(ms.nodes[w].right) {
				ms.nodes[ms.nodes[w].left].color = colorBlack
				ms.nodes[w].color = colorRed
				ms.rightRotate(w)
				w = ms.nodes[parent].right
			}
			ms.nodes[w].color = ms.nodes[parent].color
			ms.nodes[parent].color = colorBlack
			ms.nodes[ms.nodes[w].right].color = colorBlack
			ms.leftRotate(parent)
			x = ms.root
		} else {
			// same as then clause with "right" and "left" exchanged
			w := ms.nodes[parent].left // sibling
			if ms.isRed(w) {
				ms.nodes[w].color = colorBlack
				ms.nodes[parent].color = colorRed
				ms.rightRotate(parent)
				w = ms.nodes[parent].left
			}
			if ms.isBlack(ms.nodes[w].right) && ms.isBlack(ms.nodes[w].left) {
				ms.nodes[w].color = colorRed
				x = parent
				parent = ms.nodes[x].parent
				continue
			}
			if ms.isBlack(ms.nodes[w].left) {
				ms.nodes[ms.nodes[w].right].color = colorBlack
				ms.nodes[w].color = colorRed
				ms.leftRotate(w)
				w = ms.nodes[parent].left
			}
			ms.nodes[w].color = ms.nodes[parent].color
			ms.nodes[parent].color = colorBlack
			ms.nodes[ms.nodes[w].left].color = colorBlack
			ms.rightRotate(parent)
			x = ms.root
		}
	}
	if x != nilIdx {
		ms.nodes[x].color = colorBlack
	}
}

// --- navigation ---

func (ms *Multiset[K]) minimum(i int) int {
	if i == nilIdx {
		return nilIdx
	}
	for ms.nodes[i].left != nilIdx {
		i = ms.nodes[i].left
	}
	return i
}

func (ms *Multiset[K]) maximum(i int) int {
	if i == nilIdx {
		return nilIdx
	}
	for ms.nodes[i].right != nilIdx {
		i = ms.nodes[i].right
	}
	return i
}

func (ms *Multiset[K]) successor(i int) int {
	if r := ms.nodes[i].right; r != nilIdx {
		return ms.minimum(r)
	}
	p := ms.nodes[i].parent
	for p != nilIdx && i == ms.nodes[p].right {
		i = p
		p = ms.nodes[p].parent
	}
	return p
}

func (ms *Multiset[K]) predecessor(i int) int {
	if l := ms.nodes[i].left; l != nilIdx {
		return ms.maximum(l)
	}
	p := ms.nodes[i].parent
	for p != nilIdx && i == ms.nodes[p].left {
		i = p
		p = ms.nodes[p].parent
	}
	return p
}
