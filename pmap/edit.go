package pmap

// This file implements insert and erase following the two classic
// purely-functional red-black tree algorithms: Okasaki's balance for
// insert, and Germane & Might's balance/bubble extension (using a
// double-black and negative-black color) for delete. Both return a new
// root; the caller's old root is left untouched and keeps sharing
// whatever subtrees the edit didn't touch.

// Insert returns a new tree with key bound to val, replacing any prior
// binding for key. The result is interned through cache so structurally
// identical trees collapse to the same pointer.
func Insert[K Key[K], V Value](t Tree[K, V], cache *Cache[K, V], key K, val V) Tree[K, V] {
	root := ins(t.root, Entry[K, V]{Key: key, Val: val})
	root = blacken(root)
	return Tree[K, V]{root: internTree(cache, root)}
}

func ins[K Key[K], V Value](n *node[K, V], e Entry[K, V]) *node[K, V] {
	if n == nil {
		return newNode(red, nil, e, nil)
	}
	switch c := e.Key.Compare(n.entry.Key); {
	case c < 0:
		return balance(n.color, ins(n.left, e), n.entry, n.right)
	case c > 0:
		return balance(n.color, n.left, n.entry, ins(n.right, e))
	default:
		return newNode(n.color, n.left, e, n.right)
	}
}

func blacken[K Key[K], V Value](n *node[K, V]) *node[K, V] {
	if n == nil || isDoubleBlackLeaf(n) {
		return nil
	}
	if n.color == red || n.color == doubleBlack {
		return newNode(black, n.left, n.entry, n.right)
	}
	return n
}

// balance implements Okasaki's four insert-side rebalancing cases plus
// the double-black delete-side cases from Germane & Might, unified
// into one function the way the original presentation does: a
// black-rooted (or double-black-rooted) node with a red-red violation
// two levels down rotates into a red (or black, if rebalancing a
// double black) root with two black children.
func balance[K Key[K], V Value](c color, l *node[K, V], e Entry[K, V], r *node[K, V]) *node[K, V] {
	if c == black || c == doubleBlack {
		switch {
		case isRed(l) && isRed(l.left):
			return newNode(down(c), newNode(black, l.left.left, l.left.entry, l.left.right), l.entry, newNode(black, l.right, e, r))
		case isRed(l) && isRed(l.right):
			return newNode(down(c), newNode(black, l.left, l.entry, l.right.left), l.right.entry, newNode(black, l.right.right, e, r))
		case isRed(r) && isRed(r.left):
			return newNode(down(c), newNode(black, l, e, r.left.left), r.left.entry, newNode(black, r.left.right, r.entry, r.right))
		case isRed(r) && isRed(r.right):
			return newNode(down(c), newNode(black, l, e, r.left), r.entry, newNode(black, r.right.left, r.right.entry, r.right.right))
		}
	}
	if c == doubleBlack {
		// These two cases absorb a negative-black node produced by
		// redder: r (or l) is negative-black with two black children;
		// rotating it away restores an ordinary 3-black-node shape one
		// level up. They only ever fire on the exact shape bubble
		// produces, immediately after a redder(l)/redder(r) call.
		if isNegativeBlack(r) && r.left != nil && isBlack(r.left) && isBlack(r.right) {
			m := r.left
			return newNode(black,
				newNode(black, l, e, m.left),
				m.entry,
				balance(black, m.right, r.entry, redden(r.right)))
		}
		if isNegativeBlack(l) && l.right != nil && isBlack(l.left) && isBlack(l.right) {
			m := l.right
			return newNode(black,
				balance(black, redden(l.left), l.entry, m.left),
				m.entry,
				newNode(black, m.right, e, r))
		}
	}
	return newNode(c, l, e, r)
}

func down(c color) color {
	switch c {
	case doubleBlack:
		return black
	case black:
		return red
	default:
		return c
	}
}

func redden[K Key[K], V Value](n *node[K, V]) *node[K, V] {
	if n == nil {
		return nil
	}
	return newNode(red, n.left, n.entry, n.right)
}

func isRed[K Key[K], V Value](n *node[K, V]) bool   { return n != nil && n.color == red }
func isBlack[K Key[K], V Value](n *node[K, V]) bool { return n == nil || n.color == black }
func isNegativeBlack[K Key[K], V Value](n *node[K, V]) bool {
	return n != nil && n.color == negativeBlack
}
func isDoubleBlack[K Key[K], V Value](n *node[K, V]) bool {
	return n != nil && n.color == doubleBlack
}

// Erase returns a new tree with key removed. If key is absent the
// original tree is returned unchanged (same root pointer).
func Erase[K Key[K], V Value](t Tree[K, V], cache *Cache[K, V], key K) Tree[K, V] {
	root, removed := del(t.root, key)
	if !removed {
		return t
	}
	root = blacken(root)
	return Tree[K, V]{root: internTree(cache, root)}
}

// del returns the new subtree root (possibly double-black internally,
// resolved by blacken at the top level) plus whether key was found.
func del[K Key[K], V Value](n *node[K, V], key K) (*node[K, V], bool) {
	if n == nil {
		return nil, false
	}
	switch c := key.Compare(n.entry.Key); {
	case c < 0:
		newLeft, ok := del(n.left, key)
		if !ok {
			return n, false
		}
		return bubble(n.color, newLeft, n.entry, n.right), true
	case c > 0:
		newRight, ok := del(n.right, key)
		if !ok {
			return n, false
		}
		return bubble(n.color, n.left, n.entry, newRight), true
	default:
		return remove(n), true
	}
}

// remove deletes the element at the root of n, splicing in the
// in-order predecessor when n has two children.
func remove[K Key[K], V Value](n *node[K, V]) *node[K, V] {
	switch {
	case n.left == nil && n.right == nil:
		if n.color == red {
			return nil
		}
		return doubleBlackLeaf[K, V]()
	case n.left == nil:
		return blacken(n.right)
	case n.right == nil:
		return blacken(n.left)
	default:
		pred, predEntry := maxDelete(n.left)
		return bubble(n.color, pred, predEntry, n.right)
	}
}

// maxDelete removes and returns the maximum element of n along with
// the new (possibly double-black) subtree.
func maxDelete[K Key[K], V Value](n *node[K, V]) (*node[K, V], Entry[K, V]) {
	if n.right == nil {
		e := n.entry
		if n.color == red {
			return n.left, e
		}
		if n.left != nil {
			return blacken(n.left), e
		}
		return doubleBlackLeaf[K, V](), e
	}
	newRight, e := maxDelete(n.right)
	return bubble(n.color, n.left, n.entry, newRight), e
}

// doubleBlackLeaf represents EE, the double-black empty tree used
// internally during deletion. It is never interned or observed outside
// this file: blacken/bubble always resolve it before del returns to a
// caller.
func doubleBlackLeaf[K Key[K], V Value]() *node[K, V] {
	var zero Entry[K, V]
	n := &node[K, V]{color: doubleBlack, entry: zero}
	return n
}

func isDoubleBlackLeaf[K Key[K], V Value](n *node[K, V]) bool {
	return n != nil && n.color == doubleBlack && n.left == nil && n.right == nil && n.size == 0
}

// bubble propagates a double-black child upward by reddening the
// siblings and darkening the parent, then lets balance absorb the
// extra blackness via a rotation (or leaves it double-black one level
// higher, to be absorbed further up, or at the root where blacken
// degrades it back to a plain black-rooted tree... but an
// all-double-black tree can only arise from an empty tree, so in
// practice bubble's caller always resolves it within the same del
// call).
func bubble[K Key[K], V Value](c color, l *node[K, V], e Entry[K, V], r *node[K, V]) *node[K, V] {
	if isDoubleBlack(l) || isDoubleBlack(r) {
		return balance(blacker(c), redder(l), e, redder(r))
	}
	return newNode(c, l, e, r)
}

func blacker(c color) color {
	switch c {
	case negativeBlack:
		return red
	case red:
		return black
	case black:
		return doubleBlack
	default:
		panic("pmap: cannot make a double-black node blacker")
	}
}

func redder[K Key[K], V Value](n *node[K, V]) *node[K, V] {
	if n == nil {
		return nil
	}
	switch n.color {
	case negativeBlack:
		panic("pmap: cannot make a negative-black node redder")
	case red:
		return newNode(negativeBlack, n.left, n.entry, n.right)
	case black:
		return newNode(red, n.left, n.entry, n.right)
	case doubleBlack:
		if isDoubleBlackLeaf(n) {
			return nil
		}
		return newNode(black, n.left, n.entry, n.right)
	}
	return n
}

func internTree[K Key[K], V Value](cache *Cache[K, V], n *node[K, V]) *node[K, V] {
	if cache == nil {
		return n
	}
	return cache.intern(n)
}
