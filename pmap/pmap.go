// Package pmap implements a persistent (immutable, path-copying) ordered
// map keyed by a user type with a total order, augmented with a
// subtree-max field so interval-overlap queries can prune whole subtrees.
//
// The tree is a red-black tree balanced the way Okasaki's insert and
// Germane & Might's purely-functional delete balance it: every
// mutating operation returns a new root and never touches the nodes of
// the tree it was called on, so old roots stay valid and unrelated
// subtrees are shared between old and new trees.
//
// On top of path-copying sharing, whole subtrees are hash-consed: two
// trees built from equal elements, regardless of insertion order, fold
// onto the same *node once their hash collides and a full element scan
// confirms equality. That makes Equal a pointer comparison in the
// common case. Hash-consing state lives in a Cache value the caller
// owns — nothing here is a package-level global — so two unrelated
// analyses never share (or corrupt) each other's cache.
package pmap

// Key is the ordering and interval-bound contract a pmap key type must
// satisfy. Compare follows the usual three-way convention. High is the
// upper bound used for the subtree-max augmentation that backs
// FindAllOverlapping; keys with no natural interval (none in this
// module) can return a constant.
type Key[K any] interface {
	Compare(other K) int
	Low() int64
	High() int64
}

// Value is the contract a pmap value type must satisfy so whole
// subtrees can be hash-consed: Hash must agree with equality, i.e.
// equal values must hash equal.
type Value interface {
	Hash() uint64
}

type color uint8

const (
	red color = iota
	black
	doubleBlack
	negativeBlack
)

// Entry is one (key, value) pair stored in the map.
type Entry[K Key[K], V Value] struct {
	Key K
	Val V
}

type node[K Key[K], V Value] struct {
	color       color
	left, right *node[K, V]
	entry       Entry[K, V]
	size        int
	hash        uint64
	subtreeMax  int64
}

func sizeOf[K Key[K], V Value](n *node[K, V]) int {
	if n == nil {
		return 0
	}
	return n.size
}

func hashOf[K Key[K], V Value](n *node[K, V]) uint64 {
	if n == nil {
		return 0
	}
	return n.hash
}

func maxOf[K Key[K], V Value](n *node[K, V]) int64 {
	if n == nil {
		return -1 << 63
	}
	return n.subtreeMax
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// elementHash combines a key/value pair into a single hash that is
// independent of where the pair sits in the tree.
func elementHash[K Key[K], V Value](e Entry[K, V]) uint64 {
	return hashInt64(e.Key.High()) ^ e.Val.Hash()
}

func hashInt64(v int64) uint64 {
	u := uint64(v)
	u ^= u >> 33
	u *= 0xff51afd7ed558ccd
	u ^= u >> 33
	u *= 0xc4ceb9fe1a85ec53
	u ^= u >> 33
	return u
}

func newNode[K Key[K], V Value](c color, l *node[K, V], e Entry[K, V], r *node[K, V]) *node[K, V] {
	n := &node[K, V]{
		color: c,
		left:  l,
		right: r,
		entry: e,
		size:  1 + sizeOf(l) + sizeOf(r),
	}
	n.subtreeMax = maxInt64(maxInt64(maxOf(l), maxOf(r)), e.Key.High())
	n.hash = hashOf[K, V](l) ^ hashOf[K, V](r) ^ elementHash(e)
	return n
}

// Tree is a persistent ordered map. The zero value is a valid empty
// tree.
type Tree[K Key[K], V Value] struct {
	root *node[K, V]
}

// Cache deduplicates whole subtrees by content hash. It is owned by
// the caller (typically one per Analyzer/session) so distinct
// analyses never interfere with each other's cache.
type Cache[K Key[K], V Value] struct {
	buckets map[uint64][]*node[K, V]
	ops     int
}

// NewCache creates an empty hash-cons cache.
func NewCache[K Key[K], V Value]() *Cache[K, V] {
	return &Cache[K, V]{buckets: make(map[uint64][]*node[K, V])}
}

// Size reports how many distinct subtrees are currently interned,
// for --cache-db stats reporting.
func (c *Cache[K, V]) Size() int {
	n := 0
	for _, bucket := range c.buckets {
		n += len(bucket)
	}
	return n
}

// evictEvery bounds how often Cache.intern sweeps its buckets for
// garbage. Nothing tracks whether an interned subtree is still
// referenced: intern and the sweep only cap each bucket at
// evictBucketSize entries, dropping the oldest ones beyond that. The
// number of buckets itself is not bounded.
const (
	evictEvery      = 4096
	evictBucketSize = 64
)

func (c *Cache[K, V]) intern(n *node[K, V]) *node[K, V] {
	if n == nil {
		return nil
	}
	c.ops++
	bucket := c.buckets[n.hash]
	for _, cand := range bucket {
		if sameContent(cand, n) {
			return cand
		}
	}
	bucket = append(bucket, n)
	if len(bucket) > evictBucketSize {
		bucket = bucket[len(bucket)-evictBucketSize:]
	}
	c.buckets[n.hash] = bucket
	if c.ops%evictEvery == 0 {
		c.sweep()
	}
	return n
}

// sweep drops cache buckets that have grown needlessly large. Nodes
// themselves are ordinary garbage-collected Go values; this only
// bounds how much lookup work future interns do.
func (c *Cache[K, V]) sweep() {
	for h, bucket := range c.buckets {
		if len(bucket) > evictBucketSize {
			c.buckets[h] = bucket[len(bucket)-evictBucketSize:]
		}
	}
}

func sameContent[K Key[K], V Value](a, b *node[K, V]) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return a == b
	}
	if a.hash != b.hash || a.size != b.size {
		return false
	}
	return sameSequence(a, b)
}

// sameSequence compares the in-order element sequence of two trees.
// Two red-black trees holding the same elements need not have the same
// shape (insertion order affects rotations), so hash-consing must
// compare content, not structure.
func sameSequence[K Key[K], V Value](a, b *node[K, V]) bool {
	as, bs := inorder(a, nil), inorder(b, nil)
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i].Key.Compare(bs[i].Key) != 0 {
			return false
		}
		if as[i].Val.Hash() != bs[i].Val.Hash() {
			return false
		}
	}
	return true
}

func inorder[K Key[K], V Value](n *node[K, V], acc []Entry[K, V]) []Entry[K, V] {
	if n == nil {
		return acc
	}
	acc = inorder(n.left, acc)
	acc = append(acc, n.entry)
	acc = inorder(n.right, acc)
	return acc
}

// Empty reports whether the tree has no elements.
func (t Tree[K, V]) Empty() bool { return t.root == nil }

// Len returns the number of elements.
func (t Tree[K, V]) Len() int { return sizeOf(t.root) }

// Hash returns the tree's content hash, i.e. the XOR of every
// element's hash. It is commutative and order-independent: two trees
// holding the same elements, regardless of insertion history, hash
// equal.
func (t Tree[K, V]) Hash() uint64 { return hashOf(t.root) }

// Equal reports whether two trees hold exactly the same elements.
// Hash-consing makes this O(1) in the common case (root==root);
// otherwise it falls back to a content comparison.
func (t Tree[K, V]) Equal(other Tree[K, V]) bool {
	if t.root == other.root {
		return true
	}
	return sameContent(t.root, other.root)
}

// FindExact returns the value stored at key, if any.
func (t Tree[K, V]) FindExact(key K) (V, bool) {
	n := t.root
	for n != nil {
		switch c := key.Compare(n.entry.Key); {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			return n.entry.Val, true
		}
	}
	var zero V
	return zero, false
}

// Each calls fn for every entry in key order.
func (t Tree[K, V]) Each(fn func(Entry[K, V])) {
	var walk func(*node[K, V])
	walk = func(n *node[K, V]) {
		if n == nil {
			return
		}
		walk(n.left)
		fn(n.entry)
		walk(n.right)
	}
	walk(t.root)
}

// Entries returns every entry in key order.
func (t Tree[K, V]) Entries() []Entry[K, V] {
	return inorder(t.root, nil)
}

// Match returns the first entry for which cmp returns 0, using cmp as
// a three-way comparator against a caller-supplied probe rather than
// the natural key order (e.g. used by region reads that want "the
// interval containing address X" rather than "the interval equal to
// X").
func Match[K Key[K], V Value](t Tree[K, V], cmp func(K) int) (Entry[K, V], bool) {
	n := t.root
	for n != nil {
		switch c := cmp(n.entry.Key); {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			return n.entry, true
		}
	}
	var zero Entry[K, V]
	return zero, false
}

// FindAllOverlapping returns every entry whose key spans [Low, High)
// overlapping the probe span [probeLow, probeHigh), using the
// subtree-max augmentation to prune subtrees that cannot contain an
// overlap. Keys are assumed ordered (by Compare) on their Low bound,
// which is how every pmap instantiation in this module orders its
// keys.
func FindAllOverlapping[K Key[K], V Value](t Tree[K, V], probeLow, probeHigh int64) []Entry[K, V] {
	var out []Entry[K, V]
	var walk func(*node[K, V])
	walk = func(n *node[K, V]) {
		if n == nil {
			return
		}
		if n.left != nil && maxOf[K, V](n.left) > probeLow {
			walk(n.left)
		}
		if n.entry.Key.Low() < probeHigh && n.entry.Key.High() > probeLow {
			out = append(out, n.entry)
		}
		if n.entry.Key.Low() < probeHigh {
			walk(n.right)
		}
	}
	walk(t.root)
	return out
}
