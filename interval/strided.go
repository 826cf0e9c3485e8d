// Package interval implements the strided-interval abstract domain:
// a triple (lo, hi, stride) denoting {lo + k*stride : lo+k*stride < hi}.
// Every SI is hash-consed — two intervals built from equal fields are
// the same *SI — so SI equality is a pointer comparison and SI values
// can be used as map keys by identity.
//
// All arithmetic here is 32-bit (the domain this analyzer targets is
// x86-32); bounds are carried in int64 so overflow of the 32-bit value
// can be detected without wrapping the bookkeeping arithmetic itself.
package interval

import "fmt"

const (
	// Min and Max bound the concrete 32-bit value space TOP ranges
	// over. Kept as int64 so lo/hi arithmetic during construction never
	// itself overflows.
	Min int64 = -(1 << 31)
	Max int64 = 1<<31 - 1

	// width is the size of the concrete value space. New clamps bounds
	// that fall outside [Min, Max] rather than wrapping them.
	width = int64(1) << 32
)

// SI is a strided interval: the set of 32-bit values
// {lo + k*stride : 0 <= k, lo+k*stride < hi}.
//
// Invariants (enforced by every constructor in this package):
//   - stride >= 1
//   - lo % stride == 0 and hi % stride == 0, unless a bound is Min/Max
//     (an unbounded side is exempt from alignment)
//   - Bot is the unique canonical empty interval (lo=0, hi=-1, stride=1)
//   - a constant is represented with hi == lo+stride
type SI struct {
	lo, hi, stride int64
	hash           uint64
}

// Lo, Hi and Stride expose the triple. Hi is exclusive.
func (s *SI) Lo() int64     { return s.lo }
func (s *SI) Hi() int64     { return s.hi }
func (s *SI) Stride() int64 { return s.stride }

// Low and High satisfy pmap.Key so an SI can be used as a pmap key
// directly (regions key their contents by address SI).
func (s *SI) Low() int64  { return s.lo }
func (s *SI) High() int64 { return s.hi }

// Hash satisfies pmap.Value (value-sets are keyed by SI too, in the
// sense that a VS's own Hash composes its entries' SI hashes) and is
// also how the interning cache buckets SIs: H(s) = H(stride) xor
// (H(hi) - H(lo)), matching the construction rule every SI constructor
// funnels through.
func (s *SI) Hash() uint64 { return s.hash }

func computeHash(lo, hi, stride int64) uint64 {
	return hashInt(stride) ^ (hashInt(hi) - hashInt(lo))
}

func hashInt(v int64) uint64 {
	u := uint64(v)
	u ^= u >> 33
	u *= 0xff51afd7ed558ccd
	u ^= u >> 33
	u *= 0xc4ceb9fe1a85ec53
	u ^= u >> 33
	return u
}

// Cache hash-conses SIs. Every exported constructor (New, Const, Top,
// Bot and the operators) interns through the single package-level
// instance globalCache, so all analyses in one process share it.
type Cache struct {
	buckets map[uint64][]*SI
}

// NewCache creates an empty SI hash-cons cache.
func NewCache() *Cache {
	return &Cache{buckets: make(map[uint64][]*SI)}
}

// Size reports how many distinct SIs are currently interned, for
// --cache-db stats reporting.
func (c *Cache) Size() int {
	n := 0
	for _, bucket := range c.buckets {
		n += len(bucket)
	}
	return n
}

func (c *Cache) intern(lo, hi, stride int64) *SI {
	h := computeHash(lo, hi, stride)
	for _, cand := range c.buckets[h] {
		if cand.lo == lo && cand.hi == hi && cand.stride == stride {
			return cand
		}
	}
	s := &SI{lo: lo, hi: hi, stride: stride, hash: h}
	c.buckets[h] = append(c.buckets[h], s)
	return s
}

var globalCache = NewCache()

// GlobalCacheSize reports how many distinct SIs the package-level
// intern cache currently holds, for --cache-db stats reporting.
func GlobalCacheSize() int { return globalCache.Size() }

// New constructs (or looks up) the strided interval [lo, hi) with the
// given stride. It panics on a malformed triple (stride <= 0, or an
// inverted/misaligned bound) since those are programming errors, not
// analysis imprecision — callers that might produce such a triple from
// untrusted arithmetic should route through an operator (Add, Or, ...)
// instead, which returns Top rather than panicking.
func New(lo, hi, stride int64) *SI {
	return newWith(globalCache, lo, hi, stride)
}

func newWith(cache *Cache, lo, hi, stride int64) *SI {
	if stride <= 0 {
		panic(fmt.Sprintf("interval: non-positive stride %d", stride))
	}
	if lo == 0 && hi == -1 && stride == 1 {
		return cache.intern(0, -1, 1) // Bot
	}
	if hi <= lo {
		panic(fmt.Sprintf("interval: inverted bounds [%d,%d)", lo, hi))
	}
	if lo > Min && lo%stride != 0 {
		panic(fmt.Sprintf("interval: lo %d not aligned to stride %d", lo, stride))
	}
	if hi < Max && hi%stride != 0 {
		panic(fmt.Sprintf("interval: hi %d not aligned to stride %d", hi, stride))
	}
	lo = clampLo(lo)
	hi = clampHi(hi)
	return cache.intern(lo, hi, stride)
}

func clampLo(lo int64) int64 {
	if lo < Min {
		return Min
	}
	return lo
}

func clampHi(hi int64) int64 {
	if hi > Max {
		return Max
	}
	return hi
}

// Const builds the singleton interval {v} with stride 1 (callers
// needing a differently strided singleton use New directly).
func Const(v int64) *SI { return New(v, v+1, 1) }

// Bot is the canonical empty interval.
func Bot() *SI { return New(0, -1, 1) }

// Top is the universal interval over the full 32-bit signed range.
func Top() *SI { return New(Min, Max, 1) }

// IsBot reports whether s denotes the empty set.
func (s *SI) IsBot() bool { return s.lo == 0 && s.hi == -1 && s.stride == 1 }

// IsTop reports whether s is exactly Top (not merely "as wide as Top";
// widen only ever produces the canonical Top instance, so hash-consing
// makes this a pointer comparison in practice, but the explicit field
// check keeps it correct even for an independently constructed Top).
func (s *SI) IsTop() bool { return s.lo == Min && s.hi == Max && s.stride == 1 }

// IsConst reports whether s denotes exactly one value.
func (s *SI) IsConst() bool { return !s.IsBot() && s.hi-s.lo == s.stride }

// ConstValue returns the single value of a constant SI.
func (s *SI) ConstValue() (int64, bool) {
	if !s.IsConst() {
		return 0, false
	}
	return s.lo, true
}

// Count returns the number of concrete values in s: 0 if s is Bot, or
// -1 if s is Top (too large to be useful).
func (s *SI) Count() int64 {
	if s.IsBot() {
		return 0
	}
	if s.IsTop() {
		return -1
	}
	return (s.hi - s.lo) / s.stride // values at lo, lo+stride, ..., hi-stride
}

// Contains reports whether v is one of s's concrete values.
func (s *SI) Contains(v int64) bool {
	if s.IsBot() {
		return false
	}
	if v < s.lo || v >= s.hi {
		return false
	}
	return (v-s.lo)%s.stride == 0
}

// IsZero reports whether s is the constant 0.
func (s *SI) IsZero() bool { return s.lo == 0 && s.hi == 1 && s.stride == 1 }

// ContainsZero reports whether 0 is one of s's concrete values; used
// by region reads to decide whether a pointer value might be NULL.
func (s *SI) ContainsZero() bool { return s.Contains(0) }

func (s *SI) String() string {
	if s.IsBot() {
		return "BOT"
	}
	if s.IsTop() {
		return "TOP"
	}
	if s.IsConst() {
		return fmt.Sprintf("%d", s.lo)
	}
	return fmt.Sprintf("%d[%d,%d)", s.stride, s.lo, s.hi)
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int64) int64 {
	g := gcd(a, b)
	if g == 0 {
		return 0
	}
	return a / g * b
}

func minInt(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
