// Package region implements the region abstraction (C4): a persistent
// map from address-interval to value-set, parameterized by a region
// kind (global/register/stack/heap, each strong or weak), with the
// read/write/join/meet/widen semantics and the SI-splitting machinery
// that backs all of them.
package region

import (
	"log/slog"

	"github.com/sarchlab/vsax86/interval"
	"github.com/sarchlab/vsax86/pmap"
	"github.com/sarchlab/vsax86/valueset"
)

// Kind classifies a region by storage class and update strength.
type Kind uint8

const (
	WeakGlobal Kind = iota
	WeakRegister
	WeakStack
	WeakHeap
	StrongGlobal
	StrongRegister
	StrongStack
	StrongHeap
)

// IsStrong reports whether writes to a region of this kind are
// destructive (true) or must join with the prior value (false).
func (k Kind) IsStrong() bool {
	return k == StrongGlobal || k == StrongRegister || k == StrongStack || k == StrongHeap
}

func (k Kind) weaken() Kind {
	switch k {
	case StrongGlobal:
		return WeakGlobal
	case StrongRegister:
		return WeakRegister
	case StrongStack:
		return WeakStack
	case StrongHeap:
		return WeakHeap
	default:
		return k
	}
}

func (k Kind) strengthen() Kind {
	switch k {
	case WeakGlobal:
		return StrongGlobal
	case WeakRegister:
		return StrongRegister
	case WeakStack:
		return StrongStack
	case WeakHeap:
		return StrongHeap
	default:
		return k
	}
}

func (k Kind) String() string {
	switch k {
	case WeakGlobal:
		return "weak-global"
	case WeakRegister:
		return "weak-register"
	case WeakStack:
		return "weak-stack"
	case WeakHeap:
		return "weak-heap"
	case StrongGlobal:
		return "strong-global"
	case StrongRegister:
		return "strong-register"
	case StrongStack:
		return "strong-stack"
	case StrongHeap:
		return "strong-heap"
	default:
		return "unknown-kind"
	}
}

// siKey adapts *interval.SI to pmap.Key: intervals within one region
// are pairwise non-overlapping, so comparing by Low is a valid total
// order for the tree, and Low/High drive the interval-overlap query.
type siKey struct{ si *interval.SI }

func (k siKey) Compare(o siKey) int {
	switch {
	case k.si.Lo() < o.si.Lo():
		return -1
	case k.si.Lo() > o.si.Lo():
		return 1
	default:
		return 0
	}
}
func (k siKey) Low() int64  { return k.si.Lo() }
func (k siKey) High() int64 { return k.si.Hi() }

// vsVal adapts valueset.VS to pmap.Value.
type vsVal struct{ vs valueset.VS }

func (v vsVal) Hash() uint64 {
	h := uint64(14695981039346656037)
	for _, e := range v.vs.Entries() {
		h ^= uint64(e.Region) * 0x100000001b3
		h ^= e.SI.Hash()
		h *= 0x100000001b3
	}
	return h
}

// Region holds one region's contents: an interval-keyed map of
// value-sets, a byte-size bound, an id and a kind.
type Region struct {
	ID      int64
	Kind    Kind
	Size    *interval.SI
	rbt     pmap.Tree[siKey, vsVal]
	siCache *pmap.Cache[siKey, vsVal]
}

// New creates an empty region of the given id/kind/size. cache is the
// hash-cons cache for this region's tree; callers share one cache per
// analyzer instance.
func New(id int64, kind Kind, size *interval.SI, cache *pmap.Cache[siKey, vsVal]) Region {
	return Region{ID: id, Kind: kind, Size: size, siCache: cache}
}

// Cache is the hash-cons cache type a Region's backing tree uses.
// Callers (typically absstate, one per analyzer/session) own an
// instance per region and pass it to New.
type Cache = pmap.Cache[siKey, vsVal]

// NewCache creates an empty Cache.
func NewCache() *Cache { return pmap.NewCache[siKey, vsVal]() }

// MemoryLoader supplies initialized global bytes for the "synthesize
// from the loader" fallback in Read step 4. Implementations come from
// the loader package; this interface keeps region decoupled from it.
type MemoryLoader interface {
	// ReadByte returns the byte at addr and whether addr is backed by
	// initialized loader memory.
	ReadByte(addr int64) (byte, bool)
}

// Warner receives non-fatal analysis warnings emitted during
// read/write. nil is a valid Warner (warnings are simply dropped),
// used by tests that don't care about the warning stream.
type Warner interface {
	Warn(kind string, addr *interval.SI, detail string)
}

// addrSubsumes reports whether outer's address span wholly contains
// inner's, ignoring stride: region address keys use the SI type purely
// as a [lo, hi) span (stride is just the access width, not a numeric
// domain constraint), so plain bound containment is the right notion
// here, unlike interval.Subsumes which also requires stride
// compatibility for numeric value-set containment.
func addrSubsumes(outer, inner *interval.SI) bool {
	if outer.IsBot() {
		return inner.IsBot()
	}
	if outer.IsTop() || inner.IsBot() {
		return true
	}
	if inner.IsTop() {
		return false
	}
	return outer.Lo() <= inner.Lo() && outer.Hi() >= inner.Hi()
}

func warn(w Warner, kind string, addr *interval.SI, detail string) {
	if w == nil {
		return
	}
	w.Warn(kind, addr, detail)
	slog.Warn("region warning", "kind", kind, "addr", addr.String(), "detail", detail)
}

func (r Region) entries() []pmap.Entry[siKey, vsVal] { return r.rbt.Entries() }

func (r Region) findExact(addr *interval.SI) (valueset.VS, bool) {
	v, ok := r.rbt.FindExact(siKey{addr})
	if !ok {
		return valueset.Bot(), false
	}
	return v.vs, true
}

func (r Region) overlapping(addr *interval.SI) []pmap.Entry[siKey, vsVal] {
	return pmap.FindAllOverlapping[siKey, vsVal](r.rbt, addr.Lo(), addr.Hi())
}

func (r Region) insertRaw(addr *interval.SI, vs valueset.VS) Region {
	r.rbt = pmap.Insert(r.rbt, r.siCache, siKey{addr}, vsVal{vs})
	return r
}

func (r Region) eraseRaw(addr *interval.SI) Region {
	r.rbt = pmap.Erase(r.rbt, r.siCache, siKey{addr})
	return r
}

// Read implements the region Read algorithm: bounds/null checks, exact
// match, loader-backed synthesis for uninitialized global reads, and
// sub-word extraction/assembly across overlapping stored entries.
func (r Region) Read(addr *interval.SI, loader MemoryLoader, w Warner) valueset.VS {
	if addr.IsBot() {
		return valueset.Bot()
	}
	if !addrSubsumes(r.Size, addr) {
		warn(w, "out-of-bounds-read", addr, r.Kind.String())
		return valueset.Bot()
	}
	if addr.ContainsZero() && (r.Kind == StrongGlobal || r.Kind == WeakGlobal || r.Kind == StrongHeap || r.Kind == WeakHeap) {
		warn(w, "null-dereference", addr, r.Kind.String())
		return valueset.Top()
	}
	if vs, ok := r.findExact(addr); ok {
		return vs
	}
	overlaps := r.overlapping(addr)
	if len(overlaps) == 0 {
		if (r.Kind == StrongGlobal || r.Kind == WeakGlobal) && loader != nil {
			if vs, ok := synthesizeFromLoader(addr, loader); ok {
				return vs
			}
		}
		if r.Kind != StrongRegister && r.Kind != WeakRegister {
			warn(w, "uninitialized-read", addr, r.Kind.String())
		}
		return valueset.Top()
	}
	return readFromOverlaps(addr, overlaps, w)
}

func synthesizeFromLoader(addr *interval.SI, loader MemoryLoader) (valueset.VS, bool) {
	n := addr.Hi() - addr.Lo()
	if n <= 0 || n > 4 {
		return valueset.VS{}, false
	}
	var v int64
	for i := int64(0); i < n; i++ {
		b, ok := loader.ReadByte(addr.Lo() + i)
		if !ok {
			return valueset.VS{}, false
		}
		v |= int64(b) << (8 * i)
	}
	return valueset.Const(v), true
}

func readFromOverlaps(addr *interval.SI, overlaps []pmap.Entry[siKey, vsVal], w Warner) valueset.VS {
	result := valueset.Bot()
	for _, e := range overlaps {
		stored := e.Key.si
		storedVS := e.Val.vs
		switch {
		case addrSubsumes(stored, addr):
			result = valueset.Join(result, extractSubWord(stored, storedVS, addr))
		case addrSubsumes(addr, stored):
			result = valueset.Join(result, storedVS)
		default:
			warn(w, "misaligned-read", addr, "partial overlap with stored interval")
			return valueset.Top()
		}
	}
	return result
}

// extractSubWord pulls the bytes of addr out of a wider stored
// interval by shifting right past the low-order bytes and masking to
// addr's width. Precise only when both sides are constants; otherwise
// the read degrades to Top via the underlying SI shift/and operators'
// own precision loss.
func extractSubWord(stored *interval.SI, storedVS valueset.VS, addr *interval.SI) valueset.VS {
	shiftBytes := addr.Lo() - stored.Lo()
	shifted := valueset.Shr(storedVS, valueset.Const(shiftBytes*8))
	width := addr.Hi() - addr.Lo()
	mask := valueset.Const((int64(1) << (8 * width)) - 1)
	return valueset.And(shifted, mask)
}

// Write implements the region Write algorithm: bounds/null checks,
// then dispatch on how many stored entries addr overlaps (none, an
// identical match, a containing entry, a contained entry, or several
// partially-overlapping entries needing a split-based rewrite).
func (r Region) Write(addr *interval.SI, value valueset.VS, w Warner) Region {
	if addr.IsBot() {
		return r
	}
	if !addrSubsumes(r.Size, addr) {
		warn(w, "out-of-bounds-write", addr, r.Kind.String())
		return r
	}
	if addr.ContainsZero() && (r.Kind == StrongGlobal || r.Kind == WeakGlobal || r.Kind == StrongHeap || r.Kind == WeakHeap) {
		warn(w, "null-dereference", addr, r.Kind.String())
	}
	if addr.IsTop() {
		warn(w, "write-to-top", addr, r.Kind.String())
	}

	overlaps := r.overlapping(addr)
	switch {
	case len(overlaps) == 0:
		return r.insertRaw(addr, value)
	case len(overlaps) == 1 && overlaps[0].Key.si == addr:
		stored := overlaps[0]
		if r.Kind.IsStrong() {
			return r.insertRaw(addr, value)
		}
		return r.insertRaw(addr, valueset.Join(stored.Val.vs, value))
	case len(overlaps) == 1 && addrSubsumes(overlaps[0].Key.si, addr):
		return r.writeSubWord(overlaps[0], addr, value)
	case len(overlaps) == 1 && addrSubsumes(addr, overlaps[0].Key.si):
		rr := r.eraseRaw(overlaps[0].Key.si)
		if r.Kind.IsStrong() {
			return rr.insertRaw(addr, value)
		}
		return rr.insertRaw(addr, valueset.Join(overlaps[0].Val.vs, value))
	default:
		return r.writeSplit(overlaps, addr, value)
	}
}

func (r Region) writeSubWord(stored pmap.Entry[siKey, vsVal], addr *interval.SI, value valueset.VS) Region {
	shiftBytes := (addr.Lo() - stored.Key.si.Lo()) * 8
	width := addr.Hi() - addr.Lo()
	mask := valueset.Const((int64(1)<<(8*width) - 1) << (shiftBytes))
	cleared := valueset.And(stored.Val.vs, valueset.Not(mask))
	shiftedValue := valueset.Shl(value, valueset.Const(shiftBytes))
	combined := valueset.Or(cleared, shiftedValue)
	rr := r.eraseRaw(stored.Key.si)
	return rr.insertRaw(stored.Key.si, combined)
}

// writeSplit handles the general case: the write spans, partially
// overlaps, or straddles multiple stored entries. It runs Split on the
// stored intervals vs. {addr} and reassembles according to each
// chunk's tag.
func (r Region) writeSplit(overlaps []pmap.Entry[siKey, vsVal], addr *interval.SI, value valueset.VS) Region {
	storedSIs := make([]*interval.SI, len(overlaps))
	storedByLo := make(map[int64]valueset.VS, len(overlaps))
	for i, e := range overlaps {
		storedSIs[i] = e.Key.si
		storedByLo[e.Key.si.Lo()] = e.Val.vs
	}
	chunks := interval.Split(storedSIs, []*interval.SI{addr})

	rr := r
	for _, e := range overlaps {
		rr = rr.eraseRaw(e.Key.si)
	}

	for _, c := range chunks {
		switch c.Tag {
		case interval.First:
			if stored, ok := storedByLo[c.SI.Lo()]; ok {
				rr = rr.insertRaw(c.SI, stored)
			} else {
				rr = rr.insertRaw(c.SI, valueset.Top())
			}
		case interval.Second:
			rr = rr.insertRaw(c.SI, value)
		case interval.Both:
			stored, ok := storedByLo[c.SI.Lo()]
			if !ok {
				stored = valueset.Top()
			}
			if r.Kind.IsStrong() {
				rr = rr.insertRaw(c.SI, value)
			} else {
				rr = rr.insertRaw(c.SI, valueset.Join(stored, value))
			}
		}
	}
	return rr
}

// Join, Meet, Widen require matching region ids; the caller
// (absstate) is responsible for only combining same-id regions.
func Join(a, b Region) Region  { return combine(a, b, interval.Join, valueset.Join, true) }
func Meet(a, b Region) Region  { return combine(a, b, interval.Meet, valueset.Meet, false) }
func Widen(a, b Region) Region { return combine(a, b, interval.Widen, valueset.Widen, true) }

func combine(a, b Region, siOp func(x, y *interval.SI) *interval.SI, vsOp func(x, y valueset.VS) valueset.VS, carryUnmatched bool) Region {
	aSIs := entrySIs(a)
	bSIs := entrySIs(b)
	chunks := interval.Split(aSIs, bSIs)

	aByLo := entryMap(a)
	bByLo := entryMap(b)

	result := New(a.ID, a.Kind, siOp(a.Size, b.Size), a.siCache)
	for _, c := range chunks {
		switch c.Tag {
		case interval.First:
			if !carryUnmatched {
				continue
			}
			if vs, ok := aByLo[c.SI.Lo()]; ok {
				result = result.insertRaw(c.SI, vs)
			}
		case interval.Second:
			if !carryUnmatched {
				continue
			}
			if vs, ok := bByLo[c.SI.Lo()]; ok {
				result = result.insertRaw(c.SI, vs)
			}
		case interval.Both:
			av, aok := aByLo[c.SI.Lo()]
			bv, bok := bByLo[c.SI.Lo()]
			if aok && bok {
				result = result.insertRaw(c.SI, vsOp(av, bv))
			}
		}
	}
	return result
}

func entrySIs(r Region) []*interval.SI {
	es := r.entries()
	out := make([]*interval.SI, len(es))
	for i, e := range es {
		out[i] = e.Key.si
	}
	return out
}

func entryMap(r Region) map[int64]valueset.VS {
	out := make(map[int64]valueset.VS)
	for _, e := range r.entries() {
		out[e.Key.si.Lo()] = e.Val.vs
	}
	return out
}

// DiscardFrame drops all entries whose address range starts above
// boundary (the caller's stack pointer); used when a callee frame is
// popped.
func (r Region) DiscardFrame(boundary int64) Region {
	rr := r
	for _, e := range r.entries() {
		if e.Key.si.Lo() > boundary {
			rr = rr.eraseRaw(e.Key.si)
		}
	}
	return rr
}

// Subsumes reports whether every concrete (address, value) pair
// described by other is also described by r — the per-region
// building block of the interpreter's fixpoint/termination test.
func Subsumes(r, other Region) bool {
	if r.ID != other.ID {
		return false
	}
	if !addrSubsumes(r.Size, other.Size) {
		return false
	}
	aByLo := entryMap(r)
	bByLo := entryMap(other)
	chunks := interval.Split(entrySIs(r), entrySIs(other))
	for _, c := range chunks {
		if c.Tag != interval.Both && c.Tag != interval.Second {
			continue
		}
		bv, ok := bByLo[c.SI.Lo()]
		if !ok {
			continue
		}
		av, ok := aByLo[c.SI.Lo()]
		if !ok {
			av = valueset.Top()
		}
		if !valueset.Subsumes(av, bv) {
			return false
		}
	}
	return true
}

// GetWeaklyUpdatable/GetStronglyUpdatable return a copy of r converted
// to the requested update strength. The register region never
// converts: it is always strong.
func (r Region) GetWeaklyUpdatable() Region {
	if r.Kind == StrongRegister || r.Kind == WeakRegister {
		return r
	}
	r.Kind = r.Kind.weaken()
	return r
}

func (r Region) GetStronglyUpdatable() Region {
	r.Kind = r.Kind.strengthen()
	return r
}
