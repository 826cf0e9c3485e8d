// Package absstate implements the abstract state abstraction (C5): a
// map from region id to region, plus the getInitForMain factory that
// builds the starting state for a whole-program analysis.
package absstate

import (
	"sort"

	"github.com/sarchlab/vsax86/interval"
	"github.com/sarchlab/vsax86/region"
	"github.com/sarchlab/vsax86/valueset"
)

// Reserved region ids, per the data model: exactly one global, one
// register, and one stack region carry these fixed ids in every state.
const (
	GlobalRegionID   = valueset.GlobalRegion
	RegisterRegionID valueset.RegionID = 1
	StackRegionID    valueset.RegionID = 2
	firstHeapID      valueset.RegionID = 3
)

// registerRegionSize is the byte extent of the register region. The 8
// general-purpose 32-bit registers plus EFLAGS occupy bytes 0-35 (see
// the Offset* constants); bytes 36-39 are not assigned to a register.
const registerRegionSize = 40

// State is a persistent region-id -> Region map. Heap region ids are
// handed out by Caches rather than carried on State itself: a state
// forks on every clone, but the allocation-site -> id table has to
// stay the same single table across every fork for the whole analysis
// run, or else a loop containing an allocation call would never stop
// minting brand-new ids (see AllocHeapRegion).
type State struct {
	regions map[valueset.RegionID]region.Region
	caches  *Caches
}

// Caches bundles every hash-cons cache a State's regions share, plus
// the heap allocation-site table. One Caches value is owned per
// analyzer run/session, never a package global, so two unrelated
// analyses never cross-pollute each other's interned trees or heap
// ids.
type Caches struct {
	Global, Register, Stack *region.Cache
	heap                    map[valueset.RegionID]*region.Cache

	heapSites  map[string]valueset.RegionID
	nextHeapID valueset.RegionID
}

// NewCaches creates an empty cache bundle.
func NewCaches() *Caches {
	return &Caches{
		Global:     region.NewCache(),
		Register:   region.NewCache(),
		Stack:      region.NewCache(),
		heap:       make(map[valueset.RegionID]*region.Cache),
		heapSites:  make(map[string]valueset.RegionID),
		nextHeapID: firstHeapID,
	}
}

// heapIDForSite returns the region id bound to site, minting a fresh
// one the first time site is seen. Every later call with the same
// site string gets back the same id, which is what lets a loop
// containing an allocation call reuse one region id across every
// iteration instead of growing the state forever (spec.md's
// allocation-site identity rule).
func (c *Caches) heapIDForSite(site string) (id valueset.RegionID, firstVisit bool) {
	if id, ok := c.heapSites[site]; ok {
		return id, false
	}
	id = c.nextHeapID
	c.nextHeapID++
	c.heapSites[site] = id
	return id, true
}

// TreeCacheSize reports the total number of distinct persistent-map
// subtrees currently interned across every region's cache, for
// --cache-db stats reporting.
func (c *Caches) TreeCacheSize() int {
	n := c.Global.Size() + c.Register.Size() + c.Stack.Size()
	for _, ch := range c.heap {
		n += ch.Size()
	}
	return n
}

func (c *Caches) forHeap(id valueset.RegionID) *region.Cache {
	if ch, ok := c.heap[id]; ok {
		return ch
	}
	ch := region.NewCache()
	c.heap[id] = ch
	return ch
}

// Empty returns a state with no regions at all — callers build up
// from here, or use GetInitForMain for the standard entry state.
func Empty(caches *Caches) State {
	return State{regions: map[valueset.RegionID]region.Region{}, caches: caches}
}

// clone performs a shallow copy of the region map; Region values
// themselves are immutable (persistent pmap trees), so sharing them
// across the old and new maps is safe.
func (s State) clone() State {
	regions := make(map[valueset.RegionID]region.Region, len(s.regions))
	for k, v := range s.regions {
		regions[k] = v
	}
	return State{regions: regions, caches: s.caches}
}

// Region returns the region bound to id, if any.
func (s State) Region(id valueset.RegionID) (region.Region, bool) {
	r, ok := s.regions[id]
	return r, ok
}

// WithRegion returns a copy of s with id rebound to r.
func (s State) WithRegion(id valueset.RegionID, r region.Region) State {
	s = s.clone()
	s.regions[id] = r
	return s
}

// RegionIDs returns every bound region id in ascending order.
func (s State) RegionIDs() []valueset.RegionID {
	ids := make([]valueset.RegionID, 0, len(s.regions))
	for id := range s.regions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// The Offset* constants give each 32-bit register's byte offset in the
// register region, mirroring the register fields of Registers.h/.cpp.
const (
	OffsetEAX = 0
	OffsetEBX = 4
	OffsetECX = 8
	OffsetEDX = 12
	OffsetESI = 16
	OffsetEDI = 20
	OffsetESP = 24
	OffsetEBP = 28
	OffsetEFL = 32
)

// GetInitForMain builds the entry state for a whole-program analysis
// starting at main: a global region (empty, reads fall back to the
// loader), a strong register region with ESP/EBP pointing at a fresh
// stack frame and the general-purpose registers zeroed, and a strong
// stack region with the return address at ESP and argc and an argv
// pointer in the two slots above it, per the data model's lifecycle
// rules for entry-state construction.
func GetInitForMain(caches *Caches, stackTop, argc, argvPtr, returnAddr int64) State {
	s := Empty(caches)

	global := region.New(int64(GlobalRegionID), region.WeakGlobal, interval.Top(), caches.Global)
	s = s.WithRegion(GlobalRegionID, global)

	reg := region.New(int64(RegisterRegionID), region.StrongRegister,
		interval.New(0, registerRegionSize, 1), caches.Register)
	for _, off := range []int64{OffsetEAX, OffsetEBX, OffsetECX, OffsetEDX, OffsetESI, OffsetEDI, OffsetEFL} {
		reg = reg.Write(interval.New(off, off+4, 4), valueset.Const(0), nil)
	}
	reg = reg.Write(interval.New(OffsetESP, OffsetESP+4, 4), valueset.FromRegionSI(StackRegionID, interval.Const(stackTop)), nil)
	reg = reg.Write(interval.New(OffsetEBP, OffsetEBP+4, 4), valueset.FromRegionSI(StackRegionID, interval.Const(stackTop)), nil)
	s = s.WithRegion(RegisterRegionID, reg)

	stack := region.New(int64(StackRegionID), region.StrongStack, interval.New(0, 1<<24, 1), caches.Stack)
	stack = stack.Write(interval.New(stackTop, stackTop+4, 4), valueset.Const(returnAddr), nil)
	stack = stack.Write(interval.New(stackTop+4, stackTop+8, 4), valueset.Const(argc), nil)
	stack = stack.Write(interval.New(stackTop+8, stackTop+12, 4), valueset.FromRegionSI(StackRegionID, interval.Const(argvPtr)), nil)
	s = s.WithRegion(StackRegionID, stack)

	return s
}

// AllocHeapRegion models one syntactic allocation call site, per
// spec.md §4.6: the first visit to site binds a fresh strong heap
// region sized by size; every later visit to the same site rebinds
// the same id as a new weak region instead of minting a new one, since
// a site visited more than once is, by construction, inside a loop
// (or a recursive/iterated call path) and has to converge to a single
// summary for the fixpoint to terminate. site should already fold in
// the calling context when the analysis is context-sensitive, so the
// same call-site address under two different contexts gets distinct
// ids.
func (s State) AllocHeapRegion(site string, size *interval.SI) (State, valueset.RegionID) {
	id, firstVisit := s.caches.heapIDForSite(site)
	s = s.clone()
	kind := region.WeakHeap
	if firstVisit {
		kind = region.StrongHeap
	}
	s.regions[id] = region.New(int64(id), kind, size, s.caches.forHeap(id))
	return s, id
}

// ReplaceHeap rebinds id to r — used when a heap region converts from
// strong to weak after its first write (realloc growing past the
// original strong allocation, for instance).
func (s State) ReplaceHeap(id valueset.RegionID, r region.Region) State {
	return s.WithRegion(id, r)
}

// Read/Write dispatch an aloc-pair (region id, address interval)
// access to the named region, returning Bot/leaving the state
// unchanged if the region id is not bound (a programming error
// upstream, not a precision loss, since regions are only ever
// referenced by ids the state itself handed out).
func (s State) Read(id valueset.RegionID, addr *interval.SI, loader region.MemoryLoader, w region.Warner) valueset.VS {
	r, ok := s.regions[id]
	if !ok {
		return valueset.Bot()
	}
	return r.Read(addr, loader, w)
}

func (s State) Write(id valueset.RegionID, addr *interval.SI, val valueset.VS, w region.Warner) State {
	r, ok := s.regions[id]
	if !ok {
		return s
	}
	return s.WithRegion(id, r.Write(addr, val, w))
}

// ReadVS/WriteVS dispatch a VS-valued address (rather than a single
// known region id) by iterating every entry of addr and joining
// (read) or writing to each named region in turn (write), per the
// data model's VS-address access rule.
func (s State) ReadVS(addr valueset.VS, loader region.MemoryLoader, w region.Warner) valueset.VS {
	if addr.IsTop() {
		return valueset.Top()
	}
	if addr.IsBot() {
		return valueset.Bot()
	}
	result := valueset.Bot()
	for _, e := range addr.Entries() {
		result = valueset.Join(result, s.Read(e.Region, e.SI, loader, w))
	}
	return result
}

func (s State) WriteVS(addr valueset.VS, val valueset.VS, w region.Warner) State {
	if addr.IsTop() || addr.IsBot() {
		return s
	}
	entries := addr.Entries()
	weak := len(entries) > 1
	for _, e := range entries {
		r, ok := s.regions[e.Region]
		if !ok {
			continue
		}
		if weak {
			r = r.GetWeaklyUpdatable()
		}
		s = s.WithRegion(e.Region, r.Write(e.SI, val, w))
	}
	return s
}

// DiscardFramesAbove drops every stack-region entry that starts above
// boundary — used on function return to drop the callee's frame.
func (s State) DiscardFramesAbove(boundary int64) State {
	r, ok := s.regions[StackRegionID]
	if !ok {
		return s
	}
	return s.WithRegion(StackRegionID, r.DiscardFrame(boundary))
}

// Join, Meet, Widen combine two states region-by-region: matching ids
// combine via the region operator; an id present on only one side is
// carried through for Join/Widen and dropped for Meet, mirroring the
// value-set combination rule at one level up.
func Join(a, b State) State  { return combine(a, b, region.Join, true) }
func Meet(a, b State) State  { return combine(a, b, region.Meet, false) }
func Widen(a, b State) State { return combine(a, b, region.Widen, true) }

func combine(a, b State, op func(x, y region.Region) region.Region, carryUnmatched bool) State {
	out := a.clone()
	out.regions = map[valueset.RegionID]region.Region{}
	for id, ra := range a.regions {
		if rb, ok := b.regions[id]; ok {
			out.regions[id] = op(ra, rb)
		} else if carryUnmatched {
			out.regions[id] = ra
		}
	}
	if carryUnmatched {
		for id, rb := range b.regions {
			if _, ok := a.regions[id]; !ok {
				out.regions[id] = rb
			}
		}
	}
	return out
}

// Subsumes reports whether s subsumes other: every region other binds
// must be bound in s with a subsuming content (a coarse structural
// check; actual VS-level subsumption happens inside region
// comparisons used by the interpreter's fixpoint test).
func Subsumes(s, other State) bool {
	for id, ro := range other.regions {
		rs, ok := s.regions[id]
		if !ok {
			return false
		}
		if !region.Subsumes(rs, ro) {
			return false
		}
	}
	return true
}
