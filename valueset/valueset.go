// Package valueset implements the value-set abstract domain (C3): a
// value is either TOP, BOT, or an ordered map from region-id to a
// strided interval, denoting the union over its entries of "address
// interval, within this region". A value-set with a single entry in
// the unique global region is how every numeric constant is
// represented — its "pointer" is a no-op identity into global memory.
package valueset

import (
	"sort"

	"github.com/sarchlab/vsax86/interval"
)

// RegionID identifies a region within an abstract state. 0 is always
// the global region.
type RegionID int64

// GlobalRegion is the id of the unique global/constant region every
// state carries.
const GlobalRegion RegionID = 0

type extreme uint8

const (
	normal extreme = iota
	top
	bot
)

// entry is one (region, interval) pair. Entries are kept sorted by
// RegionID so VS operators can run a linear merge, mirroring the
// pmap-backed ordered map the original keys its value sets by.
type entry struct {
	region RegionID
	si     *interval.SI
}

// VS is a value set. The zero value is BOT.
type VS struct {
	ty      extreme
	entries []entry // sorted by region, no duplicate regions
}

// Top returns the universal value set.
func Top() VS { return VS{ty: top} }

// Bot returns the empty value set.
func Bot() VS { return VS{ty: bot} }

// Const builds a VS denoting the single numeric constant v, paired
// with the global region.
func Const(v int64) VS {
	return VS{entries: []entry{{region: GlobalRegion, si: interval.Const(v)}}}
}

// FromRegionSI builds a VS with one entry pairing region r with si.
func FromRegionSI(r RegionID, si *interval.SI) VS {
	if si.IsBot() {
		return Bot()
	}
	return VS{entries: []entry{{region: r, si: si}}}
}

// IsTop reports whether vs is TOP.
func (vs VS) IsTop() bool { return vs.ty == top }

// IsBot reports whether vs is BOT (including the zero value).
func (vs VS) IsBot() bool { return vs.ty == bot && len(vs.entries) == 0 }

// IsConstant reports whether every entry's interval is a constant.
func (vs VS) IsConstant() bool {
	if vs.IsTop() || vs.IsBot() {
		return false
	}
	for _, e := range vs.entries {
		if !e.si.IsConst() {
			return false
		}
	}
	return true
}

// IsZero reports whether vs is exactly the global constant 0.
func (vs VS) IsZero() bool {
	if vs.IsTop() || vs.IsBot() || len(vs.entries) != 1 {
		return false
	}
	e := vs.entries[0]
	return e.region == GlobalRegion && e.si.IsZero()
}

// IsTrue/IsFalse test the Boolean-VS convention used by comparison
// operators: every entry equal to the global constant 1 (resp. 0).
func (vs VS) IsTrue() bool {
	if vs.IsTop() || vs.IsBot() {
		return false
	}
	for _, e := range vs.entries {
		if !(e.si.IsConst()) {
			return false
		}
		if v, _ := e.si.ConstValue(); v != 1 {
			return false
		}
	}
	return true
}

func (vs VS) IsFalse() bool {
	if vs.IsTop() || vs.IsBot() {
		return false
	}
	for _, e := range vs.entries {
		if !(e.si.IsConst()) {
			return false
		}
		if v, _ := e.si.ConstValue(); v != 0 {
			return false
		}
	}
	return true
}

// Entries returns the (region, interval) pairs of vs in region order.
// Calling this on TOP or BOT returns nil.
func (vs VS) Entries() []struct {
	Region RegionID
	SI     *interval.SI
} {
	if vs.ty != normal {
		return nil
	}
	out := make([]struct {
		Region RegionID
		SI     *interval.SI
	}, len(vs.entries))
	for i, e := range vs.entries {
		out[i] = struct {
			Region RegionID
			SI     *interval.SI
		}{e.region, e.si}
	}
	return out
}

// Lookup returns the interval stored for region r, if any.
func (vs VS) Lookup(r RegionID) (*interval.SI, bool) {
	i := sort.Search(len(vs.entries), func(i int) bool { return vs.entries[i].region >= r })
	if i < len(vs.entries) && vs.entries[i].region == r {
		return vs.entries[i].si, true
	}
	return nil, false
}

func fromSorted(entries []entry) VS {
	entries = dropBot(entries)
	if len(entries) == 0 {
		return Bot()
	}
	return VS{entries: entries}
}

func dropBot(entries []entry) []entry {
	out := entries[:0]
	for _, e := range entries {
		if !e.si.IsBot() {
			out = append(out, e)
		}
	}
	return out
}

// Insert returns a copy of vs with region r bound to si (overwriting
// any prior entry for r).
func (vs VS) Insert(r RegionID, si *interval.SI) VS {
	if vs.IsTop() {
		return vs
	}
	out := make([]entry, 0, len(vs.entries)+1)
	inserted := false
	for _, e := range vs.entries {
		if e.region == r {
			if !si.IsBot() {
				out = append(out, entry{r, si})
			}
			inserted = true
			continue
		}
		if e.region > r && !inserted {
			if !si.IsBot() {
				out = append(out, entry{r, si})
			}
			inserted = true
		}
		out = append(out, e)
	}
	if !inserted && !si.IsBot() {
		out = append(out, entry{r, si})
	}
	return fromSorted(out)
}

// Erase returns a copy of vs with region r's entry removed.
func (vs VS) Erase(r RegionID) VS {
	if vs.ty != normal {
		return vs
	}
	out := make([]entry, 0, len(vs.entries))
	for _, e := range vs.entries {
		if e.region != r {
			out = append(out, e)
		}
	}
	return fromSorted(out)
}

// Equal reports structural equality (same type, same entries; SI
// equality is pointer equality thanks to hash-consing).
func (vs VS) Equal(other VS) bool {
	if vs.ty != other.ty {
		return false
	}
	if len(vs.entries) != len(other.entries) {
		return false
	}
	for i := range vs.entries {
		if vs.entries[i].region != other.entries[i].region || vs.entries[i].si != other.entries[i].si {
			return false
		}
	}
	return true
}

// merge walks two sorted entry slices calling combine for a matching
// pair, onlyLeft/onlyRight for entries present on one side only, and
// assembles the result via fromSorted. Used by Join/Meet/Widen/apply.
func merge(a, b []entry, onPair func(x, y *interval.SI) *interval.SI, onLeft, onRight func(x *interval.SI) *interval.SI) []entry {
	var out []entry
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].region == b[j].region:
			if r := onPair(a[i].si, b[j].si); r != nil {
				out = append(out, entry{a[i].region, r})
			}
			i++
			j++
		case a[i].region < b[j].region:
			if r := onLeft(a[i].si); r != nil {
				out = append(out, entry{a[i].region, r})
			}
			i++
		default:
			if r := onRight(b[j].si); r != nil {
				out = append(out, entry{b[j].region, r})
			}
			j++
		}
	}
	for ; i < len(a); i++ {
		if r := onLeft(a[i].si); r != nil {
			out = append(out, entry{a[i].region, r})
		}
	}
	for ; j < len(b); j++ {
		if r := onRight(b[j].si); r != nil {
			out = append(out, entry{b[j].region, r})
		}
	}
	return out
}

func identity(x *interval.SI) *interval.SI { return x }
func drop(*interval.SI) *interval.SI       { return nil }

// Join returns the point-wise least upper bound, carrying through
// entries that appear on only one side.
func Join(a, b VS) VS {
	if a.IsBot() {
		return b
	}
	if b.IsBot() {
		return a
	}
	if a.IsTop() || b.IsTop() {
		return Top()
	}
	if a.Equal(b) {
		return a
	}
	return fromSorted(merge(a.entries, b.entries, interval.Join, identity, identity))
}

// Meet returns the point-wise greatest lower bound; entries present on
// only one side are dropped (that region is unconstrained on the
// other side, which for meet means "no information", not "any value").
func Meet(a, b VS) VS {
	if a.IsBot() || b.IsBot() {
		return Bot()
	}
	if a.IsTop() {
		return b
	}
	if b.IsTop() {
		return a
	}
	if a.Equal(b) {
		return a
	}
	return fromSorted(merge(a.entries, b.entries, interval.Meet, drop, drop))
}

// Widen returns the point-wise widen of a with b.
func Widen(a, b VS) VS {
	if a.IsTop() || b.IsTop() {
		return Top()
	}
	if a.IsBot() {
		if b.IsBot() {
			return Bot()
		}
		return Top()
	}
	if b.IsBot() || a.Equal(b) {
		return a
	}
	return fromSorted(merge(a.entries, b.entries, interval.Widen, identity, identity))
}

// apply threads a binary interval operator through every cross-pair of
// entries whose regions are compatible: same id, or either side is the
// global (constant) region. If any pair of entries belongs to
// unrelated non-global regions, the whole operation collapses to Top,
// matching the "operation can be performed only between comparable
// regions" rule for arithmetic/bitwise VS operators.
func apply(a, b VS, op func(x, y *interval.SI) *interval.SI) VS {
	for _, ae := range a.entries {
		for _, be := range b.entries {
			if ae.region != be.region && ae.region != GlobalRegion && be.region != GlobalRegion {
				return Top()
			}
		}
	}
	result := Bot()
	for _, ae := range a.entries {
		for _, be := range b.entries {
			r := ae.region
			if r == GlobalRegion {
				r = be.region
			}
			si := op(ae.si, be.si)
			result = Join(result, FromRegionSI(r, si))
		}
	}
	return result
}

func binaryWithExtremes(a, b VS, bothBot, eitherTop func() VS, op func(x, y *interval.SI) *interval.SI) VS {
	if a.IsBot() || b.IsBot() {
		return bothBot()
	}
	if a.IsTop() || b.IsTop() {
		return eitherTop()
	}
	return apply(a, b, op)
}

func topVS() VS { return Top() }
func botVS() VS { return Bot() }

// Add, Sub, Mul, Or, And, Xor, SDiv, UDiv, SMod, UMod, Shl, Shr, Sar,
// Lrotate, Rrotate mirror the strided-interval operators of the same
// name, lifted point-wise across compatible region pairs.
func Add(a, b VS) VS {
	if a.IsBot() {
		return b
	}
	if b.IsBot() {
		return a
	}
	if a.IsTop() || b.IsTop() {
		return Top()
	}
	return apply(a, b, interval.Add)
}

func Sub(a, b VS) VS {
	if a.IsBot() {
		return Neg(b)
	}
	if b.IsBot() {
		return a
	}
	if a.IsTop() || b.IsTop() {
		return Top()
	}
	return apply(a, b, interval.Sub)
}

func Mul(a, b VS) VS { return binaryWithExtremes(a, b, botVS, topVS, interval.Mul) }

func Or(a, b VS) VS {
	if a.IsBot() {
		return b
	}
	if b.IsBot() {
		return a
	}
	if a.IsTop() || b.IsTop() {
		return Top()
	}
	return apply(a, b, interval.Or)
}

func And(a, b VS) VS {
	if a.IsTop() {
		return applyToTop(b, interval.And)
	}
	if b.IsTop() {
		return applyToTop(a, interval.And)
	}
	return binaryWithExtremes(a, b, botVS, topVS, interval.And)
}

func Xor(a, b VS) VS {
	if a.IsBot() {
		return b
	}
	if b.IsBot() {
		return a
	}
	if a.IsTop() || b.IsTop() {
		return Top()
	}
	return apply(a, b, interval.Xor)
}

func SDiv(a, b VS) VS { return divLike(a, b, interval.SDiv) }
func UDiv(a, b VS) VS { return divLike(a, b, interval.UDiv) }
func SMod(a, b VS) VS { return divLike(a, b, interval.SMod) }
func UMod(a, b VS) VS { return divLike(a, b, interval.UMod) }

func divLike(a, b VS, op func(x, y *interval.SI) *interval.SI) VS {
	if a.IsTop() || b.IsTop() || b.IsBot() {
		return Top()
	}
	if a.IsBot() {
		return Bot()
	}
	return apply(a, b, op)
}

func Shl(a, b VS) VS { return shiftLike(a, b, interval.Shl, false) }
func Shr(a, b VS) VS { return shiftLike(a, b, interval.Shr, true) }
func Sar(a, b VS) VS { return shiftLike(a, b, interval.Sar, true) }

func shiftLike(a, b VS, op func(x, y *interval.SI) *interval.SI, identityOnZero bool) VS {
	if a.IsBot() {
		return Bot()
	}
	if identityOnZero && (b.IsBot() || b.IsZero()) {
		return a
	}
	if !identityOnZero && b.IsBot() {
		return a
	}
	if a.IsTop() || b.IsTop() {
		return Top()
	}
	return apply(a, b, op)
}

func Lrotate(a, b VS) VS { return rotateLike(a, b, interval.Lrotate) }
func Rrotate(a, b VS) VS { return rotateLike(a, b, interval.Rrotate) }

func rotateLike(a, b VS, op func(x, y *interval.SI) *interval.SI) VS {
	if a.IsBot() {
		return Bot()
	}
	if b.IsBot() || b.IsZero() {
		return a
	}
	if a.IsTop() || b.IsTop() {
		return Top()
	}
	return apply(a, b, op)
}

func applyToTop(a VS, op func(x, y *interval.SI) *interval.SI) VS {
	result := Bot()
	for _, ae := range a.entries {
		result = Join(result, FromRegionSI(ae.region, op(ae.si, interval.Top())))
	}
	return result
}

// Neg, Not are the unary operators; they are precise on any VS.
func Neg(a VS) VS {
	if a.IsTop() || a.IsBot() {
		return a
	}
	out := make([]entry, len(a.entries))
	for i, e := range a.entries {
		out[i] = entry{e.region, interval.Neg(e.si)}
	}
	return fromSorted(out)
}

func Not(a VS) VS {
	if a.IsTop() || a.IsBot() {
		return a
	}
	out := make([]entry, len(a.entries))
	for i, e := range a.entries {
		out[i] = entry{e.region, interval.Not(e.si)}
	}
	return fromSorted(out)
}

// compare runs a three-way Boolean-VS comparison: true only if every
// cross-pair of comparable (same-id or global) entries satisfies pred;
// any incomparable pair makes the whole comparison fail, matching the
// "not total" semantics noted in the data model.
func compare(a, b VS, pred func(x, y *interval.SI) bool) bool {
	for _, ae := range a.entries {
		for _, be := range b.entries {
			comparable := ae.region == be.region || ae.region == GlobalRegion || be.region == GlobalRegion
			if !comparable || !pred(ae.si, be.si) {
				return false
			}
		}
	}
	return true
}

// Subsumes reports whether every concrete value/pointer in b is also
// in a.
func Subsumes(a, b VS) bool {
	if a.IsTop() || b.IsBot() || a.Equal(b) {
		return true
	}
	if a.IsBot() || b.IsTop() {
		return false
	}
	if len(b.entries) > len(a.entries) {
		return false
	}
	i := 0
	for _, be := range b.entries {
		for i < len(a.entries) && a.entries[i].region < be.region {
			i++
		}
		if i >= len(a.entries) || a.entries[i].region != be.region {
			return false
		}
		if !interval.Subsumes(a.entries[i].si, be.si) {
			return false
		}
	}
	return true
}

// AIEqual/AIDistinct are exact (not Boolean-VS) equality comparisons
// between value sets, used by the interpreter's internal bookkeeping
// rather than by condition-code evaluation.
func AIEqual(a, b VS) bool    { return compare(a, b, func(x, y *interval.SI) bool { return x == y }) }
func AIDistinct(a, b VS) bool { return !AIEqual(a, b) }
