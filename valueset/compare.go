package valueset

import "github.com/sarchlab/vsax86/interval"

// maybeBool is the Boolean-VS "could be either" value: the constant
// set {0, 1} in the global region, per the data model's "otherwise
// the Boolean-VS for maybe" rule.
func maybeBool() VS {
	return FromRegionSI(GlobalRegion, interval.New(0, 2, 1))
}

func trueBool() VS  { return Const(1) }
func falseBool() VS { return Const(0) }

// compareTri runs a relational predicate across every cross-pair of
// comparable entries (same region, or either side global) and folds
// the per-pair Tri results: unanimous true/false decides the
// comparison outright, anything else — a disagreement between pairs,
// or an incomparable pair — yields "maybe". A comparison between
// Top/Bot operands is itself maybe/Bot respectively, matching the
// numeric operators' extreme handling.
func compareTri(a, b VS, pred func(x, y *interval.SI) interval.Tri) VS {
	if a.IsBot() || b.IsBot() {
		return Bot()
	}
	if a.IsTop() || b.IsTop() {
		return maybeBool()
	}
	sawTrue, sawFalse := false, false
	for _, ae := range a.entries {
		for _, be := range b.entries {
			comparable := ae.region == be.region || ae.region == GlobalRegion || be.region == GlobalRegion
			if !comparable {
				return maybeBool()
			}
			switch pred(ae.si, be.si) {
			case interval.TriTrue:
				sawTrue = true
			case interval.TriFalse:
				sawFalse = true
			default:
				return maybeBool()
			}
		}
	}
	switch {
	case sawTrue && !sawFalse:
		return trueBool()
	case sawFalse && !sawTrue:
		return falseBool()
	default:
		return maybeBool()
	}
}

// SLt, SLe, SGt, SGe compare signed values; ULt, ULe, UGt, UGe compare
// the same bit patterns as unsigned. Eq/Neq are unsigned-vs-signed
// agnostic (equality doesn't care about interpretation). All of them
// return a Boolean-VS: Const(1), Const(0), or the maybe value
// {0,1}; a Top operand gives the maybe value, a Bot operand gives Bot.
func SLt(a, b VS) VS { return compareTri(a, b, interval.SLt) }
func SLe(a, b VS) VS { return compareTri(a, b, interval.SLe) }
func SGt(a, b VS) VS { return compareTri(a, b, interval.SGt) }
func SGe(a, b VS) VS { return compareTri(a, b, interval.SGe) }
func ULt(a, b VS) VS { return compareTri(a, b, interval.ULt) }
func ULe(a, b VS) VS { return compareTri(a, b, interval.ULe) }
func UGt(a, b VS) VS { return compareTri(a, b, interval.UGt) }
func UGe(a, b VS) VS { return compareTri(a, b, interval.UGe) }
func Eq(a, b VS) VS  { return compareTri(a, b, interval.Eq) }
func Neq(a, b VS) VS { return compareTri(a, b, interval.Neq) }
