package interval

// Tri is the result of a relational predicate evaluated over every
// concrete pair a value in a and a value in b could take: TriTrue and
// TriFalse mean the predicate holds for every such pair (the
// comparison is decidable), TriMaybe means some pairs satisfy it and
// others don't.
type Tri uint8

const (
	TriFalse Tri = iota
	TriTrue
	TriMaybe
)

func signedBounds(s *SI) (int64, int64) {
	return int64(lo32(s)), int64(hi32(s) - stride32(s))
}

func unsignedBounds(s *SI) (uint32, uint32) {
	lo, hi := uint32(lo32(s)), uint32(hi32(s)-stride32(s))
	if lo <= hi {
		return lo, hi
	}
	// the 32-bit reinterpretation wrapped; conservative full range.
	return 0, 1<<32 - 1
}

// SLt reports whether a < b holds for every pair, never, or sometimes,
// comparing both as signed 32-bit values.
func SLt(a, b *SI) Tri {
	if a.IsBot() || b.IsBot() {
		return TriFalse
	}
	if a.IsTop() || b.IsTop() {
		return TriMaybe
	}
	aLo, aHi := signedBounds(a)
	bLo, bHi := signedBounds(b)
	if aHi < bLo {
		return TriTrue
	}
	if aLo >= bHi {
		return TriFalse
	}
	return TriMaybe
}

func SLe(a, b *SI) Tri {
	if a.IsBot() || b.IsBot() {
		return TriFalse
	}
	if a.IsTop() || b.IsTop() {
		return TriMaybe
	}
	aLo, aHi := signedBounds(a)
	bLo, bHi := signedBounds(b)
	if aHi <= bLo {
		return TriTrue
	}
	if aLo > bHi {
		return TriFalse
	}
	return TriMaybe
}

func SGt(a, b *SI) Tri { return SLt(b, a) }
func SGe(a, b *SI) Tri { return SLe(b, a) }

// ULt, ULe, UGt, UGe are the unsigned-interpretation counterparts.
func ULt(a, b *SI) Tri {
	if a.IsBot() || b.IsBot() {
		return TriFalse
	}
	if a.IsTop() || b.IsTop() {
		return TriMaybe
	}
	aLo, aHi := unsignedBounds(a)
	bLo, bHi := unsignedBounds(b)
	if aHi < bLo {
		return TriTrue
	}
	if aLo >= bHi {
		return TriFalse
	}
	return TriMaybe
}

func ULe(a, b *SI) Tri {
	if a.IsBot() || b.IsBot() {
		return TriFalse
	}
	if a.IsTop() || b.IsTop() {
		return TriMaybe
	}
	aLo, aHi := unsignedBounds(a)
	bLo, bHi := unsignedBounds(b)
	if aHi <= bLo {
		return TriTrue
	}
	if aLo > bHi {
		return TriFalse
	}
	return TriMaybe
}

func UGt(a, b *SI) Tri { return ULt(b, a) }
func UGe(a, b *SI) Tri { return ULe(b, a) }

// Eq reports equality: true only if both sides are the same singleton
// constant, false if the ranges cannot overlap at all, maybe
// otherwise.
func Eq(a, b *SI) Tri {
	if a.IsBot() || b.IsBot() {
		return TriFalse
	}
	if a.IsTop() || b.IsTop() {
		return TriMaybe
	}
	if a.IsConst() && b.IsConst() {
		av, _ := a.ConstValue()
		bv, _ := b.ConstValue()
		if av == bv {
			return TriTrue
		}
		return TriFalse
	}
	if !Overlaps(a, b) {
		return TriFalse
	}
	return TriMaybe
}

func Neq(a, b *SI) Tri {
	switch Eq(a, b) {
	case TriTrue:
		return TriFalse
	case TriFalse:
		return TriTrue
	default:
		return TriMaybe
	}
}
