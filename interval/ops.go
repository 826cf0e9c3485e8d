package interval

// All of the operators below work over signed/unsigned 32-bit words
// internally (the domain this analyzer covers is always 32-bit x86),
// relying on native int32/uint32 wraparound plus the bit-trick overflow
// tests from Hacker's Delight to detect when a result's bounds would
// spill out of the 32-bit range; on overflow the result widens to Top
// rather than wrapping, since a wrapped bound would silently claim a
// precision the analysis doesn't have.

func lo32(s *SI) int32     { return int32(s.lo) }
func hi32(s *SI) int32     { return int32(s.hi) }
func stride32(s *SI) int32 { return int32(s.stride) }

func rem32(d, m int32) int32 {
	r := d % m
	if r >= 0 {
		return r
	}
	return r + m
}

func doesSumOverflow32(x, y int32) bool {
	return ((x & y & ^(x + y)) | (^x & ^y & (x + y))) < 0
}

func doesSubOverflow32(x, y int32) bool {
	return ((x & ^y & ^(x - y)) | (^x & y & (x - y))) < 0
}

func doesMulOverflow32(x, y int32) bool {
	if y == 0 {
		return false
	}
	prod := x * y
	return prod/y != x
}

func doesDivOverflow32(x, y int32) bool {
	return x == -(1<<31) && y == -1
}

// shrinkAlign32 pulls lo up and hi down to the nearest stride-aligned
// bounds, collapsing to Top if that inverts the interval.
func shrinkAlign32(lo, hi, s int32) (int32, int32) {
	if s == 1 {
		return lo, hi
	}
	lres := rem32(lo, s)
	hres := rem32(hi, s)
	if lres != 0 {
		lo = (lo / s) * s
	}
	if hres != 0 {
		hi = (hi / s) * s
	}
	if lres > hres {
		return int32(Min), int32(Max)
	}
	return lo, hi
}

// inflateAlign32 pushes lo down and hi up to the nearest stride-aligned
// bounds (used where narrowing would lose values, e.g. negation).
func inflateAlign32(lo, hi, s int32) (int32, int32) {
	if s == 1 {
		return lo, hi
	}
	lres := rem32(lo, s)
	hres := rem32(hi, s)
	if lres != 0 {
		lo = (lo / s) * s
		if lo <= 0 && !doesSubOverflow32(lo, s) {
			lo -= s
		}
	}
	if hres != 0 {
		hi = (hi / s) * s
		if hi >= 0 && !doesSumOverflow32(hi, s) {
			hi += s
		}
	}
	if lres > hres {
		return int32(Min), int32(Max)
	}
	return lo, hi
}

func minOR32(a, b, c, d uint32) uint32 {
	m := uint32(1) << 31
	for m != 0 {
		if ^a&c&m != 0 {
			temp := (a | m) & -m
			if temp <= b {
				a = temp
				break
			}
		} else if a & ^c&m != 0 {
			temp := (c | m) & -m
			if temp <= d {
				c = temp
				break
			}
		}
		m >>= 1
	}
	return a | c
}

func maxOR32(a, b, c, d uint32) uint32 {
	m := uint32(1) << 31
	for m != 0 {
		if b&d&m != 0 {
			temp := (b - m) | (m - 1)
			if temp >= a {
				b = temp
				break
			}
			temp = (d - m) | (m - 1)
			if temp >= c {
				d = temp
				break
			}
		}
		m >>= 1
	}
	return b | d
}

func tlz32(s int32) uint {
	u := uint32(s)
	var n uint
	for u&1 == 0 && n < 32 {
		u >>= 1
		n++
	}
	return n
}

func maxUint(a, b uint) uint {
	if a > b {
		return a
	}
	return b
}

func gcdSafe(a, b int64) int64 {
	if a == 0 {
		return absI64(b)
	}
	if b == 0 {
		return absI64(a)
	}
	return gcd(a, b)
}

func absI64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Join returns the smallest strided interval subsuming both operands.
func Join(a, b *SI) *SI {
	if a.IsBot() {
		return b
	}
	if b.IsBot() {
		return a
	}
	lo := minInt(a.lo, b.lo)
	hi := maxInt(a.hi, b.hi)
	s := gcdSafe(a.stride, b.stride)
	return New(lo, hi, s)
}

// Meet returns the largest strided interval subsumed by both operands.
func Meet(a, b *SI) *SI {
	if a.IsBot() || b.IsBot() {
		return Bot()
	}
	smaller, larger := b, a
	if smaller.lo > larger.lo {
		smaller, larger = larger, smaller
	}
	if smaller.hi <= larger.lo {
		return Bot()
	}
	return New(maxInt(smaller.lo, larger.lo), minInt(smaller.hi, larger.hi), lcm(smaller.stride, larger.stride))
}

// Widen extrapolates from a to the interval with, jumping straight to
// Top the moment either bound has grown — this domain has no
// intermediate widening thresholds, matching the reference
// implementation's conservative (and documented-as-such) choice.
func Widen(a, with *SI) *SI {
	if a.IsTop() || with.IsTop() {
		return Top()
	}
	if a.IsBot() {
		if with.IsBot() {
			return Bot()
		}
		return Top()
	}
	if with.IsBot() || a == with {
		return a
	}
	if with.lo < a.lo {
		return Top()
	}
	if with.hi > a.hi {
		return Top()
	}
	return New(a.lo, a.hi, gcdSafe(a.stride, with.stride))
}

// RestrictUpperBound narrows a to values < x, returning Bot if x falls
// outside a's span.
func RestrictUpperBound(a *SI, x int64) *SI {
	if a.lo <= x && x <= a.hi {
		lo, hi := shrinkAlign32(int32(a.lo), int32(x), int32(a.stride))
		return New(int64(lo), int64(hi), a.stride)
	}
	return Bot()
}

// RestrictLowerBound narrows a to values >= x, returning Bot if x falls
// outside a's span.
func RestrictLowerBound(a *SI, x int64) *SI {
	if a.lo <= x && x <= a.hi {
		lo, hi := shrinkAlign32(int32(x), int32(a.hi), int32(a.stride))
		return New(int64(lo), int64(hi), a.stride)
	}
	return Bot()
}

// Subsumes reports whether a's value set contains every value of b's.
func Subsumes(a, b *SI) bool {
	if a.IsBot() {
		return b.IsBot()
	}
	if a.IsTop() || b.IsBot() || a == b {
		return true
	}
	if b.IsTop() {
		return false
	}
	return a.lo <= b.lo && a.hi >= b.hi && a.stride <= b.stride
}

// Overlaps reports whether a and b share at least one concrete value.
func Overlaps(a, b *SI) bool {
	if a.IsBot() || b.IsBot() {
		return false
	}
	return !(a.hi <= b.lo || b.hi <= a.lo)
}

// AddConst shifts every value of a by offset, collapsing to Top on
// 32-bit overflow.
func AddConst(a *SI, offset int64) *SI {
	if a.IsBot() || a.IsTop() {
		return a
	}
	lo, hi, off := lo32(a), hi32(a), int32(offset)
	if doesSumOverflow32(lo, off) || doesSumOverflow32(hi, off) {
		return Top()
	}
	sumLo, sumHi := lo+off, hi+off
	if sumLo == sumHi {
		return constStride(int64(sumLo), a.stride)
	}
	rlo, rhi := shrinkAlign32(sumLo, sumHi, stride32(a))
	return New(int64(rlo), int64(rhi), a.stride)
}

func constStride(v, stride int64) *SI {
	return New(v, v+stride, stride)
}

// Add is the binary sum of two strided intervals.
func Add(a, b *SI) *SI {
	if a.IsBot() {
		return b
	}
	if b.IsBot() {
		return a
	}
	lo, hi, s := lo32(a), hi32(a), stride32(a)
	blo, bhi, bs := lo32(b), hi32(b), stride32(b)
	if doesSumOverflow32(lo, blo) || doesSumOverflow32(hi-s, bhi-bs) {
		return Top()
	}
	sumLo := lo + blo
	sumHi := (hi - s) + (bhi - bs)
	if sumLo == sumHi {
		return constStride(int64(sumLo), maxInt(a.stride, b.stride))
	}
	stride := gcdSafe(a.stride, b.stride)
	if doesSumOverflow32(sumHi, int32(stride)) {
		return Top()
	}
	return New(int64(sumLo), int64(sumHi)+stride, stride)
}

// Sub is a + (-b).
func Sub(a, b *SI) *SI { return Add(a, Neg(b)) }

// Mul multiplies two strided intervals by enumerating corner products.
func Mul(a, b *SI) *SI {
	if a.IsBot() || b.IsBot() {
		return Bot()
	}
	if a.IsTop() || b.IsTop() {
		return Top()
	}
	op1 := [4]int32{lo32(a), lo32(a), hi32(a) - stride32(a), hi32(a) - stride32(a)}
	op2 := [4]int32{lo32(b), hi32(b) - stride32(b), lo32(b), hi32(b) - stride32(b)}
	minLo, maxHi := int32(1<<31-1), int32(-(1 << 31))
	for i := 0; i < 4; i++ {
		if doesMulOverflow32(op1[i], op2[i]) {
			return Top()
		}
		prod := op1[i] * op2[i]
		if prod < minLo {
			minLo = prod
		}
		if prod > maxHi {
			maxHi = prod
		}
	}
	if minLo == maxHi {
		return constStride(int64(minLo), maxInt(a.stride, b.stride))
	}
	stride := gcdSafe(a.stride, b.stride)
	if doesSumOverflow32(maxHi, int32(stride)) {
		return Top()
	}
	return New(int64(minLo), int64(maxHi)+stride, stride)
}

// Neg computes the strided interval of -a.
func Neg(a *SI) *SI {
	if a.IsBot() {
		return Bot()
	}
	lo, hi, s := lo32(a), hi32(a), stride32(a)
	if -hi+s == -lo {
		return constStride(int64(-lo), a.stride)
	}
	if lo != int32(Min) {
		return New(int64(-hi+s), int64(-lo+s), a.stride)
	}
	return Top()
}

// Or computes the join of a and b under bitwise OR, via Warren's
// minOR/maxOR sign-case analysis on the top bits above the common
// stride alignment.
func Or(a, b *SI) *SI {
	if a.IsBot() {
		return b
	}
	if b.IsBot() {
		return a
	}
	t := maxUint(tlz32(stride32(a)), tlz32(stride32(b)))
	s := uint32(1) << t
	mask := s - 1
	lo, hi, bs := lo32(a), hi32(a), stride32(a)
	blo, bhi, bbs := lo32(b), hi32(b), stride32(b)
	r := (uint32(lo) & mask) | (uint32(blo) & mask)

	av := uint32(lo) &^ mask
	bv := uint32(hi-bs) &^ mask
	cv := uint32(blo) &^ mask
	dv := uint32(bhi-bbs) &^ mask
	key := 0
	if int32(av) < 0 {
		key |= 8
	}
	if int32(bv) < 0 {
		key |= 4
	}
	if int32(cv) < 0 {
		key |= 2
	}
	if int32(dv) < 0 {
		key |= 1
	}

	var lb, ub uint32
	switch key {
	case 0x0, 0x3, 0xC, 0xF:
		lb = minOR32(av, bv, cv, dv)
		ub = maxOR32(av, bv, cv, dv)
	case 0xE:
		lb, ub = av, ^uint32(0)
	case 0xB:
		lb, ub = cv, ^uint32(0)
	case 0xA:
		lb = uint32(minInt(int64(int32(av)), int64(int32(cv))))
		ub = maxOR32(0, bv, 0, dv)
	case 0x8:
		lb = minOR32(av, ^uint32(0), cv, dv)
		ub = maxOR32(0, bv, cv, dv)
	case 0x2:
		lb = minOR32(av, bv, cv, ^uint32(0))
		ub = maxOR32(av, bv, 0, dv)
	default:
		return Top()
	}

	lbnd := int32((lb &^ mask) | r)
	ubnd := int32((ub &^ mask) | r)
	if lbnd == ubnd {
		return constStride(int64(lbnd), maxInt(a.stride, b.stride))
	}
	if doesSumOverflow32(ubnd, int32(s)) {
		return Top()
	}
	rlo, rhi := shrinkAlign32(lbnd, ubnd+int32(s), int32(s))
	return New(int64(rlo), int64(rhi), int64(s))
}

// Not computes the strided interval of ^a (bitwise complement).
func Not(a *SI) *SI {
	if a.IsBot() || a.IsTop() {
		return a
	}
	lo, hi, s := lo32(a), hi32(a), stride32(a)
	tmpHi := hi - s
	if lo == tmpHi {
		return constStride(int64(^lo), a.stride)
	}
	newLo := ^tmpHi
	stride := gcdSafe(int64(newLo), a.stride)
	if doesSumOverflow32(^lo, int32(stride)) {
		return Top()
	}
	rlo, rhi := shrinkAlign32(newLo, ^lo+int32(stride), int32(stride))
	return New(int64(rlo), int64(rhi), stride)
}

// And computes bitwise AND via De Morgan (~(~a | ~b)) except for the
// Top and all-constant fast paths.
func And(a, b *SI) *SI {
	if a.IsBot() || b.IsBot() {
		return Bot()
	}
	if a.IsTop() {
		return New(b.lo, b.hi, gcdSafe(a.stride, b.stride))
	}
	if b.IsTop() {
		return New(a.lo, a.hi, gcdSafe(a.stride, b.stride))
	}
	if a.IsConst() && b.IsConst() {
		return constStride(int64(lo32(a)&lo32(b)), maxInt(a.stride, b.stride))
	}
	return Not(Or(Not(a), Not(b)))
}

// Xor computes bitwise XOR as (a & ~b) | (~a & b).
func Xor(a, b *SI) *SI {
	if a.IsBot() {
		return b
	}
	if b.IsBot() {
		return a
	}
	if a.IsTop() || b.IsTop() {
		return Top()
	}
	if a.IsConst() && b.IsConst() {
		return constStride(int64(lo32(a)^lo32(b)), maxInt(a.stride, b.stride))
	}
	return Or(And(a, Not(b)), And(Not(a), b))
}

// cornerOp evaluates op over all four (lo,hi) corner combinations of a
// and b and folds the extremes, used by the division/modulo/shift
// family which all share this corner-enumeration shape.
func cornerOp(a, b *SI, op func(x, y int32) int32) (int64, int64) {
	op1 := [4]int32{lo32(a), lo32(a), hi32(a) - stride32(a), hi32(a) - stride32(a)}
	op2 := [4]int32{lo32(b), hi32(b) - stride32(b), lo32(b), hi32(b) - stride32(b)}
	minLo, maxHi := int64(Max), int64(Min)
	for i := 0; i < 4; i++ {
		v := int64(op(op1[i], op2[i]))
		minLo = minInt(minLo, v)
		maxHi = maxInt(maxHi, v)
	}
	return minLo, maxHi
}

func cornerOpUnsigned(a, b *SI, op func(x, y uint32) uint32) (int64, int64) {
	op1 := [4]uint32{uint32(lo32(a)), uint32(lo32(a)), uint32(hi32(a) - stride32(a)), uint32(hi32(a) - stride32(a))}
	op2 := [4]uint32{uint32(lo32(b)), uint32(hi32(b) - stride32(b)), uint32(lo32(b)), uint32(hi32(b) - stride32(b))}
	minLo, maxHi := uint32(1<<32-1), uint32(0)
	for i := 0; i < 4; i++ {
		v := op(op1[i], op2[i])
		if v < minLo {
			minLo = v
		}
		if v > maxHi {
			maxHi = v
		}
	}
	return int64(minLo), int64(maxHi)
}

// SDiv is signed interval division. A Top or zero-containing divisor
// collapses the result to Top rather than risking a division by zero.
func SDiv(a, b *SI) *SI {
	if a.IsTop() || b.IsBot() || b.ContainsZero() {
		return Top()
	}
	if a.IsBot() {
		return Bot()
	}
	overflow := false
	minLo, maxHi := cornerOp(a, b, func(x, y int32) int32 {
		if doesDivOverflow32(x, y) {
			overflow = true
			return 0
		}
		return x / y
	})
	if overflow {
		return Top()
	}
	return finishCornerResult(minLo, maxHi, a.stride, b.stride, true)
}

// UDiv is unsigned interval division.
func UDiv(a, b *SI) *SI {
	if a.IsTop() || b.IsBot() || b.ContainsZero() {
		return Top()
	}
	if a.IsBot() {
		return Bot()
	}
	minLo, maxHi := cornerOpUnsigned(a, b, func(x, y uint32) uint32 { return x / y })
	return finishCornerResult(minLo, maxHi, a.stride, b.stride, false)
}

// SMod is signed interval remainder.
func SMod(a, b *SI) *SI {
	if a.IsTop() || b.IsBot() || b.ContainsZero() {
		return Top()
	}
	if a.IsBot() {
		return Bot()
	}
	minLo, maxHi := cornerOp(a, b, func(x, y int32) int32 { return x % y })
	return finishCornerResult(minLo, maxHi, a.stride, b.stride, true)
}

// UMod is unsigned interval remainder.
func UMod(a, b *SI) *SI {
	if b.IsBot() || b.IsTop() || b.ContainsZero() {
		return Top()
	}
	if a.IsBot() {
		return Bot()
	}
	minLo, maxHi := cornerOpUnsigned(a, b, func(x, y uint32) uint32 { return x % y })
	return finishCornerResult(minLo, maxHi, a.stride, b.stride, false)
}

// Shl is interval left shift.
func Shl(a, b *SI) *SI {
	if b.IsBot() || b.IsTop() {
		return Top()
	}
	if a.IsBot() {
		return Bot()
	}
	minLo, maxHi := cornerOp(a, b, func(x, y int32) int32 { return x << uint32(y&31) })
	if minLo == maxHi {
		return constStride(minLo, maxInt(a.stride, b.stride))
	}
	stride := a.stride
	if doesSumOverflow32(int32(maxHi), int32(stride)) {
		return Top()
	}
	rlo, rhi := shrinkAlign32(int32(minLo), int32(maxHi)+int32(stride), int32(stride))
	return New(int64(rlo), int64(rhi), stride)
}

// Shr is interval logical (unsigned) right shift.
func Shr(a, b *SI) *SI {
	if a.IsBot() {
		return Bot()
	}
	if b.IsBot() || b.IsZero() {
		return a
	}
	if a.IsTop() || b.IsTop() {
		return Top()
	}
	minLo, maxHi := cornerOpUnsigned(a, b, func(x, y uint32) uint32 { return x >> (y & 31) })
	return finishCornerResult(minLo, maxHi, a.stride, b.stride, false)
}

// Sar is interval arithmetic (sign-extending) right shift.
func Sar(a, b *SI) *SI {
	if a.IsBot() {
		return Bot()
	}
	if b.IsBot() || b.IsZero() {
		return a
	}
	if a.IsTop() || b.IsTop() {
		return Top()
	}
	minLo, maxHi := cornerOp(a, b, func(x, y int32) int32 { return x >> uint32(y&31) })
	return finishCornerResult(minLo, maxHi, a.stride, b.stride, true)
}

// Lrotate and Rrotate give up precision entirely past the zero-shift
// fast path: propagating bounds through a rotation is not attempted by
// the reference domain either.
func Lrotate(a, b *SI) *SI { return rotate(a, b) }
func Rrotate(a, b *SI) *SI { return rotate(a, b) }

func rotate(a, b *SI) *SI {
	if a.IsBot() {
		return Bot()
	}
	if b.IsBot() || b.IsZero() {
		return a
	}
	return Top()
}

func finishCornerResult(minLo, maxHi, strideA, strideB int64, signed bool) *SI {
	if minLo == maxHi {
		return constStride(minLo, maxInt(strideA, strideB))
	}
	stride := gcdSafe(minLo, strideA)
	if !signed && minLo > maxHi {
		return Top()
	}
	if doesSumOverflow32(int32(maxHi), int32(stride)) {
		return Top()
	}
	rlo, rhi := shrinkAlign32(int32(minLo), int32(maxHi)+int32(stride), int32(stride))
	return New(int64(rlo), int64(rhi), stride)
}
