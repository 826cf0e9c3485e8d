package interval

// Tag marks which of the two input lists (or both) a Chunk came from.
type Tag uint8

const (
	First Tag = iota
	Second
	Both
)

// Chunk is one piece of the common refinement Split produces.
type Chunk struct {
	SI  *SI
	Tag Tag
}

func rem64(d, m int64) int64 {
	if m == 0 {
		return 0
	}
	r := d % m
	if r < 0 {
		r += m
	}
	return r
}

// inflateAlign64 pushes lo/hi out to the nearest multiple of s, the
// int64 analogue of inflateAlign32 used by region write/join/meet to
// realign misaligned split boundaries.
func inflateAlign64(lo, hi, s int64) (int64, int64) {
	if s == 1 {
		return lo, hi
	}
	lres := rem64(lo, s)
	hres := rem64(hi, s)
	if lres != 0 {
		lo = (lo / s) * s
		if lo <= 0 {
			lo -= s
		}
	}
	if hres != 0 {
		hi = (hi / s) * s
		if hi >= 0 {
			hi += s
		}
	}
	if lres > hres {
		return Min, Max
	}
	return lo, hi
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Split decomposes two ordered, pairwise non-overlapping lists of
// intervals (a and b, each sorted by Lo) into their common
// refinement: a list of non-overlapping chunks, each tagged First
// (covered only by a), Second (covered only by b), or Both (covered
// by a piece of each), such that the union of chunks covers exactly
// the union of the two inputs and no chunk straddles an input
// boundary from either list.
//
// This is the machinery region write/join/meet/widen use to combine
// two interval-keyed maps whose entries don't line up one-to-one.
func Split(a, b []*SI) []Chunk {
	var out []Chunk
	if len(a) == 0 {
		for _, bi := range b {
			out = append(out, Chunk{SI: bi, Tag: Second})
		}
		return out
	}
	if len(b) == 0 {
		for _, ai := range a {
			out = append(out, Chunk{SI: ai, Tag: First})
		}
		return out
	}

	ai, bi := 0, 0
	lowA, lowB := a[ai].Lo(), b[bi].Lo()

	for ai < len(a) && bi < len(b) {
		curA, curB := a[ai], b[bi]
		strideA, strideB := curA.Stride(), curB.Stride()
		strideAB := gcdSafe(strideA, strideB)
		alignedA := rem64(lowA, strideA) == 0
		alignedB := rem64(lowB, strideB) == 0
		alignedAB := strideA == strideB

		switch {
		case lowA == lowB:
			minHi := min64(curA.Hi(), curB.Hi())
			strd := strideAB
			if alignedAB && strideA > strideB {
				if rem64(lowA, strideA) == 0 && rem64(minHi, strideA) == 0 {
					strd = strideA
				}
			} else if alignedAB && strideA < strideB {
				if rem64(lowA, strideB) == 0 && rem64(minHi, strideB) == 0 {
					strd = strideB
				}
			}
			out = append(out, Chunk{SI: New(lowA, minHi, strd), Tag: Both})
			lowA, lowB = minHi, minHi

		case lowA < lowB:
			if !alignedA {
				_, hiBound := inflateAlign64(lowA, lowA, strideA)
				hi := min64(hiBound, lowB)
				st := gcdSafe(lowA, gcdSafe(strideA, hi))
				out = append(out, Chunk{SI: New(lowA, hi, st), Tag: First})
				lowA = hi
			} else if curA.Hi() <= curB.Lo() {
				out = append(out, Chunk{SI: New(lowA, curA.Hi(), strideA), Tag: First})
				lowA = curA.Hi()
			} else {
				loBound, _ := inflateAlign64(lowB, lowB, strideA)
				hi := min64(loBound, curA.Hi())
				if hi <= lowA {
					hi = lowB
				}
				st := gcdSafe(lowA, gcdSafe(strideA, hi))
				out = append(out, Chunk{SI: New(lowA, hi, st), Tag: First})
				lowA = hi
			}

		default: // lowB < lowA
			if !alignedB {
				_, hiBound := inflateAlign64(lowB, lowB, strideB)
				hi := min64(hiBound, lowA)
				st := gcdSafe(lowB, gcdSafe(strideB, hi))
				out = append(out, Chunk{SI: New(lowB, hi, st), Tag: Second})
				lowB = hi
			} else if curB.Hi() <= curA.Lo() {
				out = append(out, Chunk{SI: New(lowB, curB.Hi(), strideB), Tag: Second})
				lowB = curB.Hi()
			} else {
				loBound, _ := inflateAlign64(lowA, lowA, strideB)
				hi := min64(loBound, curB.Hi())
				if hi <= lowB {
					hi = lowA
				}
				st := gcdSafe(lowB, gcdSafe(strideB, hi))
				out = append(out, Chunk{SI: New(lowB, hi, st), Tag: Second})
				lowB = hi
			}
		}

		if lowA == curA.Hi() {
			if ai++; ai < len(a) {
				lowA = a[ai].Lo()
			}
		}
		if lowB == curB.Hi() {
			if bi++; bi < len(b) {
				lowB = b[bi].Lo()
			}
		}
	}

	for ai < len(a) {
		i := a[ai]
		stride := i.Stride()
		g := gcdSafe(stride, lowA)
		if stride == g {
			out = append(out, Chunk{SI: New(lowA, i.Hi(), stride), Tag: First})
			lowA = i.Hi()
		} else {
			_, hiBound := inflateAlign64(lowA, lowA, stride)
			hi := min64(i.Hi(), hiBound)
			if hi <= lowA {
				hi = i.Hi()
			}
			st := gcdSafe(lowA, gcdSafe(stride, hi))
			out = append(out, Chunk{SI: New(lowA, hi, st), Tag: First})
			lowA = hi
		}
		if lowA == i.Hi() {
			ai++
		}
	}

	for bi < len(b) {
		i := b[bi]
		stride := i.Stride()
		g := gcdSafe(stride, lowB)
		if stride == g {
			out = append(out, Chunk{SI: New(lowB, i.Hi(), stride), Tag: Second})
			lowB = i.Hi()
		} else {
			_, hiBound := inflateAlign64(lowB, lowB, stride)
			hi := min64(i.Hi(), hiBound)
			if hi <= lowB {
				hi = i.Hi()
			}
			st := gcdSafe(lowB, gcdSafe(stride, hi))
			out = append(out, Chunk{SI: New(lowB, hi, st), Tag: Second})
			lowB = hi
		}
		if lowB == i.Hi() {
			bi++
		}
	}

	return out
}
