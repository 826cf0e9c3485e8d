package interval

// CastWidth restricts a value to what width bytes can hold: signed
// sign-extends/truncates to width's signed range, unsigned to width's
// unsigned range. When si already fits the target range the cast is
// exact (identity); otherwise the result conservatively widens to the
// full target range, since a strided interval can't represent "the
// low/high bits of every element of si" precisely in general.
func CastWidth(si *SI, width int, signed bool) *SI {
	if si.IsBot() {
		return si
	}
	if signed {
		lo, hi := signedRange(width)
		if !si.IsTop() && si.lo >= lo && si.hi-1 <= hi {
			return si
		}
		return New(lo, hi+1, 1)
	}
	lo, hi := int64(0), unsignedMax(width)
	if !si.IsTop() && si.lo >= lo && si.hi-1 <= hi {
		return si
	}
	return New(lo, hi+1, 1)
}

// CastHigh approximates extracting the high width bytes of a wider
// value: since the shift amount needed depends on the source's full
// width (which this domain doesn't track separately from the
// concrete-value bounds), the result is the full unsigned range width
// bytes can hold.
func CastHigh(si *SI, width int) *SI {
	if si.IsBot() {
		return si
	}
	return New(0, unsignedMax(width)+1, 1)
}

func signedRange(width int) (int64, int64) {
	bits := uint(width * 8)
	if bits >= 32 {
		return Min, Max
	}
	half := int64(1) << (bits - 1)
	return -half, half - 1
}

func unsignedMax(width int) int64 {
	bits := uint(width * 8)
	if bits >= 32 {
		return 1<<32 - 1
	}
	return int64(1)<<bits - 1
}
