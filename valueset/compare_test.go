package valueset

import (
	"testing"

	"github.com/sarchlab/vsax86/interval"
)

func mustConst(t *testing.T, vs VS, want int64) {
	t.Helper()
	v, ok := vs.Lookup(GlobalRegion)
	if !ok {
		t.Fatalf("expected a global-region constant, got %v", vs)
	}
	iv, ok := v.ConstValue()
	if !ok || iv != want {
		t.Fatalf("expected constant %d, got %v", want, v)
	}
}

func TestSLtOnDisjointConstantsIsDecidable(t *testing.T) {
	mustConst(t, SLt(Const(3), Const(5)), 1)
	mustConst(t, SLt(Const(5), Const(3)), 0)
}

func TestEqOnSameConstantIsTrue(t *testing.T) {
	mustConst(t, Eq(Const(7), Const(7)), 1)
	mustConst(t, Neq(Const(7), Const(7)), 0)
}

func TestSLtOnOverlappingRangesIsMaybe(t *testing.T) {
	got := SLt(FromRegionSI(GlobalRegion, interval.New(0, 10, 1)), FromRegionSI(GlobalRegion, interval.New(5, 15, 1)))
	v, _ := got.Lookup(GlobalRegion)
	if v.IsConst() {
		t.Fatalf("expected the maybe Boolean-VS, got decided constant %v", v)
	}
}

func TestCompareAcrossIncomparableRegionsIsMaybe(t *testing.T) {
	a := FromRegionSI(1, interval.New(0, 4, 1))
	b := FromRegionSI(2, interval.New(0, 4, 1))
	got := Eq(a, b)
	v, _ := got.Lookup(GlobalRegion)
	if v.IsConst() {
		t.Fatalf("expected maybe for incomparable regions, got %v", v)
	}
}

func TestCompareWithBotIsBot(t *testing.T) {
	if !SLt(Bot(), Const(1)).IsBot() {
		t.Fatalf("comparison with Bot should be Bot")
	}
}
