package interval

import "testing"

func TestConstAndTopBot(t *testing.T) {
	c := Const(5)
	if !c.IsConst() {
		t.Fatalf("Const(5) is not constant")
	}
	v, ok := c.ConstValue()
	if !ok || v != 5 {
		t.Fatalf("ConstValue() = %d, %v; want 5, true", v, ok)
	}
	if !Top().IsTop() || !Bot().IsBot() {
		t.Fatalf("Top/Bot sentinels misclassified")
	}
}

func TestJoinOfTwoConstantsUsesGcdOfStrides(t *testing.T) {
	a := Const(4)
	b := Const(12)
	j := Join(a, b)
	if j.Stride() != 1 || j.Lo() != 4 || j.Hi() != 13 {
		t.Fatalf("Join(4,12) = %v, want stride 1 over [4,13)", j)
	}
	if !j.Contains(4) || !j.Contains(12) || !j.Contains(8) {
		t.Fatalf("Join(4,12) has wrong membership: %v", j)
	}
}

func TestMeetOfDisjointIsBot(t *testing.T) {
	a := New(0, 10, 1)
	b := New(20, 30, 1)
	if !Meet(a, b).IsBot() {
		t.Fatalf("Meet of disjoint intervals is not Bot")
	}
}

func TestMeetOfOverlapping(t *testing.T) {
	a := New(0, 20, 1)
	b := New(10, 30, 1)
	m := Meet(a, b)
	if m.Lo() != 10 || m.Hi() != 20 {
		t.Fatalf("Meet([0,20),[10,30)) = %v, want [10,20)", m)
	}
}

func TestWidenGrowsToTopOnBothBoundsEscaping(t *testing.T) {
	a := New(0, 10, 1)
	b := New(-5, 20, 1)
	if !Widen(a, b).IsTop() {
		t.Fatalf("Widen should collapse to Top once bounds grow")
	}
}

func TestWidenStableFixpointReturnsSameInterval(t *testing.T) {
	a := New(0, 10, 1)
	if w := Widen(a, a); w != a {
		t.Fatalf("Widen(a,a) = %v, want the same pointer", w)
	}
}

func TestAddConstOverflowCollapsesToTop(t *testing.T) {
	near := New(Max-2, Max, 1)
	if r := AddConst(near, 10); !r.IsTop() {
		t.Fatalf("AddConst overflow did not collapse to Top: %v", r)
	}
}

func TestAddConstInBounds(t *testing.T) {
	a := New(0, 8, 4)
	r := AddConst(a, 4)
	if r.Lo() != 4 || r.Hi() != 12 || r.Stride() != 4 {
		t.Fatalf("AddConst(0[0,8),4) = %v, want 4[4,12)", r)
	}
}

func TestAddOfTwoIntervals(t *testing.T) {
	a := New(0, 8, 4) // {0,4}
	b := New(0, 4, 2) // {0,2}
	r := Add(a, b)
	for _, v := range []int64{0, 2, 4, 6} {
		if !r.Contains(v) {
			t.Fatalf("Add result %v missing expected value %d", r, v)
		}
	}
}

func TestMulConstants(t *testing.T) {
	a := Const(3)
	b := Const(4)
	r := Mul(a, b)
	v, ok := r.ConstValue()
	if !ok || v != 12 {
		t.Fatalf("Mul(3,4) = %v, want 12", r)
	}
}

func TestNegConstant(t *testing.T) {
	a := Const(5)
	r := Neg(a)
	v, _ := r.ConstValue()
	if v != -5 {
		t.Fatalf("Neg(5) = %v, want -5", r)
	}
}

func TestNotConstant(t *testing.T) {
	a := Const(0)
	r := Not(a)
	v, _ := r.ConstValue()
	if v != -1 {
		t.Fatalf("Not(0) = %v, want -1", r)
	}
}

func TestAndOfConstants(t *testing.T) {
	a := Const(0b1100)
	b := Const(0b1010)
	r := And(a, b)
	v, _ := r.ConstValue()
	if v != 0b1000 {
		t.Fatalf("And(0b1100,0b1010) = %v, want 8", r)
	}
}

func TestXorOfConstants(t *testing.T) {
	a := Const(0b1100)
	b := Const(0b1010)
	r := Xor(a, b)
	v, _ := r.ConstValue()
	if v != 0b0110 {
		t.Fatalf("Xor(0b1100,0b1010) = %v, want 6", r)
	}
}

func TestSDivByZeroContainingDivisorIsTop(t *testing.T) {
	a := New(0, 100, 1)
	b := New(-1, 2, 1) // contains zero
	if !SDiv(a, b).IsTop() {
		t.Fatalf("SDiv by a zero-containing interval should be Top")
	}
}

func TestSDivConstants(t *testing.T) {
	a := Const(20)
	b := Const(4)
	r := SDiv(a, b)
	v, ok := r.ConstValue()
	if !ok || v != 5 {
		t.Fatalf("SDiv(20,4) = %v, want 5", r)
	}
}

func TestShrByBotIsIdentity(t *testing.T) {
	a := Const(3)
	if r := Shr(a, Bot()); r != a {
		t.Fatalf("Shr(a, Bot) should be identity on a")
	}
}

func TestShlConstants(t *testing.T) {
	a := Const(1)
	b := Const(4)
	r := Shl(a, b)
	v, ok := r.ConstValue()
	if !ok || v != 16 {
		t.Fatalf("Shl(1,4) = %v, want 16", r)
	}
}

func TestSubsumesReflexiveAndTransitive(t *testing.T) {
	wide := New(0, 100, 1)
	narrow := New(10, 20, 1)
	if !Subsumes(wide, narrow) {
		t.Fatalf("wide interval should subsume narrow")
	}
	if Subsumes(narrow, wide) {
		t.Fatalf("narrow interval should not subsume wide")
	}
	if !Subsumes(wide, wide) {
		t.Fatalf("Subsumes should be reflexive")
	}
}

func TestOverlaps(t *testing.T) {
	a := New(0, 10, 1)
	b := New(9, 20, 1)
	c := New(10, 20, 1)
	if !Overlaps(a, b) {
		t.Fatalf("[0,10) and [9,20) should overlap")
	}
	if Overlaps(a, c) {
		t.Fatalf("[0,10) and [10,20) should not overlap (hi exclusive)")
	}
}

func TestContainsZero(t *testing.T) {
	a := New(-4, 4, 2)
	if !a.ContainsZero() {
		t.Fatalf("2[-4,4) should contain zero")
	}
	b := New(1, 8, 1)
	if b.ContainsZero() {
		t.Fatalf("[1,8) should not contain zero")
	}
}

func TestLrotateByZeroIsIdentity(t *testing.T) {
	a := Const(7)
	if r := Lrotate(a, Const(0)); r != a {
		t.Fatalf("Lrotate by 0 should be identity")
	}
}

func TestLrotateByNonzeroLosesPrecision(t *testing.T) {
	a := Const(7)
	if !Lrotate(a, Const(3)).IsTop() {
		t.Fatalf("Lrotate by a nonzero constant should give up to Top")
	}
}
