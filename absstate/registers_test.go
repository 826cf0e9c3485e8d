package absstate

import "testing"

func TestLookupRegisterResolvesSubRegisterAlias(t *testing.T) {
	al, ok := LookupRegister("AL")
	if !ok {
		t.Fatalf("AL should resolve")
	}
	if al.Offset != OffsetEAX || al.Width != 1 {
		t.Fatalf("AL = %+v, want offset %d width 1", al, OffsetEAX)
	}
	ah, _ := LookupRegister("AH")
	if ah.Offset != OffsetEAX+1 {
		t.Fatalf("AH offset = %d, want %d", ah.Offset, OffsetEAX+1)
	}
}

func TestLookupRegisterUnknownNameFails(t *testing.T) {
	if _, ok := LookupRegister("NOTAREG"); ok {
		t.Fatalf("unknown register name should not resolve")
	}
}
