package warning

import (
	"testing"

	"github.com/sarchlab/vsax86/interval"
)

func TestWarnAccumulatesWithCurrentAddr(t *testing.T) {
	s := NewSet()
	s.CurrentAddr = 0x400
	s.Warn(string(OutOfBoundsRead), interval.New(0, 4, 4), "read past region size")

	all := s.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(all))
	}
	if all[0].Kind != OutOfBoundsRead || all[0].At != 0x400 {
		t.Fatalf("unexpected warning: %+v", all[0])
	}
}

func TestEmitWithoutAddress(t *testing.T) {
	s := NewSet()
	s.Emit(RecursiveCallSkipped, "f recurses into itself")
	if s.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", s.Len())
	}
}

func TestAllIsSortedByAddressThenKind(t *testing.T) {
	s := NewSet()
	s.CurrentAddr = 20
	s.Emit(NullDeref, "")
	s.CurrentAddr = 10
	s.Emit(MisalignedRead, "")

	all := s.All()
	if all[0].At != 10 || all[1].At != 20 {
		t.Fatalf("expected ascending address order, got %+v", all)
	}
}
