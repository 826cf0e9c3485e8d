package interp

import (
	"testing"
	"time"

	"github.com/sarchlab/vsax86/absstate"
	"github.com/sarchlab/vsax86/ir"
	"github.com/sarchlab/vsax86/valueset"
)

type fakeLoader struct {
	funcs   map[ir.Addr]*ir.Function
	symbols map[ir.Addr]string
	entry   ir.Addr
}

func (f *fakeLoader) Function(entry ir.Addr) (*ir.Function, bool) {
	fn, ok := f.funcs[entry]
	return fn, ok
}

func (f *fakeLoader) SymbolName(addr ir.Addr) (string, bool) {
	name, ok := f.symbols[addr]
	return name, ok
}

func (f *fakeLoader) ReadByte(addr int64) (byte, bool) { return 0, false }

func (f *fakeLoader) EntryPoint() ir.Addr { return f.entry }

func regTemp(name string) ir.Temp { return ir.Temp{Name: name, Width: 4} }

func constExpr(v int64) ir.Const { return ir.Const{Value: v, Width: 4} }

func readReg(t *testing.T, s absstate.State, name string) valueset.VS {
	t.Helper()
	reg, ok := absstate.LookupRegister(name)
	if !ok {
		t.Fatalf("unknown register %q", name)
	}
	return s.Read(absstate.RegisterRegionID, reg.AddrSI(), nil, nil)
}

func TestStraightLineMoveAndAdd(t *testing.T) {
	instrs := []ir.Instr{
		{Addr: 0x1000, Stmt: ir.Move{Dst: regTemp("EAX"), Src: constExpr(1)}},
		{Addr: 0x1004, Stmt: ir.Move{Dst: regTemp("EAX"), Src: ir.Binop{Op: ir.Add, Left: regTemp("EAX"), Right: constExpr(2)}}},
		{Addr: 0x1008, Stmt: ir.Return{}},
	}
	fn := ir.BuildFunction(0x1000, instrs)
	loader := &fakeLoader{funcs: map[ir.Addr]*ir.Function{0x1000: fn}, entry: 0x1000}

	it := NewBuilder().WithLoader(loader).Build()
	final := it.Run(0x1000, 0x7000, 1, 0x8000, 0)

	v := readReg(t, final, "EAX")
	si, ok := v.Lookup(valueset.GlobalRegion)
	if !ok {
		t.Fatalf("EAX has no global-region entry: %v", v)
	}
	got, ok := si.ConstValue()
	if !ok || got != 3 {
		t.Fatalf("EAX = %v; want constant 3", si)
	}
	if it.Warnings().Len() != 0 {
		t.Fatalf("expected no warnings, got %d", it.Warnings().Len())
	}
}

func TestLoopStabilizesWithoutPanicking(t *testing.T) {
	instrs := []ir.Instr{
		{Addr: 0x2000, Stmt: ir.Move{Dst: regTemp("EAX"), Src: constExpr(0)}},
		{Addr: 0x2004, Stmt: ir.CJmp{
			Cond:        ir.Binop{Op: ir.SLt, Left: regTemp("EAX"), Right: constExpr(5)},
			TargetTrue:  0x2008,
			TargetFalse: 0x2020,
		}},
		{Addr: 0x2008, Stmt: ir.Move{Dst: regTemp("EAX"), Src: ir.Binop{Op: ir.Add, Left: regTemp("EAX"), Right: constExpr(1)}}},
		{Addr: 0x200c, Stmt: ir.Jmp{Target: 0x2004}},
		{Addr: 0x2020, Stmt: ir.Return{}},
	}
	fn := ir.BuildFunction(0x2000, instrs)
	loader := &fakeLoader{funcs: map[ir.Addr]*ir.Function{0x2000: fn}, entry: 0x2000}

	it := NewBuilder().WithLoader(loader).Build()
	final := it.Run(0x2000, 0x7000, 1, 0x8000, 0)

	v := readReg(t, final, "EAX")
	if v.IsBot() {
		t.Fatalf("EAX should not be Bot after the loop stabilizes")
	}
}

func TestCallToAllocatorYieldsHeapPointer(t *testing.T) {
	callerInstrs := []ir.Instr{
		{Addr: 0x3000, Stmt: ir.Call{TargetIsDirect: true, DirectAddr: 0x9000, Result: "EAX"}},
		{Addr: 0x3004, Stmt: ir.Return{}},
	}
	fn := ir.BuildFunction(0x3000, callerInstrs)
	loader := &fakeLoader{
		funcs:   map[ir.Addr]*ir.Function{0x3000: fn},
		symbols: map[ir.Addr]string{0x9000: "malloc"},
		entry:   0x3000,
	}

	it := NewBuilder().WithLoader(loader).Build()
	final := it.Run(0x3000, 0x7000, 1, 0x8000, 0)

	v := readReg(t, final, "EAX")
	if v.IsTop() || v.IsBot() {
		t.Fatalf("expected a heap pointer value-set, got %v", v)
	}
	entries := v.Entries()
	if len(entries) != 1 || entries[0].Region == valueset.GlobalRegion {
		t.Fatalf("expected a single non-global region entry, got %v", entries)
	}
}

// TestLoopContainingAllocatorCallStillReachesFixpoint guards against a
// loop with a malloc call never stabilizing: if every visit to the
// call site minted a brand-new heap region id, the widened state would
// grow by one region every iteration and visitComponent's subsumes
// check would never succeed. Run is called on a goroutine so a
// regression hangs the test instead of the whole suite.
func TestLoopContainingAllocatorCallStillReachesFixpoint(t *testing.T) {
	instrs := []ir.Instr{
		{Addr: 0x5000, Stmt: ir.Move{Dst: regTemp("EBX"), Src: constExpr(0)}},
		{Addr: 0x5004, Stmt: ir.CJmp{
			Cond:        ir.Binop{Op: ir.SLt, Left: regTemp("EBX"), Right: constExpr(5)},
			TargetTrue:  0x5008,
			TargetFalse: 0x5020,
		}},
		{Addr: 0x5008, Stmt: ir.Call{TargetIsDirect: true, DirectAddr: 0x9100, Result: "EAX"}},
		{Addr: 0x500c, Stmt: ir.Move{Dst: regTemp("EBX"), Src: ir.Binop{Op: ir.Add, Left: regTemp("EBX"), Right: constExpr(1)}}},
		{Addr: 0x5010, Stmt: ir.Jmp{Target: 0x5004}},
		{Addr: 0x5020, Stmt: ir.Return{}},
	}
	fn := ir.BuildFunction(0x5000, instrs)
	loader := &fakeLoader{
		funcs:   map[ir.Addr]*ir.Function{0x5000: fn},
		symbols: map[ir.Addr]string{0x9100: "malloc"},
		entry:   0x5000,
	}

	it := NewBuilder().WithLoader(loader).Build()
	done := make(chan absstate.State, 1)
	go func() { done <- it.Run(0x5000, 0x7000, 1, 0x8000, 0) }()

	select {
	case final := <-done:
		v := readReg(t, final, "EAX")
		if v.IsTop() || v.IsBot() {
			t.Fatalf("expected a heap pointer value-set, got %v", v)
		}
		entries := v.Entries()
		if len(entries) != 1 || entries[0].Region == valueset.GlobalRegion {
			t.Fatalf("expected a single non-global region entry, got %v", entries)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("interpreter never reached a fixpoint: malloc inside a loop should reuse one heap region id across iterations, not mint a new one every time")
	}
}

func TestRecursiveCallIsSkippedWithWarning(t *testing.T) {
	instrs := []ir.Instr{
		{Addr: 0x4000, Stmt: ir.Call{TargetIsDirect: true, DirectAddr: 0x4000}},
		{Addr: 0x4004, Stmt: ir.Return{}},
	}
	fn := ir.BuildFunction(0x4000, instrs)
	loader := &fakeLoader{funcs: map[ir.Addr]*ir.Function{0x4000: fn}, entry: 0x4000}

	it := NewBuilder().WithLoader(loader).Build()
	_ = it.Run(0x4000, 0x7000, 1, 0x8000, 0)

	if it.Warnings().Len() == 0 {
		t.Fatalf("expected a recursive-call-skipped warning")
	}
}

func TestUnresolvedIndirectCallWarns(t *testing.T) {
	instrs := []ir.Instr{
		{Addr: 0x5000, Stmt: ir.Special{Name: "cpuid"}},
		{Addr: 0x5004, Stmt: ir.Call{Target: regTemp("EAX"), Result: "EAX"}},
		{Addr: 0x5008, Stmt: ir.Return{}},
	}
	fn := ir.BuildFunction(0x5000, instrs)
	loader := &fakeLoader{funcs: map[ir.Addr]*ir.Function{0x5000: fn}, entry: 0x5000}

	it := NewBuilder().WithLoader(loader).Build()
	final := it.Run(0x5000, 0x7000, 1, 0x8000, 0)

	if it.Warnings().Len() == 0 {
		t.Fatalf("expected an unresolved-indirect-call warning")
	}
	v := readReg(t, final, "EAX")
	if !v.IsTop() {
		t.Fatalf("expected EAX to be approximated as Top, got %v", v)
	}
}
