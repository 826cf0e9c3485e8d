package ir

import "testing"

func TestBuildFunctionSplitsAtJumpTargets(t *testing.T) {
	instrs := []Instr{
		{Addr: 0, Stmt: Move{Dst: Temp{Name: "T1"}, Src: Const{Value: 1}}},
		{Addr: 4, Stmt: CJmp{Cond: Temp{Name: "cc"}, TargetTrue: 12, TargetFalse: 8}},
		{Addr: 8, Stmt: Jmp{Target: 16}},
		{Addr: 12, Stmt: Jmp{Target: 16}},
		{Addr: 16, Stmt: Return{}},
	}
	fn := BuildFunction(0, instrs)
	if len(fn.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d: %#v", len(fn.Blocks), fn.Order)
	}
	entry := fn.Blocks[0]
	if len(entry.Succs) != 2 {
		t.Fatalf("entry block should have 2 successors (cjmp targets), got %v", entry.Succs)
	}
	exit := fn.Blocks[16]
	if len(exit.Succs) != 0 {
		t.Fatalf("exit block (return) should have no successors, got %v", exit.Succs)
	}
}

func TestBuildFunctionRemovesSelfLoop(t *testing.T) {
	instrs := []Instr{
		{Addr: 0, Stmt: CJmp{Cond: Temp{Name: "cc"}, TargetTrue: 0, TargetFalse: 4}},
		{Addr: 4, Stmt: Return{}},
	}
	fn := BuildFunction(0, instrs)
	entry := fn.Blocks[0]
	for _, s := range entry.Succs {
		if s == 0 {
			t.Fatalf("entry block should not be its own successor after self-loop removal, got succs %v", entry.Succs)
		}
	}
	found := false
	for _, addr := range fn.Order {
		if addr < 0 {
			found = true
			if fn.Blocks[addr].Succs[0] != 0 {
				t.Fatalf("dummy predecessor should point back to block 0")
			}
		}
	}
	if !found {
		t.Fatalf("expected a synthesized dummy predecessor block for the self-loop")
	}
}
