package ir

import "sort"

// BuildFunction assembles a Function's basic-block graph from a flat,
// address-ordered instruction stream: it splits at jump targets and
// at any Jmp/CJmp/Return, wires Succs/Preds from the terminating
// statement of each block, and removes self-loops by routing each one
// through an empty dummy block, so that every back edge
// a caller observes targets a block distinct from its source — the
// precondition spec.md's widening rule assumes ("back-edge ≡ SCC-entry
// with loop" only holds cleanly once self-loops are gone).
func BuildFunction(entry Addr, instrs []Instr) *Function {
	sort.Slice(instrs, func(i, j int) bool { return instrs[i].Addr < instrs[j].Addr })

	leaders := map[Addr]bool{entry: true}
	for i, in := range instrs {
		switch s := in.Stmt.(type) {
		case Jmp:
			leaders[s.Target] = true
			if i+1 < len(instrs) {
				leaders[instrs[i+1].Addr] = true
			}
		case CJmp:
			leaders[s.TargetTrue] = true
			leaders[s.TargetFalse] = true
			if i+1 < len(instrs) {
				leaders[instrs[i+1].Addr] = true
			}
		case Return:
			if i+1 < len(instrs) {
				leaders[instrs[i+1].Addr] = true
			}
		case Label:
			leaders[s.Addr] = true
		}
	}

	fn := &Function{Entry: entry, Blocks: map[Addr]*BasicBlock{}}
	var cur *BasicBlock
	for _, in := range instrs {
		if leaders[in.Addr] || cur == nil {
			cur = &BasicBlock{Addr: in.Addr}
			fn.Blocks[in.Addr] = cur
			fn.Order = append(fn.Order, in.Addr)
		}
		cur.Instrs = append(cur.Instrs, in)
	}

	for _, addr := range fn.Order {
		bb := fn.Blocks[addr]
		if len(bb.Instrs) == 0 {
			continue
		}
		last := bb.Instrs[len(bb.Instrs)-1]
		switch s := last.Stmt.(type) {
		case Jmp:
			bb.Succs = append(bb.Succs, s.Target)
		case CJmp:
			bb.Succs = append(bb.Succs, s.TargetTrue, s.TargetFalse)
		case Return:
			// no successors: function exit
		default:
			if next, ok := fallThrough(fn, addr); ok {
				bb.Succs = append(bb.Succs, next)
			}
		}
	}
	linkPreds(fn)
	removeSelfLoops(fn)
	return fn
}

func fallThrough(fn *Function, addr Addr) (Addr, bool) {
	for i, a := range fn.Order {
		if a == addr {
			if i+1 < len(fn.Order) {
				return fn.Order[i+1], true
			}
			return 0, false
		}
	}
	return 0, false
}

func linkPreds(fn *Function) {
	for _, bb := range fn.Blocks {
		bb.Preds = nil
	}
	for _, addr := range fn.Order {
		bb := fn.Blocks[addr]
		for _, s := range bb.Succs {
			if succ, ok := fn.Blocks[s]; ok {
				succ.Preds = append(succ.Preds, addr)
			}
		}
	}
}

// removeSelfLoops rewrites every edge bb->bb into bb->dummy->bb, where
// dummy is a freshly synthesized empty block, so no block is its own
// successor.
func removeSelfLoops(fn *Function) {
	nextDummy := Addr(-1)
	for _, addr := range append([]Addr(nil), fn.Order...) {
		bb := fn.Blocks[addr]
		for i, s := range bb.Succs {
			if s != addr {
				continue
			}
			dummyAddr := nextDummy
			nextDummy--
			dummy := &BasicBlock{Addr: dummyAddr, Succs: []Addr{addr}}
			fn.Blocks[dummyAddr] = dummy
			fn.Order = append(fn.Order, dummyAddr)
			bb.Succs[i] = dummyAddr
		}
	}
	linkPreds(fn)
}
