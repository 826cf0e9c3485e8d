package warning

import "github.com/sarchlab/vsax86/ir"

// DefUse is the per-instruction def/use summary a backward slice
// walks, grounded on original_source/dataflow.cc's reaching-definition
// computation: each instruction defines zero or one name (a register
// or temporary) and uses zero or more names.
type DefUse struct {
	Addr ir.Addr
	Def  string
	Uses []string
}

// Slice computes a best-effort backward slice for a warning firing at
// target: starting from target's uses, walk backward through instrs
// (assumed in the single function/context's execution order reaching
// target) collecting the address of the most recent definition of
// each name still wanted, then adding that definition's own uses to
// the work set. This mirrors dataflow.cc's def-use chain walk but
// stops at the function boundary — no interprocedural slicing is
// attempted, matching SPEC_FULL.md's supplemented-feature scope.
func Slice(instrs []DefUse, target ir.Addr) []int64 {
	byAddr := make(map[ir.Addr]DefUse, len(instrs))
	order := make([]ir.Addr, 0, len(instrs))
	for _, du := range instrs {
		byAddr[du.Addr] = du
		order = append(order, du.Addr)
	}

	targetIdx := -1
	for i, a := range order {
		if a == target {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		return nil
	}

	wanted := map[string]bool{}
	for _, u := range byAddr[target].Uses {
		wanted[u] = true
	}

	seen := map[ir.Addr]bool{}
	var out []int64
	for i := targetIdx - 1; i >= 0 && len(wanted) > 0; i-- {
		du := byAddr[order[i]]
		if du.Def == "" || !wanted[du.Def] {
			continue
		}
		delete(wanted, du.Def)
		if !seen[du.Addr] {
			seen[du.Addr] = true
			out = append(out, int64(du.Addr))
		}
		for _, u := range du.Uses {
			wanted[u] = true
		}
	}
	return out
}
