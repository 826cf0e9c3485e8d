package interp

import (
	"fmt"

	"github.com/sarchlab/vsax86/absstate"
	"github.com/sarchlab/vsax86/interval"
	"github.com/sarchlab/vsax86/ir"
	"github.com/sarchlab/vsax86/valueset"
	"github.com/sarchlab/vsax86/warning"
)

// evalCall resolves a call's target (direct, or indirect through a
// computed value-set that happens to be a single constant), dispatches
// to library-call handling when the target resolves to an imported
// symbol, and otherwise recurses into the callee's own fixpoint under
// an extended context.
func (r *funcRun) evalCall(st ir.Call, frame Frame) Frame {
	target, ok := r.resolveCallTarget(st, frame)
	if !ok {
		r.it.warnings.Emit(warning.UnresolvedIndirectCall, "indirect call target did not resolve to a single address")
		return r.assignCallResult(st, valueset.Top(), frame)
	}

	if name, ok := r.it.loader.SymbolName(target); ok {
		return r.evalLibraryCall(st, name, frame)
	}

	if r.it.cfg.Intraproc {
		return r.assignCallResult(st, valueset.Top(), frame)
	}

	childCtx := r.ctx.Extend(r.it.cfg.ContextMode, r.it.cfg.K, target)
	espBoundary, haveBoundary := r.currentStackPointer(frame)

	out := r.it.runFunction(childCtx, target, frame)
	if haveBoundary {
		out.State = out.State.DiscardFramesAbove(espBoundary)
	}
	return out
}

func (r *funcRun) resolveCallTarget(st ir.Call, frame Frame) (ir.Addr, bool) {
	if st.TargetIsDirect {
		return st.DirectAddr, true
	}
	targetVS := r.evalExpr(st.Target, frame)
	entries := targetVS.Entries()
	if len(entries) != 1 {
		return 0, false
	}
	v, ok := entries[0].SI.ConstValue()
	if !ok {
		return 0, false
	}
	return ir.Addr(v), true
}

// assignCallResult writes val into the call's result register, if it
// names one, leaving frame otherwise unchanged.
func (r *funcRun) assignCallResult(st ir.Call, val valueset.VS, frame Frame) Frame {
	if st.Result == "" {
		return frame
	}
	return r.assign(ir.Temp{Name: st.Result, Width: 4}, val, frame)
}

// currentStackPointer reads ESP's stack-region offset out of frame:
// its value when ESP is a constant, otherwise its lower bound. It
// reports false only when ESP holds no stack-region entry. Used as the
// frame-discard boundary on return from a resolved call.
func (r *funcRun) currentStackPointer(frame Frame) (int64, bool) {
	reg, ok := absstate.LookupRegister("ESP")
	if !ok {
		return 0, false
	}
	espVS := frame.State.Read(absstate.RegisterRegionID, reg.AddrSI(), r.it.loader, nil)
	si, ok := espVS.Lookup(absstate.StackRegionID)
	if !ok {
		return 0, false
	}
	if v, ok := si.ConstValue(); ok {
		return v, true
	}
	return si.Lo(), true
}

// readArg reads the cdecl-convention argument at position i (0-based)
// relative to the current ESP, i.e. the word the caller pushed before
// the call instruction executed.
func (r *funcRun) readArg(frame Frame, i int) valueset.VS {
	reg, ok := absstate.LookupRegister("ESP")
	if !ok {
		return valueset.Top()
	}
	espVS := frame.State.Read(absstate.RegisterRegionID, reg.AddrSI(), r.it.loader, r.it.warnings)
	offset := valueset.Const(int64(i * 4))
	addr := valueset.Add(espVS, offset)
	return frame.State.ReadVS(addr, r.it.loader, r.it.warnings)
}

// evalLibraryCall dispatches a call resolved to an imported symbol
// name: recognized allocators get heap-region modeling, recognized
// deallocators and blacklisted no-ops approximate their result as
// Top, and anything else not on any recognized table is flagged as an
// unintercepted library call and likewise approximated.
func (r *funcRun) evalLibraryCall(st ir.Call, name string, frame Frame) Frame {
	cfg := r.it.cfg
	switch {
	case cfg.IsAllocFunc(name):
		return r.evalAlloc(st, name, frame)
	case cfg.IsFreeFunc(name):
		return r.assignCallResult(st, valueset.Top(), frame)
	case cfg.IsBlacklisted(name):
		return r.assignCallResult(st, valueset.Top(), frame)
	default:
		r.it.warnings.Emit(warning.UninterceptedLibraryCall, fmt.Sprintf("library call %q has no recognized model; approximated as top", name))
		return r.assignCallResult(st, valueset.Top(), frame)
	}
}

// unboundedSizeThreshold is the widest allocation size this analysis
// is willing to call "bounded" before flagging it — a generous but
// finite cutoff, since a strided interval's raw Count() can itself be
// astronomically large for a nearly-Top size argument.
const unboundedSizeThreshold = 1 << 20

// evalAlloc models malloc/calloc/realloc: it reads the size argument
// off the stack, binds the call's allocation site to a heap region of
// that size (Top if the size itself isn't known), warns if the size
// is unbounded, and returns a pointer into that region's offset zero.
// The site is keyed by the call instruction's own address plus the
// calling context, so a second visit to the same call site — the next
// iteration of a loop wrapped around a malloc, most commonly — rebinds
// the same region id instead of minting a new one (absstate.State's
// AllocHeapRegion handles the strong-then-weaken transition this
// needs so the fixpoint can still converge).
func (r *funcRun) evalAlloc(st ir.Call, name string, frame Frame) Frame {
	sizeVS := r.readArg(frame, 0)
	size := interval.Top()
	if si, ok := sizeVS.Lookup(valueset.GlobalRegion); ok {
		size = si
	}
	if size.IsTop() || size.Count() > unboundedSizeThreshold {
		r.it.warnings.Emit(warning.UnboundedMalloc, fmt.Sprintf("%s called with an unbounded or very large size", name))
	}

	site := r.ctx.Key() + "@" + siteString(ir.Addr(r.it.warnings.CurrentAddr))
	newState, id := frame.State.AllocHeapRegion(site, size)
	frame.State = newState
	ptr := valueset.FromRegionSI(id, interval.Const(0))
	return r.assignCallResult(st, ptr, frame)
}
