package interp

import (
	"fmt"

	"github.com/sarchlab/vsax86/absstate"
	"github.com/sarchlab/vsax86/interval"
	"github.com/sarchlab/vsax86/ir"
	"github.com/sarchlab/vsax86/valueset"
	"github.com/sarchlab/vsax86/warning"
)

// evalStmt interprets one statement against frame, returning the
// updated frame. Jmp/CJmp/Label carry no data-flow semantics of their
// own (the WTO-driven block visitor already follows Succs); they fall
// through here as no-ops alongside Comment and Assert.
func (r *funcRun) evalStmt(s ir.Stmt, frame Frame) Frame {
	switch st := s.(type) {
	case ir.Move:
		val := r.evalExpr(st.Src, frame)
		return r.assign(st.Dst, val, frame)

	case ir.VarDecl:
		frame.Temps = cloneTemps(frame.Temps)
		frame.Temps[st.Name] = valueset.Bot()
		return frame

	case ir.Call:
		return r.evalCall(st, frame)

	case ir.Return, ir.Jmp, ir.CJmp, ir.Label, ir.Comment, ir.Assert:
		return frame

	case ir.Special:
		r.it.warnings.Emit(warning.WriteToTop, fmt.Sprintf("unmodeled instruction %q; state approximated as top", st.Name))
		return r.topOutEverything(frame)

	default:
		panic(fmt.Sprintf("interp: unhandled statement type %T", s))
	}
}

// topOutEverything approximates an unmodeled instruction's effect by
// widening every register and temporary to Top — conservative but
// sound, since we genuinely don't know what a Special instruction
// touches.
func (r *funcRun) topOutEverything(frame Frame) Frame {
	top := valueset.Top()
	for _, e := range absstate.RegisterTable {
		frame.State = frame.State.Write(absstate.RegisterRegionID, e.AddrSI(), top, r.it.warnings)
	}
	frame.Temps = cloneTemps(frame.Temps)
	for k := range frame.Temps {
		frame.Temps[k] = valueset.Top()
	}
	return frame
}

// assign writes val into the lvalue expression dst, which is either a
// Temp (a register or an analysis-local pseudo-temp) or a Mem
// (indirect write through the computed address value-set).
func (r *funcRun) assign(dst ir.Expr, val valueset.VS, frame Frame) Frame {
	switch d := dst.(type) {
	case ir.Temp:
		name := ir.NormalizeRegisterName(d.Name)
		if reg, ok := absstate.LookupRegister(name); ok {
			frame.State = frame.State.Write(absstate.RegisterRegionID, reg.AddrSI(), val, r.it.warnings)
			return frame
		}
		frame.Temps = cloneTemps(frame.Temps)
		frame.Temps[d.Name] = val
		return frame

	case ir.Mem:
		addrVS := r.evalExpr(d.Addr, frame)
		frame.State = frame.State.WriteVS(addrVS, val, r.it.warnings)
		return frame

	default:
		panic(fmt.Sprintf("interp: invalid assignment target %T", dst))
	}
}

func cloneTemps(in map[string]valueset.VS) map[string]valueset.VS {
	out := make(map[string]valueset.VS, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

// evalExpr interprets an expression against frame, returning its
// value-set.
func (r *funcRun) evalExpr(e ir.Expr, frame Frame) valueset.VS {
	switch x := e.(type) {
	case ir.Const:
		return valueset.Const(x.Value)

	case ir.Temp:
		name := ir.NormalizeRegisterName(x.Name)
		if reg, ok := absstate.LookupRegister(name); ok {
			return frame.State.Read(absstate.RegisterRegionID, reg.AddrSI(), r.it.loader, r.it.warnings)
		}
		if v, ok := frame.Temps[x.Name]; ok {
			if v.IsBot() {
				r.it.warnings.Emit(warning.UninitializedRead, fmt.Sprintf("read of temp %q before it was assigned", x.Name))
			}
			return v
		}
		return valueset.Top()

	case ir.Binop:
		left := r.evalExpr(x.Left, frame)
		right := r.evalExpr(x.Right, frame)
		return evalBinop(x.Op, left, right)

	case ir.Unop:
		return valueset.Not(r.evalExpr(x.X, frame))

	case ir.Mem:
		addrVS := r.evalExpr(x.Addr, frame)
		return frame.State.ReadVS(addrVS, r.it.loader, r.it.warnings)

	case ir.Cast:
		return evalCast(x.Kind, x.Width, exprWidth(x.X), r.evalExpr(x.X, frame))

	default:
		panic(fmt.Sprintf("interp: unhandled expression type %T", e))
	}
}

func evalBinop(op ir.BinOp, a, b valueset.VS) valueset.VS {
	switch op {
	case ir.Add:
		return valueset.Add(a, b)
	case ir.Sub:
		return valueset.Sub(a, b)
	case ir.Mul:
		return valueset.Mul(a, b)
	case ir.SDiv:
		return valueset.SDiv(a, b)
	case ir.UDiv:
		return valueset.UDiv(a, b)
	case ir.SMod:
		return valueset.SMod(a, b)
	case ir.UMod:
		return valueset.UMod(a, b)
	case ir.And:
		return valueset.And(a, b)
	case ir.Or:
		return valueset.Or(a, b)
	case ir.Xor:
		return valueset.Xor(a, b)
	case ir.Shl:
		return valueset.Shl(a, b)
	case ir.Shr:
		return valueset.Shr(a, b)
	case ir.Sar:
		return valueset.Sar(a, b)
	case ir.Lrotate:
		return valueset.Lrotate(a, b)
	case ir.Rrotate:
		return valueset.Rrotate(a, b)
	case ir.Eq:
		return valueset.Eq(a, b)
	case ir.Neq:
		return valueset.Neq(a, b)
	case ir.SLt:
		return valueset.SLt(a, b)
	case ir.SLe:
		return valueset.SLe(a, b)
	case ir.ULt:
		return valueset.ULt(a, b)
	case ir.ULe:
		return valueset.ULe(a, b)
	default:
		panic(fmt.Sprintf("interp: unhandled binary operator %v", op))
	}
}

// exprWidth reports the byte width an expression's value occupies, for
// the node kinds that carry one explicitly; composite nodes (Binop,
// Unop) always operate at the full 32-bit register width in this IR,
// the same way x86 promotes sub-register operands before most ALU
// ops.
func exprWidth(e ir.Expr) int {
	switch x := e.(type) {
	case ir.Const:
		return x.Width
	case ir.Temp:
		return x.Width
	case ir.Mem:
		return x.Width
	case ir.Cast:
		return x.Width
	default:
		return 4
	}
}

// evalCast applies a width/sign conversion to a value-set by rewriting
// every entry's strided interval; region identity is preserved for
// pointer-valued entries since a cast never changes what a pointer
// points into, only how many bytes of it this expression denotes.
// Upcasts (newWidth >= oldWidth) under Signed/Unsigned are a no-op —
// only High/Low and actual downcasts narrow the value.
func evalCast(kind ir.CastKind, newWidth, oldWidth int, v valueset.VS) valueset.VS {
	if v.IsTop() || v.IsBot() {
		return v
	}
	if (kind == ir.CastSigned || kind == ir.CastUnsigned) && newWidth >= oldWidth {
		return v
	}
	out := v
	for _, e := range v.Entries() {
		si := castSI(kind, newWidth, e.SI)
		out = out.Insert(e.Region, si)
	}
	return out
}

func castSI(kind ir.CastKind, width int, si *interval.SI) *interval.SI {
	switch kind {
	case ir.CastLow, ir.CastUnsigned:
		return interval.CastWidth(si, width, false)
	case ir.CastHigh:
		return interval.CastHigh(si, width)
	case ir.CastSigned:
		return interval.CastWidth(si, width, true)
	default:
		panic(fmt.Sprintf("interp: unhandled cast kind %v", kind))
	}
}
