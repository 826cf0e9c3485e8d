// Package interp implements the context-sensitive interprocedural
// abstract interpreter (C6): a statement/expression evaluator driven
// by a per-function weak-topological-ordering fixpoint with widening
// at loop headers, threading an absstate.State through the program
// via C5->C4->C3->C2.
package interp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sarchlab/vsax86/absstate"
	"github.com/sarchlab/vsax86/config"
	"github.com/sarchlab/vsax86/ir"
	"github.com/sarchlab/vsax86/valueset"
	"github.com/sarchlab/vsax86/warning"
)

// LevelTrace is a custom slog level above Info for high-volume
// per-instruction interpreter tracing, the same convention
// core/util.go uses for its own trace level.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs msg at LevelTrace.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// Frame is the evaluator's working value: the abstract state plus the
// per-function table of analysis-only temporaries (Vine-generated
// pseudo-registers that never live in a real memory region).
type Frame struct {
	State absstate.State
	Temps map[string]valueset.VS
}

func emptyTemps() map[string]valueset.VS { return map[string]valueset.VS{} }

func joinFrame(a, b Frame) Frame {
	return Frame{State: absstate.Join(a.State, b.State), Temps: joinTemps(a.Temps, b.Temps, valueset.Join)}
}

func widenFrame(a, b Frame) Frame {
	return Frame{State: absstate.Widen(a.State, b.State), Temps: joinTemps(a.Temps, b.Temps, valueset.Widen)}
}

func joinTemps(a, b map[string]valueset.VS, op func(x, y valueset.VS) valueset.VS) map[string]valueset.VS {
	out := make(map[string]valueset.VS, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if existing, ok := out[k]; ok {
			out[k] = op(existing, v)
		} else {
			out[k] = v
		}
	}
	return out
}

func frameSubsumes(a, b Frame) bool {
	if !absstate.Subsumes(a.State, b.State) {
		return false
	}
	for k, v := range b.Temps {
		av, ok := a.Temps[k]
		if !ok {
			av = valueset.Top()
		}
		if !valueset.Subsumes(av, v) {
			return false
		}
	}
	return true
}

// Interpreter owns everything an analysis run needs: the bundled
// reference loader, configuration, hash-cons caches, the warning
// sink, and per-(function, context) fixpoint tables. One Interpreter
// is built per run; it owns no package-level mutable state.
type Interpreter struct {
	cfg      config.Config
	loader   ir.Loader
	caches   *absstate.Caches
	warnings *warning.Set

	callStack []ir.Addr

	maxRecursionWarned map[ir.Addr]bool
}

// Builder builds an Interpreter fluently, mirroring the WithX()...
// Build() idiom used throughout this codebase's component builders.
type Builder struct {
	it Interpreter
}

// NewBuilder starts from the default config, fresh caches and an
// empty warning set; only WithLoader is required before Build.
func NewBuilder() Builder {
	return Builder{it: Interpreter{
		cfg:                config.Default(),
		caches:             absstate.NewCaches(),
		warnings:           warning.NewSet(),
		maxRecursionWarned: map[ir.Addr]bool{},
	}}
}

func (b Builder) WithConfig(cfg config.Config) Builder {
	b.it.cfg = cfg
	return b
}

func (b Builder) WithLoader(l ir.Loader) Builder {
	b.it.loader = l
	return b
}

func (b Builder) WithCaches(c *absstate.Caches) Builder {
	b.it.caches = c
	return b
}

func (b Builder) WithWarnings(w *warning.Set) Builder {
	b.it.warnings = w
	return b
}

// Build returns the finished Interpreter; panics if no loader was
// configured, since every run needs one to make any progress — a
// missing loader is a caller programming error, not a recoverable
// condition.
func (b Builder) Build() *Interpreter {
	if b.it.loader == nil {
		panic("interp: Builder.Build called with no loader configured")
	}
	it := b.it
	return &it
}

// Warnings returns the accumulated warning set.
func (it *Interpreter) Warnings() *warning.Set { return it.warnings }

// Run analyzes the program starting at entry, building the standard
// entry state (GetInitForMain) and running the interprocedural
// fixpoint from there. stackTop/argc/argvPtr/returnAddr seed the
// initial register/stack contents exactly as absstate.GetInitForMain
// describes.
func (it *Interpreter) Run(entry ir.Addr, stackTop, argc, argvPtr, returnAddr int64) absstate.State {
	initial := absstate.GetInitForMain(it.caches, stackTop, argc, argvPtr, returnAddr)
	frame := Frame{State: initial, Temps: emptyTemps()}
	out := it.runFunction(Root(), entry, frame)
	return out.State
}

// runFunction analyzes one function under ctx starting from in,
// returning the joined state at every CFG exit (spec.md's "final
// state: join of post-states at all CFG exits"). Recursive re-entry
// (entry already active on the call stack) is detected and skipped
// with a warning, per the data model's context lifecycle rule.
func (it *Interpreter) runFunction(ctx Context, entry ir.Addr, in Frame) Frame {
	for _, active := range it.callStack {
		if active == entry {
			if !it.maxRecursionWarned[entry] {
				it.warnings.Emit(warning.RecursiveCallSkipped, fmt.Sprintf("recursive call into function at %#x skipped", entry))
				it.maxRecursionWarned[entry] = true
			}
			return in
		}
	}

	fn, ok := it.loader.Function(entry)
	if !ok {
		it.warnings.Emit(warning.UnresolvedIndirectCall, fmt.Sprintf("no function body for entry %#x", entry))
		return in
	}

	it.callStack = append(it.callStack, entry)
	defer func() { it.callStack = it.callStack[:len(it.callStack)-1] }()

	wto := ir.ComputeWTO(fn)
	run := &funcRun{it: it, fn: fn, ctx: ctx, pre: map[ir.Addr]Frame{}, post: map[ir.Addr]Frame{}}
	run.pre[fn.Entry] = in
	run.visitAll(wto)

	return run.exitJoin()
}

// funcRun holds the per-fixpoint-run mutable tables for a single
// (function, context) analysis; it lives only for the duration of one
// runFunction call, matching "contexts are destroyed on function exit
// to bound memory" — nothing here survives past the call.
type funcRun struct {
	it  *Interpreter
	fn  *ir.Function
	ctx Context

	pre  map[ir.Addr]Frame
	post map[ir.Addr]Frame
}

func (r *funcRun) visitAll(elements []ir.WTOElement) {
	for _, el := range elements {
		r.visit(el)
	}
}

func (r *funcRun) visit(el ir.WTOElement) {
	switch e := el.(type) {
	case ir.Vertex:
		r.visitVertex(e.Block)
	case ir.Component:
		r.visitComponent(e)
	}
}

func (r *funcRun) visitVertex(addr ir.Addr) {
	pre := r.computePre(addr, false)
	r.pre[addr] = pre
	r.post[addr] = r.evalBlock(addr, pre)
}

// visitComponent stabilizes the loop headed by c.Header: it evaluates
// the header and body repeatedly, widening the header's pre-state
// against the back edges from inside the component on every round
// after the first, until a round's recomputed header pre-state is
// subsumed by the one just used — spec.md's SCC-header termination
// rule.
func (r *funcRun) visitComponent(c ir.Component) {
	round := 0
	for {
		pre := r.computePre(c.Header, round > 0)
		r.pre[c.Header] = pre
		r.post[c.Header] = r.evalBlock(c.Header, pre)
		r.visitAll(c.Body)

		round++
		candidate := r.computePre(c.Header, false)
		if frameSubsumes(r.pre[c.Header], candidate) {
			return
		}
	}
}

// computePre gathers the incoming frame for addr by joining every
// predecessor's recorded post-state; if allowWiden and addr already
// has a recorded pre-state (from an earlier stabilization round), the
// join result is widened against it instead of joined, per the
// back-edge widening rule. A predecessor with no recorded post yet is
// skipped (not yet evaluated this round); if addr has no predecessors
// with a post state at all, its previous pre-state carries over
// unchanged (the entry block's caller-supplied frame, or a loop
// header's prior round before any predecessor outside the loop has
// run).
func (r *funcRun) computePre(addr ir.Addr, allowWiden bool) Frame {
	bb, ok := r.fn.Blocks[addr]
	var acc Frame
	have := false
	if ok {
		for _, pred := range bb.Preds {
			p, ok := r.post[pred]
			if !ok {
				continue
			}
			if !have {
				acc, have = p, true
			} else {
				acc = joinFrame(acc, p)
			}
		}
	}
	if !have {
		if prev, ok := r.pre[addr]; ok {
			return prev
		}
		return Frame{State: absstate.Empty(r.it.caches), Temps: emptyTemps()}
	}
	if allowWiden {
		if prev, ok := r.pre[addr]; ok {
			return widenFrame(prev, acc)
		}
	}
	return acc
}

// exitJoin returns the join of every block's post-state that has no
// successors (a CFG exit), per spec.md's final-state rule.
func (r *funcRun) exitJoin() Frame {
	var acc Frame
	have := false
	for _, addr := range r.fn.Order {
		bb := r.fn.Blocks[addr]
		if len(bb.Succs) != 0 {
			continue
		}
		p, ok := r.post[addr]
		if !ok {
			continue
		}
		if !have {
			acc, have = p, true
		} else {
			acc = joinFrame(acc, p)
		}
	}
	if !have {
		return r.pre[r.fn.Entry]
	}
	return acc
}

func (r *funcRun) evalBlock(addr ir.Addr, in Frame) Frame {
	bb := r.fn.Blocks[addr]
	frame := in
	for _, instr := range bb.Instrs {
		r.it.warnings.CurrentAddr = int64(instr.Addr)
		frame = r.evalStmt(instr.Stmt, frame)
	}
	return frame
}

