// Package loader provides a minimal reference program loader: an
// ELF-like module/section table, PLT import ranges, the static
// process memory image, and a function table — everything ir.Loader
// requires. A real front end would populate these tables from an
// actual disassembler; this package accepts them pre-built (typically
// via persist's serialized envelope, supplemented by LoadHints and
// Hints.Apply) and serves them to the interpreter.
package loader

import (
	"sort"

	"github.com/sarchlab/vsax86/ir"
)

// Flag bits describe a Section's permissions, mirroring an ELF
// program header's r/w/x bits.
type Flag uint8

const (
	FlagRead Flag = 1 << iota
	FlagWrite
	FlagExec
)

// Section is one contiguous, flag-tagged range of the static image.
type Section struct {
	Name  string
	Addr  int64
	Bytes []byte
	Flags Flag
}

func (s Section) contains(addr int64) bool {
	return addr >= s.Addr && addr < s.Addr+int64(len(s.Bytes))
}

// Module is one loaded object (the main executable, or a shared
// library) — a name and its sections.
type Module struct {
	Name     string
	Sections []Section
}

// ImportRange marks an address span (typically a PLT stub) as
// resolving to a named external symbol rather than a lifted function
// body.
type ImportRange struct {
	Lo, Hi int64
	Symbol string
}

// Program is the full loaded image: modules, PLT import ranges, the
// lifted function table keyed by entry address, and the entry point.
type Program struct {
	Modules []Module
	Imports []ImportRange
	Funcs   map[ir.Addr]*ir.Function
	Entry   ir.Addr
}

// New builds an empty Program with the given entry point; callers
// populate Modules/Imports/Funcs directly or via the Add* helpers.
func New(entry ir.Addr) *Program {
	return &Program{Funcs: map[ir.Addr]*ir.Function{}, Entry: entry}
}

// AddModule appends a module to the program.
func (p *Program) AddModule(m Module) *Program {
	p.Modules = append(p.Modules, m)
	return p
}

// AddImport registers a PLT/import range.
func (p *Program) AddImport(r ImportRange) *Program {
	p.Imports = append(p.Imports, r)
	return p
}

// AddFunction registers a lifted function, keyed by its entry address.
func (p *Program) AddFunction(fn *ir.Function) *Program {
	p.Funcs[fn.Entry] = fn
	return p
}

// Function implements ir.Loader.
func (p *Program) Function(entry ir.Addr) (*ir.Function, bool) {
	fn, ok := p.Funcs[entry]
	return fn, ok
}

// SymbolName implements ir.Loader: resolves addr against the PLT
// import ranges, sorted so lookup can early-exit once a range's
// lower bound exceeds addr.
func (p *Program) SymbolName(addr ir.Addr) (string, bool) {
	for _, r := range p.sortedImports() {
		if int64(addr) < r.Lo {
			break
		}
		if int64(addr) < r.Hi {
			return r.Symbol, true
		}
	}
	return "", false
}

func (p *Program) sortedImports() []ImportRange {
	out := append([]ImportRange(nil), p.Imports...)
	sort.Slice(out, func(i, j int) bool { return out[i].Lo < out[j].Lo })
	return out
}

// ReadByte implements ir.Loader: reads one byte of the static image
// from whichever section's range contains addr.
func (p *Program) ReadByte(addr int64) (byte, bool) {
	for _, m := range p.Modules {
		for _, s := range m.Sections {
			if s.contains(addr) {
				return s.Bytes[addr-s.Addr], true
			}
		}
	}
	return 0, false
}

// EntryPoint implements ir.Loader.
func (p *Program) EntryPoint() ir.Addr { return p.Entry }
