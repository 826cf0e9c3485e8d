// Package warning accumulates and serializes the analysis warnings
// the core emits, and the backward-slice estimate each one carries.
// It implements region.Warner so the region/value-set layers can emit
// warnings without importing this package back.
package warning

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/sarchlab/vsax86/interval"
)

// Kind enumerates the warning kinds, reproduced from the original
// analyzer's warning table (spec.md section 7 names most of these;
// the blacklist/recursion ones are carried over from the original's
// fuller enumeration).
type Kind string

const (
	OutOfBoundsRead        Kind = "out-of-bounds-read"
	OutOfBoundsWrite       Kind = "out-of-bounds-write"
	NullDeref              Kind = "null-dereference"
	UninitializedRead      Kind = "uninitialized-read"
	MisalignedRead         Kind = "misaligned-read"
	MisalignedWrite        Kind = "misaligned-write"
	UnboundedMalloc        Kind = "unbounded-malloc"
	UnresolvedIndirectCall Kind = "unresolved-indirect-call"
	WriteToTop             Kind = "write-to-top"
	UninterceptedLibraryCall Kind = "unintercepted-blacklist-call"
	RecursiveCallSkipped     Kind = "recursive-call-skipped"
)

// Warning is one accumulated diagnostic: the address it fired at, the
// address span involved (if any), a free-text detail, and the
// backward slice of addresses estimated to have influenced it.
type Warning struct {
	Kind    Kind
	At      int64
	AddrLo  int64
	AddrHi  int64
	Detail  string
	Slice   []int64
}

// Set accumulates warnings across an analysis run and implements
// region.Warner (`Warn(kind string, addr *interval.SI, detail
// string)`) so the core domain layers can report through it without
// depending on this package's types.
type Set struct {
	mu       sync.Mutex
	warnings []Warning

	// CurrentAddr is the instruction address the interpreter is
	// currently evaluating; Warn stamps every new warning with it.
	// Owned by the interpreter, read here under the same mutex.
	CurrentAddr int64
	// SliceOf, if set, estimates the backward slice for a warning
	// fired at a given address. It is nil unless the caller sets it;
	// the interpreter does not set it, so its warnings carry no slice.
	SliceOf func(at int64) []int64
}

// NewSet returns an empty warning accumulator.
func NewSet() *Set { return &Set{} }

// Warn implements region.Warner. kind is one of the Kind string
// constants above; addr may be nil (e.g. for call-related warnings
// with no single address).
func (s *Set) Warn(kind string, addr *interval.SI, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := Warning{Kind: Kind(kind), At: s.CurrentAddr, Detail: detail}
	if addr != nil {
		w.AddrLo, w.AddrHi = addr.Lo(), addr.Hi()
	}
	if s.SliceOf != nil {
		w.Slice = s.SliceOf(s.CurrentAddr)
	}
	s.warnings = append(s.warnings, w)

	slog.Warn("analysis warning", "kind", kind, "at", s.CurrentAddr, "detail", detail)
}

// Emit records a warning kind with no associated address directly —
// used for call-handling warnings (unresolved indirect call,
// recursive call skipped, blacklisted call) which have no single
// memory address.
func (s *Set) Emit(kind Kind, detail string) {
	s.Warn(string(kind), nil, detail)
}

// All returns every accumulated warning, ordered by firing address
// then kind for deterministic output.
func (s *Set) All() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Warning(nil), s.warnings...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].At != out[j].At {
			return out[i].At < out[j].At
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Len reports how many warnings have been accumulated.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.warnings)
}
