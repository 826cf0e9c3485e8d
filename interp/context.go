package interp

import (
	"strings"

	"github.com/rs/xid"
	"github.com/sarchlab/vsax86/config"
	"github.com/sarchlab/vsax86/ir"
)

// Context identifies one calling context a function is analyzed
// under: a truncated call-site sequence, per the three sensitivity
// modes config.Sensitivity names. Two Contexts with equal Sites have
// the same Key() regardless of which Extend call produced them, so
// Key() is what identifies a context in per-context tables.
type Context struct {
	Sites []ir.Addr
	// id is a collision-free identifier minted once per distinct
	// Context value, used only for log lines and debug dumps (never
	// for equality or map keys, which use Sites).
	id string
}

// Root is the empty context every whole-program analysis starts
// analyzing its entry function under.
func Root() Context {
	return Context{id: xid.New().String()}
}

// Extend returns the context a call at site enters its callee under,
// per mode: insensitive contexts are always Root (every call site
// collapses to one shared summary), fully sensitive contexts append
// every call site ever taken, k-sensitive contexts keep only the last
// k sites.
func (c Context) Extend(mode config.Sensitivity, k int, site ir.Addr) Context {
	switch mode {
	case config.Insensitive:
		return Root()
	case config.KCFA:
		sites := append(append([]ir.Addr{}, c.Sites...), site)
		if len(sites) > k {
			sites = sites[len(sites)-k:]
		}
		return Context{Sites: sites, id: xid.New().String()}
	default: // config.FullySensitive
		sites := append(append([]ir.Addr{}, c.Sites...), site)
		return Context{Sites: sites, id: xid.New().String()}
	}
}

// Key returns a value usable as a map key for per-context tables
// (Context itself isn't comparable when Sites is a slice).
func (c Context) Key() string {
	var b strings.Builder
	for i, s := range c.Sites {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(siteString(s))
	}
	return b.String()
}

func siteString(a ir.Addr) string {
	const hexDigits = "0123456789abcdef"
	if a == 0 {
		return "0"
	}
	neg := a < 0
	if neg {
		a = -a
	}
	var buf [20]byte
	i := len(buf)
	for a > 0 {
		i--
		buf[i] = hexDigits[a%16]
		a /= 16
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Contains reports whether site already appears in c. The
// interpreter's recursion check does not use it: that check looks for
// the callee's entry address in Interpreter.callStack.
func (c Context) Contains(site ir.Addr) bool {
	for _, s := range c.Sites {
		if s == site {
			return true
		}
	}
	return false
}
