package ir

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// registerCaser upper-cases register names the same way the teacher's
// titleCaser in core/emu.go normalizes opcode-table lookups, so a
// loader's free-text symbol/register names ("eax", "Eax") resolve to
// the canonical register-table keys ("EAX") regardless of the source
// binary's disassembler case convention.
var registerCaser = cases.Upper(language.Und)

// NormalizeRegisterName canonicalizes a register name for lookup
// against the register offset table.
func NormalizeRegisterName(name string) string {
	return registerCaser.String(name)
}
