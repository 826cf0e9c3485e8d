package absstate

import "github.com/sarchlab/vsax86/interval"

// RegisterEntry names one accessible register, its byte offset into
// the register region, and its width. Sub-register aliases (AX/AL/AH
// as views into EAX) are entries of their own at an offset inside
// their parent's range rather than a synthesized special case, so a
// sub-register read or write is just an ordinary (possibly
// misaligned) region access — exactly how the region itself already
// handles partial overlaps.
type RegisterEntry struct {
	Name   string
	Offset int64
	Width  int64
}

// RegisterTable is the x86-32 general-purpose register file layout:
// the four aliasable GP registers expose 32/16/8-bit views, the rest
// are fixed-width.
var RegisterTable = []RegisterEntry{
	{"EAX", OffsetEAX, 4}, {"AX", OffsetEAX, 2}, {"AL", OffsetEAX, 1}, {"AH", OffsetEAX + 1, 1},
	{"EBX", OffsetEBX, 4}, {"BX", OffsetEBX, 2}, {"BL", OffsetEBX, 1}, {"BH", OffsetEBX + 1, 1},
	{"ECX", OffsetECX, 4}, {"CX", OffsetECX, 2}, {"CL", OffsetECX, 1}, {"CH", OffsetECX + 1, 1},
	{"EDX", OffsetEDX, 4}, {"DX", OffsetEDX, 2}, {"DL", OffsetEDX, 1}, {"DH", OffsetEDX + 1, 1},
	{"ESI", OffsetESI, 4},
	{"EDI", OffsetEDI, 4},
	{"ESP", OffsetESP, 4},
	{"EBP", OffsetEBP, 4},
	{"EFLAGS", OffsetEFL, 4},
}

var registerByName = func() map[string]RegisterEntry {
	m := make(map[string]RegisterEntry, len(RegisterTable))
	for _, r := range RegisterTable {
		m[r.Name] = r
	}
	return m
}()

// LookupRegister resolves a canonical register name (upper-cased,
// per ir.NormalizeRegisterName) to its table entry.
func LookupRegister(name string) (RegisterEntry, bool) {
	r, ok := registerByName[name]
	return r, ok
}

// AddrSI returns the address interval of name within the
// register region, for use with State.Read/Write(RegisterRegionID, ...).
func (r RegisterEntry) AddrSI() *interval.SI {
	return interval.New(r.Offset, r.Offset+r.Width, r.Width)
}
