package interp

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/vsax86/absstate"
	"github.com/sarchlab/vsax86/valueset"
)

// PrintToggle gates DumpState, mirroring the teacher's global
// print-on/off switch for its own state dump — flip it on from a CLI
// flag rather than a source edit.
var PrintToggle = false

// DumpState renders the current value-set of every absstate.RegisterTable
// entry (sub-registers and EFLAGS included) as a table, the same go-pretty-based presentation the rest of this
// codebase's state dumps use.
func DumpState(label string, s absstate.State) {
	if !PrintToggle {
		return
	}
	fmt.Printf("==============State: %s==============\n", label)

	t := table.NewWriter()
	t.SetTitle("Registers")
	t.AppendHeader(table.Row{"Register", "Value"})

	if _, ok := s.Region(absstate.RegisterRegionID); !ok {
		t.AppendRow(table.Row{"(no register region bound)", ""})
		fmt.Println(t.Render())
		return
	}
	for _, e := range absstate.RegisterTable {
		v := s.Read(absstate.RegisterRegionID, e.AddrSI(), nil, nil)
		t.AppendRow(table.Row{e.Name, formatVS(v)})
	}

	fmt.Println(t.Render())
}

func formatVS(v valueset.VS) string {
	switch {
	case v.IsTop():
		return "TOP"
	case v.IsBot():
		return "BOT"
	}
	out := ""
	for i, e := range v.Entries() {
		if i > 0 {
			out += " | "
		}
		out += fmt.Sprintf("r%d:%s", e.Region, e.SI.String())
	}
	return out
}
