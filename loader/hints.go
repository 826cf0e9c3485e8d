package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/vsax86/ir"
)

// Hints is a YAML-loadable supplement to an otherwise-binary-derived
// Program: symbol names for addresses the real loader couldn't
// resolve on its own (stripped binaries, manually-identified PLT
// stubs), and the function entry to start analysis from when the
// binary has no recoverable "main" symbol.
type Hints struct {
	MainEntry int64             `yaml:"main_entry"`
	Symbols   map[int64]string  `yaml:"symbols"`
}

// LoadHints reads a Hints document from path.
func LoadHints(path string) (Hints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Hints{}, fmt.Errorf("loader: reading hints %s: %w", path, err)
	}
	var h Hints
	if err := yaml.Unmarshal(data, &h); err != nil {
		return Hints{}, fmt.Errorf("loader: parsing hints %s: %w", path, err)
	}
	return h, nil
}

// Apply merges h into p: every hinted symbol becomes an ImportRange
// covering exactly that one byte (a point the caller can still grow
// by providing an explicit range via AddImport instead), and a
// nonzero MainEntry overrides p.Entry.
func (h Hints) Apply(p *Program) {
	for addr, name := range h.Symbols {
		p.AddImport(ImportRange{Lo: addr, Hi: addr + 1, Symbol: name})
	}
	if h.MainEntry != 0 {
		p.Entry = ir.Addr(h.MainEntry)
	}
}
