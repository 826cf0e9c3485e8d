package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sarchlab/vsax86/ir"
	"github.com/sarchlab/vsax86/loader"
	"github.com/sarchlab/vsax86/persist"
)

// loadProgram reads a serialized loader.Program from path, following
// the same open-then-decode shape core/program.go uses for its YAML
// documents.
func loadProgram(path string) (*loader.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	prog := &loader.Program{}
	if err := persist.Read(f, prog); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return prog, nil
}

// parseAddr parses a hex or decimal address string, accepting both
// "0x..." and bare hex/decimal forms.
func parseAddr(s string) (ir.Addr, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return ir.Addr(v), nil
}

// entryOrDefault resolves the --function flag against prog, falling
// back to the loaded program's own entry point when unset.
func entryOrDefault(prog *loader.Program, function string) (ir.Addr, error) {
	if function == "" {
		return prog.EntryPoint(), nil
	}
	return parseAddr(function)
}
