// Package loader provides instruction trace loading for the Tomasulo model.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sarchlab/tomasim/insts"
)

// Program represents a loaded trace ready for scheduling.
type Program struct {
	// Path is the file the program was loaded from, if any.
	Path string
	// Instructions holds the decoded instructions in program order.
	Instructions []*insts.Instruction
}

// Load reads a trace file and decodes every instruction in it.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	prog.Path = path

	return prog, nil
}

// Parse decodes a trace from r. Blank lines and lines whose first
// non-space character is '#' or ';' are skipped.
func Parse(r io.Reader) (*Program, error) {
	decoder := insts.NewDecoder()
	prog := &Program{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		inst, err := decoder.Decode(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		prog.Instructions = append(prog.Instructions, inst)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	return prog, nil
}
