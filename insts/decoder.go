// Package insts provides floating-point instruction definitions and decoding.
package insts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Op represents a floating-point opcode.
type Op uint8

// Supported opcodes.
const (
	OpUnknown Op = iota
	OpADDD
	OpSUBD
	OpMULD
	OpDIVD
	OpLD
	OpSD
)

var opNames = map[Op]string{
	OpADDD: "ADD.D",
	OpSUBD: "SUB.D",
	OpMULD: "MUL.D",
	OpDIVD: "DIV.D",
	OpLD:   "L.D",
	OpSD:   "S.D",
}

var opByName = map[string]Op{
	"ADD.D": OpADDD,
	"SUB.D": OpSUBD,
	"MUL.D": OpMULD,
	"DIV.D": OpDIVD,
	"L.D":   OpLD,
	"S.D":   OpSD,
}

// String returns the assembler mnemonic of the opcode.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsMemory returns true for L.D and S.D.
func (o Op) IsMemory() bool {
	return o == OpLD || o == OpSD
}

// IsArithmetic returns true for the four floating-point arithmetic opcodes.
func (o Op) IsArithmetic() bool {
	switch o {
	case OpADDD, OpSUBD, OpMULD, OpDIVD:
		return true
	default:
		return false
	}
}

// Errors returned by the decoder.
var (
	// ErrUnknownOp is returned when a line starts with an unsupported mnemonic.
	ErrUnknownOp = errors.New("unknown opcode")
	// ErrMalformed is returned when the operands of a line cannot be parsed.
	ErrMalformed = errors.New("malformed instruction")
)

// Instruction represents a decoded floating-point instruction.
//
// For L.D and S.D, Rt is the floating-point data register, Rs the integer
// base register and Imm the byte offset. For arithmetic instructions, Rd is
// the destination and Rs, Rt are the sources.
type Instruction struct {
	Op Op // Operation code

	Rd uint8 // Destination register (arithmetic)
	Rs uint8 // First source register, or base register for memory ops
	Rt uint8 // Second source register, or data register for memory ops

	Imm int64 // Signed byte offset (memory ops)
}

// String renders the instruction in assembler syntax.
func (i *Instruction) String() string {
	if i.Op.IsMemory() {
		return fmt.Sprintf("%s F%d, %d(R%d)", i.Op, i.Rt, i.Imm, i.Rs)
	}
	return fmt.Sprintf("%s F%d, F%d, F%d", i.Op, i.Rd, i.Rs, i.Rt)
}

// Decoder decodes trace lines into instructions.
type Decoder struct{}

// NewDecoder creates a new trace line decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Tokenize splits a trace line on spaces, tabs, commas and parentheses.
func Tokenize(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		switch r {
		case ' ', '\t', ',', '(', ')', '\r':
			return true
		default:
			return false
		}
	})
}

// Decode decodes a single trace line.
func (d *Decoder) Decode(line string) (*Instruction, error) {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty line", ErrMalformed)
	}

	op, ok := opByName[strings.ToUpper(tokens[0])]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, tokens[0])
	}

	if len(tokens) != 4 {
		return nil, fmt.Errorf("%w: %s expects 3 operands, got %d",
			ErrMalformed, op, len(tokens)-1)
	}

	inst := &Instruction{Op: op}

	var err error
	if op.IsMemory() {
		err = d.decodeMemory(tokens[1:], inst)
	} else {
		err = d.decodeArithmetic(tokens[1:], inst)
	}
	if err != nil {
		return nil, err
	}

	return inst, nil
}

// decodeMemory decodes "Ft, imm(Rs)".
func (d *Decoder) decodeMemory(operands []string, inst *Instruction) error {
	rt, err := parseRegister(operands[0], 'F')
	if err != nil {
		return err
	}

	imm, err := strconv.ParseInt(operands[1], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad offset %q", ErrMalformed, operands[1])
	}

	rs, err := parseRegister(operands[2], 'R')
	if err != nil {
		return err
	}

	inst.Rt = rt
	inst.Imm = imm
	inst.Rs = rs

	return nil
}

// decodeArithmetic decodes "Fd, Fs, Ft".
func (d *Decoder) decodeArithmetic(operands []string, inst *Instruction) error {
	regs := [3]uint8{}
	for i, tok := range operands {
		reg, err := parseRegister(tok, 'F')
		if err != nil {
			return err
		}
		regs[i] = reg
	}

	inst.Rd = regs[0]
	inst.Rs = regs[1]
	inst.Rt = regs[2]

	return nil
}

// parseRegister parses a register token such as F6 or R2.
func parseRegister(tok string, prefix byte) (uint8, error) {
	if len(tok) < 2 || (tok[0] != prefix && tok[0] != prefix+('a'-'A')) {
		return 0, fmt.Errorf("%w: expected %c register, got %q",
			ErrMalformed, prefix, tok)
	}

	n, err := strconv.ParseUint(tok[1:], 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: bad register %q", ErrMalformed, tok)
	}

	return uint8(n), nil
}
