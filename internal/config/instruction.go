package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/tomasim/core"
)

// parseInstruction parses one MIPS-like instruction line (spec.md §6.5).
// Mnemonics and register names are case-insensitive; operands are
// comma-separated after the mnemonic.
func parseInstruction(line string) (core.StaticInstruction, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return core.StaticInstruction{}, fmt.Errorf("malformed instruction %q", line)
	}
	mnemonic := strings.ToUpper(fields[0])
	operandStr := strings.Join(fields[1:], "")
	operands := strings.Split(operandStr, ",")
	for i := range operands {
		operands[i] = strings.TrimSpace(operands[i])
	}

	switch mnemonic {
	case "ADD", "SUB":
		if len(operands) != 3 {
			return core.StaticInstruction{}, fmt.Errorf("%s expects 3 operands, got %q", mnemonic, line)
		}
		op := core.OpADD
		if mnemonic == "SUB" {
			op = core.OpSUB
		}
		return core.StaticInstruction{
			Op: op, Dest: normalizeReg(operands[0]),
			Src1: normalizeReg(operands[1]), Src2: normalizeReg(operands[2]),
		}, nil

	case "ADDI":
		if len(operands) != 3 {
			return core.StaticInstruction{}, fmt.Errorf("ADDI expects 3 operands, got %q", line)
		}
		imm, err := strconv.ParseInt(operands[2], 10, 64)
		if err != nil {
			return core.StaticInstruction{}, fmt.Errorf("ADDI immediate: %w", err)
		}
		return core.StaticInstruction{
			Op: core.OpADDI, Dest: normalizeReg(operands[0]),
			Src1: normalizeReg(operands[1]), Imm: imm,
		}, nil

	case "ADD.D", "SUB.D", "MULT.D":
		if len(operands) != 3 {
			return core.StaticInstruction{}, fmt.Errorf("%s expects 3 operands, got %q", mnemonic, line)
		}
		var op core.Op
		switch mnemonic {
		case "ADD.D":
			op = core.OpADDD
		case "SUB.D":
			op = core.OpSUBD
		case "MULT.D":
			op = core.OpMULTD
		}
		return core.StaticInstruction{
			Op: op, Dest: normalizeReg(operands[0]),
			Src1: normalizeReg(operands[1]), Src2: normalizeReg(operands[2]),
		}, nil

	case "LD":
		if len(operands) != 2 {
			return core.StaticInstruction{}, fmt.Errorf("LD expects 2 operands, got %q", line)
		}
		imm, base, err := parseOffset(operands[1])
		if err != nil {
			return core.StaticInstruction{}, fmt.Errorf("LD offset: %w", err)
		}
		return core.StaticInstruction{
			Op: core.OpLD, Dest: normalizeReg(operands[0]),
			Src2: base, Imm: imm,
		}, nil

	case "SD":
		if len(operands) != 2 {
			return core.StaticInstruction{}, fmt.Errorf("SD expects 2 operands, got %q", line)
		}
		imm, base, err := parseOffset(operands[1])
		if err != nil {
			return core.StaticInstruction{}, fmt.Errorf("SD offset: %w", err)
		}
		return core.StaticInstruction{
			Op: core.OpSD, Src1: normalizeReg(operands[0]),
			Src2: base, Imm: imm,
		}, nil

	case "BEQ", "BNE":
		if len(operands) != 3 {
			return core.StaticInstruction{}, fmt.Errorf("%s expects 3 operands, got %q", mnemonic, line)
		}
		disp, err := strconv.ParseInt(operands[2], 10, 64)
		if err != nil {
			return core.StaticInstruction{}, fmt.Errorf("%s displacement: %w", mnemonic, err)
		}
		op := core.OpBEQ
		if mnemonic == "BNE" {
			op = core.OpBNE
		}
		return core.StaticInstruction{
			Op: op, Src1: normalizeReg(operands[0]), Src2: normalizeReg(operands[1]), Disp: disp,
		}, nil

	default:
		return core.StaticInstruction{}, fmt.Errorf("unrecognized opcode %q", fields[0])
	}
}

// parseOffset parses an "imm(Rb)" memory operand.
func parseOffset(s string) (int64, string, error) {
	m := offsetRe.FindStringSubmatch(s)
	if m == nil {
		return 0, "", fmt.Errorf("malformed offset operand %q", s)
	}
	imm, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, "", err
	}
	return imm, normalizeReg(m[2]), nil
}

func normalizeReg(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
