package asm

import (
	"fmt"

	"github.com/mrosen/rv32edu/pkg/vm"
)

// realOps maps every non-pseudo mnemonic to its vm.Op.
var realOps = map[string]vm.Op{
	"add": vm.OpADD, "sub": vm.OpSUB, "addi": vm.OpADDI,
	"slt": vm.OpSLT, "slti": vm.OpSLTI, "sltu": vm.OpSLTU, "sltiu": vm.OpSLTIU,
	"and": vm.OpAND, "or": vm.OpOR, "xor": vm.OpXOR,
	"andi": vm.OpANDI, "ori": vm.OpORI, "xori": vm.OpXORI,
	"sll": vm.OpSLL, "srl": vm.OpSRL, "sra": vm.OpSRA,
	"slli": vm.OpSLLI, "srli": vm.OpSRLI, "srai": vm.OpSRAI,
	"lui": vm.OpLUI, "auipc": vm.OpAUIPC,
	"jal": vm.OpJAL, "jalr": vm.OpJALR,
	"beq": vm.OpBEQ, "bne": vm.OpBNE, "blt": vm.OpBLT, "bge": vm.OpBGE,
	"bltu": vm.OpBLTU, "bgeu": vm.OpBGEU,
	"lb": vm.OpLB, "lh": vm.OpLH, "lw": vm.OpLW, "lbu": vm.OpLBU, "lhu": vm.OpLHU,
	"sb": vm.OpSB, "sh": vm.OpSH, "sw": vm.OpSW,
	"mul": vm.OpMUL, "div": vm.OpDIV, "divu": vm.OpDIVU, "rem": vm.OpREM, "remu": vm.OpREMU,
	"csrrw": vm.OpCSRRW, "csrrs": vm.OpCSRRS, "csrrc": vm.OpCSRRC,
	"csrrwi": vm.OpCSRRWI, "csrrsi": vm.OpCSRRSI, "csrrci": vm.OpCSRRCI,
	"mret": vm.OpMRET, "wfi": vm.OpWFI, "halt": vm.OpHALT,
}

// pseudoWidth reports the expanded instruction-word count of a pseudo
// mnemonic: everything is one word
// except LA, which always expands to LUI+ADDI.
func pseudoWidth(name string) (int, bool) {
	switch name {
	case "nop", "call", "ret", "j", "mv":
		return 1, true
	case "la":
		return 2, true
	default:
		return 0, false
	}
}

// instructionWords returns how many 4-byte words name occupies once
// expanded, used by pass 1 to advance the text cursor.
func instructionWords(name string) (int, bool) {
	if _, ok := realOps[name]; ok {
		return 1, true
	}
	return pseudoWidth(name)
}

func wantOperandsTokens(s *statement, ops []Token, n int) error {
	if len(ops) != n {
		return newError(ErrBadOperandCount, s.Lineno, s.Name,
			fmt.Sprintf("expected %d operand(s), got %d", n, len(ops)))
	}
	return nil
}

// splitCommas returns the operand tokens with TokComma separators removed.
func splitCommas(toks []Token) []Token {
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind == TokComma {
			continue
		}
		out = append(out, t)
	}
	return out
}

// resolveAbsolute resolves a token to an absolute value: a literal number
// as-is, or a label's resolved address.
func resolveAbsolute(tok Token, lineno int, labels map[string]uint32) (int64, error) {
	switch tok.Kind {
	case TokNumber:
		return tok.Num, nil
	case TokIdent:
		addr, ok := labels[tok.Text]
		if !ok {
			return 0, newError(ErrUndefinedLabel, lineno, tok.Text, "")
		}
		return int64(addr), nil
	default:
		return 0, newError(ErrUnexpectedToken, lineno, tok.Text, "expected a label or integer literal")
	}
}

// resolvePCRelative resolves a branch/jump target token to a PC-relative
// signed offset, checking 2-byte alignment.
func resolvePCRelative(tok Token, lineno int, pc uint32, labels map[string]uint32) (int32, error) {
	abs, err := resolveAbsolute(tok, lineno, labels)
	if err != nil {
		return 0, err
	}
	offset := abs - int64(pc)
	if offset%2 != 0 {
		return 0, newError(ErrMisalignedTarget, lineno, tok.Text, "target must be a multiple of 2")
	}
	return int32(offset), nil
}

// hiLo splits an absolute address the way LA needs it:
// hi(x) = (x + 0x800) >> 12, lo(x) = x - (hi(x) << 12), so LUI hi followed
// by ADDI lo reconstructs x exactly despite ADDI's sign-extended 12-bit
// immediate.
func hiLo(addr uint32) (hi int32, lo int32) {
	x := int64(int32(addr))
	h := (x + 0x800) >> 12
	l := x - (h << 12)
	return int32(h), int32(l)
}

// memOperand parses an "imm(rs1)" load/store address operand.
func memOperand(toks []Token, lineno int) (imm int32, rs1 uint32, err error) {
	if len(toks) != 4 || toks[0].Kind != TokNumber || toks[1].Kind != TokLParen ||
		toks[2].Kind != TokIdent || toks[3].Kind != TokRParen {
		return 0, 0, newError(ErrUnexpectedToken, lineno, "", "expected imm(reg)")
	}
	rs1, err = resolveRegister(toks[2], lineno)
	if err != nil {
		return 0, 0, err
	}
	return int32(toks[0].Num), rs1, nil
}

// buildReal resolves a single real (non-pseudo) instruction statement into
// its decoded vm.Instruction, given its final text address pc.
func buildReal(s *statement, pc uint32, labels map[string]uint32) (vm.Instruction, error) {
	op := realOps[s.Name]
	in := vm.Instruction{Op: op, Line: s.Lineno}
	ops := splitCommas(s.Operands)

	switch s.Name {
	case "add", "sub", "slt", "sltu", "and", "or", "xor", "sll", "srl", "sra",
		"mul", "div", "divu", "rem", "remu":
		if err := wantOperandsTokens(s, ops, 3); err != nil {
			return in, err
		}
		rd, err := resolveRegister(ops[0], s.Lineno)
		if err != nil {
			return in, err
		}
		rs1, err := resolveRegister(ops[1], s.Lineno)
		if err != nil {
			return in, err
		}
		rs2, err := resolveRegister(ops[2], s.Lineno)
		if err != nil {
			return in, err
		}
		in.Rd, in.Rs1, in.Rs2 = rd, rs1, rs2

	case "addi", "slti", "sltiu", "andi", "ori", "xori", "slli", "srli", "srai":
		if err := wantOperandsTokens(s, ops, 3); err != nil {
			return in, err
		}
		rd, err := resolveRegister(ops[0], s.Lineno)
		if err != nil {
			return in, err
		}
		rs1, err := resolveRegister(ops[1], s.Lineno)
		if err != nil {
			return in, err
		}
		imm, err := resolveAbsolute(ops[2], s.Lineno, labels)
		if err != nil {
			return in, err
		}
		in.Rd, in.Rs1, in.Imm = rd, rs1, int32(imm)

	case "lui", "auipc":
		if err := wantOperandsTokens(s, ops, 2); err != nil {
			return in, err
		}
		rd, err := resolveRegister(ops[0], s.Lineno)
		if err != nil {
			return in, err
		}
		imm, err := resolveAbsolute(ops[1], s.Lineno, labels)
		if err != nil {
			return in, err
		}
		in.Rd = rd
		in.Imm = int32(uint32(imm) << 12)

	case "jal":
		if err := wantOperandsTokens(s, ops, 2); err != nil {
			return in, err
		}
		rd, err := resolveRegister(ops[0], s.Lineno)
		if err != nil {
			return in, err
		}
		off, err := resolvePCRelative(ops[1], s.Lineno, pc, labels)
		if err != nil {
			return in, err
		}
		in.Rd, in.Imm = rd, off

	case "jalr":
		if err := wantOperandsTokens(s, ops, 3); err != nil {
			return in, err
		}
		rd, err := resolveRegister(ops[0], s.Lineno)
		if err != nil {
			return in, err
		}
		rs1, err := resolveRegister(ops[1], s.Lineno)
		if err != nil {
			return in, err
		}
		imm, err := resolveAbsolute(ops[2], s.Lineno, labels)
		if err != nil {
			return in, err
		}
		in.Rd, in.Rs1, in.Imm = rd, rs1, int32(imm)

	case "beq", "bne", "blt", "bge", "bltu", "bgeu":
		if err := wantOperandsTokens(s, ops, 3); err != nil {
			return in, err
		}
		rs1, err := resolveRegister(ops[0], s.Lineno)
		if err != nil {
			return in, err
		}
		rs2, err := resolveRegister(ops[1], s.Lineno)
		if err != nil {
			return in, err
		}
		off, err := resolvePCRelative(ops[2], s.Lineno, pc, labels)
		if err != nil {
			return in, err
		}
		in.Rs1, in.Rs2, in.Imm = rs1, rs2, off

	case "lb", "lh", "lw", "lbu", "lhu":
		if len(ops) != 5 {
			return in, newError(ErrBadOperandCount, s.Lineno, s.Name, "expected rd, imm(rs1)")
		}
		rd, err := resolveRegister(ops[0], s.Lineno)
		if err != nil {
			return in, err
		}
		imm, rs1, err := memOperand(ops[1:], s.Lineno)
		if err != nil {
			return in, err
		}
		in.Rd, in.Rs1, in.Imm = rd, rs1, imm

	case "sb", "sh", "sw":
		if len(ops) != 5 {
			return in, newError(ErrBadOperandCount, s.Lineno, s.Name, "expected rs2, imm(rs1)")
		}
		rs2, err := resolveRegister(ops[0], s.Lineno)
		if err != nil {
			return in, err
		}
		imm, rs1, err := memOperand(ops[1:], s.Lineno)
		if err != nil {
			return in, err
		}
		in.Rs2, in.Rs1, in.Imm = rs2, rs1, imm

	case "csrrw", "csrrs", "csrrc":
		if err := wantOperandsTokens(s, ops, 3); err != nil {
			return in, err
		}
		rd, err := resolveRegister(ops[0], s.Lineno)
		if err != nil {
			return in, err
		}
		csr, err := resolveCSR(ops[1], s.Lineno)
		if err != nil {
			return in, err
		}
		rs1, err := resolveRegister(ops[2], s.Lineno)
		if err != nil {
			return in, err
		}
		in.Rd, in.CSR, in.Rs1 = rd, csr, rs1

	case "csrrwi", "csrrsi", "csrrci":
		if err := wantOperandsTokens(s, ops, 3); err != nil {
			return in, err
		}
		rd, err := resolveRegister(ops[0], s.Lineno)
		if err != nil {
			return in, err
		}
		csr, err := resolveCSR(ops[1], s.Lineno)
		if err != nil {
			return in, err
		}
		uimm, err := resolveAbsolute(ops[2], s.Lineno, labels)
		if err != nil {
			return in, err
		}
		if uimm < 0 || uimm > 0x1f {
			return in, newError(ErrOutOfRange, s.Lineno, ops[2].Text, "CSR immediate must fit in 5 bits")
		}
		in.Rd, in.CSR, in.Rs1 = rd, csr, uint32(uimm)

	case "mret", "wfi", "halt":
		if err := wantOperandsTokens(s, ops, 0); err != nil {
			return in, err
		}

	default:
		return in, newError(ErrUnknownMnemonic, s.Lineno, s.Name, "")
	}
	return in, nil
}

// buildPseudo expands a pseudo-instruction statement into its real
// instruction(s).
func buildPseudo(s *statement, pc uint32, labels map[string]uint32) ([]vm.Instruction, error) {
	ops := splitCommas(s.Operands)
	switch s.Name {
	case "nop":
		if err := wantOperandsTokens(s, ops, 0); err != nil {
			return nil, err
		}
		return []vm.Instruction{{Op: vm.OpADDI, Rd: 0, Rs1: 0, Imm: 0, Line: s.Lineno}}, nil

	case "la":
		if err := wantOperandsTokens(s, ops, 2); err != nil {
			return nil, err
		}
		rd, err := resolveRegister(ops[0], s.Lineno)
		if err != nil {
			return nil, err
		}
		addr, err := resolveAbsolute(ops[1], s.Lineno, labels)
		if err != nil {
			return nil, err
		}
		hi, lo := hiLo(uint32(addr))
		return []vm.Instruction{
			{Op: vm.OpLUI, Rd: rd, Imm: hi << 12, Line: s.Lineno},
			{Op: vm.OpADDI, Rd: rd, Rs1: rd, Imm: lo, Line: s.Lineno},
		}, nil

	case "call":
		if err := wantOperandsTokens(s, ops, 1); err != nil {
			return nil, err
		}
		off, err := resolvePCRelative(ops[0], s.Lineno, pc, labels)
		if err != nil {
			return nil, err
		}
		return []vm.Instruction{{Op: vm.OpJAL, Rd: 1, Imm: off, Line: s.Lineno}}, nil

	case "ret":
		if err := wantOperandsTokens(s, ops, 0); err != nil {
			return nil, err
		}
		return []vm.Instruction{{Op: vm.OpJALR, Rd: 0, Rs1: 1, Imm: 0, Line: s.Lineno}}, nil

	case "j":
		if err := wantOperandsTokens(s, ops, 1); err != nil {
			return nil, err
		}
		off, err := resolvePCRelative(ops[0], s.Lineno, pc, labels)
		if err != nil {
			return nil, err
		}
		return []vm.Instruction{{Op: vm.OpJAL, Rd: 0, Imm: off, Line: s.Lineno}}, nil

	case "mv":
		if err := wantOperandsTokens(s, ops, 2); err != nil {
			return nil, err
		}
		rd, err := resolveRegister(ops[0], s.Lineno)
		if err != nil {
			return nil, err
		}
		rs, err := resolveRegister(ops[1], s.Lineno)
		if err != nil {
			return nil, err
		}
		return []vm.Instruction{{Op: vm.OpADDI, Rd: rd, Rs1: rs, Imm: 0, Line: s.Lineno}}, nil

	default:
		return nil, newError(ErrUnknownMnemonic, s.Lineno, s.Name, "")
	}
}
