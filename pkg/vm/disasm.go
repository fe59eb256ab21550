package vm

import "fmt"

// Disassemble renders a decoded Instruction back to source assembly
// syntax. It is used by -v tracing and by the assembler test that checks
// disassembly reproduces the source mnemonics. Branch and jump targets are
// printed as PC-relative offsets.
func Disassemble(in Instruction) string {
	r := func(i uint32) string { return RegisterNames[i] }
	switch in.Op {
	case OpADD:
		return fmt.Sprintf("add %s, %s, %s", r(in.Rd), r(in.Rs1), r(in.Rs2))
	case OpSUB:
		return fmt.Sprintf("sub %s, %s, %s", r(in.Rd), r(in.Rs1), r(in.Rs2))
	case OpADDI:
		return fmt.Sprintf("addi %s, %s, %d", r(in.Rd), r(in.Rs1), in.Imm)
	case OpSLT:
		return fmt.Sprintf("slt %s, %s, %s", r(in.Rd), r(in.Rs1), r(in.Rs2))
	case OpSLTI:
		return fmt.Sprintf("slti %s, %s, %d", r(in.Rd), r(in.Rs1), in.Imm)
	case OpSLTU:
		return fmt.Sprintf("sltu %s, %s, %s", r(in.Rd), r(in.Rs1), r(in.Rs2))
	case OpSLTIU:
		return fmt.Sprintf("sltiu %s, %s, %d", r(in.Rd), r(in.Rs1), in.Imm)
	case OpAND:
		return fmt.Sprintf("and %s, %s, %s", r(in.Rd), r(in.Rs1), r(in.Rs2))
	case OpOR:
		return fmt.Sprintf("or %s, %s, %s", r(in.Rd), r(in.Rs1), r(in.Rs2))
	case OpXOR:
		return fmt.Sprintf("xor %s, %s, %s", r(in.Rd), r(in.Rs1), r(in.Rs2))
	case OpANDI:
		return fmt.Sprintf("andi %s, %s, %d", r(in.Rd), r(in.Rs1), in.Imm)
	case OpORI:
		return fmt.Sprintf("ori %s, %s, %d", r(in.Rd), r(in.Rs1), in.Imm)
	case OpXORI:
		return fmt.Sprintf("xori %s, %s, %d", r(in.Rd), r(in.Rs1), in.Imm)
	case OpSLL:
		return fmt.Sprintf("sll %s, %s, %s", r(in.Rd), r(in.Rs1), r(in.Rs2))
	case OpSRL:
		return fmt.Sprintf("srl %s, %s, %s", r(in.Rd), r(in.Rs1), r(in.Rs2))
	case OpSRA:
		return fmt.Sprintf("sra %s, %s, %s", r(in.Rd), r(in.Rs1), r(in.Rs2))
	case OpSLLI:
		return fmt.Sprintf("slli %s, %s, %d", r(in.Rd), r(in.Rs1), in.Imm)
	case OpSRLI:
		return fmt.Sprintf("srli %s, %s, %d", r(in.Rd), r(in.Rs1), in.Imm)
	case OpSRAI:
		return fmt.Sprintf("srai %s, %s, %d", r(in.Rd), r(in.Rs1), in.Imm)
	case OpLUI:
		return fmt.Sprintf("lui %s, %d", r(in.Rd), uint32(in.Imm)>>12)
	case OpAUIPC:
		return fmt.Sprintf("auipc %s, %d", r(in.Rd), uint32(in.Imm)>>12)
	case OpJAL:
		return fmt.Sprintf("jal %s, %d", r(in.Rd), in.Imm)
	case OpJALR:
		return fmt.Sprintf("jalr %s, %s, %d", r(in.Rd), r(in.Rs1), in.Imm)
	case OpBEQ:
		return fmt.Sprintf("beq %s, %s, %d", r(in.Rs1), r(in.Rs2), in.Imm)
	case OpBNE:
		return fmt.Sprintf("bne %s, %s, %d", r(in.Rs1), r(in.Rs2), in.Imm)
	case OpBLT:
		return fmt.Sprintf("blt %s, %s, %d", r(in.Rs1), r(in.Rs2), in.Imm)
	case OpBGE:
		return fmt.Sprintf("bge %s, %s, %d", r(in.Rs1), r(in.Rs2), in.Imm)
	case OpBLTU:
		return fmt.Sprintf("bltu %s, %s, %d", r(in.Rs1), r(in.Rs2), in.Imm)
	case OpBGEU:
		return fmt.Sprintf("bgeu %s, %s, %d", r(in.Rs1), r(in.Rs2), in.Imm)
	case OpLB:
		return fmt.Sprintf("lb %s, %d(%s)", r(in.Rd), in.Imm, r(in.Rs1))
	case OpLH:
		return fmt.Sprintf("lh %s, %d(%s)", r(in.Rd), in.Imm, r(in.Rs1))
	case OpLW:
		return fmt.Sprintf("lw %s, %d(%s)", r(in.Rd), in.Imm, r(in.Rs1))
	case OpLBU:
		return fmt.Sprintf("lbu %s, %d(%s)", r(in.Rd), in.Imm, r(in.Rs1))
	case OpLHU:
		return fmt.Sprintf("lhu %s, %d(%s)", r(in.Rd), in.Imm, r(in.Rs1))
	case OpSB:
		return fmt.Sprintf("sb %s, %d(%s)", r(in.Rs2), in.Imm, r(in.Rs1))
	case OpSH:
		return fmt.Sprintf("sh %s, %d(%s)", r(in.Rs2), in.Imm, r(in.Rs1))
	case OpSW:
		return fmt.Sprintf("sw %s, %d(%s)", r(in.Rs2), in.Imm, r(in.Rs1))
	case OpMUL:
		return fmt.Sprintf("mul %s, %s, %s", r(in.Rd), r(in.Rs1), r(in.Rs2))
	case OpDIV:
		return fmt.Sprintf("div %s, %s, %s", r(in.Rd), r(in.Rs1), r(in.Rs2))
	case OpDIVU:
		return fmt.Sprintf("divu %s, %s, %s", r(in.Rd), r(in.Rs1), r(in.Rs2))
	case OpREM:
		return fmt.Sprintf("rem %s, %s, %s", r(in.Rd), r(in.Rs1), r(in.Rs2))
	case OpREMU:
		return fmt.Sprintf("remu %s, %s, %s", r(in.Rd), r(in.Rs1), r(in.Rs2))
	case OpCSRRW:
		return fmt.Sprintf("csrrw %s, 0x%x, %s", r(in.Rd), in.CSR, r(in.Rs1))
	case OpCSRRS:
		return fmt.Sprintf("csrrs %s, 0x%x, %s", r(in.Rd), in.CSR, r(in.Rs1))
	case OpCSRRC:
		return fmt.Sprintf("csrrc %s, 0x%x, %s", r(in.Rd), in.CSR, r(in.Rs1))
	case OpCSRRWI:
		return fmt.Sprintf("csrrwi %s, 0x%x, %d", r(in.Rd), in.CSR, in.Rs1)
	case OpCSRRSI:
		return fmt.Sprintf("csrrsi %s, 0x%x, %d", r(in.Rd), in.CSR, in.Rs1)
	case OpCSRRCI:
		return fmt.Sprintf("csrrci %s, 0x%x, %d", r(in.Rd), in.CSR, in.Rs1)
	case OpMRET:
		return "mret"
	case OpWFI:
		return "wfi"
	case OpHALT:
		return "halt"
	default:
		return fmt.Sprintf("<unknown opcode %d>", in.Op)
	}
}

// String implements fmt.Stringer for a quick VM state dump.
func (c *CPU) String() string {
	return fmt.Sprintf(
		"{PC:0x%05x GPR:%v mstatus:0x%x mie:0x%x mip:0x%x mepc:0x%05x mcause:0x%x halted:%v wfi:%v}",
		c.PC, c.GPR, c.CSR.Mstatus, c.CSR.Mie, c.mip(), c.CSR.Mepc, c.CSR.Mcause, c.Halted, c.WFI,
	)
}
