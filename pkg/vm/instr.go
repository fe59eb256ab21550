package vm

// Op tags every decoded instruction. The assembler (pkg/asm) is the only
// producer of Instruction values; the interpreter below is the only
// consumer. Because the assembler resolves immediates and branch offsets
// ahead of time, Exec never does bit-field extraction.
type Op int

// Supported opcodes.
const (
	OpADD Op = iota
	OpSUB
	OpADDI
	OpSLT
	OpSLTI
	OpSLTU
	OpSLTIU
	OpAND
	OpOR
	OpXOR
	OpANDI
	OpORI
	OpXORI
	OpSLL
	OpSRL
	OpSRA
	OpSLLI
	OpSRLI
	OpSRAI
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSW
	OpMUL
	OpDIV
	OpDIVU
	OpREM
	OpREMU
	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI
	OpMRET
	OpWFI
	OpHALT
)

// Instruction is the decoded, tagged representation the assembler emits
// and the interpreter dispatches on. Each case only uses the fields its
// semantics require; Imm carries sign-extended, already-scaled immediates
// (signed displacement for branches/jumps, the shifted value for LUI) so
// Exec does no further decoding.
type Instruction struct {
	Op   Op
	Rd   uint32
	Rs1  uint32
	Rs2  uint32
	Imm  int32  // signed immediate / pc-relative offset
	CSR  uint32 // CSR address, for CSR ops
	Line int    // source line, for diagnostics
}

// setReg writes v into register r, enforcing the x0-is-always-zero
// invariant.
func (c *CPU) setReg(r uint32, v uint32) {
	if r != 0 {
		c.GPR[r] = v
	}
}

// Exec executes one decoded instruction against cpu, updating registers,
// memory, CSRs, and PC. It returns ErrHalted on HALT, any memory fault as
// a *Fault, and an ErrDecode *Fault for an unknown Op. Straight-line
// instructions advance PC by 4 here; control-flow instructions set PC
// themselves.
func (c *CPU) Exec(in Instruction) error {
	switch in.Op {
	case OpADD:
		c.setReg(in.Rd, c.GPR[in.Rs1]+c.GPR[in.Rs2])
	case OpSUB:
		c.setReg(in.Rd, c.GPR[in.Rs1]-c.GPR[in.Rs2])
	case OpADDI:
		c.setReg(in.Rd, uint32(int32(c.GPR[in.Rs1])+in.Imm))
	case OpSLT:
		c.setReg(in.Rd, boolToWord(int32(c.GPR[in.Rs1]) < int32(c.GPR[in.Rs2])))
	case OpSLTI:
		c.setReg(in.Rd, boolToWord(int32(c.GPR[in.Rs1]) < in.Imm))
	case OpSLTU:
		c.setReg(in.Rd, boolToWord(c.GPR[in.Rs1] < c.GPR[in.Rs2]))
	case OpSLTIU:
		c.setReg(in.Rd, boolToWord(c.GPR[in.Rs1] < uint32(in.Imm)))
	case OpAND:
		c.setReg(in.Rd, c.GPR[in.Rs1]&c.GPR[in.Rs2])
	case OpOR:
		c.setReg(in.Rd, c.GPR[in.Rs1]|c.GPR[in.Rs2])
	case OpXOR:
		c.setReg(in.Rd, c.GPR[in.Rs1]^c.GPR[in.Rs2])
	case OpANDI:
		c.setReg(in.Rd, c.GPR[in.Rs1]&uint32(in.Imm))
	case OpORI:
		c.setReg(in.Rd, c.GPR[in.Rs1]|uint32(in.Imm))
	case OpXORI:
		c.setReg(in.Rd, c.GPR[in.Rs1]^uint32(in.Imm))
	case OpSLL:
		c.setReg(in.Rd, c.GPR[in.Rs1]<<(c.GPR[in.Rs2]&0x1f))
	case OpSRL:
		c.setReg(in.Rd, c.GPR[in.Rs1]>>(c.GPR[in.Rs2]&0x1f))
	case OpSRA:
		c.setReg(in.Rd, uint32(int32(c.GPR[in.Rs1])>>(c.GPR[in.Rs2]&0x1f)))
	case OpSLLI:
		c.setReg(in.Rd, c.GPR[in.Rs1]<<(uint32(in.Imm)&0x1f))
	case OpSRLI:
		c.setReg(in.Rd, c.GPR[in.Rs1]>>(uint32(in.Imm)&0x1f))
	case OpSRAI:
		c.setReg(in.Rd, uint32(int32(c.GPR[in.Rs1])>>(uint32(in.Imm)&0x1f)))
	case OpLUI:
		c.setReg(in.Rd, uint32(in.Imm))
	case OpAUIPC:
		c.setReg(in.Rd, c.PC+uint32(in.Imm))
	case OpJAL:
		c.setReg(in.Rd, c.PC+4)
		c.PC = uint32(int32(c.PC) + in.Imm)
		return nil
	case OpJALR:
		target := uint32(int32(c.GPR[in.Rs1])+in.Imm) &^ 1
		c.setReg(in.Rd, c.PC+4)
		c.PC = target
		return nil
	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU:
		if branchTaken(in.Op, c.GPR[in.Rs1], c.GPR[in.Rs2]) {
			c.PC = uint32(int32(c.PC) + in.Imm)
		} else {
			c.PC += 4
		}
		return nil
	case OpLB, OpLH, OpLW, OpLBU, OpLHU:
		return c.execLoad(in)
	case OpSB, OpSH, OpSW:
		return c.execStore(in)
	case OpMUL:
		c.setReg(in.Rd, uint32(int32(c.GPR[in.Rs1])*int32(c.GPR[in.Rs2])))
	case OpDIV:
		c.setReg(in.Rd, divSigned(int32(c.GPR[in.Rs1]), int32(c.GPR[in.Rs2])))
	case OpDIVU:
		c.setReg(in.Rd, divUnsigned(c.GPR[in.Rs1], c.GPR[in.Rs2]))
	case OpREM:
		c.setReg(in.Rd, remSigned(int32(c.GPR[in.Rs1]), int32(c.GPR[in.Rs2])))
	case OpREMU:
		c.setReg(in.Rd, remUnsigned(c.GPR[in.Rs1], c.GPR[in.Rs2]))
	case OpCSRRW, OpCSRRS, OpCSRRC, OpCSRRWI, OpCSRRSI, OpCSRRCI:
		c.execCSR(in)
	case OpMRET:
		c.PC = c.CSR.Mepc
		c.CSR.Mstatus |= MstatusMIE
		return nil
	case OpWFI:
		c.WFI = true
	case OpHALT:
		c.Halted = true
		return ErrHalted
	default:
		return newFault(ErrDecode, c.PC, 4, c.PC, "exec: unknown opcode")
	}
	c.PC += 4
	return nil
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func branchTaken(op Op, a, b uint32) bool {
	switch op {
	case OpBEQ:
		return a == b
	case OpBNE:
		return a != b
	case OpBLT:
		return int32(a) < int32(b)
	case OpBGE:
		return int32(a) >= int32(b)
	case OpBLTU:
		return a < b
	case OpBGEU:
		return a >= b
	default:
		return false
	}
}

// divSigned implements RV32I's DIV, including the division-by-zero and
// signed-overflow edge cases, which never trap.
func divSigned(a, b int32) uint32 {
	switch {
	case b == 0:
		return 0xFFFFFFFF
	case a == -0x80000000 && b == -1:
		return uint32(a)
	default:
		return uint32(a / b)
	}
}

func divUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return 0xFFFFFFFF
	}
	return a / b
}

func remSigned(a, b int32) uint32 {
	switch {
	case b == 0:
		return uint32(a)
	case a == -0x80000000 && b == -1:
		return 0
	default:
		return uint32(a % b)
	}
}

func remUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}

func (c *CPU) execLoad(in Instruction) error {
	addr := uint32(int32(c.GPR[in.Rs1]) + in.Imm)
	switch in.Op {
	case OpLW:
		v, err := c.Memory.ReadWord(addr, c.PC)
		if err != nil {
			return err
		}
		c.setReg(in.Rd, v)
	case OpLH:
		v, err := c.Memory.ReadHalfword(addr, c.PC)
		if err != nil {
			return err
		}
		c.setReg(in.Rd, signExtend16(v))
	case OpLHU:
		v, err := c.Memory.ReadHalfword(addr, c.PC)
		if err != nil {
			return err
		}
		c.setReg(in.Rd, uint32(v))
	case OpLB:
		v, err := c.Memory.ReadByte(addr, c.PC)
		if err != nil {
			return err
		}
		c.setReg(in.Rd, signExtend8(v))
	case OpLBU:
		v, err := c.Memory.ReadByte(addr, c.PC)
		if err != nil {
			return err
		}
		c.setReg(in.Rd, uint32(v))
	}
	c.PC += 4
	return nil
}

func (c *CPU) execStore(in Instruction) error {
	addr := uint32(int32(c.GPR[in.Rs1]) + in.Imm)
	val := c.GPR[in.Rs2]
	var err error
	switch in.Op {
	case OpSW:
		err = c.Memory.WriteWord(addr, val, c.PC)
	case OpSH:
		err = c.Memory.WriteHalfword(addr, uint16(val), c.PC)
	case OpSB:
		err = c.Memory.WriteByte(addr, byte(val), c.PC)
	}
	if err != nil {
		return err
	}
	c.PC += 4
	return nil
}

// execCSR implements the six CSR atomics. Every variant reads the old CSR
// value into rd (respecting x0), then writes the new computed value back
// to the CSR.
func (c *CPU) execCSR(in Instruction) {
	old := c.CSR.Read(in.CSR, c.mip())
	var src uint32
	switch in.Op {
	case OpCSRRW, OpCSRRS, OpCSRRC:
		src = c.GPR[in.Rs1]
	case OpCSRRWI, OpCSRRSI, OpCSRRCI:
		src = in.Rs1 // 5-bit zero-extended immediate, stashed in Rs1
	}
	var next uint32
	switch in.Op {
	case OpCSRRW, OpCSRRWI:
		next = src
	case OpCSRRS, OpCSRRSI:
		next = old | src
	case OpCSRRC, OpCSRRCI:
		next = old &^ src
	}
	c.setReg(in.Rd, old)
	c.CSR.Write(in.CSR, next)
}
