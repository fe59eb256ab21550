package vm

import "time"

// NumRegisters is the number of general-purpose registers; x0 is
// hardwired to 0.
const NumRegisters = 32

// DeadlockBudget bounds how many consecutive idle step-loop iterations
// (WFI held, no pending-and-enabled interrupt) are tolerated before Step
// reports ErrDeadlock. The error is only reported while mstatus.MIE is 0.
const DeadlockBudget = 1_000_000

// RegisterNames maps register index to its RV32 ABI name, used by the
// assembler for name resolution and by the disassembler/reporter for
// display.
var RegisterNames = [NumRegisters]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// CPU is a virtual machine instance: register file, program counter, CSR
// file, memory, and the two timer devices. It is not goroutine-safe; a
// single goroutine should drive Step/Run.
type CPU struct {
	GPR [NumRegisters]uint32
	PC  uint32
	CSR CSRFile

	Halted bool
	WFI    bool

	Memory     *Memory
	Display    *Display
	CycleTimer *CycleTimer
	RTTimer    *RTTimer

	// Program is the decoded text image the assembler produced. PC must
	// be a multiple of 4 and Program[PC/4] must exist for fetch to
	// succeed.
	Program []Instruction

	idleTicks uint64

	// Now returns the wall-clock reading used to sample the real-time
	// timer. Defaults to time.Now; overridable for deterministic tests.
	Now func() time.Time
}

// NewCPU returns a freshly reset CPU with its memory and devices wired
// together according to the machine's memory region layout.
func NewCPU() *CPU {
	display := NewDisplay()
	cycleTimer := &CycleTimer{}
	rtTimer := &RTTimer{}
	mem := NewMemory(display, cycleTimer, rtTimer)
	c := &CPU{
		Memory:     mem,
		Display:    display,
		CycleTimer: cycleTimer,
		RTTimer:    rtTimer,
		Now:        time.Now,
	}
	c.Reset()
	return c
}

// Reset zeroes the register file (sp returns to StackInitialSP), clears
// CSRs, and sets PC to 0. The loaded program and
// DATA image are not touched.
func (c *CPU) Reset() {
	c.GPR = [NumRegisters]uint32{}
	c.GPR[2] = StackInitialSP // sp
	c.PC = 0
	c.CSR.Reset()
	c.Halted = false
	c.WFI = false
	c.idleTicks = 0
}

// LoadProgram installs the assembled text image and initializes the DATA
// region: a loaded program overwrites the TEXT region and initializes any
// .data bytes into the DATA region.
func (c *CPU) LoadProgram(text []Instruction, data []byte) error {
	c.Program = text
	if len(data) == 0 {
		return nil
	}
	return c.Memory.LoadProgram(data, DataBase)
}

// Mip exposes the derived interrupt-pending register for diagnostics
// (pkg/report); CSR reads/writes go through the unexported mip via Exec.
func (c *CPU) Mip() uint32 {
	return c.mip()
}

// mip composes the interrupt-pending register from live timer state; it
// is derived on every sample rather than stored.
func (c *CPU) mip() uint32 {
	var mip uint32
	if c.CycleTimer.Pending() {
		mip |= MieMTIE
	}
	if c.RTTimer.Pending() {
		mip |= MieMTIERT
	}
	return mip
}

// fetch returns the decoded instruction at PC, or ErrDecode if PC is not
// a valid instruction address.
func (c *CPU) fetch() (Instruction, error) {
	if c.PC%4 != 0 {
		return Instruction{}, newFault(ErrDecode, c.PC, 4, c.PC, "fetch: misaligned PC")
	}
	idx := c.PC / 4
	if idx >= uint32(len(c.Program)) {
		return Instruction{}, newFault(ErrDecode, c.PC, 4, c.PC, "fetch: PC outside TEXT")
	}
	return c.Program[idx], nil
}

// Step advances the machine by exactly one step of the pipeline: tick the
// cycle timer, sample the real-time timer, compose mip, resolve a
// pending-and-enabled trap if one exists, otherwise either stay parked on
// WFI or fetch-dispatch one instruction.
func (c *CPU) Step() error {
	if c.Halted {
		return ErrHalted
	}

	c.CycleTimer.Tick()
	c.RTTimer.Sample(c.Now())

	mip := c.mip()
	pendingEnabled := mip & c.CSR.Mie
	if pendingEnabled != 0 && c.CSR.Mstatus&MstatusMIE != 0 {
		c.enterTrap(pendingEnabled)
		c.idleTicks = 0
		return nil
	}

	if c.WFI {
		c.idleTicks++
		if c.CSR.Mstatus&MstatusMIE == 0 && c.idleTicks > DeadlockBudget {
			return newFault(ErrDeadlock, c.PC, 0, c.PC, "WFI deadlock")
		}
		return nil
	}
	c.idleTicks = 0

	in, err := c.fetch()
	if err != nil {
		return err
	}
	err = c.Exec(in)
	c.GPR[0] = 0 // invariant: x0 reads as 0 at every observable boundary
	return err
}

// enterTrap saves PC into mepc, selects the highest-priority pending and
// enabled source (cycle timer before real-time timer), writes mcause,
// clears mstatus.MIE, clears WFI, and diverts PC to mtvec. It never clears the device's own pending bit; the handler must
// do that explicitly via write-1-to-clear.
func (c *CPU) enterTrap(pendingEnabled uint32) {
	c.CSR.Mepc = c.PC
	if pendingEnabled&MieMTIE != 0 {
		c.CSR.Mcause = McauseCycleTimer
	} else {
		c.CSR.Mcause = McauseRTTimer
	}
	c.CSR.Mstatus &^= MstatusMIE
	c.WFI = false
	c.PC = c.CSR.Mtvec
}

// Run steps the machine until it halts, a budget of instructions is
// exhausted (budget == 0 means unbounded), or Step returns an error other
// than ErrHalted. It returns the number of steps actually taken.
func (c *CPU) Run(budget uint64) (uint64, error) {
	var n uint64
	for budget == 0 || n < budget {
		wasHalted := c.Halted
		if err := c.Step(); err != nil {
			if err == ErrHalted {
				if !wasHalted {
					n++ // the step that executed HALT
				}
				return n, nil
			}
			return n, err
		}
		n++
		if c.Halted {
			return n, nil
		}
	}
	return n, nil
}
