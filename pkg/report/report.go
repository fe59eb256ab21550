// Package report formats a VM fault and machine snapshot into human-
// readable diagnostic text. It is a pure formatter: it never touches
// control flow; the caller prints its output (cmd/rvm via log.Fatal).
package report

import (
	"fmt"
	"strings"

	"github.com/mrosen/rv32edu/pkg/vm"
)

// Snapshot captures everything about a CPU worth printing when execution
// stops, whether cleanly (HALT) or on a fault.
type Snapshot struct {
	PC      uint32
	GPR     [vm.NumRegisters]uint32
	Mstatus uint32
	Mie     uint32
	Mip     uint32
	Mepc    uint32
	Mcause  uint32
	Halted  bool
	WFI     bool
}

// Capture builds a Snapshot from the live CPU state.
func Capture(c *vm.CPU) Snapshot {
	return Snapshot{
		PC:      c.PC,
		GPR:     c.GPR,
		Mstatus: c.CSR.Mstatus,
		Mie:     c.CSR.Mie,
		Mip:     c.Mip(),
		Mepc:    c.CSR.Mepc,
		Mcause:  c.CSR.Mcause,
		Halted:  c.Halted,
		WFI:     c.WFI,
	}
}

// Registers renders the general-purpose register file by ABI name, eight
// registers to a line.
func (s Snapshot) Registers() string {
	var b strings.Builder
	for i, v := range s.GPR {
		fmt.Fprintf(&b, "%-4s=0x%08x ", vm.RegisterNames[i], v)
		if i%8 == 7 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Summary renders a one-line machine state header.
func (s Snapshot) Summary() string {
	return fmt.Sprintf(
		"pc=0x%05x mstatus=0x%x mie=0x%x mip=0x%x mepc=0x%05x mcause=0x%x halted=%v wfi=%v",
		s.PC, s.Mstatus, s.Mie, s.Mip, s.Mepc, s.Mcause, s.Halted, s.WFI,
	)
}

// Fault renders a *vm.Fault alongside the snapshot taken when it occurred,
// naming the failing address, access size, and faulting PC.
func Fault(err *vm.Fault, snap Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "fault: %s\n", err.Error())
	fmt.Fprintf(&b, "fault addr=0x%05x size=%d pc=0x%05x\n", err.Addr, err.Size, err.PC)
	fmt.Fprintf(&b, "%s\n", snap.Summary())
	b.WriteString(snap.Registers())
	return b.String()
}
