package vm

import "errors"

// The following errors may be returned by Memory and CPU operations. They
// are deliberately few and carry just enough raw state (via Fault) for an
// external reporter to render a rich diagnostic; the core never formats
// prose itself.
var (
	// ErrHalted indicates that the VM has executed HALT.
	ErrHalted = errors.New("vm: halted")

	// ErrOutOfBounds indicates an access past the end of the 1 MiB
	// address space.
	ErrOutOfBounds = errors.New("vm: address out of bounds")

	// ErrUnaligned indicates a halfword/word access whose address does
	// not satisfy the required alignment.
	ErrUnaligned = errors.New("vm: unaligned access")

	// ErrProtection indicates a write into a write-protected TEXT region.
	ErrProtection = errors.New("vm: write-protection violation")

	// ErrDecode indicates that the program counter does not reference a
	// valid decoded instruction (out of TEXT bounds, or unreachable
	// unknown-opcode state).
	ErrDecode = errors.New("vm: decode error")

	// ErrDeadlock indicates WFI was held with mstatus.MIE == 0 beyond the
	// idle-tick budget (see DeadlockBudget).
	ErrDeadlock = errors.New("vm: deadlock: WFI with interrupts globally disabled")
)

// Fault carries the raw state of a fatal error at the instant it occurred,
// so that pkg/report can render a diagnostic without the core knowing
// anything about text formatting.
type Fault struct {
	Err     error  // the sentinel error, e.g. ErrOutOfBounds
	Addr    uint32 // faulting address, if applicable
	Size    int    // access size in bytes: 1, 2, or 4
	PC      uint32 // PC at the time of the fault
	Message string // short human detail, e.g. "store word"
}

// Error implements the error interface, delegating to the wrapped
// sentinel so errors.Is(fault, ErrOutOfBounds) keeps working.
func (f *Fault) Error() string {
	return f.Message + ": " + f.Err.Error()
}

// Unwrap lets errors.Is/As see through to the sentinel error.
func (f *Fault) Unwrap() error {
	return f.Err
}

func newFault(err error, addr uint32, size int, pc uint32, message string) *Fault {
	return &Fault{Err: err, Addr: addr, Size: size, PC: pc, Message: message}
}
