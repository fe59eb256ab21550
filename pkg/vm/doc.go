// Package vm contains the RV32EDU virtual machine: a register file,
// memory, CSR file, two memory-mapped timers, an 80x25 text display, and
// the deterministic step loop that ties them together.
//
// # Instruction representation
//
// Unlike a bit-encoded RV32I word, an Instruction here is already decoded:
// the assembler (pkg/asm) resolves labels, pseudo-instructions, and
// immediates ahead of time and hands the interpreter a tagged Instruction
// value per machine instruction. Exec is therefore a straight dispatch on
// Op with no bit-field extraction at run time.
//
// # Address space
//
// Memory is a flat 1 MiB byte array divided into TEXT, DATA, HEAP, STACK,
// and RAM regions, plus three memory-mapped device ranges: the display
// buffer/control block and the two timers' register blocks. TEXT doubles
// as the bound on Program, the decoded instruction vector CPU fetches
// from by PC/4 index; ordinary byte/halfword/word accesses into TEXT still
// go through Memory for write-protection and alignment checking.
//
// # Step pipeline
//
// Each call to CPU.Step, in order: ticks the cycle timer, samples the
// real-time timer against the wall clock, composes mip from both devices'
// pending bits, resolves a pending-and-enabled trap if mstatus.MIE allows
// it, and otherwise either stays parked on WFI or fetches and dispatches
// the next decoded instruction.
package vm
