package asm

import (
	"errors"
	"strings"
	"testing"

	"github.com/mrosen/rv32edu/pkg/vm"
)

func TestLexStripsCommentsAndBlankLines(t *testing.T) {
	lines, err := Lex("addi a0, zero, 1 # comment\n\n; also a comment\nhalt\n")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Tokens[0].Text != "addi" {
		t.Fatalf("first token = %q, want addi", lines[0].Tokens[0].Text)
	}
}

func TestLexNumberLiterals(t *testing.T) {
	lines, err := Lex("addi a0, zero, -0x10\naddi a1, zero, 0b101\naddi a2, zero, 42")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	want := []int64{-16, 5, 42}
	for i, ln := range lines {
		got := ln.Tokens[len(ln.Tokens)-1].Num
		if got != want[i] {
			t.Fatalf("line %d: imm = %d, want %d", i, got, want[i])
		}
	}
}

func TestLexCharAndStringLiterals(t *testing.T) {
	lines, err := Lex(`.string "hi\n"` + "\n" + `addi a0, zero, '\n'`)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	str := lines[0].Tokens[1]
	if str.Kind != TokString || str.Text != "hi\n" {
		t.Fatalf("string token = %+v", str)
	}
	ch := lines[1].Tokens[len(lines[1].Tokens)-1]
	if ch.Kind != TokNumber || ch.Num != int64('\n') {
		t.Fatalf("char literal = %+v", ch)
	}
}

func TestLexUnterminatedStringErrors(t *testing.T) {
	_, err := Lex(`.string "unterminated`)
	if err == nil {
		t.Fatal("expected an error")
	}
	var aerr *Error
	if !errors.As(err, &aerr) || !errors.Is(aerr.Err, ErrUnterminatedString) {
		t.Fatalf("err = %v, want ErrUnterminatedString", err)
	}
}

func TestParseStatementsMultipleLabelsOneLine(t *testing.T) {
	lines, err := Lex("foo: bar: addi a0, zero, 0")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	stmts, err := parseStatements(lines)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	if stmts[0].Label != "foo" || stmts[0].Name != "" {
		t.Fatalf("first statement = %+v", stmts[0])
	}
	if stmts[1].Label != "bar" || stmts[1].Name != "addi" {
		t.Fatalf("second statement = %+v", stmts[1])
	}
}

func TestAssembleSimpleProgram(t *testing.T) {
	src := `
	.text
start:
	addi a0, zero, 1
	addi a1, zero, 2
	add  a2, a0, a1
	halt
`
	res, err := Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(res.Text) != 4 {
		t.Fatalf("got %d instructions, want 4", len(res.Text))
	}
	if res.Text[2].Op != vm.OpADD || res.Text[2].Rd != 12 {
		t.Fatalf("third instruction = %+v", res.Text[2])
	}
	if res.Text[3].Op != vm.OpHALT {
		t.Fatalf("fourth instruction = %+v, want HALT", res.Text[3])
	}
}

func TestAssembleUndefinedLabel(t *testing.T) {
	_, err := Assemble("jal ra, nowhere\nhalt")
	if err == nil {
		t.Fatal("expected an error")
	}
	var aerr *Error
	if !errors.As(err, &aerr) || !errors.Is(aerr.Err, ErrUndefinedLabel) {
		t.Fatalf("err = %v, want ErrUndefinedLabel", err)
	}
}

func TestAssembleDuplicateLabel(t *testing.T) {
	src := "foo: halt\nfoo: halt"
	_, err := Assemble(src)
	if err == nil {
		t.Fatal("expected an error")
	}
	var aerr *Error
	if !errors.As(err, &aerr) || !errors.Is(aerr.Err, ErrDuplicateLabel) {
		t.Fatalf("err = %v, want ErrDuplicateLabel", err)
	}
}

func TestAssembleBackwardBranch(t *testing.T) {
	// loop: addi a0, a0, -1; bne a0, zero, loop; halt
	src := `
loop:
	addi a0, a0, -1
	bne  a0, zero, loop
	halt
`
	res, err := Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	bne := res.Text[1]
	if bne.Op != vm.OpBNE || bne.Imm != -4 {
		t.Fatalf("bne = %+v, want Imm=-4", bne)
	}
}

func TestAssembleLAHiLoSplit(t *testing.T) {
	// la a0, 0x12345678 must reconstruct exactly via LUI hi + ADDI lo.
	src := "la a0, 0x12345678\nhalt"
	res, err := Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	lui, addi := res.Text[0], res.Text[1]
	if lui.Op != vm.OpLUI || addi.Op != vm.OpADDI {
		t.Fatalf("la expanded to %+v, %+v", lui, addi)
	}
	got := uint32(lui.Imm) + uint32(addi.Imm)
	if got != 0x12345678 {
		t.Fatalf("reconstructed 0x%x, want 0x12345678", got)
	}
}

func TestAssemblePseudoInstructions(t *testing.T) {
	src := `
start:
	nop
	mv   a0, a1
	call helper
	ret
helper:
	j start
`
	res, err := Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if res.Text[0].Op != vm.OpADDI || res.Text[0].Rd != 0 || res.Text[0].Rs1 != 0 {
		t.Fatalf("nop = %+v", res.Text[0])
	}
	if res.Text[1].Op != vm.OpADDI || res.Text[1].Rd != 10 || res.Text[1].Rs1 != 11 {
		t.Fatalf("mv = %+v", res.Text[1])
	}
	if res.Text[2].Op != vm.OpJAL || res.Text[2].Rd != 1 {
		t.Fatalf("call = %+v, want JAL ra,...", res.Text[2])
	}
	if res.Text[3].Op != vm.OpJALR || res.Text[3].Rd != 0 || res.Text[3].Rs1 != 1 {
		t.Fatalf("ret = %+v", res.Text[3])
	}
	if res.Text[4].Op != vm.OpJAL || res.Text[4].Rd != 0 {
		t.Fatalf("j = %+v", res.Text[4])
	}
}

func TestAssembleDataDirectives(t *testing.T) {
	src := `
.data
nums:
	.word 1, 2, 3
msg:
	.string "hi"
.text
	halt
`
	res, err := Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(res.Data) != 12+3 {
		t.Fatalf("data len = %d, want 15", len(res.Data))
	}
	if res.Data[0] != 1 || res.Data[4] != 2 || res.Data[8] != 3 {
		t.Fatalf("word data = %v", res.Data[:12])
	}
	if string(res.Data[12:14]) != "hi" || res.Data[14] != 0 {
		t.Fatalf("string data = %v", res.Data[12:])
	}
}

func TestAssembleCSRByNameAndNumber(t *testing.T) {
	src := `
	csrrw a0, mstatus, a1
	csrrs a0, 0x304, a1
	halt
`
	res, err := Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if res.Text[0].CSR != vm.CSRMstatus {
		t.Fatalf("csr = 0x%x, want mstatus", res.Text[0].CSR)
	}
	if res.Text[1].CSR != vm.CSRMie {
		t.Fatalf("csr = 0x%x, want mie", res.Text[1].CSR)
	}
}

func TestAssembleCSRImmediateRange(t *testing.T) {
	_, err := Assemble("csrrwi a0, mstatus, 32\nhalt")
	if err == nil {
		t.Fatal("expected an error for out-of-range CSR immediate")
	}
	var aerr *Error
	if !errors.As(err, &aerr) || !errors.Is(aerr.Err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestAssembleLoadStoreMemOperand(t *testing.T) {
	src := "sw a0, 4(sp)\nlw a1, 4(sp)\nhalt"
	res, err := Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	sw := res.Text[0]
	if sw.Op != vm.OpSW || sw.Imm != 4 || sw.Rs1 != 2 || sw.Rs2 != 10 {
		t.Fatalf("sw = %+v", sw)
	}
	lw := res.Text[1]
	if lw.Op != vm.OpLW || lw.Imm != 4 || lw.Rs1 != 2 || lw.Rd != 11 {
		t.Fatalf("lw = %+v", lw)
	}
}

func TestAssembleMisalignedBranchTarget(t *testing.T) {
	// Every real instruction is 4 bytes and every pseudo-instruction
	// expands to a whole number of 4-byte words, so text labels always sit
	// on 4-byte boundaries; exercise the check directly against an odd
	// absolute address instead.
	labels := map[string]uint32{"odd": 5}
	_, err := resolvePCRelative(Token{Kind: TokIdent, Text: "odd"}, 1, 0, labels)
	if err == nil {
		t.Fatal("expected a misaligned target error")
	}
	if !errors.Is(err, ErrMisalignedTarget) {
		t.Fatalf("err = %v, want ErrMisalignedTarget", err)
	}
}

func TestDisassembleRoundTripsMnemonics(t *testing.T) {
	src := `
	add  a0, a1, a2
	addi a0, a1, 5
	lw   a0, 4(sp)
	sw   a0, 4(sp)
	beq  a0, a1, there
there:
	halt
`
	res, err := Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	want := []string{"add", "addi", "lw", "sw", "beq", "halt"}
	if len(res.Text) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(res.Text), len(want))
	}
	for i, in := range res.Text {
		dis := strings.TrimSpace(vm.Disassemble(in))
		if dis == "" {
			t.Fatalf("empty disassembly for %+v", in)
		}
		if got := strings.Fields(dis)[0]; got != want[i] {
			t.Fatalf("instruction %d disassembles as %q, want mnemonic %q", i, dis, want[i])
		}
	}
}

func TestAssembleUnknownMnemonic(t *testing.T) {
	_, err := Assemble("frobnicate a0, a1, a2")
	if err == nil {
		t.Fatal("expected an error")
	}
	var aerr *Error
	if !errors.As(err, &aerr) || !errors.Is(aerr.Err, ErrUnknownMnemonic) {
		t.Fatalf("err = %v, want ErrUnknownMnemonic", err)
	}
}

func TestAssembleBadOperandCount(t *testing.T) {
	_, err := Assemble("add a0, a1")
	if err == nil {
		t.Fatal("expected an error")
	}
	var aerr *Error
	if !errors.As(err, &aerr) || !errors.Is(aerr.Err, ErrBadOperandCount) {
		t.Fatalf("err = %v, want ErrBadOperandCount", err)
	}
}

func TestAssembleFibonacciPrefix(t *testing.T) {
	// a0=0, a1=1, then each ai = a(i-2)+a(i-1) chains out the fibonacci
	// prefix 0,1,1,2,3,5,8,13,21,34.
	src := `
	addi a0, zero, 0
	addi a1, zero, 1
	add  a2, a0, a1
	add  a3, a1, a2
	add  a4, a2, a3
	add  a5, a3, a4
	add  a6, a4, a5
	add  a7, a5, a6
	add  t0, a6, a7
	add  t1, a7, t0
	halt
`
	res, err := Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	cpu := vm.NewCPU()
	if err := cpu.LoadProgram(res.Text, res.Data); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := cpu.Run(0); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []uint32{0, 1, 1, 2, 3, 5, 8, 13, 21, 34}
	got := []uint32{
		cpu.GPR[10], cpu.GPR[11], cpu.GPR[12], cpu.GPR[13], cpu.GPR[14],
		cpu.GPR[15], cpu.GPR[16], cpu.GPR[17], cpu.GPR[5], cpu.GPR[6],
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fib[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
