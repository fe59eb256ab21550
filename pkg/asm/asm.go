// Package asm is the two-pass assembler: it lexes a source string,
// resolves labels and pseudo-instructions, and emits a decoded text image
// plus a DATA byte image that pkg/vm's CPU can load directly.
package asm

import "github.com/mrosen/rv32edu/pkg/vm"

// Result is the output of a successful assembly.
type Result struct {
	Text []vm.Instruction // decoded TEXT image, indexed by PC/4
	Data []byte           // DATA region bytes, to be loaded at vm.DataBase
}

// Assemble runs both passes over src and returns the assembled program, or
// the first *Error encountered. Assembly happens in two synchronous
// stages, layout (pass 1) then resolve (pass 2), since the whole source is
// available up front and there is no caller waiting on a streamed partial
// result.
func Assemble(src string) (*Result, error) {
	lines, err := Lex(src)
	if err != nil {
		return nil, err
	}
	stmts, err := parseStatements(lines)
	if err != nil {
		return nil, err
	}
	labels, textSize, dataSize, err := layout(stmts)
	if err != nil {
		return nil, err
	}
	text, data, err := resolve(stmts, labels, textSize, dataSize)
	if err != nil {
		return nil, err
	}
	return &Result{Text: text, Data: data}, nil
}
