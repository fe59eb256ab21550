package asm

import "github.com/mrosen/rv32edu/pkg/vm"

// layout walks the parsed statements once,
// assigning each statement its final address and byte size and recording
// every label's resolved address. Labels bind to the cursor of whichever
// section is active when they are defined; data directives advance the
// data cursor, and instructions (real or pseudo, counted at their
// expanded length) always advance the text cursor.
func layout(stmts []*statement) (labels map[string]uint32, textSize, dataSize uint32, err error) {
	labels = make(map[string]uint32)
	section := "text"
	textCursor := vm.TextBase
	dataCursor := vm.DataBase

	cursor := func() uint32 {
		if section == "data" {
			return dataCursor
		}
		return textCursor
	}

	for _, s := range stmts {
		if s.Label != "" {
			if _, dup := labels[s.Label]; dup {
				return nil, 0, 0, newError(ErrDuplicateLabel, s.Lineno, s.Label, "")
			}
			labels[s.Label] = cursor()
		}

		switch s.Kind {
		case stmtDirective:
			switch s.Name {
			case "text":
				section = "text"
			case "data":
				section = "data"
			case "word":
				ops := splitCommas(s.Operands)
				if len(ops) == 0 {
					return nil, 0, 0, newError(ErrBadOperandCount, s.Lineno, s.Name, "expected at least one expr")
				}
				s.Addr = dataCursor
				s.Size = 4 * len(ops)
				dataCursor += uint32(s.Size)
			case "string", "asciiz":
				if len(s.Operands) != 1 || s.Operands[0].Kind != TokString {
					return nil, 0, 0, newError(ErrBadOperandCount, s.Lineno, s.Name, "expected one string literal")
				}
				s.Addr = dataCursor
				s.Size = len(s.Operands[0].Text) + 1 // + trailing NUL
				dataCursor += uint32(s.Size)
			default:
				if s.Name != "" {
					return nil, 0, 0, newError(ErrUnknownDirective, s.Lineno, s.Name, "")
				}
			}

		case stmtInstruction:
			if s.Name == "" {
				continue // bare label-only statement
			}
			words, ok := instructionWords(s.Name)
			if !ok {
				return nil, 0, 0, newError(ErrUnknownMnemonic, s.Lineno, s.Name, "")
			}
			s.Addr = textCursor
			s.Size = words * 4
			s.InText = true
			textCursor += uint32(s.Size)
		}
	}
	return labels, textCursor, dataCursor - vm.DataBase, nil
}
