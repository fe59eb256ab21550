package asm

// stmtKind classifies a parsed statement.
type stmtKind int

const (
	stmtInstruction stmtKind = iota
	stmtDirective
)

// statement is one source line after label stripping: either a directive
// (.text, .data, .word, .string, .asciiz) or a mnemonic with its operand
// tokens.
type statement struct {
	Lineno int
	Label  string // "" if this line defines no label

	Kind      stmtKind
	Name      string // directive name ("word", "text", ...) or mnemonic, lowercased
	Operands  []Token

	// Set during pass 1.
	Addr      uint32
	Size      int // bytes this statement occupies (4 or 8 for instructions; directive-dependent)
	InText    bool
}

// parseStatements groups lexed Lines into statements. A line may open with
// any number of "label:" definitions (all but the last attach to a bare
// label-only statement at the same address) before its directive or
// mnemonic.
func parseStatements(lines []Line) ([]*statement, error) {
	var stmts []*statement
	for _, ln := range lines {
		toks := ln.Tokens
		for len(toks) > 0 && toks[0].Kind == TokLabelDef && len(toks) > 1 && toks[1].Kind == TokLabelDef {
			stmts = append(stmts, &statement{Lineno: ln.Lineno, Label: toks[0].Text})
			toks = toks[1:]
		}
		var label string
		if len(toks) > 0 && toks[0].Kind == TokLabelDef {
			label = toks[0].Text
			toks = toks[1:]
		}
		if len(toks) == 0 {
			if label != "" {
				stmts = append(stmts, &statement{Lineno: ln.Lineno, Label: label})
			}
			continue
		}
		head := toks[0]
		if head.Kind != TokIdent {
			return nil, newError(ErrUnexpectedToken, ln.Lineno, head.Text, "expected a mnemonic or directive")
		}
		name := foldIdent(head.Text)
		rest := toks[1:]
		var s *statement
		if len(name) > 0 && name[0] == '.' {
			s = &statement{Lineno: ln.Lineno, Label: label, Kind: stmtDirective, Name: name[1:], Operands: rest}
		} else {
			s = &statement{Lineno: ln.Lineno, Label: label, Kind: stmtInstruction, Name: name, Operands: rest}
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}
