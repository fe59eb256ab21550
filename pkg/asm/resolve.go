package asm

import (
	"encoding/binary"

	"github.com/mrosen/rv32edu/pkg/vm"
)

// resolve walks the statements a second time,
// producing the decoded text image and the raw DATA bytes. It assumes
// layout has already run and populated each statement's Addr/Size/InText.
func resolve(stmts []*statement, labels map[string]uint32, textSize, dataSize uint32) ([]vm.Instruction, []byte, error) {
	text := make([]vm.Instruction, textSize/4)
	data := make([]byte, dataSize)

	for _, s := range stmts {
		switch s.Kind {
		case stmtDirective:
			switch s.Name {
			case "word":
				ops := splitCommas(s.Operands)
				off := s.Addr - vm.DataBase
				for _, tok := range ops {
					v, err := resolveAbsolute(tok, s.Lineno, labels)
					if err != nil {
						return nil, nil, err
					}
					binary.LittleEndian.PutUint32(data[off:off+4], uint32(v))
					off += 4
				}
			case "string", "asciiz":
				off := s.Addr - vm.DataBase
				copy(data[off:], s.Operands[0].Text)
				data[off+uint32(len(s.Operands[0].Text))] = 0
			}

		case stmtInstruction:
			if s.Name == "" {
				continue
			}
			idx := s.Addr / 4
			if _, ok := realOps[s.Name]; ok {
				in, err := buildReal(s, s.Addr, labels)
				if err != nil {
					return nil, nil, err
				}
				text[idx] = in
				continue
			}
			expanded, err := buildPseudo(s, s.Addr, labels)
			if err != nil {
				return nil, nil, err
			}
			for i, in := range expanded {
				text[idx+uint32(i)] = in
			}
		}
	}
	return text, data, nil
}
