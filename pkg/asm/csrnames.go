package asm

import "github.com/mrosen/rv32edu/pkg/vm"

// csrByName lets source refer to a CSR by its mnemonic name instead of its
// raw address.
var csrByName = map[string]uint32{
	"mstatus": vm.CSRMstatus,
	"mie":     vm.CSRMie,
	"mtvec":   vm.CSRMtvec,
	"mepc":    vm.CSRMepc,
	"mcause":  vm.CSRMcause,
	"mip":     vm.CSRMip,
}

func resolveCSR(tok Token, lineno int) (uint32, error) {
	switch tok.Kind {
	case TokNumber:
		return uint32(tok.Num), nil
	case TokIdent:
		if addr, ok := csrByName[foldIdent(tok.Text)]; ok {
			return addr, nil
		}
		return 0, newError(ErrUnexpectedToken, lineno, tok.Text, "unknown CSR name")
	default:
		return 0, newError(ErrUnexpectedToken, lineno, tok.Text, "expected a CSR address or name")
	}
}
