package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mrosen/rv32edu/pkg/vm"
)

// registerByName is the abi-name -> index table, built once at package
// initialization; resolveRegister lowercases names before looking them up,
// the way mnemonics are folded.
var registerByName = func() map[string]uint32 {
	m := make(map[string]uint32, vm.NumRegisters*2)
	for i, name := range vm.RegisterNames {
		m[name] = uint32(i)
	}
	return m
}()

// resolveRegister accepts either an ABI name ("sp", "a0") or an "xN" form
// and returns its register index.
func resolveRegister(tok Token, lineno int) (uint32, error) {
	if tok.Kind != TokIdent {
		return 0, newError(ErrBadRegister, lineno, tok.Text, "expected a register")
	}
	name := strings.ToLower(tok.Text)
	if idx, ok := registerByName[name]; ok {
		return idx, nil
	}
	if strings.HasPrefix(name, "x") {
		n, err := strconv.Atoi(name[1:])
		if err == nil && n >= 0 && n < vm.NumRegisters {
			return uint32(n), nil
		}
	}
	return 0, newError(ErrBadRegister, lineno, tok.Text, fmt.Sprintf("unknown register %q", tok.Text))
}
