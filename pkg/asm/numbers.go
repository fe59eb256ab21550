package asm

import (
	"strconv"
	"strings"
)

// parseIntLiteral parses a decimal, 0x-hex, or 0b-binary integer literal,
// with an optional leading sign. Char literals are handled separately by
// lexChar.
func parseIntLiteral(word string, lineno int) (int64, error) {
	neg := false
	s := word
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	var v int64
	var err error
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		v, err = strconv.ParseInt(s[2:], 16, 64)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		v, err = strconv.ParseInt(s[2:], 2, 64)
	default:
		v, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, newError(ErrOutOfRange, lineno, word, err.Error())
	}
	if neg {
		v = -v
	}
	return v, nil
}
