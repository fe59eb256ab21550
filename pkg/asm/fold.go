package asm

import "strings"

// foldIdent lowercases a mnemonic/directive/register identifier. Labels are
// never passed through this: they are case-sensitive.
func foldIdent(s string) string {
	return strings.ToLower(s)
}
