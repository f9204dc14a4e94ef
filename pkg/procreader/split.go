// Package procreader implements the per-process feature sources documented
// in spec.md §4.1: reading and tokenizing the nine kernel pseudo-FS sources
// plus the system journal for a given pid.
package procreader

import "strings"

// splitAny splits s on any rune present in delimiters, dropping empty
// fields, mirroring the original splitString(input, delimiters) helper.
func splitAny(s, delimiters string) []string {
	if delimiters == "" {
		return []string{s}
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(delimiters, r)
	})
	return fields
}
