// Package utils holds small process-wide constants shared across
// cmd/classifierd and pkg/supervisor, the way the teacher's pkg/utils does
// for its own daemon binaries.
package utils

const (
	// standard exit codes
	ExitCodeSuccess = iota
	ExitCodeError   = 1

	// custom exit codes (spec.md §7 "Startup fatal")
	ExitCodeArtifactLoad = 100
	ExitCodeEventSocket  = 101
	ExitCodeConfigLoad   = 102
)
