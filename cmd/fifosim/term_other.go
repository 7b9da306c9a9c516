//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package main

import (
	"os"
)

// isTerminal treats character devices as terminals
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
