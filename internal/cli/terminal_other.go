//go:build !windows

package cli

// Unix terminals support ANSI escape sequences by default.
func enableVirtualTerminal() {}
