//go:build !unix && !windows

package ptyio

// ResolveShell returns the platform's default interactive shell.
// Strict $SHELL validation (spec 4.C) is a Unix-specific concept
// (/etc/shells, absolute-path conventions); other platforms use their
// own default.
func ResolveShell() string {
	return "sh"
}
