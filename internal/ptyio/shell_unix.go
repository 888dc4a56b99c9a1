//go:build unix

package ptyio

import "os"

// ResolveShell picks the shell to spawn, honouring $SHELL only if it
// passes strict validation: an absolute path, an existing file, and
// either listed in /etc/shells or a known-safe basename (spec 4.C).
// Otherwise the first existing fallback shell is used, defaulting to
// /bin/sh.
func ResolveShell() string {
	if sh := os.Getenv("SHELL"); sh != "" && validateShell(sh) {
		return sh
	}
	for _, sh := range fallbackShells {
		if fileExists(sh) {
			return sh
		}
	}
	return "/bin/sh"
}
