//go:build windows

package ptyio

// ResolveShell returns the platform's default interactive shell.
func ResolveShell() string { return "powershell.exe" }
