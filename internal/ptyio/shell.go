package ptyio

import (
	"bufio"
	"os"
	"path/filepath"
)

// safeBasenames are shell basenames trusted even when not listed in
// /etc/shells, per spec 4.C.
var safeBasenames = map[string]bool{
	"sh": true, "bash": true, "zsh": true, "dash": true,
	"ksh": true, "fish": true, "tcsh": true, "csh": true,
}

// fallbackShells is tried in order when $SHELL fails validation.
var fallbackShells = []string{"/bin/bash", "/bin/zsh", "/bin/sh"}

func validateShell(path string) bool {
	if !filepath.IsAbs(path) {
		return false
	}
	if !fileExists(path) {
		return false
	}
	if safeBasenames[filepath.Base(path)] {
		return true
	}
	return listedInEtcShells(path)
}

func listedInEtcShells(path string) bool {
	f, err := os.Open("/etc/shells")
	if err != nil {
		return false
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if line == path {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
