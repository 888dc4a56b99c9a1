package main

import (
	"fmt"
	"os"

	"titi/internal/termcmd"
)

func main() {
	if err := termcmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
