package main

import (
	"fmt"
	"os"

	"titi/internal/servercmd"
)

func main() {
	if err := servercmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
