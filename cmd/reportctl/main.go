package main

import (
	"fmt"
	"os"

	"codelens/internal/intake"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", intake.UserMessage(err))
		os.Exit(1)
	}
}
