package main

import (
	"os"

	"github.com/yhlin/chipmon/cmd/chipmon/commands"
)

// main is the entry point for the chipmon CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
