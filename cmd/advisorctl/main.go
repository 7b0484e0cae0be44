package main

import (
	"os"

	"github.com/Kathan1010/LoanAdviser/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
