package commands

import (
	"github.com/fatih/color"
)

// Colors switch themselves off when stdout is not a terminal.
var (
	eligibleColor = color.New(color.FgGreen, color.Bold)
	rejectedColor = color.New(color.FgRed, color.Bold)
	warningColor  = color.New(color.FgYellow)
	advisorColor  = color.New(color.FgCyan)
	promptColor   = color.New(color.Bold)
)
