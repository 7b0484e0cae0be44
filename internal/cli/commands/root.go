package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// NewRootCommand builds the advisorctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "advisorctl",
		Short:   "Loan adviser CLI",
		Version: version,
		Long: `A command-line client for the loan adviser. Chat with a running
advisor server or evaluate a complete profile locally.`,
		Example: `  # Talk to a local server
  $ advisorctl chat -s http://localhost:8000

  # Evaluate a profile without a conversation
  $ advisorctl check --type personal --income 50000 --age 30 --employment-months 24 --amount 500000 --tenure 5`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().Bool("no-color", false, "disable colored output")
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate(fmt.Sprintf("advisorctl version %s\n", version))

	root.AddCommand(newChatCommand())
	root.AddCommand(newCheckCommand())
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}
