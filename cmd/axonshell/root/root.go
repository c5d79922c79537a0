package root

import (
	"github.com/spf13/cobra"

	"github.com/axonius-community/go-axonius/cmd/axonshell/assets"
	"github.com/axonius-community/go-axonius/cmd/axonshell/version"
)

// NewRootCmd creates the root command for axonshell.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "axonshell",
		Short: "CLI for the Axonius asset-management platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(version.Cmd)
	cmd.AddCommand(assets.NewCmd())

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
