package cli

import "github.com/spf13/cobra"

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the environment variables swanjson reads",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printUsage(cmd.OutOrStdout())
		},
	}
}
