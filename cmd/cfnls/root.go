package main

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cfnls",
		Short:         "CloudFormation template tooling",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(validateCmd())
	return cmd
}
