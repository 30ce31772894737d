package main

import (
	"os"

	"github.com/cottand/strux/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "strux [subcommand]",
	Short:        "strux type checks a gradually and structurally typed language",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	cmd.AddOptionFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(cmd.CheckCmd)
	rootCmd.AddCommand(cmd.DumpCmd)
	rootCmd.AddCommand(cmd.TypesCmd)
	rootCmd.AddCommand(cmd.ConfigCmd)
}
