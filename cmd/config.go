package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// DefaultConfigFile is where config init writes when given no path
const DefaultConfigFile = "strux.toml"

var ConfigCmd = &cobra.Command{
	Use:   "config init|show",
	Short: "Write or print the effective options",
}

var configForce *bool

var configInitCmd = &cobra.Command{
	Use:          "init [path]",
	Short:        "Write the effective options to a TOML file, " + DefaultConfigFile + " by default",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions()
		if err != nil {
			return err
		}
		path := DefaultConfigFile
		if len(args) == 1 {
			path = args[0]
		}
		flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
		if *configForce {
			flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		}
		f, err := os.OpenFile(path, flags, 0o644)
		if err != nil {
			return errors.Wrap(err, "could not create config file")
		}
		if err := opts.Encode(f); err != nil {
			_ = f.Close()
			return errors.Wrap(err, "could not write config file")
		}
		return f.Close()
	},
}

var configShowCmd = &cobra.Command{
	Use:          "show",
	Short:        "Print the effective options as TOML",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions()
		if err != nil {
			return err
		}
		return opts.Encode(cmd.OutOrStdout())
	},
}

func init() {
	configForce = configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
	ConfigCmd.AddCommand(configInitCmd, configShowCmd)
}
