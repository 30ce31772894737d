package cmd

import (
	"fmt"

	"github.com/cottand/strux/strux"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var DumpCmd = &cobra.Command{
	Use:   "dump ast|flow|symbols FILE",
	Short: "Print the syntax tree, flow graph or symbols of a file",
}

var TypesCmd = &cobra.Command{
	Use:          "types FILE",
	Short:        "Print the type of every top-level declaration of a file",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProgram(args)
		if err != nil {
			return err
		}
		defer p.Close()
		file, err := onlyFile(p)
		if err != nil {
			return err
		}
		out, err := p.DisplayTypes(file)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

// onlyFile names the single file of a program
func onlyFile(p *strux.Program) (string, error) {
	names := p.FileNames()
	if len(names) != 1 {
		return "", errors.Errorf("expected a single file, found %d", len(names))
	}
	return names[0], nil
}

func dumpCommand(use, short string, dump func(p *strux.Program, file string) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:          use + " FILE",
		Short:        short,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProgram(args)
			if err != nil {
				return err
			}
			defer p.Close()
			file, err := onlyFile(p)
			if err != nil {
				return err
			}
			out, err := dump(p, file)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func init() {
	DumpCmd.AddCommand(
		dumpCommand("ast", "Print the syntax tree", (*strux.Program).DumpAST),
		dumpCommand("flow", "Print the flow graph of the file and each function", (*strux.Program).DumpFlow),
		dumpCommand("symbols", "Print the symbol tables", (*strux.Program).DumpSymbols),
	)
}
