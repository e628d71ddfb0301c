package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iconoclast/childprocess/cmdline"
)

func newQuoteCmd() *cobra.Command {
	var split bool
	cmd := &cobra.Command{
		Use:   "quote [--split] -- args...",
		Short: "Print the Windows command line for an argument vector",
		Long: `Quote prints the single command-line string CreateProcess receives for
args. With --split it does the reverse: it decodes one command line and
prints the argument vector as a JSON array.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if split {
				if len(args) != 1 {
					return fmt.Errorf("--split takes exactly one command line, got %d arguments", len(args))
				}
				data, err := json.Marshal(cmdline.Split(args[0]))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			line, err := cmdline.Join(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, line)
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVar(&split, "split", false, "Decode a command line into its arguments")
	return cmd
}
