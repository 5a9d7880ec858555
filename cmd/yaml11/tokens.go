package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goyaml11/yaml11"
)

func newDumpTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump-tokens [file]",
		Short: "Print the token stream produced by the scanner",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(args)
			if err != nil {
				return err
			}
			defer in.Close()

			p := yaml11.New()
			if err := p.SetInputReader(in); err != nil {
				return err
			}

			for {
				t, err := p.ParseToken()
				if err != nil {
					var perr *yaml11.Error
					if errors.As(err, &perr) {
						fmt.Fprintln(os.Stderr, perr.Error())
					}
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatToken(t))
				if t.Type == yaml11.StreamEndToken {
					break
				}
			}
			return nil
		},
	}
	return cmd
}

func formatToken(t *yaml11.Token) string {
	s := fmt.Sprintf("%s(line=%d,col=%d)", t.Type, t.StartMark.Line+1, t.StartMark.Column+1)
	switch {
	case len(t.Value) > 0 && len(t.Suffix) > 0:
		s += fmt.Sprintf(" handle=%q suffix=%q", t.Value, t.Suffix)
	case len(t.Value) > 0:
		s += fmt.Sprintf(" value=%q", t.Value)
	}
	return s
}
