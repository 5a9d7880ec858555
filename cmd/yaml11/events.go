package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goyaml11/yaml11"
)

func newDumpEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump-events [file]",
		Short: "Print the parse event stream produced by the parser",
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
				ev, err := p.ParseEvent()
				if err != nil {
					var perr *yaml11.Error
					if errors.As(err, &perr) {
						fmt.Fprintln(os.Stderr, perr.Error())
					}
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatEvent(ev))
				if ev.Type == yaml11.StreamEndEvent {
					break
				}
			}
			return nil
		},
	}
	return cmd
}

func formatEvent(ev *yaml11.Event) string {
	s := fmt.Sprintf("%s(line=%d,col=%d)", ev.Type, ev.StartMark.Line+1, ev.StartMark.Column+1)
	if len(ev.Anchor) > 0 {
		s += fmt.Sprintf(" anchor=%q", ev.Anchor)
	}
	if len(ev.Tag) > 0 {
		s += fmt.Sprintf(" tag=%q", ev.Tag)
	}
	if ev.Type == yaml11.ScalarEvent {
		s += fmt.Sprintf(" value=%q", ev.Value)
	}
	return s
}
