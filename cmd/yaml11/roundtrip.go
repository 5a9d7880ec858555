package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/cobra"

	"github.com/goyaml11/yaml11"
	"github.com/goyaml11/yaml11/internal/emitter"
	"github.com/goyaml11/yaml11/internal/token"
)

// eventsEqualOpts makes two event streams compare equal when they describe
// the same document structure, ignoring source positions: a round trip
// re-emits content at possibly different lines and columns.
var eventsEqualOpts = cmpopts.IgnoreFields(token.Event{}, "StartMark", "EndMark")

func newRoundtripCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roundtrip [file]",
		Short: "Parse, emit, and re-parse a stream, reporting whether the event streams match",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(args)
			if err != nil {
				return err
			}
			defer in.Close()

			src, err := io.ReadAll(in)
			if err != nil {
				return err
			}

			before, err := collectEvents(src)
			if err != nil {
				return fmt.Errorf("parsing input: %w", err)
			}

			var out bytes.Buffer
			em := emitter.New(&out)
			for i, ev := range before {
				if err := em.Emit(&before[i], i == len(before)-1); err != nil {
					return fmt.Errorf("emitting event %d (%s): %w", i, ev.Type, err)
				}
			}

			after, err := collectEvents(out.Bytes())
			if err != nil {
				return fmt.Errorf("re-parsing emitted output: %w", err)
			}

			diff := cmp.Diff(before, after, eventsEqualOpts)
			if diff != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "round trip changed the event stream:")
				fmt.Fprintln(cmd.OutOrStdout(), diff)
				return fmt.Errorf("event streams differ after round trip")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok:", len(before), "events preserved")
			return nil
		},
	}
	return cmd
}

// collectEvents drains a full event stream from src, including the final
// STREAM_END_EVENT.
func collectEvents(src []byte) ([]token.Event, error) {
	p := yaml11.New()
	if err := p.SetInputBytes(src); err != nil {
		return nil, err
	}
	var events []token.Event
	for {
		ev, err := p.ParseEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
		if ev.Type == yaml11.StreamEndEvent {
			break
		}
	}
	return events, nil
}
