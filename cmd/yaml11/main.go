// Command yaml11 inspects YAML streams at the token/event level and
// checks that a parse→emit→parse round trip preserves events.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "yaml11",
		Short:         "Inspect and exercise the YAML 1.1 scanner/parser",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDumpTokensCmd())
	root.AddCommand(newDumpEventsCmd())
	root.AddCommand(newRoundtripCmd())
	return root
}
