package main

import (
	"io"
	"os"
)

// openInput returns the single positional filename argument, or stdin when
// none was given.
func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(args[0])
}
