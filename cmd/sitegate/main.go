package main

import (
	"fmt"
	"os"

	"github.com/sitegate/sitegate/internal/adapters/inbound/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// Gate commands print their report before returning an error that
		// carries the exit status.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
