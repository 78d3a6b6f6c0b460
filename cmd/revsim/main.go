// Command revsim simulates reversible Hamiltonian networks. Invoked without
// arguments it runs the full-adder demo.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/revsim/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
