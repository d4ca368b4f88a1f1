package main

import (
	"fmt"
	"os"

	"github.com/soedirgo/sat-solver/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if cli.IsUnknownResult(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
