package main

import (
	"errors"
	"fmt"
	"os"

	"deskbridge/internal/cli"
)

var version = "dev"

func main() {
	root := cli.NewRootCommand(cli.Env{Version: version})
	if err := root.Execute(); err != nil {
		var failure *cli.FailureError
		if !errors.As(err, &failure) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
