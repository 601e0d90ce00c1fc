package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/threadforge/internal/app"
	"github.com/vk/threadforge/internal/cli"
)

// main is the entrypoint for the threadforge application.
func main() {
	if err := run(os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run keeps the real logic testable and maps every failure to an error.
func run(logW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, logW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	a := app.New(cfg, logW)
	return a.Run(context.Background())
}
