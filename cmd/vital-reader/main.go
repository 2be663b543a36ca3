// Package main provides the vital-reader CLI.
//
// Usage:
//
//	vital-reader [read] --port /dev/ttyUSB0 --baud 115200 --stats
//	vital-reader read --file capture.bin
//	vital-reader send --port /dev/ttyUSB0 "C,INFO"
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const version = "0.1.0"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func newApp() *cli.App {
	read := readCommand()
	return &cli.App{
		Name:           "vital-reader",
		Usage:          "Serial port data reader for medical monitors",
		Version:        version,
		ExitErrHandler: exitErrHandler,
		Flags:          read.Flags,
		Action:         read.Action,
		Commands: []*cli.Command{
			read,
			sendCommand(),
		},
	}
}

// exitErrHandler prints the error and exits, keeping codes from cli.Exit.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
