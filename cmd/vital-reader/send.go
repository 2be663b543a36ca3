package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	vital "github.com/luhtfiimanal/go-vital-reader"
)

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Send one command line (CRLF terminated) to the device",
		ArgsUsage: "<command>",
		Flags:     lineFlags(),
		Action:    sendAction,
	}
}

func sendAction(c *cli.Context) error {
	command := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if command == "" {
		return cli.Exit("send: command is required", 2)
	}
	s, err := resolveSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	r, err := vital.Open(s.Serial)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open port %s: %v", s.Serial.Device, err), 1)
	}
	defer r.Close()

	if err := r.WriteLine(command, "\r\n"); err != nil {
		return cli.Exit(fmt.Sprintf("write failed: %v", err), 1)
	}
	fmt.Fprintf(c.App.Writer, "[%s] SENT: %s\n", time.Now().Format(vital.TimestampLayout), command)
	return nil
}
