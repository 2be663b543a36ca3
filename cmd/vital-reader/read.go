package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	vital "github.com/luhtfiimanal/go-vital-reader"
)

func readCommand() *cli.Command {
	flags := append(lineFlags(),
		&cli.BoolFlag{
			Name:  "stats",
			Usage: "Show statistics (bytes received, connection time, byte analysis) on exit",
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "Replay a capture file instead of a serial port (- for stdin)",
		},
	)
	return &cli.Command{
		Name:   "read",
		Usage:  "Read and display data from a serial port",
		Flags:  flags,
		Action: readAction,
	}
}

func readAction(c *cli.Context) error {
	s, err := resolveSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	logger, err := vital.NewLogger(os.Stderr, s.LogLevel)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := c.App.Writer
	src, name, closeSrc, err := openSource(ctx, c.String("file"), s.Serial)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer closeSrc()

	if c.String("file") == "" {
		fmt.Fprintln(out, renderBanner(s.Serial))
	}

	// Close unblocks a pending serial Read once the context is cancelled.
	go func() {
		<-ctx.Done()
		closeSrc()
	}()

	session := vital.NewSession(src,
		vital.WithName(name),
		vital.WithLogger(logger),
		vital.WithSink(func(line string) { fmt.Fprintln(out, line) }),
	)

	fmt.Fprintf(out, "[%s] Connected to %s\n", time.Now().Format(vital.TimestampLayout), name)
	fmt.Fprintln(out, rule)
	runErr := session.Run(ctx)
	fmt.Fprintf(out, "\n[%s] Disconnecting...\n", time.Now().Format(vital.TimestampLayout))

	if s.Stats {
		fmt.Fprintln(out, rule)
		if err := session.WriteReport(out); err != nil {
			logger.Warn("writing report failed", zap.Error(err))
		}
	}
	if runErr != nil {
		return cli.Exit(runErr.Error(), 1)
	}
	return nil
}

// openSource opens either a replay file or the serial device.
// The returned close function is safe to call more than once.
// Stdin cannot be closed to unblock a read, so it is wrapped to stop on ctx.
func openSource(ctx context.Context, file string, cfg vital.Config) (vital.Source, string, func(), error) {
	switch file {
	case "":
		r, err := vital.Open(cfg)
		if err != nil {
			return nil, "", nil, fmt.Errorf("failed to open port %s: %w", cfg.Device, err)
		}
		return r, r.Name(), func() { r.Close() }, nil
	case "-":
		return newCtxSource(ctx, stdin), "stdin", func() {}, nil
	default:
		f, err := os.Open(file)
		if err != nil {
			return nil, "", nil, fmt.Errorf("failed to open capture: %w", err)
		}
		return f, file, func() { f.Close() }, nil
	}
}
