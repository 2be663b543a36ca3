package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	vital "github.com/luhtfiimanal/go-vital-reader"
)

// lineFlags are the serial line settings shared by read and send.
func lineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Serial port path (e.g. /dev/ttyUSB0)",
		},
		&cli.IntFlag{
			Name:    "baud",
			Aliases: []string{"b"},
			Usage:   "Baud rate",
			Value:   vital.DefaultBaudRate,
		},
		&cli.IntFlag{
			Name:  "data-bits",
			Usage: "Data bits (5, 6, 7, 8)",
			Value: vital.DefaultDataBits,
		},
		&cli.StringFlag{
			Name:  "parity",
			Usage: "Parity (none, odd, even)",
			Value: "none",
		},
		&cli.IntFlag{
			Name:  "stop-bits",
			Usage: "Stop bits (1, 2)",
			Value: vital.DefaultStopBits,
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Line settings as baud,parity,data_bits,stop_bits (e.g. 57600,0,8,1); overrides individual settings",
		},
		&cli.StringFlag{
			Name:  "config-file",
			Usage: "YAML config file; flags override its values",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Read timeout",
			Value: vital.DefaultReadTimeout,
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
			Value: "warn",
		},
	}
}

// settings is the merged result of config file and flags.
type settings struct {
	Serial   vital.Config
	Stats    bool
	LogLevel string
}

// resolveSettings merges the config file (if any) with flags. Flags set on
// the command line win over file values; --config wins over individual
// line flags.
func resolveSettings(c *cli.Context) (settings, error) {
	var s settings
	s.Serial = vital.Config{
		BaudRate:    vital.DefaultBaudRate,
		DataBits:    vital.DefaultDataBits,
		StopBits:    vital.DefaultStopBits,
		ReadTimeout: vital.DefaultReadTimeout,
	}
	s.LogLevel = c.String("log-level")

	if path := c.String("config-file"); path != "" {
		fc, err := vital.LoadConfigFile(path)
		if err != nil {
			return s, err
		}
		cfg, err := fc.SerialConfig()
		if err != nil {
			return s, fmt.Errorf("config file %s: %w", path, err)
		}
		s.Serial = cfg
		s.Stats = fc.Stats
		if fc.LogLevel != "" && !c.IsSet("log-level") {
			s.LogLevel = fc.LogLevel
		}
	}

	if c.IsSet("port") {
		s.Serial.Device = c.String("port")
	}
	if c.IsSet("baud") {
		s.Serial.BaudRate = c.Int("baud")
	}
	if c.IsSet("data-bits") {
		s.Serial.DataBits = c.Int("data-bits")
	}
	if c.IsSet("parity") {
		p, err := vital.ParseParity(c.String("parity"))
		if err != nil {
			return s, err
		}
		s.Serial.Parity = p
	}
	if c.IsSet("stop-bits") {
		s.Serial.StopBits = c.Int("stop-bits")
	}
	if c.IsSet("timeout") {
		s.Serial.ReadTimeout = c.Duration("timeout")
	}
	if c.IsSet("stats") {
		s.Stats = c.Bool("stats")
	}

	if str := c.String("config"); str != "" {
		line, err := vital.ParseConfigString(str)
		if err != nil {
			return s, err
		}
		line.Device = s.Serial.Device
		line.ReadTimeout = s.Serial.ReadTimeout
		s.Serial = line
	}
	return s, nil
}
