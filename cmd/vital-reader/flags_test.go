package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	vital "github.com/luhtfiimanal/go-vital-reader"
)

// resolve runs a throwaway app with the line flags and returns the merged settings.
func resolve(t *testing.T, args ...string) (settings, error) {
	t.Helper()
	var got settings
	var resolveErr error
	app := &cli.App{
		Name:  "test",
		Flags: append(lineFlags(), &cli.BoolFlag{Name: "stats"}),
		Action: func(c *cli.Context) error {
			got, resolveErr = resolveSettings(c)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return got, resolveErr
}

func TestResolveSettings_Defaults(t *testing.T) {
	s, err := resolve(t, "--port", "/dev/ttyUSB0")
	require.NoError(t, err)
	require.Equal(t, vital.Config{
		Device:      "/dev/ttyUSB0",
		BaudRate:    115200,
		DataBits:    8,
		Parity:      vital.ParityNone,
		StopBits:    1,
		ReadTimeout: 100 * time.Millisecond,
	}, s.Serial)
	require.False(t, s.Stats)
	require.Equal(t, "warn", s.LogLevel)
}

func TestResolveSettings_ConfigStringOverridesLineFlags(t *testing.T) {
	s, err := resolve(t, "-p", "/dev/ttyS1", "--baud", "9600", "--parity", "odd", "-c", "57600,2,7,2")
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyS1", s.Serial.Device)
	require.Equal(t, 57600, s.Serial.BaudRate)
	require.Equal(t, vital.ParityEven, s.Serial.Parity)
	require.Equal(t, 7, s.Serial.DataBits)
	require.Equal(t, 2, s.Serial.StopBits)
}

func TestResolveSettings_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vital.yaml")
	require.NoError(t, os.WriteFile(path, []byte("device: /dev/ttyACM0\nbaud: 9600\nstats: true\nlog_level: debug\n"), 0o644))

	s, err := resolve(t, "--config-file", path, "--baud", "38400")
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyACM0", s.Serial.Device)
	require.Equal(t, 38400, s.Serial.BaudRate)
	require.True(t, s.Stats)
	require.Equal(t, "debug", s.LogLevel)
}

func TestResolveSettings_Errors(t *testing.T) {
	_, err := resolve(t, "--parity", "mark")
	require.Error(t, err)

	_, err = resolve(t, "-c", "115200,0,8")
	require.Error(t, err)

	_, err = resolve(t, "--config-file", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRenderBanner(t *testing.T) {
	out := renderBanner(vital.Config{Device: "/dev/ttyUSB0", BaudRate: 57600, DataBits: 8, StopBits: 1})
	require.Contains(t, out, "VITAL SERIAL READER")
	require.Contains(t, out, "/dev/ttyUSB0")
	require.Contains(t, out, "57600")
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()
	require.NotNil(t, app.Command("read"))
	require.NotNil(t, app.Command("send"))
}
