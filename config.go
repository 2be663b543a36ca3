package vital

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Parity selects the serial parity mode.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

func (p Parity) String() string {
	switch p {
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	default:
		return "none"
	}
}

// ParseParity accepts none/n, odd/o and even/e in any case.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "n":
		return ParityNone, nil
	case "odd", "o":
		return ParityOdd, nil
	case "even", "e":
		return ParityEven, nil
	}
	return ParityNone, fmt.Errorf("invalid parity: %s", s)
}

const (
	DefaultBaudRate    = 115200
	DefaultDataBits    = 8
	DefaultStopBits    = 1
	DefaultReadTimeout = 100 * time.Millisecond
)

// Config holds configuration parameters for opening a serial port.
// Zero values are replaced by 115200 8N1 with a 100ms read timeout.
// A negative ReadTimeout makes Read wait until data arrives or Close is called.
type Config struct {
	Device      string
	BaudRate    int
	DataBits    int // 5..8
	Parity      Parity
	StopBits    int // 1 or 2
	ReadTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.DataBits == 0 {
		c.DataBits = DefaultDataBits
	}
	if c.StopBits == 0 {
		c.StopBits = DefaultStopBits
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	return c
}

// Validate checks the line settings.
func (c Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("device is required")
	}
	return c.validateLine()
}

func (c Config) validateLine() error {
	if c.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate: %d", c.BaudRate)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("invalid data bits: %d", c.DataBits)
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return fmt.Errorf("invalid stop bits: %d", c.StopBits)
	}
	if c.Parity < ParityNone || c.Parity > ParityEven {
		return fmt.Errorf("invalid parity: %d", c.Parity)
	}
	return nil
}

// ParseConfigString parses "baud,parity,data_bits,stop_bits", e.g. "57600,0,8,1".
// Parity is numeric: 0=none, 1=odd, 2=even. The device is left empty.
func ParseConfigString(s string) (Config, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Config{}, fmt.Errorf("invalid config format %q: expected baud,parity,data_bits,stop_bits (e.g. 57600,0,8,1)", s)
	}
	fields := make([]int, 4)
	names := []string{"baud rate", "parity", "data bits", "stop bits"}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", names[i], p, err)
		}
		fields[i] = v
	}
	if fields[1] < 0 || fields[1] > 2 {
		return Config{}, fmt.Errorf("parity must be 0 (none), 1 (odd), or 2 (even), got %d", fields[1])
	}
	cfg := Config{
		BaudRate: fields[0],
		Parity:   Parity(fields[1]),
		DataBits: fields[2],
		StopBits: fields[3],
	}
	if err := cfg.validateLine(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FileConfig is the YAML form of the reader settings. All values are optional.
type FileConfig struct {
	Device   string `yaml:"device"`
	Baud     int    `yaml:"baud"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"`
	StopBits int    `yaml:"stop_bits"`
	Timeout  string `yaml:"timeout"`
	Stats    bool   `yaml:"stats"`
	LogLevel string `yaml:"log_level"`
}

// LoadConfigFile reads a YAML config file. Unknown keys are rejected.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return &fc, nil
}

// SerialConfig converts the file settings to a Config, applying defaults.
func (fc *FileConfig) SerialConfig() (Config, error) {
	cfg := Config{
		Device:   fc.Device,
		BaudRate: fc.Baud,
		DataBits: fc.DataBits,
		StopBits: fc.StopBits,
	}
	if fc.Parity != "" {
		p, err := ParseParity(fc.Parity)
		if err != nil {
			return Config{}, err
		}
		cfg.Parity = p
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timeout %q: %w", fc.Timeout, err)
		}
		cfg.ReadTimeout = d
	}
	return cfg.withDefaults(), nil
}
