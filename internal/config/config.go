package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	AppName   = "djedi-migrate"
	FileName  = ".djedirc"
	EnvPrefix = "DJEDI_MIGRATE"

	fileType = "env"
)

// Keys as written in the rc file. Environment variables carry EnvPrefix.
const (
	KeyLogLevel  = "LOG_LEVEL"
	KeyLogFormat = "LOG_FORMAT"
	KeyRPS       = "RPS"
	KeyBurst     = "BURST"
	KeyTimeout   = "TIMEOUT"
	KeyReport    = "REPORT"
)

// Config holds the tool settings that are not positional arguments.
type Config struct {
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
	RPS       float64       `mapstructure:"rps"`
	Burst     int           `mapstructure:"burst"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Report    string        `mapstructure:"report"`

	// Path is the file the values were read from, empty when none was found.
	Path string `mapstructure:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:  "warn",
		LogFormat: "console",
		RPS:       10,
		Burst:     10,
	}
}

func defaults() map[string]any {
	d := Default()
	return map[string]any{
		KeyLogLevel:  d.LogLevel,
		KeyLogFormat: d.LogFormat,
		KeyRPS:       d.RPS,
		KeyBurst:     d.Burst,
		KeyTimeout:   d.Timeout,
		KeyReport:    d.Report,
	}
}

// DefaultPath is where `config init` writes the rc file.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, FileName)
}

// SearchPaths lists the directories checked for FileName, in priority order.
func SearchPaths() []string {
	return []string{".", filepath.Join(xdg.ConfigHome, AppName)}
}

// Load reads the configuration. An explicit path must exist; otherwise the
// first FileName found in SearchPaths is used, and no file at all is fine.
// Environment variables override file values.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType(fileType)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for k, val := range defaults() {
		v.SetDefault(k, val)
	}

	if path == "" {
		path = find()
	} else if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("config file: %w", err)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.Path = path
	return cfg, cfg.Validate()
}

func find() string {
	for _, dir := range SearchPaths() {
		p := filepath.Join(dir, FileName)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// Validate checks value ranges. Level and format names are checked by the
// logger factory.
func (c Config) Validate() error {
	var errs []error
	if c.RPS < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyRPS))
	}
	if c.Burst < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyBurst))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyTimeout))
	}
	return errors.Join(errs...)
}

// Save writes cfg to path in KEY=VALUE form, creating parent directories.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	var b strings.Builder
	write := func(k, v string) { fmt.Fprintf(&b, "%s=%s\n", k, v) }
	write(KeyLogLevel, cfg.LogLevel)
	write(KeyLogFormat, cfg.LogFormat)
	write(KeyRPS, strconv.FormatFloat(cfg.RPS, 'g', -1, 64))
	write(KeyBurst, strconv.Itoa(cfg.Burst))
	write(KeyTimeout, cfg.Timeout.String())
	if cfg.Report != "" {
		write(KeyReport, cfg.Report)
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}
