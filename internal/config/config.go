// Package config loads the settings of the groundcontrol binaries from a
// config file, GROUNDCONTROL_* environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/casualjim/groundcontrol"
	"github.com/casualjim/groundcontrol/pattern"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, hub.concurrency
// becomes GROUNDCONTROL_HUB_CONCURRENCY.
const EnvPrefix = "GROUNDCONTROL"

type Config struct {
	Hub struct {
		Discipline  string `mapstructure:"discipline"`
		Concurrency int    `mapstructure:"concurrency"`
	} `mapstructure:"hub"`

	Log struct {
		Level string `mapstructure:"level"`
		Color bool   `mapstructure:"color"`
	} `mapstructure:"log"`
}

// Load reads the configuration. When file is empty a groundcontrol.{yaml,toml,json}
// is looked up in the working directory and in ./configs, and a missing file
// is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	v.SetDefault("hub.discipline", pattern.Strict.String())
	v.SetDefault("hub.concurrency", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.color", true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("groundcontrol")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := pattern.ParseDiscipline(c.Hub.Discipline); err != nil {
		return fmt.Errorf("hub.discipline: %w", err)
	}
	if c.Hub.Concurrency < 1 {
		return fmt.Errorf("hub.concurrency must be at least 1, got %d", c.Hub.Concurrency)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// HubOptions turns the hub section into hub options.
func (c *Config) HubOptions(logger *slog.Logger) ([]groundcontrol.Option, error) {
	discipline, err := pattern.ParseDiscipline(c.Hub.Discipline)
	if err != nil {
		return nil, err
	}
	options := []groundcontrol.Option{
		groundcontrol.WithDiscipline(discipline),
		groundcontrol.WithConcurrency(c.Hub.Concurrency),
	}
	if logger != nil {
		options = append(options, groundcontrol.WithLogger(logger))
	}
	return options, nil
}

// Logger builds a zerolog console logger writing to w and an slog logger
// routed into it, both at the configured level.
func (c *Config) Logger(w io.Writer) (zerolog.Logger, *slog.Logger) {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{Out: w, NoColor: !c.Log.Color, TimeFormat: time.Stamp}
	log := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return log, slog.New(zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slogLevel(level)}))
}

func slogLevel(level zerolog.Level) slog.Level {
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return slog.LevelDebug
	case zerolog.InfoLevel, zerolog.NoLevel:
		return slog.LevelInfo
	case zerolog.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
