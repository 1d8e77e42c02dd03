// Command groundctl is an interactive console around a groundcontrol hub.
// It reads one command per line, see the help command for the list.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/casualjim/groundcontrol"
	"github.com/casualjim/groundcontrol/internal/config"
	"github.com/casualjim/groundcontrol/pkg/slogx"
	"github.com/fatih/color"
	_ "github.com/joho/godotenv/autoload"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log = zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slog.LevelInfo}),
	))
}

func main() {
	configFile := flag.String("config", "", "path to a config file (default: groundcontrol.{yaml,toml,json} in . or ./configs)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *configFile, os.Stdin, os.Stdout, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("groundctl failed")
	}
}

func run(ctx context.Context, configFile string, in io.Reader, out, logOut io.Writer) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	var logger *slog.Logger
	log, logger = cfg.Logger(logOut)
	slog.SetDefault(logger)
	if !cfg.Log.Color {
		color.NoColor = true
	}

	options, err := cfg.HubOptions(logger)
	if err != nil {
		return err
	}
	hub, err := groundcontrol.New(options...)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hub.Close(closeCtx); err != nil {
			slog.Warn("closing hub", slogx.Error(err))
		}
	}()

	slog.Debug("hub ready",
		slog.String("discipline", hub.Discipline().String()),
		slog.Int("concurrency", cfg.Hub.Concurrency),
	)

	c, err := newConsole(hub, out, cfg.Log.Color)
	if err != nil {
		return err
	}
	if f, ok := in.(*os.File); ok && f == os.Stdin {
		c.prompt = color.GreenString("groundctl") + "> "
	}
	return c.Run(ctx, in)
}
