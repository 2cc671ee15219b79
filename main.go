package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/blogctl/internal/api"
	"github.com/debemdeboas/blogctl/internal/app"
	"github.com/debemdeboas/blogctl/internal/backup"
	"github.com/debemdeboas/blogctl/internal/config"
	"github.com/debemdeboas/blogctl/internal/db"
	"github.com/debemdeboas/blogctl/internal/editor"
	"github.com/debemdeboas/blogctl/internal/logger"
	"github.com/debemdeboas/blogctl/internal/render"
	"github.com/debemdeboas/blogctl/internal/session"
	"github.com/debemdeboas/blogctl/internal/store"
	"github.com/debemdeboas/blogctl/internal/view"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	bootLogger := logger.New(os.Getenv(config.EnvLogLevel))
	config.SetLogger(bootLogger)

	configPath := os.Getenv(config.EnvConfigPath)
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}
	if err := config.LoadConfig(configPath); err != nil {
		bootLogger.Error().Err(err).Str("path", configPath).Msg("Failed to load config")
		return 1
	}

	log := logger.New(config.AppConfig.Logging.Level)
	setLoggers(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(config.AppConfig, app.Options{})
	if err != nil {
		log.Error().Err(err).Msg("Failed to start")
		return 1
	}
	defer a.Close()

	if err := a.Run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, app.ErrUsage) {
			log.Debug().Err(err).Msg("Command failed")
		}
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr)
		}
		return 1
	}
	return 0
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l)
	db.SetLogger(l)
	store.SetLogger(l)
	session.SetLogger(l)
	api.SetLogger(l)
	editor.SetLogger(l)
	render.SetLogger(l)
	view.SetLogger(l)
	backup.SetLogger(l)
	app.SetLogger(l)
}
