package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bobwolff68/goproWhereWhen/internal/app"
	"github.com/bobwolff68/goproWhereWhen/internal/config"
)

var args struct {
	Config string `arg:"--config" default:"wherewhen_config.txt" help:"KEY=VALUE configuration file"`
}

func main() {
	arg.MustParse(&args)
	app.SetupLogging(zerolog.InfoLevel)
	log.Info().Msg("starting wherewhen monitor (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(args.Config); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Wait for Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunMonitor(ctx, config.Get()); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
