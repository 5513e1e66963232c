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
	log.Info().Msg("starting wherewhen GPS logger (serial NMEA → daily capture files)")

	// Load configuration
	if err := config.InitGlobal(args.Config); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg := config.Get()
	app.SetupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunGPSLogger(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
