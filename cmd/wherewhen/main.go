package main

import (
	"context"
	"errors"
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
	Config   string   `arg:"--config" default:"wherewhen_config.txt" help:"KEY=VALUE configuration file, defaults apply when it does not exist"`
	OutDir   *string  `arg:"--outdir" help:"directory for the per-date GPX files (overrides OUTPUT_DIR)"`
	Interval *uint    `arg:"--interval" help:"minimum seconds between kept samples, 0 keeps all (overrides SECONDS_BETWEEN_SAMPLES)"`
	Files    []string `arg:"positional" help:"NMEA or GPX files to convert (overrides INPUT_FILES)"`
}

func main() {
	arg.MustParse(&args)
	app.SetupLogging(zerolog.InfoLevel)
	log.Info().Msg("starting wherewhen (GPS logs → daily GPX)")

	cfg, err := loadConfig(args.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	app.SetupLogging(cfg.LogLevel)

	if args.OutDir != nil {
		cfg.OutputDir = *args.OutDir
	}
	if args.Interval != nil {
		cfg.SecondsBetweenSamples = *args.Interval
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := app.RunExport(ctx, cfg, args.Files)
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
	log.Info().
		Int("sources", len(report.Sources)).
		Int("skipped", len(report.Skipped)).
		Strs("files", report.Files).
		Strs("failed", report.Failed).
		Msg("done")
}

// loadConfig reads path, falling back to the defaults when it does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Info().Str("config", path).Msg("no config file, using defaults")
		return config.Default(), nil
	}
	if err := config.InitGlobal(path); err != nil {
		return nil, err
	}
	cfg := *config.Get()
	return &cfg, nil
}
