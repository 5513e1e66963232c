// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/bobwolff68/goproWhereWhen/internal/config"
	"github.com/bobwolff68/goproWhereWhen/internal/decoder"
	"github.com/bobwolff68/goproWhereWhen/internal/gps"
	"github.com/bobwolff68/goproWhereWhen/internal/gpx"
	"github.com/bobwolff68/goproWhereWhen/internal/publish"
	"github.com/bobwolff68/goproWhereWhen/internal/sampler"
	"github.com/bobwolff68/goproWhereWhen/internal/sources"
	"github.com/bobwolff68/goproWhereWhen/internal/tracks"
)

var (
	// ErrNoInputs means no input file survived the extension filter.
	ErrNoInputs = errors.New("no input files to process")
	// ErrAllDatesFailed means not a single date file could be written.
	ErrAllDatesFailed = errors.New("every date file failed")
)

// Report summarizes one export run.
type Report struct {
	Sources []string // inputs that were decoded and registered
	Skipped []string // inputs filtered out or failing to decode
	Dates   []string // dates found across all tracks
	Files   []string // GPX files written
	Failed  []string // dates whose file could not be written
	Notices int      // export notices published
}

// RunExport turns the given files (or cfg.InputFiles when files is empty)
// into one GPX file per date under cfg.OutputDir.
//
// A source that fails to decode is logged and skipped. The run fails only
// when nothing is left to process, the output directory is unusable, every
// date file failed, or ctx is cancelled.
func RunExport(ctx context.Context, cfg *config.Config, files []string) (Report, error) {
	var report Report

	if len(files) == 0 {
		files = cfg.InputFiles
	}
	inputs := sources.Dedup(files)
	kept := sources.Filter(inputs, cfg.FileExt)
	report.Skipped = pruned(inputs, kept)
	for _, path := range report.Skipped {
		log.Warn().Str("source", path).Strs("extensions", cfg.FileExt).Msg("extension not accepted, skipping")
	}
	if len(kept) == 0 {
		return report, ErrNoInputs
	}

	// ---- 1) Decode every source into the registry ----
	registry := tracks.NewRegistry()
	failed, err := decodeAll(ctx, cfg, kept, registry)
	if err != nil {
		return report, err
	}
	report.Skipped = append(report.Skipped, failed...)
	report.Sources = registry.SourceIDs()

	// ---- 2) Partition by date ----
	partition := registry.PartitionByDate()
	report.Dates = partition.Dates()
	log.Info().
		Int("sources", len(report.Sources)).
		Int("dates", len(report.Dates)).
		Int("tracks", partition.TrackCount()).
		Int("points", partition.SampleCount()).
		Msg("tracks partitioned")

	// ---- 3) Write one GPX file per date ----
	exporter := gpx.NewExporter(gpx.WithWorkers(cfg.ExportWorkers))
	results, exportErr := exporter.Export(ctx, partition, cfg.OutputDir)
	if errors.Is(exportErr, gpx.ErrDestination) {
		return report, exportErr
	}
	for _, res := range results {
		if res.Err != nil {
			report.Failed = append(report.Failed, res.Date)
			continue
		}
		report.Files = append(report.Files, res.Path)
	}

	// ---- 4) Announce the results ----
	report.Notices = notify(cfg, results)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	if len(results) > 0 && len(report.Failed) == len(results) {
		return report, fmt.Errorf("%w: %w", ErrAllDatesFailed, exportErr)
	}
	if exportErr != nil {
		log.Error().Err(exportErr).Strs("dates", report.Failed).Msg("some date files failed")
	}
	return report, nil
}

// decodeAll decodes the sources with up to cfg.DecodeWorkers at a time and
// registers their samples. It returns the sources that failed; the error is
// only set when ctx ends.
func decodeAll(ctx context.Context, cfg *config.Config, paths []string, registry *tracks.Registry) ([]string, error) {
	var (
		mu     sync.Mutex
		failed []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.DecodeWorkers)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			samples, err := decodeSource(gctx, path, cfg.SecondsBetweenSamples)
			if err == nil {
				err = registry.Add(path, samples)
			}
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Error().Err(err).Str("source", path).Msg("skipping source")
				mu.Lock()
				failed = append(failed, path)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return failed, nil
}

// decodeSource runs one file through a fresh Downsampler.
func decodeSource(ctx context.Context, path string, interval uint) ([]gps.Sample, error) {
	dec, err := decoder.ForPath(path)
	if err != nil {
		return nil, err
	}

	ds := sampler.New(interval)
	if err := dec.Decode(ctx, path, ds.Handle); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	points := ds.Points()
	log.Debug().
		Str("source", path).
		Int("points", len(points)).
		Int("dropped", ds.Dropped()).
		Msg("source decoded")
	return points, nil
}

// notify publishes an export notice per result when a broker is configured.
func notify(cfg *config.Config, results []gpx.Result) int {
	if cfg.MQTTBroker == "" || len(results) == 0 {
		return 0
	}

	client, err := publish.Connect(cfg.MQTTBroker, cfg.MQTTClientIDExporter)
	if err != nil {
		log.Warn().Err(err).Msg("export notices disabled")
		return 0
	}
	pub := publish.New(client, cfg.TopicTracks)
	defer pub.Close()

	notifier := publish.NewNotifier(pub)
	sent := notifier.Send(results)
	log.Info().Str("run_id", notifier.RunID()).Int("notices", sent).Str("topic", pub.Topic()).Msg("export notices published")
	return sent
}

// pruned returns the entries of all that are missing from kept.
func pruned(all, kept []string) []string {
	keep := make(map[string]bool, len(kept))
	for _, p := range kept {
		keep[p] = true
	}
	var out []string
	for _, p := range all {
		if !keep[p] {
			out = append(out, p)
		}
	}
	return out
}
