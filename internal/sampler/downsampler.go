// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sampler thins a decoder's event stream down to one position every
// few seconds.
//
// Receivers report at a fixed high rate (18 Hz on the cameras this was built
// for) and the readings of one second arrive together as a batch sharing the
// last UTC update. Thinning keeps or skips whole batches, so every retained
// sample carries an exact receiver second and nothing is interpolated.
package sampler

import (
	"fmt"
	"time"

	"github.com/bobwolff68/goproWhereWhen/internal/gps"
)

// DefaultSecondsBetweenSamples is the interval used when none is configured.
const DefaultSecondsBetweenSamples = 5

// Downsampler consumes the events of a single source. It is not safe for
// concurrent use; create one per source.
type Downsampler struct {
	secondsBetweenSamples uint

	currentTime    gps.Timestamp
	nextSampleTime time.Time
	samples        []gps.Sample
	dropped        int
}

// New creates a Downsampler keeping at most one sample every
// secondsBetweenSamples. Zero keeps every reading.
func New(secondsBetweenSamples uint) *Downsampler {
	return &Downsampler{secondsBetweenSamples: secondsBetweenSamples}
}

// Handle processes one event. It matches the emit callback decoders expect.
func (d *Downsampler) Handle(ev gps.Event) error {
	switch e := ev.(type) {
	case gps.UTCUpdate:
		ts, err := gps.ParseTimestamp(e.Raw)
		if err != nil {
			return fmt.Errorf("utc update: %w", err)
		}
		d.currentTime = ts
	case gps.PositionBatch:
		d.handleBatch(e.Fixes)
	case gps.Other:
		// not position related
	default:
		return fmt.Errorf("unknown event type %T", ev)
	}
	return nil
}

func (d *Downsampler) handleBatch(fixes []gps.Position) {
	if len(fixes) == 0 {
		return
	}

	if d.secondsBetweenSamples == 0 {
		for _, f := range fixes {
			d.record(f)
		}
		return
	}

	// Only the first reading of a batch is a candidate, and only once a real
	// clock has been seen.
	d.dropped += len(fixes) - 1
	now := d.currentTime.Instant()
	if !d.currentTime.IsSet() || now.Before(d.nextSampleTime) {
		d.dropped++
		return
	}
	d.record(fixes[0])
	d.nextSampleTime = now.Add(time.Duration(d.secondsBetweenSamples) * time.Second)
}

func (d *Downsampler) record(f gps.Position) {
	d.samples = append(d.samples, gps.NewSample(d.currentTime, f.Lat, f.Lon, f.Ele))
}

// Points returns the retained samples in arrival order.
func (d *Downsampler) Points() []gps.Sample {
	out := make([]gps.Sample, len(d.samples))
	copy(out, d.samples)
	return out
}

// Dropped is the number of readings that were not retained.
func (d *Downsampler) Dropped() int { return d.dropped }

// SecondsBetweenSamples returns the configured interval.
func (d *Downsampler) SecondsBetweenSamples() uint { return d.secondsBetweenSamples }
