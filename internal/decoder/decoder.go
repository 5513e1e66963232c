// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package decoder turns recorded position files into the event stream the
// sampler consumes.
//
// A decoder reports the receiver clock with gps.UTCUpdate whenever the UTC
// second changes and then hands over every reading taken in that second as a
// single gps.PositionBatch. Records it does not translate are passed on as
// gps.Other.
package decoder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bobwolff68/goproWhereWhen/internal/gps"
)

// ErrUnsupported is returned by ForPath for file types without a decoder.
var ErrUnsupported = errors.New("no decoder for file type")

// Decoder reads one source file and calls emit for each event, in order.
// Decoding stops at the first error emit returns, and that error is returned.
type Decoder interface {
	Decode(ctx context.Context, path string, emit func(gps.Event) error) error
}

// ForPath selects a decoder from the file extension.
func ForPath(path string) (Decoder, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".nmea", ".log", ".txt":
		return NMEA{}, nil
	case ".gpx":
		return GPX{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// batcher groups readings per UTC second.
type batcher struct {
	emit    func(gps.Event) error
	stamp   string
	pending []gps.Position
}

// clock announces the receiver time. Readings gathered under the previous
// time are flushed first.
func (b *batcher) clock(stamp string) error {
	if stamp == b.stamp {
		return nil
	}
	if err := b.flush(); err != nil {
		return err
	}
	b.stamp = stamp
	return b.emit(gps.UTCUpdate{Raw: stamp})
}

func (b *batcher) add(p gps.Position) {
	b.pending = append(b.pending, p)
}

func (b *batcher) flush() error {
	if len(b.pending) == 0 {
		return nil
	}
	batch := gps.PositionBatch{Fixes: b.pending}
	b.pending = nil
	return b.emit(batch)
}
