// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gpx

import (
	"bufio"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/bobwolff68/goproWhereWhen/internal/tracks"
)

// ErrDestination means the output directory cannot be used at all.
var ErrDestination = errors.New("output directory unusable")

// Result describes the outcome for one date file.
type Result struct {
	Date   string
	Path   string
	Tracks int
	Points int
	Err    error
}

// Exporter writes one GPX file per date of a tracks.Partition.
type Exporter struct {
	now     func() time.Time
	workers int
}

type Option func(*Exporter)

// WithClock sets the source of the generation time written to metadata.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithWorkers sets how many date files are written concurrently.
func WithWorkers(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.workers = n
		}
	}
}

func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{now: time.Now, workers: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FileName returns where the file for date goes. An empty destDir means the
// current directory.
func FileName(destDir, date string) string {
	return filepath.Join(destDir, date+".gpx")
}

// Export writes {destDir}/{date}.gpx for every date in p, replacing existing
// files. A date that fails does not stop the others; its error is kept in its
// Result and all such errors are joined into the returned error. If destDir
// cannot be created Export fails with ErrDestination before writing anything.
func (e *Exporter) Export(ctx context.Context, p tracks.Partition, destDir string) ([]Result, error) {
	if destDir != "" {
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDestination, err)
		}
	}

	generated := e.now().UTC()
	dates := p.Dates()
	results := make([]Result, len(dates))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, date := range dates {
		results[i] = Result{Date: date, Path: FileName(destDir, date)}
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		i, date := i, date
		g.Go(func() error {
			doc := buildDocument(p, date, generated)
			res := &results[i]
			for _, t := range doc.Tracks {
				res.Tracks++
				res.Points += len(t.Segments[0].Points)
			}
			res.Err = writeFile(res.Path, doc)
			if res.Err != nil {
				log.Error().Err(res.Err).Str("file", res.Path).Msg("failed to write date file")
				return nil
			}
			log.Info().
				Str("file", res.Path).
				Int("tracks", res.Tracks).
				Int("points", res.Points).
				Msg("wrote GPX")
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Date, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

func buildDocument(p tracks.Partition, date string, generated time.Time) *Document {
	doc := &Document{
		Xmlns:          Namespace,
		XmlnsXSI:       XSINamespace,
		Creator:        Creator,
		Version:        Version,
		SchemaLocation: SchemaLocation,
		Metadata: Metadata{
			Link: Link{Href: ProjectURL, Text: Creator},
			Time: generated.Format(time.RFC3339),
		},
	}

	bucket := p[date]
	for _, name := range p.Names(date) {
		samples := bucket[name].Samples
		seg := Segment{Points: make([]Point, 0, len(samples))}
		for _, s := range samples {
			seg.Points = append(seg.Points, newPoint(s))
		}
		doc.Tracks = append(doc.Tracks, Track{Name: name, Segments: []Segment{seg}})
	}
	return doc
}

func writeFile(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if err := encode(w, doc); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func encode(w *bufio.Writer, doc *Document) error {
	if _, err := w.WriteString(xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode GPX: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := w.WriteString("\n")
	return err
}
