// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package gpslog records a live NMEA stream into daily capture files that the
// NMEA decoder can replay later.
package gpslog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/rs/zerolog/log"

	"github.com/bobwolff68/goproWhereWhen/internal/gps"
	"github.com/bobwolff68/goproWhereWhen/internal/publish"
)

// UndatedFile receives sentences seen before the first valid RMC date.
const UndatedFile = "undated.nmea"

// Stats counts what a Logger did with its input.
type Stats struct {
	Lines     int
	Written   int
	Rejected  int
	Published int
}

// Logger appends every parseable sentence to {dir}/{YYYY-MM-DD}.nmea and
// publishes valid RMC fixes to an optional sink.
type Logger struct {
	dir    string
	source string
	sink   publish.Sender

	day  string
	file *os.File

	stats Stats
}

// New creates a Logger writing into dir. source names the receiver in
// published fixes. sink may be nil.
func New(dir, source string, sink publish.Sender) *Logger {
	return &Logger{dir: dir, source: source, sink: sink}
}

// Stats returns the counters so far.
func (l *Logger) Stats() Stats { return l.stats }

// Path returns the capture file currently written to, "" before the first
// sentence.
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Run reads lines from r until EOF, a read error or ctx is done.
// Cancelling ctx alone does not interrupt a blocked read; callers close the
// underlying port for that.
func (l *Logger) Run(ctx context.Context, r io.Reader) error {
	reader := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, readErr := reader.ReadString('\n')
		if line != "" {
			if err := l.HandleLine(line); err != nil {
				return err
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("gps read: %w", readErr)
		}
	}
}

// HandleLine validates one raw line and records it. Only write failures are
// returned.
func (l *Logger) HandleLine(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	l.stats.Lines++

	// NMEA sentences start with '$'
	if !strings.HasPrefix(line, "$") {
		l.stats.Rejected++
		return nil
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		l.stats.Rejected++
		log.Debug().Err(err).Str("line", line).Msg("nmea parse error")
		return nil
	}

	rmc, isRMC := sentence.(nmea.RMC)
	valid := isRMC && rmc.Validity == nmea.ValidRMC && rmc.Date.Valid
	if valid {
		if err := l.rotate(dayOf(rmc.Date)); err != nil {
			return err
		}
	} else if l.file == nil {
		if err := l.rotate(""); err != nil {
			return err
		}
	}

	if _, err := l.file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write %s: %w", l.file.Name(), err)
	}
	l.stats.Written++

	if valid && l.sink != nil {
		l.publish(rmc)
	}
	return nil
}

func (l *Logger) publish(m nmea.RMC) {
	fix := gps.Fix{
		Time:       m.Time.String(),
		Date:       dayOf(m.Date),
		Latitude:   m.Latitude,
		Longitude:  m.Longitude,
		SpeedKnots: m.Speed,
		CourseDeg:  m.Course,
		Validity:   string(m.Validity),
		Source:     l.source,
	}
	if err := l.sink.Publish(fix); err != nil {
		log.Warn().Err(err).Msg("gps fix not published")
		return
	}
	l.stats.Published++
}

// rotate switches the capture file to the one for day ("" = undated).
func (l *Logger) rotate(day string) error {
	if l.file != nil && day == l.day {
		return nil
	}
	if err := l.Close(); err != nil {
		return err
	}

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	name := UndatedFile
	if day != "" {
		name = day + ".nmea"
	}
	path := filepath.Join(l.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open capture file: %w", err)
	}
	l.file = f
	l.day = day
	log.Info().Str("file", path).Msg("gps capture file opened")
	return nil
}

// Close closes the current capture file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("close capture file: %w", err)
	}
	return nil
}

func dayOf(d nmea.Date) string {
	return fmt.Sprintf("%04d-%02d-%02d", 2000+d.YY, d.MM, d.DD)
}
