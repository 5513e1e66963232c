// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package decoder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/rs/zerolog/log"

	"github.com/bobwolff68/goproWhereWhen/internal/gps"
)

// NMEA decodes NMEA 0183 text logs.
//
// RMC sentences set the UTC date, GGA sentences carry the readings. A GGA
// seen before the first valid RMC has no date to go with it and is dropped,
// as are GGA sentences without a fix and void RMC sentences. Lines that do
// not parse (noise, truncated writes, bad checksums) are skipped.
type NMEA struct{}

func (NMEA) Decode(ctx context.Context, path string, emit func(gps.Event) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open NMEA log: %w", err)
	}
	defer f.Close()

	stats, err := decodeNMEA(ctx, f, emit)
	log.Debug().
		Str("source", path).
		Int("lines", stats.lines).
		Int("skipped", stats.skipped).
		Int("undated", stats.undated).
		Msg("NMEA log decoded")
	return err
}

type nmeaStats struct {
	lines   int
	skipped int
	undated int
}

type nmeaState struct {
	b       batcher
	date    time.Time // UTC midnight of the current day, zero until an RMC is seen
	lastTOD time.Duration
}

func decodeNMEA(ctx context.Context, r io.Reader, emit func(gps.Event) error) (nmeaStats, error) {
	var stats nmeaStats
	st := &nmeaState{b: batcher{emit: emit}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		stats.lines++
		if stats.lines%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}

		// Loggers often prefix sentences with their own timestamp.
		line := strings.TrimSpace(scanner.Text())
		start := strings.IndexByte(line, '$')
		if start < 0 {
			if line != "" {
				stats.skipped++
			}
			continue
		}

		sentence, err := nmea.Parse(line[start:])
		if err != nil {
			stats.skipped++
			continue
		}

		switch m := sentence.(type) {
		case nmea.RMC:
			err = st.rmc(m)
		case nmea.GGA:
			var dated bool
			dated, err = st.gga(m)
			if !dated {
				stats.undated++
			}
		default:
			err = emit(gps.Other{Key: sentence.DataType()})
		}
		if err != nil {
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read NMEA log: %w", err)
	}
	return stats, st.b.flush()
}

func (st *nmeaState) rmc(m nmea.RMC) error {
	if m.Validity != nmea.ValidRMC || !m.Date.Valid {
		return nil
	}
	st.date = time.Date(2000+m.Date.YY, time.Month(m.Date.MM), m.Date.DD, 0, 0, 0, 0, time.UTC)
	if !m.Time.Valid {
		return nil
	}
	st.lastTOD = timeOfDay(m.Time)
	stamp, err := st.stamp(st.lastTOD)
	if err != nil {
		return err
	}
	return st.b.clock(stamp)
}

// gga reports false when the reading had no date and was dropped.
func (st *nmeaState) gga(m nmea.GGA) (bool, error) {
	if m.FixQuality == nmea.Invalid {
		return true, nil
	}
	if st.date.IsZero() || !m.Time.Valid {
		return false, nil
	}

	tod := timeOfDay(m.Time)
	if tod < st.lastTOD-12*time.Hour {
		// Crossed midnight before the next RMC brought the new date.
		st.date = st.date.AddDate(0, 0, 1)
	}
	st.lastTOD = tod

	stamp, err := st.stamp(tod)
	if err != nil {
		return true, err
	}
	if err := st.b.clock(stamp); err != nil {
		return true, err
	}
	st.b.add(gps.Position{Lat: m.Latitude, Lon: m.Longitude, Ele: m.Altitude})
	return true, nil
}

func (st *nmeaState) stamp(tod time.Duration) (string, error) {
	return gps.FromTime(st.date.Add(tod)).Encode()
}

func timeOfDay(t nmea.Time) time.Duration {
	return time.Duration(t.Hour)*time.Hour +
		time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second
}
