// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimestamp is returned when an encoded UTC string cannot be decoded.
var ErrTimestamp = errors.New("invalid UTC timestamp")

// defaultClock is what an unset Timestamp reports: 2000-01-01 12:00:00 UTC.
var defaultClock = Timestamp{year: 2000, month: 1, day: 1, hour: 12}

// Timestamp is a UTC wall-clock value with one second resolution.
//
// The zero value is an unset clock. Once a Timestamp has been produced by
// ParseTimestamp, NewTimestamp or FromTime it is set for good; there is no
// way to clear it, a new value simply replaces the old one.
type Timestamp struct {
	year, month, day     int
	hour, minute, second int
	set                  bool
}

// NewTimestamp builds a set Timestamp from calendar fields.
func NewTimestamp(year, month, day, hour, minute, second int) Timestamp {
	return Timestamp{
		year: year, month: month, day: day,
		hour: hour, minute: minute, second: second,
		set: true,
	}
}

// FromTime truncates t to whole seconds in UTC.
func FromTime(t time.Time) Timestamp {
	t = t.UTC()
	return NewTimestamp(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// ParseTimestamp decodes the receiver encoding yymmddhhmmss[.sss].
// The year is 2000-based; anything after the twelfth digit is ignored.
func ParseTimestamp(raw string) (Timestamp, error) {
	if len(raw) < 12 {
		return Timestamp{}, fmt.Errorf("%w: %q is shorter than 12 digits", ErrTimestamp, raw)
	}

	var v [6]int
	for i := range v {
		hi, lo := raw[2*i], raw[2*i+1]
		if hi < '0' || hi > '9' || lo < '0' || lo > '9' {
			return Timestamp{}, fmt.Errorf("%w: %q has a non-digit in position %d", ErrTimestamp, raw, 2*i)
		}
		v[i] = int(hi-'0')*10 + int(lo-'0')
	}

	ts := NewTimestamp(2000+v[0], v[1], v[2], v[3], v[4], v[5])
	if ts.month < 1 || ts.month > 12 || ts.day < 1 || ts.day > 31 ||
		ts.hour > 23 || ts.minute > 59 || ts.second > 60 {
		return Timestamp{}, fmt.Errorf("%w: %q is out of range", ErrTimestamp, raw)
	}
	return ts, nil
}

// IsSet reports whether a real UTC update has ever been seen.
func (t Timestamp) IsSet() bool { return t.set }

func (t Timestamp) fields() Timestamp {
	if !t.set {
		return defaultClock
	}
	return t
}

// Instant converts the calendar fields to an absolute UTC time.
func (t Timestamp) Instant() time.Time {
	f := t.fields()
	return time.Date(f.year, time.Month(f.month), f.day, f.hour, f.minute, f.second, 0, time.UTC)
}

// Compare returns -1, 0 or +1 depending on whether t is before, equal to or
// after o.
func (t Timestamp) Compare(o Timestamp) int {
	return t.Instant().Compare(o.Instant())
}

// Before reports whether t is strictly earlier than o.
func (t Timestamp) Before(o Timestamp) bool {
	return t.Compare(o) < 0
}

// Add returns t shifted by d. An unset clock stays unset and unchanged.
func (t Timestamp) Add(d time.Duration) Timestamp {
	if !t.set {
		return t
	}
	return FromTime(t.Instant().Add(d))
}

// String renders the point form used in GPX files: YYYY-MM-DDTHH:MM:SSZ.
func (t Timestamp) String() string {
	f := t.fields()
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02dZ", f.year, f.month, f.day, f.hour, f.minute, f.second)
}

// DateKey is the partition key for a calendar day, e.g. "2021-6-1".
// Month and day are intentionally not zero padded so that output file names
// match the ones earlier releases produced.
func (t Timestamp) DateKey() string {
	f := t.fields()
	return fmt.Sprintf("%d-%d-%d", f.year, f.month, f.day)
}

// Encode renders t back into the receiver encoding (yymmddhhmmss.000).
// It fails for years that two digits cannot carry.
func (t Timestamp) Encode() (string, error) {
	f := t.fields()
	if f.year < 2000 || f.year > 2099 {
		return "", fmt.Errorf("%w: year %d cannot be encoded with two digits", ErrTimestamp, f.year)
	}
	return fmt.Sprintf("%02d%02d%02d%02d%02d%02d.000", f.year-2000, f.month, f.day, f.hour, f.minute, f.second), nil
}
