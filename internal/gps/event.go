// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

// Event is one item of a decoder's output stream. The set of implementations
// is closed: UTCUpdate, PositionBatch and Other.
type Event interface {
	event()
}

// UTCUpdate carries the receiver clock in its raw yymmddhhmmss.sss form.
type UTCUpdate struct {
	Raw string
}

// Position is a single instantaneous reading.
type Position struct {
	Lat float64
	Lon float64
	Ele float64
}

// PositionBatch groups the readings that share the most recent UTCUpdate.
type PositionBatch struct {
	Fixes []Position
}

// Other stands for any record the decoder saw but does not translate.
type Other struct {
	Key string
}

func (UTCUpdate) event()     {}
func (PositionBatch) event() {}
func (Other) event()         {}
