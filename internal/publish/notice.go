// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package publish

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bobwolff68/goproWhereWhen/internal/gpx"
)

// Notice announces one exported date file.
type Notice struct {
	RunID       string    `json:"run_id"`
	Date        string    `json:"date"`
	File        string    `json:"file"`
	Tracks      int       `json:"tracks"`
	Points      int       `json:"points"`
	Error       string    `json:"error,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Sender is anything that can publish a JSON value.
type Sender interface {
	Publish(v any) error
}

// Notifier publishes a Notice per export result. All notices of one
// Notifier share a run id.
type Notifier struct {
	sender Sender
	runID  string
	now    func() time.Time
}

func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender, runID: uuid.NewString(), now: time.Now}
}

// RunID identifies the export run in every notice.
func (n *Notifier) RunID() string { return n.runID }

// Notice builds the message for one result.
func (n *Notifier) Notice(res gpx.Result) Notice {
	msg := Notice{
		RunID:       n.runID,
		Date:        res.Date,
		File:        res.Path,
		Tracks:      res.Tracks,
		Points:      res.Points,
		GeneratedAt: n.now().UTC(),
	}
	if res.Err != nil {
		msg.Error = res.Err.Error()
	}
	return msg
}

// Send publishes a notice for every result and reports how many went out.
// Failures are logged, not returned.
func (n *Notifier) Send(results []gpx.Result) (sent int) {
	for _, res := range results {
		if err := n.sender.Publish(n.Notice(res)); err != nil {
			log.Warn().Err(err).Str("date", res.Date).Msg("export notice not published")
			continue
		}
		sent++
	}
	return sent
}
