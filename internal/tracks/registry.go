// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package tracks

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/bobwolff68/goproWhereWhen/internal/gps"
)

// ErrDuplicateSource is returned by Add when the source id is already present.
var ErrDuplicateSource = errors.New("source already registered")

// Track is a named, time-ordered run of samples from one source.
type Track struct {
	Name    string
	Samples []gps.Sample
}

// Registry collects the thinned samples of every source processed in a run.
// Add may be called from several goroutines.
type Registry struct {
	mu     sync.Mutex
	tracks map[string]Track // keyed by source id
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tracks: make(map[string]Track)}
}

// Add registers the samples of sourceID. A second Add for the same id fails
// with ErrDuplicateSource and leaves the first entry as it was.
func (r *Registry) Add(sourceID string, samples []gps.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tracks[sourceID]; ok {
		log.Warn().Str("source", sourceID).Msg("source already registered, skipping")
		return fmt.Errorf("%w: %s", ErrDuplicateSource, sourceID)
	}

	r.tracks[sourceID] = Track{Name: sourceID, Samples: samples}
	return nil
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tracks)
}

// SourceIDs returns the registered ids in ascending order.
func (r *Registry) SourceIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedIDs()
}

func (r *Registry) sortedIDs() []string {
	ids := make([]string, 0, len(r.tracks))
	for id := range r.tracks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Track returns the entry stored for sourceID.
func (r *Registry) Track(sourceID string) (Track, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tracks[sourceID]
	return t, ok
}

// PartitionByDate groups every non-empty track by the calendar date of its
// first sample.
//
// Tracks are renamed to the base name of their source id first. Ids are
// visited in ascending order and a base name that is already taken gets
// "-1", "-2", ... appended, so the outcome depends only on the set of ids
// and not on the order they were added in. Empty tracks take part in the
// naming but are left out of the result.
func (r *Registry) PartitionByDate() Partition {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.sortedIDs()
	names := uniqueNames(ids)

	out := make(Partition)
	for _, id := range ids {
		t := r.tracks[id]
		if len(t.Samples) == 0 {
			log.Debug().Str("source", id).Msg("no samples, not exported")
			continue
		}

		date := t.Samples[0].Time.DateKey()
		log.Debug().
			Str("source", id).
			Str("name", names[id]).
			Str("date", date).
			Int("samples", len(t.Samples)).
			Msg("partitioning track")

		bucket, ok := out[date]
		if !ok {
			bucket = make(map[string]Track)
			out[date] = bucket
		}
		bucket[names[id]] = Track{Name: names[id], Samples: t.Samples}
	}

	for _, date := range out.Dates() {
		log.Info().Str("date", date).Int("tracks", len(out[date])).Msg("date partition")
	}
	return out
}

// uniqueNames maps each id to its display name. ids must be sorted.
func uniqueNames(ids []string) map[string]string {
	used := make(map[string]bool, len(ids))
	names := make(map[string]string, len(ids))

	for _, id := range ids {
		base := filepath.Base(id)
		name := base
		for n := 1; used[name]; n++ {
			name = base + "-" + strconv.Itoa(n)
		}
		used[name] = true
		names[id] = name
	}
	return names
}
