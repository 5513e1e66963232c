// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sources

import (
	"errors"
	"fmt"
	"strings"
)

// MaxExtensionLength is the longest extension ParseExtensions accepts.
const MaxExtensionLength = 5

// ErrExtensions is returned for an unusable extension list.
var ErrExtensions = errors.New("invalid extension list")

// ParseExtensions validates a comma separated list such as "MP4,mov,nmea"
// and returns it lower-cased. Entries are bare extensions: no '.', '*' or
// spaces, at most MaxExtensionLength characters. Empty entries between
// commas are ignored but the list must name at least one extension.
func ParseExtensions(list string) ([]string, error) {
	list = strings.ToLower(list)
	if strings.ContainsAny(list, "*. ") {
		return nil, fmt.Errorf("%w: %q must not contain '*', '.' or spaces", ErrExtensions, list)
	}

	var exts []string
	for _, ext := range strings.Split(list, ",") {
		if ext == "" {
			continue
		}
		if len(ext) > MaxExtensionLength {
			return nil, fmt.Errorf("%w: %q is longer than %d characters", ErrExtensions, ext, MaxExtensionLength)
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		return nil, fmt.Errorf("%w: %q names no extension", ErrExtensions, list)
	}
	return exts, nil
}

// Filter keeps the paths ending in ".ext" for one of exts, compared without
// regard to case. Order is preserved.
func Filter(paths, exts []string) []string {
	var kept []string
	for _, p := range paths {
		lower := strings.ToLower(p)
		for _, ext := range exts {
			if strings.HasSuffix(lower, "."+ext) {
				kept = append(kept, p)
				break
			}
		}
	}
	return kept
}

// Dedup drops repeated paths, keeping the first occurrence.
func Dedup(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// SplitList splits a comma separated config value, trimming blanks.
func SplitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
