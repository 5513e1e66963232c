package tracks

import "sort"

// Partition maps a date key to the tracks that start on that day, keyed by
// display name. Display names are unique across all dates.
type Partition map[string]map[string]Track

// Dates returns the date keys in ascending string order.
func (p Partition) Dates() []string {
	dates := make([]string, 0, len(p))
	for d := range p {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Names returns the display names filed under date, ascending.
func (p Partition) Names(date string) []string {
	bucket := p[date]
	names := make([]string, 0, len(bucket))
	for n := range bucket {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TrackCount is the number of tracks over all dates.
func (p Partition) TrackCount() int {
	n := 0
	for _, bucket := range p {
		n += len(bucket)
	}
	return n
}

// SampleCount is the number of samples over all dates.
func (p Partition) SampleCount() int {
	n := 0
	for _, bucket := range p {
		for _, t := range bucket {
			n += len(t.Samples)
		}
	}
	return n
}
