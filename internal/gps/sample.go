package gps

import (
	"fmt"
	"sort"
)

// Sample is one retained position: where the receiver was at a given second.
type Sample struct {
	Time Timestamp
	Lat  float64 // decimal degrees
	Lon  float64 // decimal degrees
	Ele  float64 // meters
}

// NewSample stamps a position with t.
func NewSample(t Timestamp, lat, lon, ele float64) Sample {
	return Sample{Time: t, Lat: lat, Lon: lon, Ele: ele}
}

// Before orders samples by time only.
func (s Sample) Before(o Sample) bool {
	return s.Time.Before(o.Time)
}

func (s Sample) String() string {
	return fmt.Sprintf("time: %s, lat: %g, lon: %g, ele: %g", s.Time, s.Lat, s.Lon, s.Ele)
}

// SortSamples sorts in place by time, keeping arrival order for equal times.
func SortSamples(samples []Sample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Before(samples[j])
	})
}
