// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gpx

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/bobwolff68/goproWhereWhen/internal/gps"
)

// Identification written into every file.
const (
	Namespace      = "http://www.topografix.com/GPX/1/1"
	XSINamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	SchemaLocation = "http://www.topografix.com/GPX/1/1 http://www.topografix.com/GPX/1/1/gpx.xsd"
	Version        = "1.1"
	Creator        = "goproWhereWhen"
	ProjectURL     = "https://github.com/bobwolff68/goproWhereWhen"
)

// Document is the subset of GPX 1.1 this tool reads and writes.
type Document struct {
	XMLName        xml.Name `xml:"gpx"`
	Xmlns          string   `xml:"xmlns,attr,omitempty"`
	XmlnsXSI       string   `xml:"xmlns:xsi,attr,omitempty"`
	Creator        string   `xml:"creator,attr"`
	Version        string   `xml:"version,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr,omitempty"`
	Metadata       Metadata `xml:"metadata"`
	Tracks         []Track  `xml:"trk"`
}

type Metadata struct {
	Link Link   `xml:"link"`
	Time string `xml:"time,omitempty"`
}

type Link struct {
	Href string `xml:"href,attr"`
	Text string `xml:"text,omitempty"`
}

type Track struct {
	Name     string    `xml:"name"`
	Segments []Segment `xml:"trkseg"`
}

type Segment struct {
	Points []Point `xml:"trkpt"`
}

// Point is one trkpt. Coordinates are written as plain decimals.
type Point struct {
	Lat  Decimal `xml:"lat,attr"`
	Lon  Decimal `xml:"lon,attr"`
	Ele  Decimal `xml:"ele"`
	Time string  `xml:"time,omitempty"`
}

// Decimal is a float64 that marshals without exponent notation and with the
// shortest representation that parses back to the same value.
type Decimal float64

func (d Decimal) MarshalText() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(d), 'f', -1, 64), nil
}

func (d *Decimal) UnmarshalText(b []byte) error {
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*d = Decimal(v)
	return nil
}

func newPoint(s gps.Sample) Point {
	return Point{
		Lat:  Decimal(s.Lat),
		Lon:  Decimal(s.Lon),
		Ele:  Decimal(s.Ele),
		Time: s.Time.String(),
	}
}

// Sample converts p back into a gps.Sample. Points without a time are an
// error since a sample without a time cannot be placed in a track.
func (p Point) Sample() (gps.Sample, error) {
	if p.Time == "" {
		return gps.Sample{}, fmt.Errorf("trkpt at %v,%v has no time", float64(p.Lat), float64(p.Lon))
	}
	t, err := time.Parse(time.RFC3339, p.Time)
	if err != nil {
		return gps.Sample{}, fmt.Errorf("trkpt time %q: %w", p.Time, err)
	}
	return gps.NewSample(gps.FromTime(t), float64(p.Lat), float64(p.Lon), float64(p.Ele)), nil
}

// Decode parses a GPX document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse GPX: %w", err)
	}
	return &doc, nil
}

// Read opens and parses a GPX file.
func Read(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Decode(f)
}
