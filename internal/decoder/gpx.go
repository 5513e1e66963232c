package decoder

import (
	"context"
	"fmt"

	"github.com/bobwolff68/goproWhereWhen/internal/gps"
	"github.com/bobwolff68/goproWhereWhen/internal/gpx"
)

// GPX replays the track points of an existing GPX file, so earlier exports
// or files from other tools can be thinned again. Points sharing a second
// form one batch. Every point needs a time between 2000 and 2099.
type GPX struct{}

func (GPX) Decode(ctx context.Context, path string, emit func(gps.Event) error) error {
	doc, err := gpx.Read(path)
	if err != nil {
		return err
	}

	b := batcher{emit: emit}
	for _, trk := range doc.Tracks {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				s, err := p.Sample()
				if err != nil {
					return fmt.Errorf("track %q: %w", trk.Name, err)
				}
				stamp, err := s.Time.Encode()
				if err != nil {
					return fmt.Errorf("track %q: %w", trk.Name, err)
				}
				if err := b.clock(stamp); err != nil {
					return err
				}
				b.add(gps.Position{Lat: s.Lat, Lon: s.Lon, Ele: s.Ele})
			}
		}
	}
	return b.flush()
}
