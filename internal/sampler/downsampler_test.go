package sampler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bobwolff68/goproWhereWhen/internal/gps"
)

func batch(n int, lat float64) gps.PositionBatch {
	fixes := make([]gps.Position, n)
	for i := range fixes {
		fixes[i] = gps.Position{Lat: lat + float64(i)*0.0001, Lon: -122.3, Ele: 12.5}
	}
	return gps.PositionBatch{Fixes: fixes}
}

func feed(t *testing.T, d *Downsampler, events ...gps.Event) {
	t.Helper()
	for _, ev := range events {
		require.NoError(t, d.Handle(ev))
	}
}

func TestThinningKeepsFirstAndThirdBatch(t *testing.T) {
	d := New(5)
	feed(t, d,
		gps.UTCUpdate{Raw: "210601120000.000"}, batch(18, 47.0),
		gps.UTCUpdate{Raw: "210601120004.000"}, batch(18, 48.0),
		gps.UTCUpdate{Raw: "210601120006.000"}, batch(18, 49.0),
	)

	points := d.Points()
	require.Len(t, points, 2)
	require.Equal(t, 47.0, points[0].Lat)
	require.Equal(t, 49.0, points[1].Lat)
	require.Equal(t, "2021-06-01T12:00:00Z", points[0].Time.String())
	require.GreaterOrEqual(t, points[1].Time.Instant().Sub(points[0].Time.Instant()), 5*time.Second)
	require.Equal(t, 3*18-2, d.Dropped())
}

func TestThinningAcceptsExactInterval(t *testing.T) {
	d := New(5)
	feed(t, d,
		gps.UTCUpdate{Raw: "210601120000.000"}, batch(18, 47.0),
		gps.UTCUpdate{Raw: "210601120004.000"}, batch(18, 48.0),
		gps.UTCUpdate{Raw: "210601120005.000"}, batch(18, 49.0),
	)

	points := d.Points()
	require.Len(t, points, 2)
	require.Equal(t, 5*time.Second, points[1].Time.Instant().Sub(points[0].Time.Instant()))
}

func TestZeroIntervalKeepsEveryFix(t *testing.T) {
	d := New(0)
	feed(t, d,
		gps.UTCUpdate{Raw: "210601120000.000"}, batch(18, 47.0),
		gps.Other{Key: "ACCL"},
		gps.UTCUpdate{Raw: "210601120001.000"}, batch(7, 48.0),
		batch(0, 0),
	)

	points := d.Points()
	require.Len(t, points, 25)
	for i, p := range points {
		want := "2021-06-01T12:00:00Z"
		if i >= 18 {
			want = "2021-06-01T12:00:01Z"
		}
		require.Equal(t, want, p.Time.String(), "sample %d", i)
	}
	require.InDelta(t, 47.0001, points[1].Lat, 1e-9)
	require.Zero(t, d.Dropped())
}

func TestZeroIntervalStampsUnsetClock(t *testing.T) {
	d := New(0)
	feed(t, d, batch(2, 10))

	points := d.Points()
	require.Len(t, points, 2)
	require.False(t, points[0].Time.IsSet())
}

func TestFixesBeforeClockAreDropped(t *testing.T) {
	d := New(1)
	feed(t, d,
		batch(18, 40.0),
		gps.Other{Key: "GPSF"},
		batch(18, 41.0),
		gps.UTCUpdate{Raw: "210601120010.000"}, batch(18, 42.0),
	)

	points := d.Points()
	require.Len(t, points, 1)
	require.Equal(t, 42.0, points[0].Lat)
	require.True(t, points[0].Time.IsSet())
}

func TestRetainedSamplesAreSpaced(t *testing.T) {
	for _, interval := range []uint{0, 1, 2, 3, 5, 7, 30} {
		d := New(interval)
		start := gps.NewTimestamp(2021, 6, 1, 23, 59, 30)
		for sec := 0; sec < 120; sec++ {
			raw, err := start.Add(time.Duration(sec) * time.Second).Encode()
			require.NoError(t, err)
			feed(t, d, gps.UTCUpdate{Raw: raw}, batch(3, float64(sec)))
		}

		points := d.Points()
		require.NotEmpty(t, points)
		for i := 1; i < len(points); i++ {
			gap := points[i].Time.Instant().Sub(points[i-1].Time.Instant())
			require.GreaterOrEqual(t, gap, time.Duration(0), "interval %d sample %d", interval, i)
			if interval > 0 {
				require.GreaterOrEqual(t, gap, time.Duration(interval)*time.Second, "interval %d sample %d", interval, i)
			}
		}
		if interval == 0 {
			require.Len(t, points, 360)
		}
	}
}

func TestBadUTCUpdateIsReported(t *testing.T) {
	d := New(5)
	err := d.Handle(gps.UTCUpdate{Raw: "21060112"})
	require.ErrorIs(t, err, gps.ErrTimestamp)
	require.Empty(t, d.Points())
}

func TestPointsReturnsCopy(t *testing.T) {
	d := New(0)
	feed(t, d, gps.UTCUpdate{Raw: "210601120000.000"}, batch(1, 1))

	points := d.Points()
	points[0].Lat = 99
	require.Equal(t, 1.0, d.Points()[0].Lat)
}
