package publish

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bobwolff68/goproWhereWhen/internal/gpx"
)

// fakeToken completes immediately unless stalled.
type fakeToken struct {
	err     error
	stalled bool
}

func (t *fakeToken) Wait() bool { return !t.stalled }

func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.stalled }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.stalled {
		close(ch)
	}
	return ch
}

func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient records publishes. Methods it does not override panic through
// the nil embedded interface.
type fakeClient struct {
	mqtt.Client
	token        *fakeToken
	sent         []published
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic, qos, retained, payload.([]byte)})
	return c.token
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestPublisherSendsJSON(t *testing.T) {
	client := &fakeClient{token: &fakeToken{}}
	p := New(client, "wherewhen/tracks")

	require.NoError(t, p.Publish(map[string]int{"points": 3}))
	require.Len(t, client.sent, 1)
	require.Equal(t, "wherewhen/tracks", client.sent[0].topic)
	require.Equal(t, byte(0), client.sent[0].qos)
	require.False(t, client.sent[0].retained)
	require.JSONEq(t, `{"points":3}`, string(client.sent[0].payload))

	p.Close()
	require.True(t, client.disconnected)
}

func TestPublisherErrors(t *testing.T) {
	brokerErr := errors.New("not connected")
	p := New(&fakeClient{token: &fakeToken{err: brokerErr}}, "t")
	require.ErrorIs(t, p.Publish(1), brokerErr)

	p = New(&fakeClient{token: &fakeToken{stalled: true}}, "t")
	require.ErrorIs(t, p.Publish(1), ErrTimeout)

	p = New(&fakeClient{token: &fakeToken{}}, "t")
	require.Error(t, p.Publish(func() {}))
}

type recordingSender struct {
	notices []Notice
	fail    map[string]bool
}

func (s *recordingSender) Publish(v any) error {
	n := v.(Notice)
	if s.fail[n.Date] {
		return errors.New("broker gone")
	}
	s.notices = append(s.notices, n)
	return nil
}

func TestNotifierSend(t *testing.T) {
	sender := &recordingSender{fail: map[string]bool{"2021-6-2": true}}
	n := NewNotifier(sender)
	n.now = func() time.Time { return time.Date(2021, 6, 3, 8, 0, 0, 0, time.UTC) }

	_, err := uuid.Parse(n.RunID())
	require.NoError(t, err)

	results := []gpx.Result{
		{Date: "2021-6-1", Path: "out/2021-6-1.gpx", Tracks: 2, Points: 40},
		{Date: "2021-6-2", Path: "out/2021-6-2.gpx", Tracks: 1, Points: 7},
		{Date: "2021-6-3", Path: "out/2021-6-3.gpx", Tracks: 1, Err: errors.New("disk full")},
	}
	require.Equal(t, 2, n.Send(results))
	require.Len(t, sender.notices, 2)

	first := sender.notices[0]
	require.Equal(t, n.RunID(), first.RunID)
	require.Equal(t, "2021-6-1", first.Date)
	require.Equal(t, 40, first.Points)
	require.Empty(t, first.Error)
	require.Equal(t, "disk full", sender.notices[1].Error)
	require.Equal(t, n.RunID(), sender.notices[1].RunID)
}

func TestNoticeJSON(t *testing.T) {
	msg := Notice{
		RunID:       "r",
		Date:        "2021-6-1",
		File:        "2021-6-1.gpx",
		Tracks:      1,
		Points:      2,
		GeneratedAt: time.Date(2021, 6, 3, 8, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	require.JSONEq(t, `{"run_id":"r","date":"2021-6-1","file":"2021-6-1.gpx","tracks":1,"points":2,"generated_at":"2021-06-03T08:00:00Z"}`, string(raw))
}

func TestNotifiersHaveDistinctRunIDs(t *testing.T) {
	require.NotEqual(t, NewNotifier(&recordingSender{}).RunID(), NewNotifier(&recordingSender{}).RunID())
}
