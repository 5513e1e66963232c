package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/bobwolff68/goproWhereWhen/internal/config"
	"github.com/bobwolff68/goproWhereWhen/internal/gps"
	"github.com/bobwolff68/goproWhereWhen/internal/publish"
)

// RunMonitor subscribes to the export notice and live fix topics and prints
// every message to stdout until ctx is cancelled.
func RunMonitor(ctx context.Context, cfg *config.Config) error {
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}

	client, err := publish.Connect(cfg.MQTTBroker, cfg.MQTTClientIDExporter+"-monitor")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	// Subscribe to export notices
	if err := subscribe(client, cfg.TopicTracks, noticeHandler(os.Stdout)); err != nil {
		return err
	}

	// Subscribe to GPS
	if err := subscribe(client, cfg.TopicGPS, fixHandler(os.Stdout)); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info().Msg("monitor: shutting down")
	return nil
}

func subscribe(client mqtt.Client, topic string, handler mqtt.MessageHandler) error {
	token := client.Subscribe(topic, 0, handler)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	log.Info().Str("topic", topic).Msg("monitor: subscribed")
	return nil
}

// noticeHandler prints export notices. Fields are read by name so notices
// from older or newer exporters still print.
func noticeHandler(w io.Writer) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		if !gjson.ValidBytes(msg.Payload()) {
			log.Warn().Str("topic", msg.Topic()).Msg("monitor: notice is not JSON")
			return
		}
		n := gjson.ParseBytes(msg.Payload())

		status := "ok"
		if e := n.Get("error"); e.Exists() && e.String() != "" {
			status = "FAILED: " + e.String()
		}
		fmt.Fprintf(w, "[GPX ]  date=%s file=%s tracks=%d points=%d run=%s %s\n",
			n.Get("date").String(), n.Get("file").String(),
			n.Get("tracks").Int(), n.Get("points").Int(),
			n.Get("run_id").String(), status)
	}
}

func fixHandler(w io.Writer) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var f gps.Fix
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Warn().Err(err).Str("topic", msg.Topic()).Msg("monitor: gps unmarshal error")
			return
		}

		fmt.Fprintf(w,
			"[GPS ]  time=%s date=%s lat=%.6f lon=%.6f speed=%.1fkn course=%.1f° validity=%s\n",
			f.Time, f.Date, f.Latitude, f.Longitude, f.SpeedKnots, f.CourseDeg, f.Validity,
		)
	}
}
