package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wherewhen_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
# thinning
SECONDS_BETWEEN_SAMPLES = 0
INPUT_FILES=/rides/a.nmea, /rides/b.gpx
FILE_EXT=NMEA,gpx,log
OUTPUT_DIR=/tmp/gpx
DECODE_WORKERS=4
EXPORT_WORKERS=2
LOG_LEVEL=DEBUG
MQTT_BROKER=tcp://localhost:1883
TOPIC_TRACKS=rides/exported
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint(0), cfg.SecondsBetweenSamples)
	require.Equal(t, []string{"/rides/a.nmea", "/rides/b.gpx"}, cfg.InputFiles)
	require.Equal(t, []string{"nmea", "gpx", "log"}, cfg.FileExt)
	require.Equal(t, "/tmp/gpx", cfg.OutputDir)
	require.Equal(t, 4, cfg.DecodeWorkers)
	require.Equal(t, 2, cfg.ExportWorkers)
	require.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	require.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	require.Equal(t, "rides/exported", cfg.TopicTracks)

	// untouched keys keep their defaults
	require.Equal(t, "wherewhen-exporter", cfg.MQTTClientIDExporter)
	require.Equal(t, 9600, cfg.GPSBaudRate)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "# nothing set\n"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, uint(5), cfg.SecondsBetweenSamples)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "NOPE=1",
		"missing equals":   "SECONDS_BETWEEN_SAMPLES",
		"negative seconds": "SECONDS_BETWEEN_SAMPLES=-1",
		"bad extension":    "FILE_EXT=*.mp4",
		"zero workers":     "DECODE_WORKERS=0",
		"bad export":       "EXPORT_WORKERS=two",
		"bad level":        "LOG_LEVEL=loud",
		"bad baud":         "GPS_BAUD_RATE=fast",
		"empty topic":      "MQTT_BROKER=tcp://broker:1883\nTOPIC_TRACKS=",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateLogger(t *testing.T) {
	cfg := Default()
	require.Error(t, cfg.ValidateLogger())

	cfg.GPSSerialPort = "/dev/serial0"
	require.Error(t, cfg.ValidateLogger())

	cfg.GPSLogDir = "/var/log/gps"
	require.NoError(t, cfg.ValidateLogger())

	cfg.GPSBaudRate = 0
	require.Error(t, cfg.ValidateLogger())
}

func TestInitGlobal(t *testing.T) {
	path := writeConfig(t, "OUTPUT_DIR=/srv/gpx\n")
	require.NoError(t, InitGlobal(path))
	require.Equal(t, "/srv/gpx", Get().OutputDir)

	// later calls keep the first configuration
	require.NoError(t, InitGlobal(writeConfig(t, "OUTPUT_DIR=/elsewhere\n")))
	require.Equal(t, "/srv/gpx", Get().OutputDir)
}
