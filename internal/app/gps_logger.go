package app

import (
	"context"
	"fmt"

	serial "github.com/jacobsa/go-serial/serial"
	"github.com/rs/zerolog/log"

	"github.com/bobwolff68/goproWhereWhen/internal/config"
	"github.com/bobwolff68/goproWhereWhen/internal/gpslog"
	"github.com/bobwolff68/goproWhereWhen/internal/publish"
)

// RunGPSLogger opens the GPS serial port, appends valid NMEA sentences to
// daily capture files in cfg.GPSLogDir and, when a broker is configured,
// publishes each valid RMC fix as JSON to cfg.TopicGPS.
// It returns nil once ctx is cancelled.
func RunGPSLogger(ctx context.Context, cfg *config.Config) error {
	if err := cfg.ValidateLogger(); err != nil {
		return err
	}

	// ---- 1) Connect to MQTT broker (optional) ----
	var sink publish.Sender
	if cfg.MQTTBroker != "" {
		client, err := publish.Connect(cfg.MQTTBroker, cfg.MQTTClientIDGPS)
		if err != nil {
			return err
		}
		pub := publish.New(client, cfg.TopicGPS)
		defer pub.Close()
		sink = pub
	}

	// ---- 2) Open GPS serial port ----
	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("open %s: %w", serialOpts.PortName, err)
	}
	log.Info().Str("port", serialOpts.PortName).Uint("baud", serialOpts.BaudRate).Msg("GPS serial port opened")

	// A blocked read only returns once the port is closed.
	stop := context.AfterFunc(ctx, func() { _ = port.Close() })
	defer func() {
		if stop() {
			_ = port.Close()
		}
	}()

	// ---- 3) Log until cancelled ----
	logger := gpslog.New(cfg.GPSLogDir, cfg.GPSSerialPort, sink)
	runErr := logger.Run(ctx, port)
	closeErr := logger.Close()

	stats := logger.Stats()
	log.Info().
		Int("lines", stats.Lines).
		Int("written", stats.Written).
		Int("rejected", stats.Rejected).
		Int("published", stats.Published).
		Msg("GPS logger stopped")

	if runErr != nil {
		return runErr
	}
	return closeErr
}
