// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bobwolff68/goproWhereWhen/internal/sampler"
	"github.com/bobwolff68/goproWhereWhen/internal/sources"
)

// Config holds all application configuration values.
type Config struct {
	// Thinning
	SecondsBetweenSamples uint // 0 keeps every reading

	// Inputs
	InputFiles []string
	FileExt    []string // lower-case extensions without the dot

	// Output
	OutputDir string // "" writes into the current directory

	// Workers
	DecodeWorkers int
	ExportWorkers int

	// Logging
	LogLevel zerolog.Level

	// MQTT
	MQTTBroker           string // "" disables publishing
	MQTTClientIDExporter string
	MQTTClientIDGPS      string

	// Topics
	TopicTracks string
	TopicGPS    string

	// GPS logger
	GPSSerialPort string
	GPSBaudRate   int
	GPSLogDir     string
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through Get, so nothing outside this
//     package can replace it after start-up.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock for initialization,
//     read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used for keys a file does not set.
func Default() *Config {
	return &Config{
		SecondsBetweenSamples: sampler.DefaultSecondsBetweenSamples,
		FileExt:               []string{"nmea", "gpx"},
		DecodeWorkers:         1,
		ExportWorkers:         1,
		LogLevel:              zerolog.InfoLevel,
		MQTTClientIDExporter:  "wherewhen-exporter",
		MQTTClientIDGPS:       "wherewhen-gps-logger",
		TopicTracks:           "wherewhen/tracks",
		TopicGPS:              "wherewhen/gps",
		GPSBaudRate:           9600,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Thinning
	case "SECONDS_BETWEEN_SAMPLES":
		secs, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid SECONDS_BETWEEN_SAMPLES %q: %w", value, err)
		}
		c.SecondsBetweenSamples = uint(secs)

	// Inputs
	case "INPUT_FILES":
		c.InputFiles = sources.SplitList(value)
	case "FILE_EXT":
		exts, err := sources.ParseExtensions(value)
		if err != nil {
			return fmt.Errorf("invalid FILE_EXT: %w", err)
		}
		c.FileExt = exts

	// Output
	case "OUTPUT_DIR":
		c.OutputDir = value

	// Workers
	case "DECODE_WORKERS":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DECODE_WORKERS %q: %w", value, err)
		}
		c.DecodeWorkers = n
	case "EXPORT_WORKERS":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid EXPORT_WORKERS %q: %w", value, err)
		}
		c.ExportWorkers = n

	// Logging
	case "LOG_LEVEL":
		level, err := zerolog.ParseLevel(strings.ToLower(value))
		if err != nil {
			return fmt.Errorf("invalid LOG_LEVEL %q: %w", value, err)
		}
		c.LogLevel = level

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_EXPORTER":
		c.MQTTClientIDExporter = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value

	// Topics
	case "TOPIC_TRACKS":
		c.TopicTracks = value
	case "TOPIC_GPS":
		c.TopicGPS = value

	// GPS logger
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate
	case "GPS_LOG_DIR":
		c.GPSLogDir = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks the values the exporter depends on.
func (c *Config) validate() error {
	if c.DecodeWorkers < 1 {
		return fmt.Errorf("DECODE_WORKERS must be at least 1, got %d", c.DecodeWorkers)
	}
	if c.ExportWorkers < 1 {
		return fmt.Errorf("EXPORT_WORKERS must be at least 1, got %d", c.ExportWorkers)
	}
	if c.MQTTBroker != "" && c.TopicTracks == "" {
		return fmt.Errorf("TOPIC_TRACKS is required when MQTT_BROKER is set")
	}
	return nil
}

// ValidateLogger checks the settings only the GPS logger needs.
func (c *Config) ValidateLogger() error {
	if c.GPSSerialPort == "" {
		return fmt.Errorf("GPS_SERIAL_PORT is required")
	}
	if c.GPSBaudRate <= 0 {
		return fmt.Errorf("GPS_BAUD_RATE must be positive, got %d", c.GPSBaudRate)
	}
	if c.GPSLogDir == "" {
		return fmt.Errorf("GPS_LOG_DIR is required")
	}
	if c.MQTTBroker != "" && c.TopicGPS == "" {
		return fmt.Errorf("TOPIC_GPS is required when MQTT_BROKER is set")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
