// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package publish sends JSON messages to an MQTT broker.
package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// PublishTimeout bounds how long a single publish waits for the broker.
const PublishTimeout = 5 * time.Second

// ErrTimeout is returned when the broker does not acknowledge in time.
var ErrTimeout = errors.New("mqtt publish timed out")

// Connect opens a client connection to broker, e.g. "tcp://localhost:1883".
func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect %s: %w", broker, token.Error())
	}
	log.Info().Str("broker", broker).Str("client_id", clientID).Msg("connected to MQTT broker")
	return client, nil
}

// Publisher marshals values to JSON and publishes them on one topic,
// QoS 0 and not retained.
type Publisher struct {
	client mqtt.Client
	topic  string
}

func New(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Topic returns the topic messages go to.
func (p *Publisher) Topic() string { return p.topic }

// Publish sends v as one JSON message.
func (p *Publisher) Publish(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %T: %w", v, err)
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(PublishTimeout) {
		return fmt.Errorf("%w: topic %s", ErrTimeout, p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", p.topic, err)
	}
	return nil
}

// Close disconnects the underlying client, giving in-flight work 250ms.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
