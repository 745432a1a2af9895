// Package siren drives the audible alarm output. The plant siren is an MQTT
// relay that loops its cue while the retained topic value is ON.
package siren

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cocodry/internal/logger"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	payloadOn  = "ON"
	payloadOff = "OFF"

	publishTimeout = 3 * time.Second
	quiesceMillis  = 250
)

var errPublishTimeout = errors.New("siren: publish timed out")

type Config struct {
	Broker   string
	ClientID string
	Topic    string
	Username string
	Password string
	Retries  int
}

// publisher is the subset of mqtt.Client the siren needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTT publishes ON/OFF to the siren relay topic.
type MQTT struct {
	client publisher
	topic  string
	log    *logger.Logger
}

// Dial connects to the broker, retrying with exponential backoff.
func Dial(ctx context.Context, cfg Config, log *logger.Logger) (*MQTT, error) {
	if log == nil {
		log = logger.Nop()
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warnw("siren_connection_lost", "err", err)
	})

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 10 * time.Second
	retries := cfg.Retries
	if retries < 1 {
		retries = 1
	}

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.Warnw("siren_connect_failed", "broker", cfg.Broker, "err", token.Error())
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(retries-1)), ctx))
	if err != nil {
		return nil, fmt.Errorf("siren: connect %s: %w", cfg.Broker, err)
	}
	log.Infow("siren_connected", "broker", cfg.Broker, "topic", cfg.Topic)

	return newMQTT(client, cfg.Topic, log), nil
}

func newMQTT(client publisher, topic string, log *logger.Logger) *MQTT {
	return &MQTT{client: client, topic: topic, log: log}
}

func (s *MQTT) Play() error { return s.publish(payloadOn) }

func (s *MQTT) Stop() error { return s.publish(payloadOff) }

// Close silences the siren and disconnects.
func (s *MQTT) Close() {
	if err := s.Stop(); err != nil {
		s.log.Warnw("siren_stop_on_close", "err", err)
	}
	s.client.Disconnect(quiesceMillis)
}

func (s *MQTT) publish(payload string) error {
	token := s.client.Publish(s.topic, 1, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("siren: publish %s: %w", payload, err)
	}
	s.log.Debugw("siren_published", "topic", s.topic, "payload", payload)
	return nil
}

// Log is the siren used when no broker is configured: it only records
// the alarm transitions in the service log.
type Log struct {
	log *logger.Logger
}

func NewLog(log *logger.Logger) *Log {
	if log == nil {
		log = logger.Nop()
	}
	return &Log{log: log}
}

func (s *Log) Play() error {
	s.log.Warnw("alarm_sounding")
	return nil
}

func (s *Log) Stop() error {
	s.log.Infow("alarm_silenced")
	return nil
}
