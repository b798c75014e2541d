package bridge

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Publisher fans published game events out to a NATS subject tree so external
// scoreboard integrations can follow the session without holding a websocket.
// It implements broadcast.EventSink.
type Publisher struct {
	nc            *nats.Conn
	subjectPrefix string
}

// Config holds NATS connection settings
type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns the default NATS bridge configuration
func DefaultConfig(url string) Config {
	return Config{
		URL:           url,
		SubjectPrefix: "wordclash.events",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// Connect establishes the NATS connection with automatic reconnects
func Connect(cfg Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	log.Info().Str("url", cfg.URL).Str("subject_prefix", cfg.SubjectPrefix).Msg("NATS bridge connected")

	return &Publisher{nc: nc, subjectPrefix: cfg.SubjectPrefix}, nil
}

// Send implements broadcast.EventSink by publishing the payload JSON to
// <prefix>.<event>.
func (p *Publisher) Send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	if err := p.nc.Publish(fmt.Sprintf("%s.%s", p.subjectPrefix, event), data); err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}
	return nil
}

// Close drains and closes the NATS connection
func (p *Publisher) Close() {
	if err := p.nc.Drain(); err != nil {
		log.Warn().Err(err).Msg("NATS drain failed")
	}
}
