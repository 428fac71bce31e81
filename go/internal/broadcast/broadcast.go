// Package broadcast owns the process-scoped NATS connection used to fan
// timer events out to group topics. Topics are plain subjects of the form
// <prefix>.<groupID>; delivery is at-most-once with no ack or replay, which
// is the contract subscribers are written against.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/grouptick/grouptick/go/internal/events"
)

// Config holds settings for the broadcast connection
type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns default broadcast configuration
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "timer.events",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// Publisher is the mutation engine's view of the broadcast channel
type Publisher interface {
	Publish(ctx context.Context, groupID string, eventType events.EventType, payload interface{}) error
}

// Conn is a process-scoped broadcast connection. One Conn serves all group
// topics; per-group subscriptions are opened on view mount and released on
// unmount.
type Conn struct {
	nc     *nats.Conn
	config Config
}

// Connect opens the broadcast connection
func Connect(cfg Config) (*Conn, error) {
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

	return &Conn{nc: nc, config: cfg}, nil
}

// Publish marshals the payload into a timer event envelope and publishes it
// to the group's topic. Fire-and-forget: a successful return only means the
// message was handed to the transport.
func (c *Conn) Publish(ctx context.Context, groupID string, eventType events.EventType, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	event := events.TimerEvent{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", c.config.SubjectPrefix, groupID)
	if err := c.nc.Publish(subject, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	log.Debug().
		Str("subject", subject).
		Str("event_id", event.ID).
		Str("event_type", string(eventType)).
		Msg("published timer event")

	return nil
}

// Subscribe binds a handler to a single group's topic. The returned
// Subscription must be released with Unsubscribe when the view is torn down.
func (c *Conn) Subscribe(groupID string, handler func(*events.TimerEvent)) (*Subscription, error) {
	subject := fmt.Sprintf("%s.%s", c.config.SubjectPrefix, groupID)
	sub, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		var event events.TimerEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject).Msg("failed to unmarshal timer event")
			return
		}
		handler(&event)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	return &Subscription{sub: sub}, nil
}

// SubscribeAll binds a handler to every group topic. Used by the websocket
// gateway to fan events out to browser clients.
func (c *Conn) SubscribeAll(handler func(*events.TimerEvent)) (*Subscription, error) {
	subject := fmt.Sprintf("%s.>", c.config.SubjectPrefix)
	sub, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		var event events.TimerEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject).Msg("failed to unmarshal timer event")
			return
		}
		handler(&event)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	return &Subscription{sub: sub}, nil
}

// Close shuts down the underlying connection
func (c *Conn) Close() {
	if c.nc != nil {
		c.nc.Close()
	}
}

// Subscription is a handle on one group topic binding
type Subscription struct {
	sub *nats.Subscription
}

// Unsubscribe releases the binding
func (s *Subscription) Unsubscribe() error {
	if s.sub == nil {
		return nil
	}
	return s.sub.Unsubscribe()
}
