package gateway

import (
	"github.com/rs/zerolog/log"

	"github.com/grouptick/grouptick/go/internal/broadcast"
	"github.com/grouptick/grouptick/go/internal/events"
)

// EventConsumer bridges the broadcast channel to WebSocket clients: it
// subscribes every group topic and hands each event to the connection
// manager for fan-out to that group's connections.
type EventConsumer struct {
	connectionManager *ConnectionManager
	conn              *broadcast.Conn
	sub               *broadcast.Subscription
}

// NewEventConsumer creates a consumer over an existing broadcast connection
func NewEventConsumer(cm *ConnectionManager, conn *broadcast.Conn) *EventConsumer {
	return &EventConsumer{
		connectionManager: cm,
		conn:              conn,
	}
}

// Start subscribes the wildcard topic. Delivery is at-most-once: events that
// arrive while the gateway is down are simply missed, and clients recover by
// re-fetching on their next (re)subscribe.
func (ec *EventConsumer) Start() error {
	sub, err := ec.conn.SubscribeAll(func(event *events.TimerEvent) {
		log.Debug().
			Str("event_id", event.ID).
			Str("group_id", event.GroupID).
			Str("event_type", string(event.Type)).
			Msg("forwarding timer event to WebSocket clients")

		ec.connectionManager.BroadcastToGroup(event.GroupID, event)
	})
	if err != nil {
		return err
	}
	ec.sub = sub

	log.Info().Msg("gateway event consumer started")
	return nil
}

// Stop releases the topic subscription
func (ec *EventConsumer) Stop() error {
	log.Info().Msg("stopping event consumer")
	if ec.sub != nil {
		return ec.sub.Unsubscribe()
	}
	return nil
}
