package gateway

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/grouptick/grouptick/go/internal/broadcast"
)

// Config holds configuration for the gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
	BroadcastConfig  broadcast.Config
}

// Service ties the gateway together: one broadcast connection feeding the
// connection manager through the event consumer.
type Service struct {
	connectionManager *ConnectionManager
	eventConsumer     *EventConsumer
	websocketHandler  *WebSocketHandler
	conn              *broadcast.Conn
}

// NewService creates a gateway service and opens its broadcast connection
func NewService(config Config) (*Service, error) {
	conn, err := broadcast.Connect(config.BroadcastConfig)
	if err != nil {
		return nil, err
	}

	cm := NewConnectionManager(config.ConnectionConfig)

	return &Service{
		connectionManager: cm,
		eventConsumer:     NewEventConsumer(cm, conn),
		websocketHandler:  NewWebSocketHandler(cm),
		conn:              conn,
	}, nil
}

// Start runs the connection manager and starts consuming events. Blocks
// until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	if err := s.eventConsumer.Start(); err != nil {
		return err
	}

	s.connectionManager.Start(ctx)

	if err := s.eventConsumer.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop event consumer")
	}
	s.conn.Close()
	return nil
}

// RegisterRoutes registers the gateway's routes on the mux
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.websocketHandler.RegisterRoutes(mux)
}

// GetStats returns active connection statistics
func (s *Service) GetStats() Stats {
	return s.connectionManager.GetConnectionStats()
}
