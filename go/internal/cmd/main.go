package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/grouptick/grouptick/go/clients/identity"
	"github.com/grouptick/grouptick/go/internal/broadcast"
	"github.com/grouptick/grouptick/go/internal/group"
	"github.com/grouptick/grouptick/go/internal/timer"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	port := getEnv("API_PORT", "8080")
	natsURL := getEnv("NATS_URL", "nats://localhost:4222")

	db, err := setupDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broadcastCfg := broadcast.DefaultConfig()
	broadcastCfg.URL = natsURL
	conn, err := broadcast.Connect(broadcastCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to broadcast channel")
	}
	defer conn.Close()

	resolver := setupResolver()

	groupRepo := group.NewRepository(db)
	timerRepo := timer.NewRepository(db)

	publisher := broadcast.NewMetricPublisher(conn, &broadcast.NoOpMetricsCollector{})
	groupApp := group.NewApp(groupRepo, timerRepo, resolver)
	timerApp := timer.NewApp(timerRepo, groupRepo, publisher, clockwork.NewRealClock())

	router := newRouter(group.NewHandler(groupApp), timer.NewHandler(timerApp))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("API server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

// setupResolver picks the identity provider: HTTP-backed when IDENTITY_URL
// is set, a static list otherwise so local development needs no provider.
func setupResolver() identity.Resolver {
	if url := os.Getenv("IDENTITY_URL"); url != "" {
		return identity.NewClient(url, os.Getenv("IDENTITY_API_KEY"))
	}

	log.Warn().Msg("IDENTITY_URL not set, using static dev identities")
	return &identity.StaticResolver{
		Identities: []identity.Identity{
			{ID: "dev-alice", DisplayName: "alice"},
			{ID: "dev-bob", DisplayName: "bob"},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
