package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/grouptick/grouptick/go/internal/broadcast"
	"github.com/grouptick/grouptick/go/internal/gateway"
)

// fileConfig is the optional YAML tuning file for the gateway
type fileConfig struct {
	Gateway struct {
		WriteTimeoutSec int   `yaml:"write_timeout_sec"`
		ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
		PingIntervalSec int   `yaml:"ping_interval_sec"`
		MaxMessageSize  int64 `yaml:"max_message_size"`
	} `yaml:"gateway"`
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	port := getEnv("GATEWAY_PORT", "8081")
	natsURL := getEnv("NATS_URL", "nats://localhost:4222")

	connCfg := gateway.DefaultConnectionConfig()
	if path := os.Getenv("GATEWAY_CONFIG"); path != "" {
		if err := applyFileConfig(path, &connCfg); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to load gateway config")
		}
	}

	broadcastCfg := broadcast.DefaultConfig()
	broadcastCfg.URL = natsURL

	log.Info().
		Str("nats_url", natsURL).
		Str("port", port).
		Msg("starting timer gateway")

	gatewayService, err := gateway.NewService(gateway.Config{
		ConnectionConfig: connCfg,
		BroadcastConfig:  broadcastCfg,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway service")
	}

	mux := http.NewServeMux()
	gatewayService.RegisterRoutes(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		stats := gatewayService.GetStats()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"service":"timer-gateway","connections":%d}`, stats.TotalConnections)
	})

	server := &http.Server{
		Addr:    ":" + port,
		Handler: gateway.CORSMiddleware(mux),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := gatewayService.Start(ctx); err != nil {
			log.Error().Err(err).Msg("gateway service stopped")
		}
	}()

	go func() {
		log.Info().Str("addr", server.Addr).Msg("gateway HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down gateway")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

func applyFileConfig(path string, cfg *gateway.ConnectionConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if fc.Gateway.WriteTimeoutSec > 0 {
		cfg.WriteTimeout = time.Duration(fc.Gateway.WriteTimeoutSec) * time.Second
	}
	if fc.Gateway.ReadTimeoutSec > 0 {
		cfg.ReadTimeout = time.Duration(fc.Gateway.ReadTimeoutSec) * time.Second
	}
	if fc.Gateway.PingIntervalSec > 0 {
		cfg.PingInterval = time.Duration(fc.Gateway.PingIntervalSec) * time.Second
	}
	if fc.Gateway.MaxMessageSize > 0 {
		cfg.MaxMessageSize = fc.Gateway.MaxMessageSize
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
