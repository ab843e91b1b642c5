package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/benmeehan/pulse-agent/internal/client"
	"github.com/benmeehan/pulse-agent/internal/utils"
	"github.com/benmeehan/pulse-agent/pkg/file"
	"github.com/benmeehan/pulse-agent/pkg/identity"
	"github.com/benmeehan/pulse-agent/pkg/ws"
	"github.com/rs/zerolog"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	// Set up structured logging with JSON output
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	configPath := os.Getenv("PULSE_AGENT_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Load configuration from file
	fileClient := file.NewFileService()
	config, err := utils.LoadConfig(configPath, fileClient)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
	}
	log = log.Level(config.LogLevel())

	// One session identifier for the whole process
	sessionInfo := identity.NewSessionInfo(config.SessionIdentity())
	log.Info().Str("session_id", sessionInfo.GetSessionID()).Msg("Using session ID")

	conn := ws.NewWebSocketService(ws.Options{
		URL:              config.Connection.URL,
		UserAgent:        config.Connection.UserAgent,
		Origin:           config.Connection.Origin,
		HandshakeTimeout: config.Connection.HandshakeTimeout,
		WriteTimeout:     config.Connection.WriteTimeout,
		ReadLimit:        config.Connection.ReadLimit,
		TLSSkipVerify:    config.Connection.TLSSkipVerify,
	})

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	heartbeatClient := client.NewHeartbeatClient(config, sessionInfo, conn, log)
	if err := heartbeatClient.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Heartbeat client stopped")
		stop()
		os.Exit(1)
	}

	log.Info().Msg("Shut down gracefully")
}
