package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dvcrn/ledspeed/internal/device"
	"github.com/dvcrn/ledspeed/internal/env"
	"github.com/dvcrn/ledspeed/internal/logger"
	"github.com/dvcrn/ledspeed/internal/server"
)

func main() {
	port := env.GetOrDefault("PORT", "8000")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	limits, err := device.LimitsFromEnv()
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("Invalid speed limits")
	}

	store, err := device.NewFileStore()
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("Failed to create state store")
	}

	controller, err := device.NewController(ctx, store, limits)
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("Failed to load LED state")
	}

	srv := server.NewServer(controller,
		server.WithCORSOrigin(env.GetOrDefault("LEDSPEED_CORS_ORIGIN", "*")),
	)

	if err := srv.Start(ctx, ":"+port); err != nil {
		logger.Get().Fatal().Err(err).Msg("Failed to start server")
	}
}
