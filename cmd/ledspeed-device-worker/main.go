//go:build js && wasm

package main

import (
	"context"

	"github.com/dvcrn/ledspeed/internal/device"
	"github.com/dvcrn/ledspeed/internal/env"
	"github.com/dvcrn/ledspeed/internal/logger"
	"github.com/dvcrn/ledspeed/internal/server"
	"github.com/syumai/workers"
)

var srv *server.Server

func init() {
	limits, err := device.LimitsFromEnv()
	if err != nil {
		logger.Get().Warn().Err(err).Msg("Invalid speed limits, using defaults")
		limits = device.DefaultLimits
	}

	// Settings survive between isolates through KV; without it every
	// isolate starts from the defaults.
	var store device.Store
	if kvStore, err := device.NewKVStore(); err != nil {
		logger.Get().Error().Err(err).Msg("Failed to create KV store")
		store = device.NewMemoryStore()
	} else {
		store = kvStore
	}

	controller, err := device.NewController(context.Background(), store, limits)
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("Failed to load LED state")
	}

	srv = server.NewServer(controller,
		server.WithCORSOrigin(env.GetOrDefault("LEDSPEED_CORS_ORIGIN", "*")),
	)
}

func main() {
	// The Workers runtime has no long-lived goroutines, so the LED loop is
	// not started here and /leds reports the resting state.
	workers.Serve(srv)
}
