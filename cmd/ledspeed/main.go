package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/dvcrn/ledspeed/internal/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		logger.Get().Error().Err(err).Msg("ledspeed failed")
		os.Exit(1)
	}
}
