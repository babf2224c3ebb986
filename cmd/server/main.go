package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"vela/internal/engine"
	"vela/internal/engineconfig"
	"vela/internal/transport"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML/JSON config file (optional)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg, err := engineconfig.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	eng := engine.New(cfg, nil)

	address, port := cfg.ListenAddress()
	srv := transport.New(address, port, eng, cfg.WorkerPoolSize())

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("transport server exited")
	}
}
