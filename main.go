package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/b0bbywan/go-usbwatch/cmd"
	"github.com/b0bbywan/go-usbwatch/config"
	"github.com/b0bbywan/go-usbwatch/logger"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n%s\n", err, config.Usage)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	watcher, err := cmd.NewWatcher(ctx, cancel, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to start")
	}
	defer watcher.Close()

	if err := watcher.Run(); err != nil {
		logger.Error().Err(err).Msg("Watcher stopped")
		watcher.Close()
		os.Exit(1)
	}
}
