package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"

	"github.com/violetrhodes/violet/pkg/bus"
	"github.com/violetrhodes/violet/pkg/channels"
	"github.com/violetrhodes/violet/pkg/chat"
	"github.com/violetrhodes/violet/pkg/gateway"
	"github.com/violetrhodes/violet/pkg/memory"
)

func runGateway() error {
	// A local .env can carry the Discord token during development.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(cfg.Channels.Discord.Token) == "" {
		return fmt.Errorf("channels.discord.token is required in %s or VIOLET_CHANNELS_DISCORD_TOKEN", getConfigPath())
	}

	msgBus := bus.NewMessageBus()
	defer msgBus.Close()

	channelManager, err := channels.NewManager(cfg, msgBus)
	if err != nil {
		return fmt.Errorf("create channel manager: %w", err)
	}

	backend := chat.NewClient(cfg.BackendURL(), cfg.BackendTimeout())
	memStore := memory.NewClient(cfg.BackendURL())
	gw := gateway.New(msgBus, backend, memStore)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := channelManager.StartAll(ctx); err != nil {
		return fmt.Errorf("start channels: %w", err)
	}

	go gw.Run(ctx)

	fmt.Printf("✓ Gateway started (backend: %s)\n", cfg.BackendURL())
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	<-sigChan

	fmt.Println("\nShutting down...")
	cancel()
	if err := channelManager.StopAll(context.Background()); err != nil {
		fmt.Printf("Error stopping channels: %v\n", err)
	}
	gw.Flush()
	fmt.Println("✓ Gateway stopped")
	return nil
}
