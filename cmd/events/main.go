package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"stock-ticker-be/internal/config"
	"stock-ticker-be/pkg/events"
	pktNats "stock-ticker-be/pkg/nats"

	"github.com/fatih/color"
)

// Tails TICKER_RESOLVED events from the NATS stream until interrupted.
func main() {
	cfg := config.Load()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL, nil)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cc, err := sub.Subscribe(ctx, events.TickerResolvedType, "", func(ctx context.Context, event events.Event) error {
		payload := event.Payload()
		line := fmt.Sprintf("%s %v market=%v symbols=%v cycles=%v",
			event.Timestamp().Format("15:04:05"), payload["query"], payload["market"], payload["symbols"], payload["cycles"])
		if low, _ := payload["lowConfidence"].(bool); low {
			color.Yellow("%s", line)
		} else {
			color.Green("%s", line)
		}
		if os.Getenv("EVENTS_VERBOSE") == "true" {
			raw, _ := json.Marshal(payload)
			fmt.Println(string(raw))
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}
	defer cc.Stop()

	color.Cyan("Listening for %s on %s", events.TickerResolvedType, cfg.App.NatsURL)
	<-ctx.Done()
}
