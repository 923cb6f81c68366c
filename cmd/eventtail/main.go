// Command eventtail prints domain events relayed to NATS, for operators.
//
//	go run ./cmd/eventtail -subject 'events.BUNDLE_*'
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-chat-quota-be/internal/config"
	"ai-chat-quota-be/pkg/events"
	pktNats "ai-chat-quota-be/pkg/nats"

	"github.com/fatih/color"
)

func main() {
	subject := flag.String("subject", pktNats.SubjectPrefix+">", "subject filter")
	durable := flag.String("durable", "", "durable consumer name (empty for ephemeral)")
	flag.Parse()

	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		log.Fatal("Error: NATS_URL is not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sub.Subscribe(ctx, *subject, *durable, func(ctx context.Context, event events.Event) error {
		data, err := json.Marshal(event.Payload())
		if err != nil {
			return err
		}
		color.New(color.FgCyan).Printf("%s ", event.Timestamp().Format("2006-01-02T15:04:05Z07:00"))
		colorFor(event.EventType()).Printf("%-26s ", event.EventType())
		log.New(os.Stdout, "", 0).Println(string(data))
		return nil
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	color.Green("Tailing %s, Ctrl+C to stop", *subject)
	<-ctx.Done()
}

func colorFor(eventType string) *color.Color {
	switch eventType {
	case events.BundlePaymentFailed, events.QuotaExhausted:
		return color.New(color.FgRed, color.Bold)
	case events.BundleCancelled:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}
