// Command renew runs a single renewal sweep and exits. Meant for an external cron
// when the in-process timer is not used.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-chat-quota-be/internal/bootstrap"
	"ai-chat-quota-be/internal/config"
	"ai-chat-quota-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.EventRelayService.Consume(ctx); err != nil {
		log.Printf("Event relay unavailable: %v", err)
	}

	if !container.RenewalTimer.Tick(ctx) {
		color.Yellow("Another replica holds the renewal lock, nothing to do")
		return
	}
	color.Green("✅ Renewal sweep finished")

	// The relay forwards asynchronously; let it drain before the bus is closed.
	time.Sleep(2 * time.Second)
}
