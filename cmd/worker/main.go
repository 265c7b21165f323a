// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/unclebandit/storefront-backend/internal/config"
	"github.com/unclebandit/storefront-backend/internal/logging"
	"github.com/unclebandit/storefront-backend/internal/queue"
)

// The worker consumes every change event the resource services publish and
// writes it to the log.
func main() {
	if err := run(); err != nil {
		slog.Error("worker stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadDotEnv()
	cfg, err := config.LoadWorker()
	if err != nil {
		return err
	}
	logging.Setup("event-worker", cfg.Logging)

	q, err := queue.DialAMQP(cfg.AMQPURL, cfg.EventsExchange)
	if err != nil {
		return err
	}
	defer q.Close()
	q.QueueName = cfg.EventsQueue

	if err := queue.StartEventLogger(q, "#"); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("worker running, waiting for events...", "exchange", cfg.EventsExchange)
	select {
	case <-ctx.Done():
		return nil
	case err := <-q.NotifyClose():
		return fmt.Errorf("broker connection closed: %v", err)
	}
}
