// cmd/order-service/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/unclebandit/storefront-backend/internal/app"
	"github.com/unclebandit/storefront-backend/internal/config"
	"github.com/unclebandit/storefront-backend/internal/controller"
	"github.com/unclebandit/storefront-backend/internal/logging"
	"github.com/unclebandit/storefront-backend/internal/model"
	"github.com/unclebandit/storefront-backend/internal/repository"
	"github.com/unclebandit/storefront-backend/internal/server"
	"github.com/unclebandit/storefront-backend/internal/service"
	"github.com/unclebandit/storefront-backend/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("order-service stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadDotEnv()
	cfg, err := config.LoadService("order-service", 3003)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Name, cfg.Logging)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deps, err := app.Bootstrap(ctx, cfg, "orders")
	if err != nil {
		return err
	}
	defer deps.Close()

	var orders store.Collection[model.Order]
	if deps.DB != nil {
		orders = repository.NewOrderRepository(deps.DB)
	} else {
		orders = repository.NewMemoryOrderRepository()
	}

	orderController := &controller.OrderController{
		OrderService: service.NewOrderService(orders, deps.Events),
	}

	r := server.NewRouter(cfg.Name)
	orderController.Routes(r)

	return server.Run(ctx, fmt.Sprintf(":%d", cfg.Port), r)
}
