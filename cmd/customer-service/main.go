// cmd/customer-service/main.go
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
		slog.Error("customer-service stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadDotEnv()
	cfg, err := config.LoadService("customer-service", 3001)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Name, cfg.Logging)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deps, err := app.Bootstrap(ctx, cfg, "customers")
	if err != nil {
		return err
	}
	defer deps.Close()

	var customers store.Collection[model.Customer]
	if deps.DB != nil {
		customers = repository.NewCustomerRepository(deps.DB)
	} else {
		customers = repository.NewMemoryCustomerRepository()
	}

	customerController := &controller.CustomerController{
		CustomerService: service.NewCustomerService(customers, deps.Events),
	}

	r := server.NewRouter(cfg.Name)
	customerController.Routes(r)

	return server.Run(ctx, fmt.Sprintf(":%d", cfg.Port), r)
}
