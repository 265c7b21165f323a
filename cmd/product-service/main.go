// cmd/product-service/main.go
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
		slog.Error("product-service stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadDotEnv()
	cfg, err := config.LoadService("product-service", 3002)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Name, cfg.Logging)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deps, err := app.Bootstrap(ctx, cfg, "products")
	if err != nil {
		return err
	}
	defer deps.Close()

	var products store.Collection[model.Product]
	if deps.DB != nil {
		products = repository.NewProductRepository(deps.DB)
	} else {
		products = repository.NewMemoryProductRepository()
	}

	productController := &controller.ProductController{
		ProductService: service.NewProductService(products, deps.Events),
	}

	r := server.NewRouter(cfg.Name)
	productController.Routes(r)

	return server.Run(ctx, fmt.Sprintf(":%d", cfg.Port), r)
}
