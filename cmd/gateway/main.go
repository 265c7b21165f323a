// cmd/gateway/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/unclebandit/storefront-backend/internal/config"
	"github.com/unclebandit/storefront-backend/internal/gateway"
	"github.com/unclebandit/storefront-backend/internal/logging"
	"github.com/unclebandit/storefront-backend/internal/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("gateway stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadDotEnv()
	cfg, err := config.LoadGateway()
	if err != nil {
		return err
	}
	logging.Setup("gateway", cfg.Logging)

	routes, err := gateway.ServiceRoutes(cfg.CustomerServiceURL, cfg.ProductServiceURL, cfg.OrderServiceURL)
	if err != nil {
		return err
	}
	proxy, err := gateway.NewRouter(routes, nil)
	if err != nil {
		return err
	}
	for _, rt := range proxy.Routes() {
		slog.Info("route", "prefix", rt.Prefix, "target", rt.Target.String()+rt.MountPath, "service", rt.Name)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r := server.NewRouter("gateway", gateway.RequestID)
	r.Handle("/*", proxy)

	return server.Run(ctx, fmt.Sprintf(":%d", cfg.Port), r)
}
