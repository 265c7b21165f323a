// cmd/seeder/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/unclebandit/storefront-backend/internal/config"
	"github.com/unclebandit/storefront-backend/internal/db"
	"github.com/unclebandit/storefront-backend/internal/logging"
)

var seedFiles = []string{
	"seed/customers.sql",
	"seed/products.sql",
	"seed/orders.sql",
}

func main() {
	config.LoadDotEnv()
	logging.Setup("seeder", config.Logging{Level: os.Getenv("LOG_LEVEL"), Format: os.Getenv("LOG_FORMAT")})

	dsn, err := config.LoadDatabaseURL()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, dsn)
	if err != nil {
		slog.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	for _, file := range seedFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			slog.Error("failed to read seed file", "file", file, "err", err)
			os.Exit(1)
		}
		if _, err := conn.ExecContext(ctx, string(content)); err != nil {
			slog.Error("failed to execute seed file", "file", file, "err", err)
			os.Exit(1)
		}
		slog.Info("seeded", "file", file)
	}

	fmt.Println("Database seeding completed successfully!")
}
