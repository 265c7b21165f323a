// internal/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Logging is shared by every process.
type Logging struct {
	Level  string
	Format string
}

// Service configures one resource service process.
type Service struct {
	Name           string
	Port           int
	StoreDriver    string
	DatabaseURL    string
	AMQPURL        string
	EventsExchange string
	EventsQueue    string
	Logging
}

// Worker configures the event consumer.
type Worker struct {
	AMQPURL        string
	EventsExchange string
	EventsQueue    string
	Logging
}

// Gateway configures the routing gateway.
type Gateway struct {
	Port               int
	CustomerServiceURL string
	ProductServiceURL  string
	OrderServiceURL    string
	Logging
}

// LoadDotEnv reads .env into the environment. A missing file is fine.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on OS environment variables")
	}
}

func LoadService(name string, defaultPort int) (Service, error) {
	var missing []string
	cfg := Service{
		Name:           name,
		StoreDriver:    getEnv("STORE_DRIVER", DriverPostgres),
		AMQPURL:        os.Getenv("AMQP_URL"),
		EventsExchange: getEnv("EVENTS_EXCHANGE", "ecommerce.events"),
		EventsQueue:    os.Getenv("EVENTS_QUEUE"),
		Logging:        loadLogging(),
	}

	port, err := getPort(defaultPort)
	if err != nil {
		return cfg, err
	}
	cfg.Port = port

	switch cfg.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			missing = append(missing, "DATABASE_URL")
			break
		}
		if cfg.DatabaseURL, err = withPassword(dsn, os.Getenv("DATABASE_PASSWORD")); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, cfg.StoreDriver)
	}

	if len(missing) > 0 {
		return cfg, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

// LoadDatabaseURL is for tools that only need the store endpoint.
func LoadDatabaseURL() (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "", fmt.Errorf("missing required configuration: DATABASE_URL")
	}
	return withPassword(dsn, os.Getenv("DATABASE_PASSWORD"))
}

func LoadGateway() (Gateway, error) {
	cfg := Gateway{
		CustomerServiceURL: os.Getenv("CUSTOMER_SERVICE_URL"),
		ProductServiceURL:  os.Getenv("PRODUCT_SERVICE_URL"),
		OrderServiceURL:    os.Getenv("ORDER_SERVICE_URL"),
		Logging:            loadLogging(),
	}
	port, err := getPort(3000)
	if err != nil {
		return cfg, err
	}
	cfg.Port = port

	var missing []string
	for _, kv := range [][2]string{
		{"CUSTOMER_SERVICE_URL", cfg.CustomerServiceURL},
		{"PRODUCT_SERVICE_URL", cfg.ProductServiceURL},
		{"ORDER_SERVICE_URL", cfg.OrderServiceURL},
	} {
		if kv[1] == "" {
			missing = append(missing, kv[0])
		}
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

func LoadWorker() (Worker, error) {
	cfg := Worker{
		AMQPURL:        os.Getenv("AMQP_URL"),
		EventsExchange: getEnv("EVENTS_EXCHANGE", "ecommerce.events"),
		EventsQueue:    getEnv("EVENTS_QUEUE", "ecommerce.events.audit"),
		Logging:        loadLogging(),
	}
	if cfg.AMQPURL == "" {
		return cfg, fmt.Errorf("missing required configuration: AMQP_URL")
	}
	return cfg, nil
}

func loadLogging() Logging {
	return Logging{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "text"),
	}
}

func getPort(fallback int) (int, error) {
	raw := os.Getenv("PORT")
	if raw == "" {
		return fallback, nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("PORT must be a TCP port number, got %q", raw)
	}
	return port, nil
}

// withPassword sets the password of a URL-form DSN when one is given
// separately, so the credential can live outside DATABASE_URL.
func withPassword(dsn, password string) (string, error) {
	if password == "" {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "", fmt.Errorf("DATABASE_URL must be a postgres:// URL when DATABASE_PASSWORD is set")
	}
	user := "postgres"
	if u.User != nil {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, password)
	return u.String(), nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
