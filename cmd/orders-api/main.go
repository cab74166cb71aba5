package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/ignite/golden-ipa/internal/config"
	"github.com/ignite/golden-ipa/internal/domainapi"
	"github.com/ignite/golden-ipa/internal/metrics"
	"github.com/ignite/golden-ipa/internal/pkg/logger"
	"github.com/ignite/golden-ipa/internal/server"
	"github.com/ignite/golden-ipa/internal/storage"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/orders.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedactPII(cfg.Log.Redact())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, err := storage.Open(ctx, cfg, storage.DefaultOrdersTable, storage.OrderIndexes...)
	if err != nil {
		log.Fatalf("Failed to open orders table: %v", err)
	}
	defer table.Close()

	auth, err := domainapi.NewAuthenticator(cfg.Auth)
	if err != nil {
		log.Fatalf("Invalid auth config: %v", err)
	}
	if !cfg.Auth.Enabled {
		logger.Warn("caller authentication disabled", "service", "orders")
	}

	router := domainapi.NewOrdersRouter(
		domainapi.NewOrdersHandler(storage.NewOrders(table)),
		domainapi.RouterOptions{
			BasePath: cfg.Server.BasePath,
			Auth:     auth,
			Metrics:  metrics.NewHTTP("orders"),
		},
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", addr, err)
	}
	if err := server.New("orders-api", router).Run(ctx, ln); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
